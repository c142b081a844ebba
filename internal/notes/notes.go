// Package notes persists extracted documents as markdown files with YAML
// frontmatter and finds them back by fuzzy filename lookup.
package notes

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/strutil"
	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"
)

// Store writes and reads notes under a single inbox directory.
type Store struct {
	Dir string
}

// NewStore ensures the inbox directory exists.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("notes: create inbox: %w", err)
	}
	return &Store{Dir: dir}, nil
}

type frontmatter struct {
	Title string   `yaml:"title"`
	URL   string   `yaml:"url,omitempty"`
	Date  string   `yaml:"date"`
	Tags  []string `yaml:"tags,flow"`
}

// Save writes one note and returns the filename it landed under.
// Tags carry the extraction method so the inbox shows how a note was won.
func (s *Store) Save(title, body, sourceURL string, tags []string) (string, error) {
	name := SanitizeFilename(title)

	fm, err := yaml.Marshal(frontmatter{
		Title: title,
		URL:   sourceURL,
		Date:  time.Now().Format("2006-01-02"),
		Tags:  append([]string{"inbox"}, tags...),
	})
	if err != nil {
		return "", fmt.Errorf("notes: frontmatter: %w", err)
	}

	content := fmt.Sprintf("---\n%s---\n\n%s\n", fm, body)
	if err := os.WriteFile(filepath.Join(s.Dir, name), []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("notes: write %s: %w", name, err)
	}
	return name, nil
}

// Find returns the best fuzzy match for query among note filenames, or
// empty when nothing matches.
func (s *Store) Find(query string) string {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return ""
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	matches := fuzzy.Find(query, names)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

// Read returns a note's content, capped so a huge note cannot blow up a
// chat message or a model prompt.
func (s *Store) Read(name string, limit int) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	text := string(data)
	if limit > 0 && len(text) > limit {
		text = text[:limit]
	}
	return text, nil
}

var (
	forbiddenRe  = regexp.MustCompile(`[\\/:*?"<>|\n\r]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// SanitizeFilename derives a safe .md filename from a note title:
// forbidden characters become dashes, whitespace collapses, and the stem
// is capped at 60 characters.
func SanitizeFilename(title string) string {
	clean := forbiddenRe.ReplaceAllString(title, "-")
	clean = strings.TrimSpace(whitespaceRe.ReplaceAllString(clean, " "))
	clean = strings.TrimSpace(strutil.TruncateWith(clean, 60, ""))
	if clean == "" {
		clean = fmt.Sprintf("note_%d", time.Now().Unix())
	}
	return clean + ".md"
}
