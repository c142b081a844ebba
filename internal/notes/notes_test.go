package notes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain", "Как работает Go", "Как работает Go.md"},
		{"forbidden chars", `Go: опыт/ошибки?`, "Go- опыт-ошибки-.md"},
		{"newlines", "строка\nвторая", "строка-вторая.md"},
		{"collapses whitespace", "много   пробелов\tтут", "много пробелов тут.md"},
		{
			"caps long titles",
			strings.Repeat("заголовок ", 20),
			strings.TrimSpace(strings.Repeat("заголовок ", 6)) + ".md",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.title))
		})
	}
}

func TestSanitizeFilenameEmptyFallback(t *testing.T) {
	got := SanitizeFilename("///")
	// "///" collapses to dashes, which survive; a truly empty title gets
	// the timestamp fallback.
	assert.True(t, strings.HasSuffix(got, ".md"))

	got = SanitizeFilename("   ")
	assert.True(t, strings.HasPrefix(got, "note_"), "got %q", got)
}

func TestSaveAndRead(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("Тестовая заметка", "## Тело\nсодержимое", "https://example.com/a", []string{"клиппер"})
	require.NoError(t, err)
	assert.Equal(t, "Тестовая заметка.md", name)

	content, err := store.Read(name, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(content, "---\n"), "frontmatter fence missing")
	assert.Contains(t, content, "title: Тестовая заметка")
	assert.Contains(t, content, "url: https://example.com/a")
	assert.Contains(t, content, "[inbox, клиппер]")
	assert.Contains(t, content, "## Тело")
}

func TestReadCapped(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("Большая", strings.Repeat("x", 5000), "", nil)
	require.NoError(t, err)

	content, err := store.Read(name, 100)
	require.NoError(t, err)
	assert.Len(t, content, 100)
}

func TestFind(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("Go Concurrency Patterns", "body", "", nil)
	require.NoError(t, err)
	_, err = store.Save("Кулинарные рецепты", "body", "", nil)
	require.NoError(t, err)

	assert.Equal(t, "Go Concurrency Patterns.md", store.Find("concurrency"))
	assert.Equal(t, "", store.Find("квантовая физика"))
}
