package video

import (
	"bufio"
	"errors"
	"os"
	"strings"
)

// cookieHeader reads a Netscape-format cookie file and assembles a Cookie
// header value for the video host. Only used after the cascade has decided
// to escalate; the file itself is the credential, never validated here.
func cookieHeader(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var pairs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// domain, flag, path, secure, expiry, name, value
		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			continue
		}
		if !strings.Contains(fields[0], "youtube.com") && !strings.Contains(fields[0], ".google.com") {
			continue
		}
		pairs = append(pairs, fields[5]+"="+fields[6])
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if len(pairs) == 0 {
		return "", errors.New("cookie file has no entries for the video host")
	}
	return strings.Join(pairs, "; "), nil
}
