package audit

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadURLs interprets input as a file of URLs (one per line, blank lines
// ignored) when it names a regular file, and as a single URL otherwise.
func LoadURLs(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil || !info.Mode().IsRegular() {
		if u := strings.TrimSpace(input); u != "" {
			return []string{u}, nil
		}
		return nil, nil
	}

	f, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("audit: open url list: %w", err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			urls = append(urls, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("audit: read url list: %w", err)
	}
	return urls, nil
}
