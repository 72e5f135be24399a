// Package frontmatter locates the YAML metadata block at the top of a note.
//
// A block opens with a line that is exactly "---" (the first non-blank line of
// the note) and closes with the next line that is exactly "---":
//
//	---
//	status: todo
//	due: 2026-01-30
//	---
//	Note body...
//
// Windows line endings and a leading UTF-8 byte order mark are tolerated.
package frontmatter

import (
	"errors"
	"strings"
)

// Delimiter opens and closes a frontmatter block.
const Delimiter = "---"

// ErrUnterminated is returned when a note opens a frontmatter block but never
// closes it.
var ErrUnterminated = errors.New("frontmatter opened but never closed")

// Extract returns the text strictly between the opening and closing delimiter
// lines. found is false when the note has no opening delimiter, which is not an
// error. An opening delimiter without a closing one returns ErrUnterminated.
func Extract(content string) (block string, found bool, err error) {
	content = strings.TrimPrefix(content, "\ufeff")
	lines := strings.Split(content, "\n")

	start := -1
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if line != Delimiter {
			return "", false, nil
		}
		start = i
		break
	}
	if start < 0 {
		return "", false, nil
	}

	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSuffix(lines[i], "\r") != Delimiter {
			continue
		}
		body := make([]string, 0, i-start-1)
		for _, line := range lines[start+1 : i] {
			body = append(body, strings.TrimSuffix(line, "\r"))
		}
		return strings.Join(body, "\n"), true, nil
	}

	return "", true, ErrUnterminated
}
