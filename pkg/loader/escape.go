package loader

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var escapeRegex = regexp.MustCompile(`\\(\d{3})`)

// decodeString validates a string literal and replaces its \ddd escapes.
// Raw whitespace and '#' must be written as escapes.
func decodeString(s string) (string, error) {
	for _, r := range s {
		if unicode.IsSpace(r) || r == '#' {
			return "", fmt.Errorf("character %q must be escaped", r)
		}
	}

	if strings.Count(s, `\`) != len(escapeRegex.FindAllStringIndex(s, -1)) {
		return "", fmt.Errorf("invalid escape sequence in %q", s)
	}

	return escapeRegex.ReplaceAllStringFunc(s, func(m string) string {
		code, _ := strconv.Atoi(m[1:])
		return string(rune(code))
	}), nil
}
