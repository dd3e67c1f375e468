// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMissingGenerationDate means the first page carries no generation
// date, so the deck cannot be titled.
var ErrMissingGenerationDate = errors.New("generation date not found on first page")

// GenerationDate finds the document's generation date on its first page
// using pattern, which must capture the date in a group named "date" (or
// its first group). Slashes become dashes: "2024/03/15" -> "2024-03-15".
func GenerationDate(firstPage, pattern string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("compiling date pattern: %w", err)
	}
	m := re.FindStringSubmatch(firstPage)
	if m == nil {
		return "", ErrMissingGenerationDate
	}
	group := re.SubexpIndex("date")
	if group < 0 {
		group = 1
	}
	if group >= len(m) {
		return "", fmt.Errorf("date pattern %q has no capture group", pattern)
	}
	date := strings.TrimSpace(m[group])
	if date == "" {
		return "", ErrMissingGenerationDate
	}
	return strings.ReplaceAll(date, "/", "-"), nil
}

// Title names the deck after the generation date.
func Title(prefix, date string) string {
	return prefix + date
}
