// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pages

import (
	"fmt"
	"os"
	"strings"
)

// OpenText reads a pre-extracted UTF-8 text file whose pages are
// separated by form feeds.
func OpenText(path string) (*SliceSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading text file %s: %w", path, err)
	}
	return NewSliceSource(splitPages(string(data))), nil
}

// splitPages cuts form-feed separated text into pages. A trailing form
// feed does not start an empty last page.
func splitPages(text string) []string {
	text = strings.TrimSuffix(text, pageBreak)
	if text == "" {
		return nil
	}
	return strings.Split(text, pageBreak)
}
