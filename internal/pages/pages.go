// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pages reads a quiz document as a stream of page texts with
// pluggable extraction backends (native PDF text layer, poppler's
// pdftotext, pre-extracted text files).
package pages

import (
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/pdiddy/quizdeck/pkg/types"
)

// pageBreak separates pages in pdftotext output and in text files.
const pageBreak = "\f"

// Source yields the text of each page in document order. Next returns
// io.EOF after the last page.
type Source interface {
	Next() (string, error)
	Close() error
}

// Open selects the extraction backend named by cfg and opens path with it.
// Configured noise patterns are removed from every page.
func Open(cfg types.ExtractionConfig, path string) (Source, error) {
	var (
		src Source
		err error
	)
	switch cfg.Backend {
	case types.BackendNative, "":
		src, err = OpenPDF(path)
	case types.BackendPdftotext:
		src, err = OpenPdftotext(path)
	case types.BackendText:
		src, err = OpenText(path)
	default:
		return nil, fmt.Errorf("unknown extraction backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	if len(cfg.NoisePatterns) == 0 {
		return src, nil
	}
	filtered, err := WithNoiseFilter(src, cfg.NoisePatterns)
	if err != nil {
		src.Close()
		return nil, err
	}
	return filtered, nil
}

// SliceSource serves pages held in memory.
type SliceSource struct {
	pages []string
	next  int
}

// NewSliceSource returns a Source over the given pages.
func NewSliceSource(pages []string) *SliceSource {
	return &SliceSource{pages: pages}
}

func (s *SliceSource) Next() (string, error) {
	if s.next >= len(s.pages) {
		return "", io.EOF
	}
	s.next++
	return s.pages[s.next-1], nil
}

func (s *SliceSource) Close() error { return nil }

// noiseFilter strips recurring page furniture (footers, print stamps)
// before the text reaches the segmentation engine.
type noiseFilter struct {
	src      Source
	patterns []*regexp.Regexp
}

// WithNoiseFilter wraps src so that every match of the given patterns is
// removed from each page.
func WithNoiseFilter(src Source, patterns []string) (Source, error) {
	f := &noiseFilter{src: src}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling noise pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, re)
	}
	return f, nil
}

func (f *noiseFilter) Next() (string, error) {
	text, err := f.src.Next()
	if err != nil {
		return "", err
	}
	for _, re := range f.patterns {
		text = re.ReplaceAllString(text, "")
	}
	return text, nil
}

func (f *noiseFilter) Close() error { return f.src.Close() }

// ReadAll drains src and returns every page. It is meant for small
// documents and tests.
func ReadAll(src Source) ([]string, error) {
	var out []string
	for {
		text, err := src.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, text)
	}
}
