// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pages

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFSource extracts the embedded text layer of a PDF one page at a time.
// Scanned, image-only documents yield empty pages.
type PDFSource struct {
	path string
	file *os.File
	r    *pdf.Reader
	next int
}

// OpenPDF opens the PDF at path for page-by-page extraction.
func OpenPDF(path string) (*PDFSource, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	return &PDFSource{
		path: path,
		file: f,
		r:    r,
		next: 1,
	}, nil
}

// NumPage reports the page count of the document.
func (s *PDFSource) NumPage() int { return s.r.NumPage() }

func (s *PDFSource) Next() (string, error) {
	if s.next > s.r.NumPage() {
		return "", io.EOF
	}
	i := s.next
	s.next++

	p := s.r.Page(i)
	if p.V.IsNull() {
		return "", nil
	}
	glyphs, err := content(p)
	if err != nil {
		return "", fmt.Errorf("extracting page %d of %s: %w", i, s.path, err)
	}
	return joinLines(glyphs), nil
}

// content returns the positioned glyphs of a page. The reader panics on
// malformed content streams.
func content(p pdf.Page) (glyphs []pdf.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return p.Content().Text, nil
}

// joinLines rebuilds the text layer in drawing order, starting a new line
// whenever the baseline moves by more than half the font size. Line
// positioning operators (Td, TD, Tm, T*) all show up as baseline moves.
func joinLines(glyphs []pdf.Text) string {
	var b strings.Builder
	var prev *pdf.Text
	for i := range glyphs {
		g := &glyphs[i]
		if g.S == "\n" {
			continue
		}
		if prev != nil && newLine(*prev, *g) {
			b.WriteByte('\n')
		}
		b.WriteString(g.S)
		prev = g
	}
	return b.String()
}

func newLine(prev, g pdf.Text) bool {
	tolerance := math.Max(g.FontSize, prev.FontSize) / 2
	if tolerance < 1 {
		tolerance = 1
	}
	return math.Abs(g.Y-prev.Y) > tolerance
}

func (s *PDFSource) Close() error {
	return s.file.Close()
}
