// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/quizdeck/pkg/types"
)

// Matcher owns every numeral-adjacency pattern used to locate and split
// question blocks. Question N is recognized by the literal numeral N
// immediately followed by an answer marker; its block ends where N+1 and
// a marker of the same class appear.
//
// Compiled patterns are memoized per (number, kind). A Matcher is not
// safe for concurrent use.
type Matcher struct {
	markers   map[types.Kind]string
	reference string
	anchored  bool

	blocks  map[patternKey]*regexp.Regexp
	bounds  map[patternKey]*regexp.Regexp
	opens   map[patternKey]*regexp.Regexp
	fields  map[patternKey]*regexp.Regexp
	leading map[types.Kind]*regexp.Regexp
}

type patternKey struct {
	n    int
	kind types.Kind
}

// Fields are the parts of one question block.
type Fields struct {
	Answer    string
	Prompt    string
	Options   []string
	Reference string
}

// NewMatcher builds a Matcher from the segment configuration.
func NewMatcher(cfg types.SegmentConfig) (*Matcher, error) {
	if len(cfg.YesNoMarkers) != 2 {
		return nil, fmt.Errorf("yes/no markers: want 2, got %d", len(cfg.YesNoMarkers))
	}
	quoted := make([]string, len(cfg.YesNoMarkers))
	for i, mk := range cfg.YesNoMarkers {
		if mk == "" {
			return nil, fmt.Errorf("yes/no marker %d is empty", i)
		}
		quoted[i] = regexp.QuoteMeta(mk)
	}

	if cfg.ReferencePattern != "" {
		if _, err := regexp.Compile(cfg.ReferencePattern); err != nil {
			return nil, fmt.Errorf("compiling reference pattern: %w", err)
		}
	}

	m := &Matcher{
		markers: map[types.Kind]string{
			types.KindMultipleChoice: `[1-4]`,
			types.KindYesNo:          `(?:` + strings.Join(quoted, "|") + `)`,
		},
		reference: cfg.ReferencePattern,
		anchored:  cfg.LineAnchored,
		blocks:    make(map[patternKey]*regexp.Regexp),
		bounds:    make(map[patternKey]*regexp.Regexp),
		opens:     make(map[patternKey]*regexp.Regexp),
		fields:    make(map[patternKey]*regexp.Regexp),
		leading:   make(map[types.Kind]*regexp.Regexp),
	}
	for kind, mk := range m.markers {
		m.leading[kind] = regexp.MustCompile(`^1` + mk)
	}
	return m, nil
}

// Block searches text for question n of the given kind, bounded by the
// lookahead numeral n+1. It returns the block's byte span within text;
// the lookahead is not part of the span. ok is false when text does not
// (yet) contain a bounded block.
func (m *Matcher) Block(text string, n int, kind types.Kind) (start, end int, ok bool) {
	loc := m.blockPattern(n, kind).FindStringSubmatchIndex(text)
	if loc == nil {
		return 0, 0, false
	}
	return loc[2], loc[3], true
}

// Bound is Block without the layout requirement: it finds numeral n and
// the next numeral n+1 of the same marker class, whatever lies between.
// It locates blocks whose body is malformed.
func (m *Matcher) Bound(text string, n int, kind types.Kind) (start, end int, ok bool) {
	loc := m.boundPattern(n, kind).FindStringSubmatchIndex(text)
	if loc == nil {
		return 0, 0, false
	}
	return loc[2], loc[3], true
}

// Reopens reports whether numeral n with a marker of the kind starts
// again after the first byte of block.
func (m *Matcher) Reopens(block string, n int, kind types.Kind) bool {
	if block == "" {
		return false
	}
	key := patternKey{n, kind}
	re, ok := m.opens[key]
	if !ok {
		prefix := `\n`
		if !m.anchored {
			prefix = `[^0-9]`
		}
		re = regexp.MustCompile(prefix + strconv.Itoa(n) + m.markers[kind])
		m.opens[key] = re
	}
	return re.MatchString(block[1:])
}

// Fields splits a block (line breaks already removed) into its parts. The
// block must start with numeral n. ok is false when the body does not fit
// the kind's layout.
func (m *Matcher) Fields(block string, n int, kind types.Kind) (Fields, bool) {
	re := m.fieldPattern(n, kind)
	match := re.FindStringSubmatch(block)
	if match == nil {
		return Fields{}, false
	}

	group := func(name string) string {
		return strings.TrimSpace(match[re.SubexpIndex(name)])
	}

	f := Fields{
		Answer:    group("answer"),
		Prompt:    group("prompt"),
		Reference: group("ref"),
	}
	if kind == types.KindMultipleChoice {
		f.Options = []string{group("o1"), group("o2"), group("o3"), group("o4")}
	}
	return f, true
}

// Leading reports the kind of the question that opens text, judged by
// the marker following the numeral 1. It is used when a run banner's
// labels cannot be read.
func (m *Matcher) Leading(text string) (types.Kind, bool) {
	text = strings.TrimLeft(text, " \t\r\n")
	for _, kind := range []types.Kind{types.KindMultipleChoice, types.KindYesNo} {
		if m.leading[kind].MatchString(text) {
			return kind, true
		}
	}
	return "", false
}

func (m *Matcher) blockPattern(n int, kind types.Kind) *regexp.Regexp {
	key := patternKey{n, kind}
	if re, ok := m.blocks[key]; ok {
		return re
	}

	body := ""
	if kind == types.KindMultipleChoice {
		body = `.+?` + optionMarker(1) + `.+?` + optionMarker(2) + `.+?` + optionMarker(3) + `.+?` + optionMarker(4)
	}
	re := regexp.MustCompile(m.boundedExpr(n, kind, body))
	m.blocks[key] = re
	return re
}

func (m *Matcher) boundPattern(n int, kind types.Kind) *regexp.Regexp {
	key := patternKey{n, kind}
	if re, ok := m.bounds[key]; ok {
		return re
	}
	re := regexp.MustCompile(m.boundedExpr(n, kind, ""))
	m.bounds[key] = re
	return re
}

// boundedExpr captures numeral n, its marker, body, and the rest of the
// block up to the lookahead numeral n+1.
func (m *Matcher) boundedExpr(n int, kind types.Kind, body string) string {
	// Anchored: numerals start a line. Unanchored: numerals must not be
	// glued to a preceding digit, so "12" is never read as question 2.
	prefix, tail, sep := `(?:\A|\n)`, `.+?`, `\n`
	if !m.anchored {
		prefix, tail, sep = `(?:\A|[^0-9])`, `.*?[^0-9]`, ``
	}
	mk := m.markers[kind]
	return `(?s)` + prefix + `(` + strconv.Itoa(n) + mk + body + tail + `)` + sep + strconv.Itoa(n+1) + mk
}

// optionMarker matches "(i)", allowing a line break inside the
// parentheses where a page break split the marker.
func optionMarker(i int) string {
	return `\(\n?` + strconv.Itoa(i) + `\n?\)`
}

func (m *Matcher) fieldPattern(n int, kind types.Kind) *regexp.Regexp {
	key := patternKey{n, kind}
	if re, ok := m.fields[key]; ok {
		return re
	}

	ref := `(?P<ref>)`
	if m.reference != "" {
		ref = `(?P<ref>(?:` + m.reference + `))?`
	}

	var b strings.Builder
	b.WriteString(`(?s)^`)
	b.WriteString(strconv.Itoa(n))
	b.WriteString(`(?P<answer>` + m.markers[kind] + `)`)
	if kind == types.KindMultipleChoice {
		b.WriteString(`(?P<prompt>.+?)\(1\)(?P<o1>.+?)\(2\)(?P<o2>.+?)\(3\)(?P<o3>.+?)\(4\)(?P<o4>.+?)`)
	} else {
		b.WriteString(`(?P<prompt>.+?)`)
	}
	b.WriteString(ref)
	b.WriteString(`\s*$`)

	re := regexp.MustCompile(b.String())
	m.fields[key] = re
	return re
}

// stripLineBreaks removes the line wrapping introduced by text extraction.
func stripLineBreaks(s string) string {
	return strings.NewReplacer("\r\n", "", "\n", "", "\r", "").Replace(s)
}
