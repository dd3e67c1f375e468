// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import (
	"regexp"
	"strings"

	"github.com/pdiddy/quizdeck/pkg/types"
)

const (
	// primaryLeadLines is how many lines before a banner hold the
	// category and kind labels.
	primaryLeadLines = 2
	// fallbackTailLines is how many trailing lines of the previous text
	// are borrowed when the banner sits at the top of a page.
	fallbackTailLines = 3
)

// runContext is the (category, kind) pair announced by a run banner.
type runContext struct {
	Kind types.Kind
	// Label is the raw category line; it may not be in the vocabulary.
	Label string
	// Resolved is false when no kind label was found near the banner.
	Resolved bool
}

// leadLines is the number of header lines the banner lead-in occupies at
// the end of the previous run's text.
func (c runContext) leadLines() int {
	switch {
	case !c.Resolved:
		return 0
	case c.Kind == types.KindMultipleChoice:
		return 2
	default:
		return 1
	}
}

// contextResolver reads the category and kind labels printed above a
// run banner.
type contextResolver struct {
	vocabulary map[string]bool
	labels     map[string]types.Kind
	leadRe     *regexp.Regexp
}

func newContextResolver(cfg types.SegmentConfig) *contextResolver {
	vocab := make(map[string]bool, len(cfg.Categories))
	for _, c := range cfg.Categories {
		vocab[strings.TrimSpace(c)] = true
	}
	labels := map[string]types.Kind{
		cfg.MultipleChoiceLabel: types.KindMultipleChoice,
		cfg.YesNoLabel:          types.KindYesNo,
	}
	alt := regexp.QuoteMeta(cfg.MultipleChoiceLabel) + `|` + regexp.QuoteMeta(cfg.YesNoLabel)
	return &contextResolver{
		vocabulary: vocab,
		labels:     labels,
		leadRe:     regexp.MustCompile(`(?m)^(?P<category>.*)\n\s*(?P<kind>` + alt + `)`),
	}
}

// resolve reads the banner lead-in. It first tries the last lines of the
// text preceding the banner on the same page, then the same lines merged
// with the tail of the previous text.
func (r *contextResolver) resolve(lead, previous string) runContext {
	leadTail := tailLines(lead, primaryLeadLines)
	if c, ok := r.match(leadTail); ok {
		return c
	}
	merged := append(tailLines(previous, fallbackTailLines), leadTail...)
	if c, ok := r.match(merged); ok {
		return c
	}
	return runContext{Kind: types.KindYesNo}
}

func (r *contextResolver) match(lines []string) (runContext, bool) {
	m := r.leadRe.FindStringSubmatch(strings.Join(lines, "\n"))
	if m == nil {
		return runContext{}, false
	}
	return runContext{
		Kind:     r.labels[m[r.leadRe.SubexpIndex("kind")]],
		Label:    strings.TrimSpace(m[r.leadRe.SubexpIndex("category")]),
		Resolved: true,
	}, true
}

func (r *contextResolver) known(category string) bool {
	return r.vocabulary[category]
}

// tailLines returns the last k non-trailing-blank lines of s.
func tailLines(s string, k int) []string {
	s = strings.TrimRight(s, " \t\r\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if len(lines) > k {
		lines = lines[len(lines)-k:]
	}
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t\r")
	}
	return lines
}

// dropTrailingLines removes the last k lines of s, ignoring trailing blank
// lines.
func dropTrailingLines(s string, k int) string {
	for i := 0; i < k; i++ {
		s = strings.TrimRight(s, " \t\r\n")
		idx := strings.LastIndexByte(s, '\n')
		if idx < 0 {
			return ""
		}
		s = s[:idx]
	}
	return s
}
