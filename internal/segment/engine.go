// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package segment recovers question records from the page text of the
// procurement-law quiz document.
//
// The document is a flat list of numbered questions split into runs. Each
// run (one category, one kind) starts after a table title banner and
// numbers its questions from 1. Page breaks fall anywhere, so the engine
// buffers a run's text across pages and cuts question blocks out of the
// buffer as soon as the next question's numeral bounds them.
package segment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/pdiddy/quizdeck/pkg/types"
)

// PageSource yields page text in document order. Next returns io.EOF
// after the last page.
type PageSource interface {
	Next() (string, error)
}

// Result holds everything recovered from one document.
type Result struct {
	Records []types.QuestionRecord
	Runs    []types.RunSummary

	// FirstPage is the raw text of page one, which carries the
	// generation date.
	FirstPage string

	// Warnings collects the recoverable errors reported during parsing.
	Warnings []error
}

// Engine turns a page stream into question records. An Engine is not
// safe for concurrent use; run one Parse at a time.
type Engine struct {
	matcher  *Matcher
	resolver *contextResolver
	banner   *regexp.Regexp
	labels   map[types.Kind]string
}

// New builds an Engine from the segment configuration.
func New(cfg types.SegmentConfig) (*Engine, error) {
	if cfg.MultipleChoiceLabel == "" || cfg.YesNoLabel == "" {
		return nil, errors.New("kind labels must not be empty")
	}
	if cfg.BannerPattern == "" {
		return nil, errors.New("banner pattern must not be empty")
	}
	banner, err := regexp.Compile(cfg.BannerPattern)
	if err != nil {
		return nil, fmt.Errorf("compiling banner pattern: %w", err)
	}
	m, err := NewMatcher(cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{
		matcher:  m,
		resolver: newContextResolver(cfg),
		banner:   banner,
		labels: map[types.Kind]string{
			types.KindMultipleChoice: cfg.MultipleChoiceLabel,
			types.KindYesNo:          cfg.YesNoLabel,
		},
	}, nil
}

// Label returns the document's wording for a kind (e.g. "選擇題").
func (e *Engine) Label(k types.Kind) string {
	return e.labels[k]
}

// Parse reads src to the end and returns the recovered records in
// document order. Per-run progress and recoverable problems are written
// to w. Only a *StructuralError or a page read failure is returned.
func (e *Engine) Parse(ctx context.Context, src PageSource, w io.Writer) (*Result, error) {
	p := &parser{e: e, w: w, res: &Result{}}

	for page := 1; ; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		text, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading page %d: %w", page, err)
		}
		if page == 1 {
			p.res.FirstPage = text
		}
		if err := p.feed(text); err != nil {
			return nil, err
		}
	}

	if err := p.closeRun(); err != nil {
		return nil, err
	}
	if len(p.res.Records) == 0 {
		return nil, &StructuralError{
			Run:    p.runs,
			Kind:   p.run.kind,
			Reason: "no question boundary found in document",
		}
	}
	return p.res, nil
}

// runState is the parse context of the open run. reset, append, and
// advance are its only mutators.
type runState struct {
	open     bool
	category string
	kind     types.Kind

	// pending is the run's accumulated text; cursor marks the end of the
	// last consumed block.
	pending string
	cursor  int
	next    int

	located bool
	summary types.RunSummary
}

func (s *runState) reset(category string, kind types.Kind) {
	*s = runState{
		open:     true,
		category: category,
		kind:     kind,
		next:     1,
		summary:  types.RunSummary{Category: category, Kind: kind},
	}
}

func (s *runState) append(text string) {
	if s.pending == "" {
		s.pending = text
		return
	}
	s.pending += "\n" + text
}

func (s *runState) advance(end int) {
	s.cursor = end
	s.next++
}

// parser carries the state of a single Parse call.
type parser struct {
	e   *Engine
	w   io.Writer
	res *Result

	run  runState
	runs int

	// preamble is the document text before the first banner.
	preamble     string
	lastCategory string
	succeeded    bool
}

// feed splits a page at its banners: text before a banner closes the open
// run, text after it starts the next one.
func (p *parser) feed(page string) error {
	rest := page
	for {
		loc := p.e.banner.FindStringIndex(rest)
		if loc == nil {
			p.appendText(rest)
			p.drain(false)
			return nil
		}

		lead := rest[:loc[0]]
		rest = rest[loc[1]:]
		rc := p.e.resolver.resolve(lead, p.currentText())
		if !rc.Resolved {
			if k, ok := p.e.matcher.Leading(rest); ok {
				rc.Kind = k
			}
		}
		p.appendText(lead)
		p.stripLead(rc.leadLines())

		if err := p.closeRun(); err != nil {
			return err
		}
		p.openRun(rc)
	}
}

func (p *parser) currentText() string {
	if p.run.open {
		return p.run.pending
	}
	return p.preamble
}

func (p *parser) appendText(text string) {
	if text == "" {
		return
	}
	if p.run.open {
		p.run.append(text)
		return
	}
	if p.preamble == "" {
		p.preamble = text
	} else {
		p.preamble += "\n" + text
	}
}

// stripLead removes the category and kind label lines printed above a
// banner from the end of the previous text, wherever the page break fell.
func (p *parser) stripLead(lines int) {
	if lines == 0 {
		return
	}
	if !p.run.open {
		p.preamble = dropTrailingLines(p.preamble, lines)
		return
	}
	trimmed := dropTrailingLines(p.run.pending, lines)
	if len(trimmed) < p.run.cursor {
		trimmed = p.run.pending[:p.run.cursor]
	}
	p.run.pending = trimmed
}

func (p *parser) openRun(rc runContext) {
	category := ""
	switch {
	case !rc.Resolved:
		p.warn(&ContextMismatchError{Kind: rc.Kind})
	case p.e.resolver.known(rc.Label):
		category = rc.Label
	case rc.Kind == types.KindYesNo && p.lastCategory != "":
		// Yes/no sections carry no category line; they follow the
		// multiple-choice section of the same category.
		category = p.lastCategory
	default:
		p.warn(&ContextMismatchError{Label: rc.Label, Kind: rc.Kind})
	}

	p.runs++
	p.run.reset(category, rc.Kind)
	p.lastCategory = category
}

// drain emits every block of the open run that is already bounded by its
// successor's numeral. Unbounded text waits for the next page. final is set
// once the run has no more text coming.
func (p *parser) drain(final bool) {
	s := &p.run
	if !s.open {
		return
	}
	for {
		start, end, ok := p.locate(s.pending[s.cursor:], final)
		if !ok {
			return
		}
		s.located = true
		p.emit(s.pending[s.cursor+start : s.cursor+end])
		s.advance(s.cursor + end)
	}
}

// locate finds the block of the run's next question in text. A block
// whose body lacks the kind's layout is cut at the first numeral N+1 once
// the text after that cut reads as question N+1; until then it waits.
func (p *parser) locate(text string, final bool) (start, end int, ok bool) {
	m, n, kind := p.e.matcher, p.run.next, p.run.kind
	start, end, ok = m.Block(text, n, kind)
	bs, be, bounded := m.Bound(text, n, kind)
	if !bounded || (ok && be >= end) {
		return start, end, ok
	}
	if p.continues(text[be:], n+1, final) {
		return bs, be, true
	}
	if !final {
		return 0, 0, false
	}
	return start, end, ok
}

// continues reports whether text opens with question n: a well-formed
// block, a chain of bounded blocks, or on the final pass a trailing block
// whose fields parse. A candidate in which numeral n starts twice is
// rejected.
func (p *parser) continues(text string, n int, final bool) bool {
	m, kind := p.e.matcher, p.run.kind
	lead := len(text) - len(strings.TrimLeft(text, "\n"))
	if start, end, ok := m.Block(text, n, kind); ok && start == lead && !m.Reopens(text[start:end], n, kind) {
		return true
	}
	if start, end, ok := m.Bound(text, n, kind); ok && start == lead && !m.Reopens(text[start:end], n, kind) {
		return p.continues(text[end:], n+1, final)
	}
	if !final || m.Reopens(text[lead:], n, kind) {
		return false
	}
	_, ok := m.Fields(strings.TrimSpace(stripLineBreaks(text)), n, kind)
	return ok
}

// closeRun drains the open run, parses its trailing block without a
// lookahead, and records the run summary.
func (p *parser) closeRun() error {
	s := &p.run
	if !s.open {
		return nil
	}
	p.drain(true)

	raw := s.pending[s.cursor:]
	if rest := strings.TrimSpace(stripLineBreaks(raw)); rest != "" {
		// A numeral N+1 left in the tail means it holds more than one
		// block; it is dropped rather than read as a single record.
		_, _, bounded := p.e.matcher.Bound(raw, s.next, s.kind)
		if f, ok := p.e.matcher.Fields(rest, s.next, s.kind); ok && !bounded {
			s.located = true
			p.record(f)
			s.next++
		} else if s.located || bounded {
			s.located = true
			p.drop(rest)
			s.next++
		}
	}

	if !s.located {
		err := &StructuralError{
			Run:      p.runs,
			Category: s.category,
			Kind:     s.kind,
			Reason:   fmt.Sprintf("no block for question 1 in %d bytes of run text", len(s.pending)),
		}
		if p.succeeded {
			return err
		}
		p.warn(err)
	}

	s.summary.Highest = s.next - 1
	p.res.Runs = append(p.res.Runs, s.summary)
	if s.summary.Emitted > 0 {
		p.succeeded = true
	}
	fmt.Fprintf(p.w, "parsed  %s_%s: %d questions", categoryOrUnset(s.category), p.e.Label(s.kind), s.summary.Emitted)
	if s.summary.Dropped > 0 {
		fmt.Fprintf(p.w, " (%d dropped)", s.summary.Dropped)
	}
	fmt.Fprintln(p.w)

	s.open = false
	return nil
}

// emit extracts the fields of a bounded block and records it, or reports
// and drops it.
func (p *parser) emit(block string) {
	text := strings.TrimSpace(stripLineBreaks(block))
	if f, ok := p.e.matcher.Fields(text, p.run.next, p.run.kind); ok {
		p.record(f)
		return
	}
	p.drop(text)
}

func (p *parser) record(f Fields) {
	s := &p.run
	rec := types.QuestionRecord{
		Kind:           types.KindForAnswer(f.Answer),
		Answer:         f.Answer,
		Prompt:         f.Prompt,
		Options:        f.Options,
		Category:       s.category,
		LegalReference: f.Reference,
		SequenceNumber: s.next,
	}
	p.res.Records = append(p.res.Records, rec)
	s.summary.Emitted++
}

func (p *parser) drop(block string) {
	s := &p.run
	s.summary.Dropped++
	p.warn(&FieldMismatchError{
		Category: s.category,
		Kind:     s.kind,
		Number:   s.next,
		Block:    block,
	})
}

func (p *parser) warn(err error) {
	p.res.Warnings = append(p.res.Warnings, err)
	fmt.Fprintf(p.w, "warning: %v\n", err)
}
