// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns question records into flashcard front/back HTML.
package render

import (
	"html"
	"strconv"
	"strings"

	"github.com/pdiddy/quizdeck/pkg/types"
)

const (
	answerRule      = "<hr id=answer>"
	referencePrefix = "<br>依據法源: "
	blank           = "(&ensp;)"
)

// Labels maps each kind to the wording used in card tags.
type Labels map[types.Kind]string

// DefaultLabels returns the kind labels of the configured document.
func DefaultLabels(cfg types.SegmentConfig) Labels {
	return Labels{
		types.KindMultipleChoice: cfg.MultipleChoiceLabel,
		types.KindYesNo:          cfg.YesNoLabel,
	}
}

// Render builds the card for q.
func Render(q types.QuestionRecord, labels Labels) types.Card {
	return types.Card{
		Front:          Front(q),
		Back:           Back(q),
		Tag:            Tag(q, labels),
		SequenceNumber: q.SequenceNumber,
	}
}

// RenderAll renders records in order.
func RenderAll(records []types.QuestionRecord, labels Labels) []types.Card {
	cards := make([]types.Card, len(records))
	for i, q := range records {
		cards[i] = Render(q, labels)
	}
	return cards
}

// Front is the question side: a blank answer slot, the prompt, and for
// multiple choice the numbered options.
func Front(q types.QuestionRecord) string {
	var b strings.Builder
	b.WriteString(blank)
	b.WriteString(strong(q.Prompt))
	if q.Kind != types.KindMultipleChoice {
		return b.String()
	}
	b.WriteString("<hr>")
	for i, opt := range q.Options {
		b.WriteString(option(i+1, opt))
		b.WriteString("<br>")
	}
	return b.String()
}

// Back repeats the question with the answer filled in. The correct option
// of a multiple-choice question is set in bold; the legal reference, when
// present, closes the card.
func Back(q types.QuestionRecord) string {
	ans := html.EscapeString(q.Answer)

	var b strings.Builder
	if q.Kind == types.KindMultipleChoice {
		b.WriteString("(" + ans + ")")
		b.WriteString(strong(q.Prompt))
		b.WriteString(answerRule)
		for i, opt := range q.Options {
			n := i + 1
			if strconv.Itoa(n) == q.Answer {
				b.WriteString("<b>" + option(n, opt) + "</b>")
			} else {
				b.WriteString(option(n, opt))
			}
			b.WriteString("<br>")
		}
	} else {
		b.WriteString("( " + ans + " )")
		b.WriteString(strong(q.Prompt))
		b.WriteString(answerRule)
		b.WriteString(ans + "<br>")
	}

	if q.LegalReference != "" {
		b.WriteString(referencePrefix)
		b.WriteString(html.EscapeString(q.LegalReference))
	}
	return b.String()
}

// Tag is "<category>_<kind label>". Records without a category are tagged
// with the kind label alone. Anki splits tags on whitespace, so spaces
// become underscores.
func Tag(q types.QuestionRecord, labels Labels) string {
	label := labels[q.Kind]
	if label == "" {
		label = string(q.Kind)
	}
	tag := label
	if q.Category != "" {
		tag = q.Category + "_" + label
	}
	return strings.Join(strings.Fields(tag), "_")
}

// AnswerFromBack recovers the answer token from a rendered back side: the
// number of the bold option, or the marker printed after the answer rule.
func AnswerFromBack(back string) (string, bool) {
	_, after, ok := strings.Cut(back, answerRule)
	if !ok {
		return "", false
	}
	if _, bold, ok := strings.Cut(after, "<b>("); ok {
		n, _, ok := strings.Cut(bold, ")")
		if !ok || n == "" {
			return "", false
		}
		return n, true
	}
	ans, _, ok := strings.Cut(after, "<br>")
	if !ok || ans == "" {
		return "", false
	}
	return html.UnescapeString(ans), true
}

func strong(text string) string {
	return "<strong>" + html.EscapeString(text) + "</strong>"
}

func option(n int, text string) string {
	return "(" + strconv.Itoa(n) + ")" + html.EscapeString(text)
}
