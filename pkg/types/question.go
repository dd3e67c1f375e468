// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model of the quizdeck pipeline:
// question records, rendered cards, run summaries, and configuration.
package types

import "fmt"

// Kind distinguishes the two question shapes found in the quiz document.
type Kind string

const (
	KindMultipleChoice Kind = "multiple_choice"
	KindYesNo          Kind = "yes_no"
)

// OptionCount is the number of options every multiple-choice question carries.
const OptionCount = 4

// KindForAnswer derives the question kind from the answer token: a digit
// 1-4 means multiple choice, anything else is a yes/no marker.
func KindForAnswer(answer string) Kind {
	if len(answer) == 1 && answer[0] >= '1' && answer[0] <= '4' {
		return KindMultipleChoice
	}
	return KindYesNo
}

// QuestionRecord is one recovered question, independent of its source layout.
type QuestionRecord struct {
	// Kind is derived from the answer token.
	Kind Kind `json:"kind" yaml:"kind"`

	// Answer is "1".."4" for multiple choice, or a yes/no marker (e.g. "O", "X").
	Answer string `json:"answer" yaml:"answer"`

	// Prompt is the question text with embedded line breaks removed.
	Prompt string `json:"prompt" yaml:"prompt"`

	// Options holds exactly four entries for multiple choice and is nil for yes/no.
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`

	// Category is the subject-matter label. Empty when the run's banner
	// did not resolve to a known category.
	Category string `json:"category" yaml:"category"`

	// LegalReference is the trailing citation (e.g. "第 22 條"), empty when absent.
	LegalReference string `json:"legal_reference,omitempty" yaml:"legal_reference,omitempty"`

	// SequenceNumber is the 1-based position within the record's run.
	SequenceNumber int `json:"sequence_number" yaml:"sequence_number"`
}

// Validate checks the options invariant: four options iff multiple choice.
func (q QuestionRecord) Validate() error {
	switch q.Kind {
	case KindMultipleChoice:
		if len(q.Options) != OptionCount {
			return fmt.Errorf("question %d: multiple choice needs %d options, has %d",
				q.SequenceNumber, OptionCount, len(q.Options))
		}
	case KindYesNo:
		if len(q.Options) != 0 {
			return fmt.Errorf("question %d: yes/no question has %d options", q.SequenceNumber, len(q.Options))
		}
	default:
		return fmt.Errorf("question %d: unknown kind %q", q.SequenceNumber, q.Kind)
	}
	if q.SequenceNumber < 1 {
		return fmt.Errorf("sequence number %d out of range", q.SequenceNumber)
	}
	return nil
}

// RunSummary describes one closed run: a maximal sequence of questions
// sharing a category and a kind.
type RunSummary struct {
	Category string `json:"category" yaml:"category"`
	Kind     Kind   `json:"kind" yaml:"kind"`

	// Highest is the highest sequence number reached in the run.
	Highest int `json:"highest" yaml:"highest"`

	// Emitted counts records produced; Dropped counts blocks whose fields
	// failed to extract.
	Emitted int `json:"emitted" yaml:"emitted"`
	Dropped int `json:"dropped" yaml:"dropped"`
}

// Card is the rendered front/back pair for one question.
type Card struct {
	Front          string `json:"front" yaml:"front"`
	Back           string `json:"back" yaml:"back"`
	Tag            string `json:"tag" yaml:"tag"`
	SequenceNumber int    `json:"sequence_number" yaml:"sequence_number"`
}
