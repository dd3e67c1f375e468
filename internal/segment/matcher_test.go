// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/quizdeck/pkg/types"
)

func newTestMatcher(t *testing.T, anchored bool) *Matcher {
	t.Helper()
	cfg := types.DefaultConfig().Segment
	cfg.LineAnchored = anchored
	m, err := NewMatcher(cfg)
	require.NoError(t, err)
	return m
}

func TestMatcherBlock(t *testing.T) {
	tests := []struct {
		name      string
		anchored  bool
		text      string
		n         int
		kind      types.Kind
		wantBlock string
		wantOK    bool
	}{
		{
			name:      "multiple choice bounded by next numeral",
			anchored:  true,
			text:      "12PromptA(1)a(2)b(3)c(4)d\n21PromptB(1)e(2)f(3)g(4)h",
			n:         1,
			kind:      types.KindMultipleChoice,
			wantBlock: "12PromptA(1)a(2)b(3)c(4)d",
			wantOK:    true,
		},
		{
			name:     "last block has no lookahead",
			anchored: true,
			text:     "\n21PromptB(1)e(2)f(3)g(4)h",
			n:        2,
			kind:     types.KindMultipleChoice,
		},
		{
			name:      "yes/no block spans wrapped lines",
			anchored:  true,
			text:      "1O first line\ncontinues here\n2X second",
			n:         1,
			kind:      types.KindYesNo,
			wantBlock: "1O first line\ncontinues here",
			wantOK:    true,
		},
		{
			name:      "multi-digit numerals",
			anchored:  true,
			text:      "\n9Oq9\n10Xq10\n11Oq11",
			n:         10,
			kind:      types.KindYesNo,
			wantBlock: "10Xq10",
			wantOK:    true,
		},
		{
			name:     "lookahead must start a line when anchored",
			anchored: true,
			text:     "1O costs 2X dollars",
			n:        1,
			kind:     types.KindYesNo,
		},
		{
			name:      "unanchored numerals mid-line",
			anchored:  false,
			text:      "12PromptA(1)a(2)b(3)c(4)d21PromptB(1)e(2)f(3)g(4)h",
			n:         1,
			kind:      types.KindMultipleChoice,
			wantBlock: "12PromptA(1)a(2)b(3)c(4)d",
			wantOK:    true,
		},
		{
			name:     "unanchored numeral glued to a digit is not a boundary",
			anchored: false,
			text:     "1Oprice is 12X",
			n:        1,
			kind:     types.KindYesNo,
		},
		{
			name:     "wrong marker class",
			anchored: true,
			text:     "1Oyes\n2Xno",
			n:        1,
			kind:     types.KindMultipleChoice,
		},
		{
			name:      "option markers broken by a page join",
			anchored:  true,
			text:      "12Prompt(\n1)a(2\n)b(3)c(4)d\n21Next(1)e(2)f(3)g(4)h",
			n:         1,
			kind:      types.KindMultipleChoice,
			wantBlock: "12Prompt(\n1)a(2\n)b(3)c(4)d",
			wantOK:    true,
		},
		{
			name:     "multiple choice needs all four option markers",
			anchored: true,
			text:     "12Prompt(1)a(2)b\n23Next(1)a(2)b(3)c(4)d",
			n:        1,
			kind:     types.KindMultipleChoice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMatcher(t, tt.anchored)
			start, end, ok := m.Block(tt.text, tt.n, tt.kind)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantBlock, tt.text[start:end])
			}
		})
	}
}

func TestMatcherBound(t *testing.T) {
	m := newTestMatcher(t, true)
	text := "11一(1)a(2)b(3)c(4)d\n22缺少選項\n33三(1)a(2)b(3)c(4)d\n44四"

	_, _, ok := m.Block(text[strings.Index(text, "\n22"):], 2, types.KindMultipleChoice)
	assert.False(t, ok, "block without options has no layout match")

	start, end, ok := m.Bound(text, 2, types.KindMultipleChoice)
	require.True(t, ok)
	assert.Equal(t, "22缺少選項", text[start:end])

	_, _, ok = m.Bound(text, 4, types.KindMultipleChoice)
	assert.False(t, ok, "last block has no lookahead")
}

func TestMatcherReopens(t *testing.T) {
	m := newTestMatcher(t, true)
	assert.False(t, m.Reopens("33三(1)a(2)b(3)c(4)d", 3, types.KindMultipleChoice))
	assert.True(t, m.Reopens("31條之規定(1)a\n32三(1)a", 3, types.KindMultipleChoice))
	assert.False(t, m.Reopens("", 3, types.KindMultipleChoice))

	loose := newTestMatcher(t, false)
	assert.True(t, loose.Reopens("1Oprice 1X", 1, types.KindYesNo))
	assert.False(t, loose.Reopens("1Oprice 11X", 1, types.KindYesNo))
}

func TestMatcherFields(t *testing.T) {
	tests := []struct {
		name   string
		block  string
		n      int
		kind   types.Kind
		want   Fields
		wantOK bool
	}{
		{
			name:  "multiple choice with citation",
			block: "12採購之定義為何？(1)甲(2)乙(3)丙(4)丁第 2 條",
			n:     1,
			kind:  types.KindMultipleChoice,
			want: Fields{
				Answer:    "2",
				Prompt:    "採購之定義為何？",
				Options:   []string{"甲", "乙", "丙", "丁"},
				Reference: "第 2 條",
			},
			wantOK: true,
		},
		{
			name:  "multiple choice without citation",
			block: "23PromptB(1)e(2)f(3)g(4)h",
			n:     2,
			kind:  types.KindMultipleChoice,
			want: Fields{
				Answer:  "3",
				Prompt:  "PromptB",
				Options: []string{"e", "f", "g", "h"},
			},
			wantOK: true,
		},
		{
			name:  "general reference token",
			block: "74綜合題(1)a(2)b(3)c(4)d 綜合",
			n:     7,
			kind:  types.KindMultipleChoice,
			want: Fields{
				Answer:    "4",
				Prompt:    "綜合題",
				Options:   []string{"a", "b", "c", "d"},
				Reference: "綜合",
			},
			wantOK: true,
		},
		{
			name:  "yes/no with sub-article citation",
			block: "3X機關得不經公告程序。第22條之1",
			n:     3,
			kind:  types.KindYesNo,
			want: Fields{
				Answer:    "X",
				Prompt:    "機關得不經公告程序。",
				Reference: "第22條之1",
			},
			wantOK: true,
		},
		{
			name:   "yes/no without citation",
			block:  "12O十二題",
			n:      12,
			kind:   types.KindYesNo,
			want:   Fields{Answer: "O", Prompt: "十二題"},
			wantOK: true,
		},
		{
			name:  "missing option marker",
			block: "12Prompt(1)a(2)b(4)d",
			n:     1,
			kind:  types.KindMultipleChoice,
		},
		{
			name:  "wrong number",
			block: "2OPrompt",
			n:     1,
			kind:  types.KindYesNo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMatcher(t, true)
			got, ok := m.Fields(tt.block, tt.n, tt.kind)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestMatcherLeading(t *testing.T) {
	m := newTestMatcher(t, true)

	kind, ok := m.Leading("\n13Prompt(1)a")
	require.True(t, ok)
	assert.Equal(t, types.KindMultipleChoice, kind)

	kind, ok = m.Leading("1XPrompt")
	require.True(t, ok)
	assert.Equal(t, types.KindYesNo, kind)

	_, ok = m.Leading("header text")
	assert.False(t, ok)

	// Patterns are compiled once per kind, not per call.
	before := m.leading[types.KindYesNo]
	m.Leading("2Oq")
	assert.Same(t, before, m.leading[types.KindYesNo])
	assert.Len(t, m.leading, 2)
}

func TestNewMatcherRejectsBadConfig(t *testing.T) {
	cfg := types.DefaultConfig().Segment
	cfg.YesNoMarkers = []string{"O"}
	_, err := NewMatcher(cfg)
	assert.Error(t, err)

	cfg = types.DefaultConfig().Segment
	cfg.ReferencePattern = `第(`
	_, err = NewMatcher(cfg)
	assert.ErrorContains(t, err, "reference pattern")
}

func TestStripLineBreaks(t *testing.T) {
	assert.Equal(t, "abc", stripLineBreaks("a\nb\r\nc"))
}
