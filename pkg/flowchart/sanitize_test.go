package flowchart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "trims whitespace",
			input:    "  \n[('a', 'A', 'block', [])]\n\n",
			expected: "[('a', 'A', 'block', [])]",
		},
		{
			name:     "adds missing closing bracket",
			input:    "[('a','A','block',[])",
			expected: "[('a','A','block',[])]",
		},
		{
			name:     "extracts fenced block with language tag",
			input:    "```python\n[('a', 'A', 'block', [])]\n```",
			expected: "[('a', 'A', 'block', [])]",
		},
		{
			name:     "extracts fenced block without language tag",
			input:    "```\n[('a', 'A', 'block', [])]\n```\nHope this helps!",
			expected: "[('a', 'A', 'block', [])]",
		},
		{
			name:     "unterminated fence",
			input:    "```json\n[('a', 'A', 'block', [])]",
			expected: "[('a', 'A', 'block', [])]",
		},
		{
			name:     "bare language tag",
			input:    "python\n[('a', 'A', 'block', [])]",
			expected: "[('a', 'A', 'block', [])]",
		},
		{
			name:     "inserts comma between tuples on separate lines",
			input:    "[\n('a', 'A', 'block', [])\n('b', 'B', 'block', [])\n]",
			expected: "[\n('a', 'A', 'block', []),\n('b', 'B', 'block', [])\n]",
		},
		{
			name:     "keeps parentheses inside a single line",
			input:    "[('a', 'Check (x) (y)', 'block', [])]",
			expected: "[('a', 'Check (x) (y)', 'block', [])]",
		},
		{
			name:     "all repairs at once",
			input:    "```python\n[\n  ('a', 'A', 'block', [('b', 'Next')])\n  ('b', 'B', 'block', [])\n```",
			expected: "[\n  ('a', 'A', 'block', [('b', 'Next')]),\n('b', 'B', 'block', [])]",
		},
		{
			name:     "prose is left alone",
			input:    "not a flowchart at all",
			expected: "not a flowchart at all",
		},
		{
			name:     "empty input",
			input:    "   ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sanitize(tt.input))
		})
	}
}

func TestSanitizeReport(t *testing.T) {
	t.Run("no repairs on clean input", func(t *testing.T) {
		_, repairs := SanitizeReport("[('a', 'A', 'block', [])]")
		assert.Empty(t, repairs)
	})

	t.Run("repairs listed in order", func(t *testing.T) {
		_, repairs := SanitizeReport("```python\n[('a', 'A', 'block', [])\n('b', 'B', 'block', [])\n```")
		assert.Equal(t, []Repair{
			RepairCodeFence,
			RepairLanguageTag,
			RepairClosingBracket,
			RepairMissingComma,
		}, repairs)
	})
}
