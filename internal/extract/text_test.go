package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only whitespace", "   \n  \n  ", ""},
		{"headings lose indentation", "  # Title\n## Subtitle\nContent", "# Title\n## Subtitle\nContent"},
		{"bullets keep indentation", "- Item 1\n  - Nested\n* Item 3", "- Item 1\n  - Nested\n* Item 3"},
		{"inner spaces collapse", "Line    with    spaces", "Line with spaces"},
		{"blank runs collapse", "Line 1\n\n\n\n\nLine 2", "Line 1\n\nLine 2"},
		{"line endings normalized", "A\r\nB\rC\nD", "A\nB\nC\nD"},
		{"trailing whitespace trimmed", "Skills:\t \nGo", "Skills:\nGo"},
		{"unicode preserved", "Résumé 🚀  spéciàl", "Résumé 🚀 spéciàl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestCleanText_Deterministic(t *testing.T) {
	input := "Test   content\n\n\nMore   text"
	assert.Equal(t, CleanText(input), CleanText(input))
}
