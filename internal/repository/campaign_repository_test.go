package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text untouched",
			input:    "launch-2024",
			expected: "launch-2024",
		},
		{
			name:     "underscore escaped",
			input:    "q4_2024",
			expected: `q4\_2024`,
		},
		{
			name:     "percent escaped",
			input:    "50% off",
			expected: `50\% off`,
		},
		{
			name:     "backslash escaped",
			input:    `a\b`,
			expected: `a\\b`,
		},
		{
			name:     "mixed metacharacters",
			input:    `_%\`,
			expected: `\_\%\\`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, escapeLike(tt.input))
		})
	}
}
