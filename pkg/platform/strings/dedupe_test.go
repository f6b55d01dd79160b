package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupe(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{
			name:     "trims and drops blanks",
			input:    []string{"  birth_date ", "", "  ", "id_front"},
			expected: []string{"birth_date", "id_front"},
		},
		{
			name:     "first occurrence wins",
			input:    []string{"id_front", "birth_date", "id_front "},
			expected: []string{"id_front", "birth_date"},
		},
		{
			name:     "preserves case",
			input:    []string{"SSN", "ssn"},
			expected: []string{"SSN", "ssn"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Dedupe(tt.input, nil))
		})
	}
}

func TestFieldNames(t *testing.T) {
	got := FieldNames([]string{" Residential_Address.City", "residential_address.city", "SSN "})
	assert.Equal(t, []string{"residential_address.city", "ssn"}, got)
}
