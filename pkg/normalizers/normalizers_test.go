package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"(212) 555-1234", "2125551234"},
		{"+1 212.555.1234", "12125551234"},
		{"212 555 1234 ext 9", "21255512349"},
		{"no digits", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhone(tt.input))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "john@example.com", NormalizeEmail("  John@Example.COM "))
	assert.Equal(t, "a@b.co", NormalizeEmail("a@b.co"))
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "John Doe", "john doe"},
		{"drops suffix", "John Doe Jr.", "john doe"},
		{"drops roman numeral suffix", "John Doe III", "john doe"},
		{"strips punctuation", "O'Brien, Patrick", "obrien patrick"},
		{"collapses whitespace", "John   Q.   Public", "john q public"},
		{"keeps digits", "3M Company", "3m company"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeName(tt.input))
		})
	}
}

func TestApply(t *testing.T) {
	assert.Equal(t, "2125551234", Apply("(212) 555-1234", "nphone"))
	assert.Equal(t, "x@y.co", Apply(" X@Y.CO", "nemail"))

	// Unknown normalizers pass the value through.
	assert.Equal(t, "As-Is", Apply("As-Is", "missing"))
}
