package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Person", "Person"},
		{"Org", "Org"},
		{"Some Label", "SomeLabel"},
		{"drop;cypher", "dropcypher"},
		{"with_underscore_9", "with_underscore_9"},
		{"", "Entity"},
		{"!!!", "Entity"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeLabel(tt.input))
		})
	}
}
