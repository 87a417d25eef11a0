package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/graft/pkg/models"
)

func TestEdgeType(t *testing.T) {
	tests := []struct {
		name       string
		categoryID int
		expected   string
	}{
		{"position", models.CategoryPosition, "POSITION"},
		{"donation", models.CategoryDonation, "DONATION"},
		{"slash is stripped", models.CategoryTransaction, "SERVICETRANSACTION"},
		{"generic", models.CategoryGeneric, "GENERIC"},
		{"unknown category falls back", 999, "GENERIC"},
		{"zero category falls back", 0, "GENERIC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EdgeType(tt.categoryID))
		})
	}
}
