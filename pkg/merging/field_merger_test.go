package merging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldMerger_MergeFields(t *testing.T) {
	merger := NewFieldMerger()

	tests := []struct {
		name        string
		dest        map[string]any
		source      map[string]any
		expected    map[string]any
		wantChanged bool
	}{
		{
			name:        "source fills missing field",
			dest:        map[string]any{"sec_cik": "0000320193"},
			source:      map[string]any{"employees": float64(160000)},
			expected:    map[string]any{"sec_cik": "0000320193", "employees": float64(160000)},
			wantChanged: true,
		},
		{
			name:        "destination value wins",
			dest:        map[string]any{"employees": float64(160000)},
			source:      map[string]any{"employees": float64(1)},
			expected:    map[string]any{"employees": float64(160000)},
			wantChanged: false,
		},
		{
			name:        "source fills nil destination value",
			dest:        map[string]any{"ticker": nil},
			source:      map[string]any{"ticker": "AAPL"},
			expected:    map[string]any{"ticker": "AAPL"},
			wantChanged: true,
		},
		{
			name:        "nil source values are ignored",
			dest:        map[string]any{},
			source:      map[string]any{"ticker": nil},
			expected:    map[string]any{},
			wantChanged: false,
		},
		{
			name:        "empty source changes nothing",
			dest:        map[string]any{"ticker": "AAPL"},
			source:      map[string]any{},
			expected:    map[string]any{"ticker": "AAPL"},
			wantChanged: false,
		},
		{
			name:        "nil maps merge to empty",
			dest:        nil,
			source:      nil,
			expected:    map[string]any{},
			wantChanged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, changed := merger.MergeFields(tt.dest, tt.source)
			assert.Equal(t, tt.expected, result)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

func TestFieldMerger_DoesNotMutateInputs(t *testing.T) {
	merger := NewFieldMerger()

	dest := map[string]any{"a": 1}
	source := map[string]any{"b": 2}

	merger.MergeFields(dest, source)

	assert.Equal(t, map[string]any{"a": 1}, dest)
	assert.Equal(t, map[string]any{"b": 2}, source)
}
