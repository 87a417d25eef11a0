package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUpdateActions(t *testing.T) {
	tests := []struct {
		name     string
		client   []int64
		server   []int64
		expected UpdateActions
	}{
		{
			name:     "disjoint sets swap entirely",
			client:   []int64{1, 2},
			server:   []int64{3},
			expected: UpdateActions{Add: []int64{1, 2}, Remove: []int64{3}},
		},
		{
			name:     "overlap is ignored",
			client:   []int64{1, 2, 3},
			server:   []int64{2, 3, 4},
			expected: UpdateActions{Ignore: []int64{2, 3}, Add: []int64{1}, Remove: []int64{4}},
		},
		{
			name:     "identical sets",
			client:   []int64{5, 6},
			server:   []int64{5, 6},
			expected: UpdateActions{Ignore: []int64{5, 6}},
		},
		{
			name:     "empty client removes everything",
			client:   nil,
			server:   []int64{1, 2},
			expected: UpdateActions{Remove: []int64{1, 2}},
		},
		{
			name:     "empty server adds everything",
			client:   []int64{1},
			server:   nil,
			expected: UpdateActions{Add: []int64{1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseUpdateActions(tt.client, tt.server))
		})
	}
}
