package permissions

import (
	"fmt"
	"sort"
)

// Update modes for restricted-tag grant sets.
const (
	ModeUnion      = "union"
	ModeDifference = "difference"
)

// ErrInvalidOperation is returned for an unknown grant update mode.
type ErrInvalidOperation struct {
	Mode string
}

func (e *ErrInvalidOperation) Error() string {
	return fmt.Sprintf("invalid tag grant operation %q", e.Mode)
}

// UpdateTagGrants applies a set operation to a user's restricted-tag
// grants: union adds the delta, difference removes it. The result is
// deduplicated and sorted.
func UpdateTagGrants(current, delta []int64, mode string) ([]int64, error) {
	set := make(map[int64]bool, len(current))
	for _, id := range current {
		set[id] = true
	}

	switch mode {
	case ModeUnion:
		for _, id := range delta {
			set[id] = true
		}
	case ModeDifference:
		for _, id := range delta {
			delete(set, id)
		}
	default:
		return nil, &ErrInvalidOperation{Mode: mode}
	}

	result := make([]int64, 0, len(set))
	for id := range set {
		result = append(result, id)
	}
	sort.Slice(result, func(a, b int) bool { return result[a] < result[b] })
	return result, nil
}
