package merging

// FieldMerger combines extension field maps during a merge. The destination
// always wins; source values only fill destination fields that are nil or
// absent.
type FieldMerger struct{}

// NewFieldMerger creates a new field merger
func NewFieldMerger() *FieldMerger {
	return &FieldMerger{}
}

// MergeFields returns the combined field map and whether the destination
// gained any values.
func (m *FieldMerger) MergeFields(dest, source map[string]any) (map[string]any, bool) {
	result := make(map[string]any, len(dest)+len(source))
	for field, value := range dest {
		result[field] = value
	}

	changed := false
	for field, value := range source {
		if value == nil {
			continue
		}
		if existing, ok := result[field]; !ok || existing == nil {
			result[field] = value
			changed = true
		}
	}

	return result, changed
}
