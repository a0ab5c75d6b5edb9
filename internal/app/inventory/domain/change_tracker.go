package domain

import "slices"

// ChangeTracker is the set of columns an aggregate modified since it was
// loaded or last persisted. Stores use it to write only those columns.
type ChangeTracker struct {
	fields []string
}

func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{}
}

// MarkDirty adds fields to the set. Marking a field twice is a no-op.
func (ct *ChangeTracker) MarkDirty(fields ...string) {
	for _, f := range fields {
		if !slices.Contains(ct.fields, f) {
			ct.fields = append(ct.fields, f)
		}
	}
}

// Dirty reports whether any of fields was modified.
func (ct *ChangeTracker) Dirty(fields ...string) bool {
	return slices.ContainsFunc(fields, func(f string) bool {
		return slices.Contains(ct.fields, f)
	})
}

func (ct *ChangeTracker) HasChanges() bool {
	return len(ct.fields) > 0
}

// Fields returns the modified fields in the order they were first marked.
func (ct *ChangeTracker) Fields() []string {
	return slices.Clone(ct.fields)
}

// Reset empties the set after a successful write.
func (ct *ChangeTracker) Reset() {
	ct.fields = ct.fields[:0]
}
