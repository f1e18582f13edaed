package core

import (
	"ornithe-installer/internal/jsondoc"
)

// MergeConflict describes a secondary value that was dropped because the
// primary document already held a different value at Path.
type MergeConflict struct {
	Path      string
	Primary   jsondoc.Kind
	Secondary jsondoc.Kind
}

// MergeReport receives every conflict found while merging. It may be nil.
type MergeReport func(conflict MergeConflict)

// MergeDocuments folds secondary into primary and returns primary. Keys
// missing from primary are copied in after its existing keys, equal values
// are skipped, nested objects are merged recursively and any other
// disagreement keeps the primary value. Arrays are compared as a whole.
func MergeDocuments(primary *jsondoc.Value, secondary *jsondoc.Value, report MergeReport) *jsondoc.Value {
	if !primary.IsObject() || !secondary.IsObject() {
		return primary
	}
	mergeObject(primary, secondary, "", report)
	return primary
}

func mergeObject(primary *jsondoc.Value, secondary *jsondoc.Value, path string, report MergeReport) {
	for _, key := range secondary.Keys() {
		incoming, _ := secondary.Get(key)
		existing, ok := primary.Get(key)
		if !ok {
			primary.Set(key, incoming.Clone())
			continue
		}
		if existing.Equal(incoming) {
			continue
		}
		childPath := joinPath(path, key)
		if existing.IsObject() && incoming.IsObject() {
			mergeObject(existing, incoming, childPath, report)
			continue
		}
		if report != nil {
			report(MergeConflict{Path: childPath, Primary: existing.Kind(), Secondary: incoming.Kind()})
		}
	}
}

func joinPath(parent string, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
