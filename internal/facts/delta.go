package facts

// Delta is the row-level difference between two fact snapshots.
type Delta struct {
	Added   Tables `json:"added"`
	Removed Tables `json:"removed"`
}

// ComputeDelta compares two snapshots relation by relation. Rows are
// compared by value; ordering within a relation does not matter.
func ComputeDelta(prev, next Tables) Delta {
	var d Delta
	d.Added.Instructions, d.Removed.Instructions = diffRows(prev.Instructions, next.Instructions)
	d.Added.Fields, d.Removed.Fields = diffRows(prev.Fields, next.Fields)
	d.Added.Segments, d.Removed.Segments = diffRows(prev.Segments, next.Segments)
	d.Added.Diagnostics, d.Removed.Diagnostics = diffRows(prev.Diagnostics, next.Diagnostics)
	return d
}

func diffRows[T comparable](prev, next []T) (added, removed []T) {
	prevSet := make(map[T]bool, len(prev))
	for _, row := range prev {
		prevSet[row] = true
	}
	nextSet := make(map[T]bool, len(next))
	for _, row := range next {
		nextSet[row] = true
	}

	for _, row := range next {
		if !prevSet[row] {
			added = append(added, row)
		}
	}
	for _, row := range prev {
		if !nextSet[row] {
			removed = append(removed, row)
		}
	}
	return added, removed
}
