package evidence

// Classify infers the custody action for one ledger transaction given its
// immediate chronological predecessor for the same asset (nil for the
// oldest record). It is pure and keeps no state across calls.
//
// The created_at == updated_at rule takes precedence over the owner
// comparison: an asset deleted and recreated under the same id classifies
// as Created, never Transferred, regardless of who owned it before the
// gap.
func Classify(e HistoryEntry, prev *HistoryEntry) Action {
	if e.IsDelete {
		return Deleted
	}
	if e.Snapshot == nil {
		// Non-delete entries always carry a snapshot on a well-formed
		// ledger; without one there is nothing to diff.
		return Updated
	}
	if e.Snapshot.CreatedAt == e.Snapshot.UpdatedAt {
		return Created
	}
	if prev != nil && prev.Snapshot != nil && e.Snapshot.Owner != prev.Snapshot.Owner {
		return Transferred
	}
	return Updated
}

// ClassifyHistory reverses a newest-first per-asset history into
// chronological order and classifies every entry against its immediate
// chronological predecessor within that asset.
func ClassifyHistory(newestFirst []HistoryEntry) []ClassifiedEntry {
	chrono := make([]HistoryEntry, len(newestFirst))
	for i, e := range newestFirst {
		chrono[len(newestFirst)-1-i] = e
	}

	out := make([]ClassifiedEntry, len(chrono))
	var prev *HistoryEntry
	for i := range chrono {
		out[i] = ClassifiedEntry{
			HistoryEntry: chrono[i],
			Action:       Classify(chrono[i], prev),
		}
		prev = &chrono[i]
	}
	return out
}
