package ledgerview

import "github.com/evidchain/custodia/internal/evidence"

// ChainEntry is one renderable ledger transaction. PrevLinkHash points at
// the previous entry's transaction id (or the genesis data hash for the
// first entry). The link is display-only sequence adjacency, not a
// cryptographic integrity check.
type ChainEntry struct {
	Action       evidence.Action `json:"action"`
	AssetID      string          `json:"asset_id"`
	TxID         string          `json:"tx_id"`
	Timestamp    string          `json:"timestamp"`
	PrevLinkHash string          `json:"prev_link_hash"`

	// Snapshot fields; empty when the action is Deleted.
	Owner       string   `json:"owner,omitempty"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	Status      string   `json:"status,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Render assigns each merged entry its chain pointer and flattens it for
// display. The first entry links to the anchor's data hash — the
// placeholder when genesis resolution failed — and every later entry
// links to its predecessor's transaction id.
func Render(merged []evidence.ClassifiedEntry, anchor Anchor) []ChainEntry {
	prev := anchor.DataHash
	if prev == "" {
		prev = PlaceholderHash
	}

	out := make([]ChainEntry, 0, len(merged))
	for _, e := range merged {
		entry := ChainEntry{
			Action:       e.Action,
			AssetID:      e.AssetID,
			TxID:         e.TxID,
			Timestamp:    e.Timestamp.Display(),
			PrevLinkHash: prev,
		}
		if e.Action != evidence.Deleted && e.Snapshot != nil {
			entry.Owner = e.Snapshot.Owner
			entry.Description = e.Snapshot.Description
			entry.Location = e.Snapshot.Location
			entry.Status = e.Snapshot.Status
			entry.Tags = e.Snapshot.Tags
		}
		out = append(out, entry)
		prev = e.TxID
	}
	return out
}
