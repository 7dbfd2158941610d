// Package evidence holds the chain-of-custody domain model: point-in-time
// evidence snapshots, per-asset ledger history entries, and the pure
// classification of each entry into a semantic custody action.
package evidence

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Action is the semantic custody action inferred for one ledger transaction.
type Action string

const (
	Created     Action = "CREATED"
	Updated     Action = "UPDATED"
	Transferred Action = "TRANSFERRED"
	Deleted     Action = "DELETED"
)

// Snapshot is the immutable point-in-time state of one evidence item as
// stored on the ledger.
type Snapshot struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Owner       string   `json:"owner"`
	Location    string   `json:"location"`
	Status      string   `json:"status"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
	Tags        []string `json:"tags"`
}

// HistoryEntry is one committed ledger transaction for one asset.
// Snapshot is nil exactly when IsDelete is set.
type HistoryEntry struct {
	TxID      string
	Timestamp TxTime
	AssetID   string
	IsDelete  bool
	Snapshot  *Snapshot
}

// ClassifiedEntry is a HistoryEntry plus its inferred action.
type ClassifiedEntry struct {
	HistoryEntry
	Action Action
}

// TxTime is a transaction timestamp as delivered by the gateway: either a
// protobuf-style {seconds, nanos} object or an ISO-8601 string.
type TxTime struct {
	Seconds int64
	Nanos   int32

	// Raw preserves a string-form timestamp verbatim for display when it
	// does not parse as RFC 3339.
	Raw string
}

// UnmarshalJSON accepts both wire shapes. Seconds may arrive as a JSON
// number or a string, matching protojson output.
func (t *TxTime) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
			t.Seconds = parsed.Unix()
			t.Nanos = int32(parsed.Nanosecond())
		}
		t.Raw = s
		return nil
	}

	var obj struct {
		Seconds json.Number `json:"seconds"`
		Nanos   int32       `json:"nanos"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	secs, err := obj.Seconds.Int64()
	if err != nil && obj.Seconds != "" {
		return fmt.Errorf("timestamp seconds %q: %w", obj.Seconds, err)
	}
	t.Seconds = secs
	t.Nanos = obj.Nanos
	return nil
}

// Compare orders two timestamps; -1, 0, or 1 as t is before, equal to, or
// after o. String timestamps that failed to parse compare as zero time.
func (t TxTime) Compare(o TxTime) int {
	switch {
	case t.Seconds != o.Seconds:
		if t.Seconds < o.Seconds {
			return -1
		}
		return 1
	case t.Nanos != o.Nanos:
		if t.Nanos < o.Nanos {
			return -1
		}
		return 1
	}
	return 0
}

// Time converts to a time.Time in the local zone.
func (t TxTime) Time() time.Time {
	return time.Unix(t.Seconds, int64(t.Nanos))
}

// Display renders the timestamp in the fixed "2006-01-02 15:04:05" UTC
// form used everywhere in history and ledger views. Unparseable string
// timestamps fall back to a cleaned copy of the raw value.
func (t TxTime) Display() string {
	if t.Seconds == 0 && t.Nanos == 0 && t.Raw != "" {
		s := strings.ReplaceAll(t.Raw, "T", " ")
		s, _, _ = strings.Cut(s, ".")
		return s
	}
	return t.Time().UTC().Format("2006-01-02 15:04:05")
}
