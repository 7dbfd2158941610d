package evidence

import (
	"context"
	"errors"
	"sort"

	"github.com/evidchain/custodia/internal/fabric"
	"go.uber.org/zap"
)

// Querier is the read-only slice of the gateway the fetcher needs.
// *fabric.Gateway satisfies this interface.
type Querier interface {
	Query(ctx context.Context, fn string, args ...string) (fabric.QueryResult, error)
}

// Fetcher retrieves per-asset transaction histories from the ledger.
//
// Precondition on the gateway: GetEvidenceHistory delivers records
// newest-first (Fabric's history iterator order). History preserves that
// order; classification helpers reverse it.
type Fetcher struct {
	gw     Querier
	logger *zap.Logger
}

// NewFetcher creates a Fetcher over the given gateway.
func NewFetcher(gw Querier, logger *zap.Logger) *Fetcher {
	return &Fetcher{gw: gw, logger: logger}
}

// historyRecord is the wire shape of one GetEvidenceHistory element.
// The chaincode embeds a zero-valued evidence object on deletes; the
// conversion below drops it so IsDelete entries never carry a snapshot.
type historyRecord struct {
	TxID      string    `json:"txId"`
	Timestamp TxTime    `json:"timestamp"`
	IsDelete  bool      `json:"isDelete"`
	Evidence  *Snapshot `json:"evidence"`
}

// History returns the asset's transaction history, newest-first. An
// absent history yields an empty slice and nil error; only transport or
// decode failures return an error.
func (f *Fetcher) History(ctx context.Context, assetID string) ([]HistoryEntry, error) {
	res, err := f.gw.Query(ctx, "GetEvidenceHistory", assetID)
	if err != nil {
		if errors.Is(err, fabric.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var records []historyRecord
	if err := res.Decode("GetEvidenceHistory", &records); err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(records))
	for _, r := range records {
		e := HistoryEntry{
			TxID:      r.TxID,
			Timestamp: r.Timestamp,
			AssetID:   assetID,
			IsDelete:  r.IsDelete,
		}
		if !r.IsDelete {
			e.Snapshot = r.Evidence
		}
		entries = append(entries, e)
	}

	f.logger.Debug("fetched history",
		zap.String("asset_id", assetID),
		zap.Int("records", len(entries)),
	)
	return entries, nil
}

// AssetIDs returns every evidence id known to the ledger, including ids
// whose assets have since been deleted, sorted for deterministic merges.
func (f *Fetcher) AssetIDs(ctx context.Context) ([]string, error) {
	res, err := f.gw.Query(ctx, "GetAllEvidenceIDs")
	if err != nil {
		if errors.Is(err, fabric.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var ids []string
	if err := res.Decode("GetAllEvidenceIDs", &ids); err != nil {
		return nil, err
	}

	// A duplicate or empty id would double-count transactions in the merge.
	sort.Strings(ids)
	ids = compactSorted(ids)
	return ids, nil
}

// Timeline is the single-asset audit view: the asset's own history in
// chronological order with each entry classified. No merge, no genesis
// anchor.
func (f *Fetcher) Timeline(ctx context.Context, assetID string) ([]ClassifiedEntry, error) {
	history, err := f.History(ctx, assetID)
	if err != nil {
		return nil, err
	}
	return ClassifyHistory(history), nil
}

func compactSorted(ids []string) []string {
	out := ids[:0]
	for i, id := range ids {
		if id == "" {
			continue
		}
		if i > 0 && id == ids[i-1] {
			continue
		}
		out = append(out, id)
	}
	return out
}
