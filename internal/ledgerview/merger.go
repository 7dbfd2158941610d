// Package ledgerview reconstructs the global audit trail: it merges every
// asset's classified history into one chronologically ordered sequence and
// anchors it to the network's genesis block with a display hash chain.
package ledgerview

import (
	"context"
	"sort"

	"github.com/evidchain/custodia/internal/evidence"
	"go.uber.org/zap"
)

// HistorySource supplies per-asset classified histories and the set of
// known asset ids. *evidence.Fetcher satisfies this interface.
type HistorySource interface {
	AssetIDs(ctx context.Context) ([]string, error)
	Timeline(ctx context.Context, assetID string) ([]evidence.ClassifiedEntry, error)
}

// Warning records a per-asset fetch failure that was skipped during a
// merge instead of aborting the whole ledger view.
type Warning struct {
	AssetID string
	Err     error
}

// Merger combines all assets' classified histories into one globally
// time-ordered sequence.
type Merger struct {
	src     HistorySource
	workers int
	logger  *zap.Logger
}

// NewMerger creates a Merger. Per-asset fetches fan out over a bounded
// worker pool; workers <= 0 selects the default of 4. Parallelism is a
// throughput optimization only — the merged output is identical at any
// pool size.
func NewMerger(src HistorySource, workers int, logger *zap.Logger) *Merger {
	if workers <= 0 {
		workers = 4
	}
	return &Merger{src: src, workers: workers, logger: logger}
}

// Merge fetches and classifies every asset's history and returns one
// sequence sorted ascending by timestamp. Equal timestamps keep the
// per-asset chronological order; remaining ties break by asset id.
// A failed per-asset fetch becomes a Warning and the merge continues;
// only a failure to list the asset ids aborts.
func (m *Merger) Merge(ctx context.Context) ([]evidence.ClassifiedEntry, []Warning, error) {
	ids, err := m.src.AssetIDs(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(ids) == 0 {
		return nil, nil, nil
	}

	type assetResult struct {
		assetID string
		entries []evidence.ClassifiedEntry
		err     error
	}

	resultCh := make(chan assetResult, len(ids))
	sem := make(chan struct{}, m.workers)

	for _, id := range ids {
		id := id
		go func() {
			sem <- struct{}{}
			defer func() { <-sem }()
			entries, err := m.src.Timeline(ctx, id)
			resultCh <- assetResult{assetID: id, entries: entries, err: err}
		}()
	}

	// Join barrier: collect everything before ordering.
	byAsset := make(map[string][]evidence.ClassifiedEntry, len(ids))
	var warnings []Warning
	for range ids {
		r := <-resultCh
		if r.err != nil {
			m.logger.Warn("skipping asset in ledger view",
				zap.String("asset_id", r.assetID),
				zap.Error(r.err),
			)
			warnings = append(warnings, Warning{AssetID: r.assetID, Err: r.err})
			continue
		}
		byAsset[r.assetID] = r.entries
	}

	// Concatenate in sorted-asset order so the input to the stable sort
	// is deterministic regardless of worker scheduling.
	var merged []evidence.ClassifiedEntry
	for _, id := range ids {
		merged = append(merged, byAsset[id]...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if c := merged[i].Timestamp.Compare(merged[j].Timestamp); c != 0 {
			return c < 0
		}
		return merged[i].AssetID < merged[j].AssetID
	})

	m.logger.Debug("merged ledger view",
		zap.Int("assets", len(ids)),
		zap.Int("transactions", len(merged)),
		zap.Int("warnings", len(warnings)),
	)
	return merged, warnings, nil
}
