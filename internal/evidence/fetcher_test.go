package evidence_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/evidchain/custodia/internal/evidence"
	"github.com/evidchain/custodia/internal/fabric"
	"go.uber.org/zap"
)

// fakeQuerier serves canned results keyed by chaincode function name.
type fakeQuerier struct {
	results map[string]fabric.QueryResult
	errs    map[string]error
	calls   []string
}

func (f *fakeQuerier) Query(_ context.Context, fn string, args ...string) (fabric.QueryResult, error) {
	f.calls = append(f.calls, fn)
	if err, ok := f.errs[fn]; ok {
		return fabric.QueryResult{}, err
	}
	return f.results[fn], nil
}

func parsed(t *testing.T, v any) fabric.QueryResult {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return fabric.QueryResult{Kind: fabric.ResultParsed, JSON: raw}
}

func TestHistory_newestFirstPreserved(t *testing.T) {
	gw := &fakeQuerier{results: map[string]fabric.QueryResult{
		"GetEvidenceHistory": parsed(t, []map[string]any{
			{"txId": "tx2", "timestamp": map[string]any{"seconds": 20}, "isDelete": false,
				"evidence": map[string]any{"id": "ev-1", "owner": "bob"}},
			{"txId": "tx1", "timestamp": map[string]any{"seconds": 10}, "isDelete": false,
				"evidence": map[string]any{"id": "ev-1", "owner": "alice"}},
		}),
	}}
	f := evidence.NewFetcher(gw, zap.NewNop())

	got, err := f.History(context.Background(), "ev-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].TxID != "tx2" || got[1].TxID != "tx1" {
		t.Errorf("order not preserved: %q, %q", got[0].TxID, got[1].TxID)
	}
	if got[0].AssetID != "ev-1" {
		t.Errorf("asset id not stamped: %q", got[0].AssetID)
	}
}

func TestHistory_deleteEntryDropsSnapshot(t *testing.T) {
	gw := &fakeQuerier{results: map[string]fabric.QueryResult{
		"GetEvidenceHistory": parsed(t, []map[string]any{
			{"txId": "tx1", "timestamp": map[string]any{"seconds": 10}, "isDelete": true,
				"evidence": map[string]any{"id": "", "owner": ""}},
		}),
	}}
	f := evidence.NewFetcher(gw, zap.NewNop())

	got, err := f.History(context.Background(), "ev-1")
	if err != nil {
		t.Fatal(err)
	}
	if !got[0].IsDelete {
		t.Error("IsDelete not set")
	}
	if got[0].Snapshot != nil {
		t.Error("delete entry should not carry a snapshot")
	}
}

func TestHistory_notFoundMeansEmpty(t *testing.T) {
	gw := &fakeQuerier{errs: map[string]error{
		"GetEvidenceHistory": &fabric.GatewayError{Op: "GetEvidenceHistory", Kind: fabric.ErrNotFound},
	}}
	f := evidence.NewFetcher(gw, zap.NewNop())

	got, err := f.History(context.Background(), "ev-missing")
	if err != nil {
		t.Fatalf("absent history should not be an error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty history, got %d entries", len(got))
	}
}

func TestHistory_transportFailurePropagates(t *testing.T) {
	gw := &fakeQuerier{errs: map[string]error{
		"GetEvidenceHistory": &fabric.GatewayError{Op: "GetEvidenceHistory", Kind: fabric.ErrUnavailable},
	}}
	f := evidence.NewFetcher(gw, zap.NewNop())

	_, err := f.History(context.Background(), "ev-1")
	if !errors.Is(err, fabric.ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}

func TestHistory_rawPayloadIsMalformed(t *testing.T) {
	gw := &fakeQuerier{results: map[string]fabric.QueryResult{
		"GetEvidenceHistory": {Kind: fabric.ResultRaw, Text: "Error: endorsement failure"},
	}}
	f := evidence.NewFetcher(gw, zap.NewNop())

	_, err := f.History(context.Background(), "ev-1")
	if !errors.Is(err, fabric.ErrMalformed) {
		t.Errorf("got %v, want ErrMalformed", err)
	}
}

func TestAssetIDs_sortedAndDeduped(t *testing.T) {
	gw := &fakeQuerier{results: map[string]fabric.QueryResult{
		"GetAllEvidenceIDs": parsed(t, []string{"ev-3", "ev-1", "ev-3", "", "ev-2"}),
	}}
	f := evidence.NewFetcher(gw, zap.NewNop())

	got, err := f.AssetIDs(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"ev-1", "ev-2", "ev-3"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTimeline_classifiesChronologically(t *testing.T) {
	gw := &fakeQuerier{results: map[string]fabric.QueryResult{
		"GetEvidenceHistory": parsed(t, []map[string]any{
			{"txId": "tx2", "timestamp": map[string]any{"seconds": 20}, "isDelete": false,
				"evidence": map[string]any{"id": "ev-1", "owner": "bob", "created_at": "t0", "updated_at": "t1"}},
			{"txId": "tx1", "timestamp": map[string]any{"seconds": 10}, "isDelete": false,
				"evidence": map[string]any{"id": "ev-1", "owner": "alice", "created_at": "t0", "updated_at": "t0"}},
		}),
	}}
	f := evidence.NewFetcher(gw, zap.NewNop())

	got, err := f.Timeline(context.Background(), "ev-1")
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Action != evidence.Created || got[1].Action != evidence.Transferred {
		t.Errorf("got actions %q, %q; want CREATED, TRANSFERRED", got[0].Action, got[1].Action)
	}
}
