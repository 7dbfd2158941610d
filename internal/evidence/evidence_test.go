package evidence_test

import (
	"encoding/json"
	"testing"

	"github.com/evidchain/custodia/internal/evidence"
)

func TestTxTime_unmarshalObject(t *testing.T) {
	var ts evidence.TxTime
	if err := json.Unmarshal([]byte(`{"seconds":1700000000,"nanos":500}`), &ts); err != nil {
		t.Fatal(err)
	}
	if ts.Seconds != 1700000000 || ts.Nanos != 500 {
		t.Errorf("got {%d %d}, want {1700000000 500}", ts.Seconds, ts.Nanos)
	}
}

// protojson renders int64 seconds as a JSON string.
func TestTxTime_unmarshalObjectStringSeconds(t *testing.T) {
	var ts evidence.TxTime
	if err := json.Unmarshal([]byte(`{"seconds":"1700000000","nanos":1}`), &ts); err != nil {
		t.Fatal(err)
	}
	if ts.Seconds != 1700000000 {
		t.Errorf("got seconds %d, want 1700000000", ts.Seconds)
	}
}

func TestTxTime_unmarshalRFC3339(t *testing.T) {
	var ts evidence.TxTime
	if err := json.Unmarshal([]byte(`"2023-11-14T22:13:20Z"`), &ts); err != nil {
		t.Fatal(err)
	}
	if ts.Seconds != 1700000000 {
		t.Errorf("got seconds %d, want 1700000000", ts.Seconds)
	}
	if ts.Raw != "2023-11-14T22:13:20Z" {
		t.Errorf("raw not preserved: %q", ts.Raw)
	}
}

func TestTxTime_unparseableStringDisplay(t *testing.T) {
	var ts evidence.TxTime
	if err := json.Unmarshal([]byte(`"2023-11-14T22:13:20.123 weird"`), &ts); err != nil {
		t.Fatal(err)
	}
	if got := ts.Display(); got != "2023-11-14 22:13:20" {
		t.Errorf("Display() = %q, want %q", got, "2023-11-14 22:13:20")
	}
}

func TestTxTime_compare(t *testing.T) {
	a := evidence.TxTime{Seconds: 10, Nanos: 0}
	b := evidence.TxTime{Seconds: 10, Nanos: 5}
	c := evidence.TxTime{Seconds: 11}

	if a.Compare(b) != -1 {
		t.Error("nanos should break the tie")
	}
	if c.Compare(a) != 1 {
		t.Error("later seconds should compare greater")
	}
	if a.Compare(a) != 0 {
		t.Error("equal timestamps should compare 0")
	}
}
