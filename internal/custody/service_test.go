package custody_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/evidchain/custodia/internal/custody"
	"github.com/evidchain/custodia/internal/fabric"
	"go.uber.org/zap"
)

type invokeCall struct {
	fn   string
	args []string
}

// fakeGateway records invokes and serves canned query results.
type fakeGateway struct {
	invokes   []invokeCall
	invokeErr error

	queryRes fabric.QueryResult
	queryErr error
}

func (f *fakeGateway) Invoke(_ context.Context, fn string, args ...string) (string, error) {
	f.invokes = append(f.invokes, invokeCall{fn: fn, args: args})
	return "", f.invokeErr
}

func (f *fakeGateway) Query(_ context.Context, fn string, args ...string) (fabric.QueryResult, error) {
	return f.queryRes, f.queryErr
}

func newService(gw *fakeGateway) *custody.Service {
	return custody.NewService(gw, 0, zap.NewNop())
}

func TestCreate_generatesIDAndEncodesTags(t *testing.T) {
	gw := &fakeGateway{}
	svc := newService(gw)

	id, err := svc.Create(context.Background(), "laptop", "alice", "locker 4", []string{"digital", "fragile"})
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}

	if len(gw.invokes) != 1 {
		t.Fatalf("expected 1 invoke, got %d", len(gw.invokes))
	}
	call := gw.invokes[0]
	if call.fn != "CreateEvidence" {
		t.Errorf("function: got %q, want CreateEvidence", call.fn)
	}
	if len(call.args) != 5 || call.args[0] != id {
		t.Fatalf("args: %v", call.args)
	}

	var tags []string
	if err := json.Unmarshal([]byte(call.args[4]), &tags); err != nil {
		t.Fatalf("tags arg %q: %v", call.args[4], err)
	}
	if len(tags) != 2 || tags[0] != "digital" {
		t.Errorf("tags: %v", tags)
	}
}

func TestCreate_distinctIDs(t *testing.T) {
	gw := &fakeGateway{}
	svc := newService(gw)

	id1, _ := svc.Create(context.Background(), "d", "o", "l", nil)
	id2, _ := svc.Create(context.Background(), "d", "o", "l", nil)
	if id1 == id2 {
		t.Errorf("ids must be unique, got %q twice", id1)
	}
}

func TestCreate_invokeFailure(t *testing.T) {
	gw := &fakeGateway{invokeErr: &fabric.GatewayError{Op: "CreateEvidence", Kind: fabric.ErrAccessDenied}}
	svc := newService(gw)

	if _, err := svc.Create(context.Background(), "d", "o", "l", nil); !errors.Is(err, fabric.ErrAccessDenied) {
		t.Errorf("got %v, want ErrAccessDenied", err)
	}
}

func TestRead_decodesSnapshot(t *testing.T) {
	gw := &fakeGateway{queryRes: fabric.QueryResult{
		Kind: fabric.ResultParsed,
		JSON: json.RawMessage(`{"id":"ev-1","owner":"alice","status":"Collected"}`),
	}}
	svc := newService(gw)

	snap, err := svc.Read(context.Background(), "ev-1")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Owner != "alice" || snap.Status != "Collected" {
		t.Errorf("decoded %+v", snap)
	}
}

func TestRead_rawResultIsMalformed(t *testing.T) {
	gw := &fakeGateway{queryRes: fabric.QueryResult{Kind: fabric.ResultRaw, Text: "Error: ..."}}
	svc := newService(gw)

	if _, err := svc.Read(context.Background(), "ev-1"); !errors.Is(err, fabric.ErrMalformed) {
		t.Errorf("got %v, want ErrMalformed", err)
	}
}

func TestTransfer_passesAuditFields(t *testing.T) {
	gw := &fakeGateway{}
	svc := newService(gw)

	if err := svc.Transfer(context.Background(), "ev-1", "bob", "court order", "alice"); err != nil {
		t.Fatal(err)
	}
	call := gw.invokes[0]
	if call.fn != "TransferCustody" {
		t.Errorf("function: got %q, want TransferCustody", call.fn)
	}
	want := []string{"ev-1", "bob", "court order", "alice"}
	for i, w := range want {
		if call.args[i] != w {
			t.Errorf("arg %d: got %q, want %q", i, call.args[i], w)
		}
	}
}

func TestDelete_invokes(t *testing.T) {
	gw := &fakeGateway{}
	svc := newService(gw)

	if err := svc.Delete(context.Background(), "ev-1"); err != nil {
		t.Fatal(err)
	}
	if gw.invokes[0].fn != "DeleteEvidence" {
		t.Errorf("function: got %q, want DeleteEvidence", gw.invokes[0].fn)
	}
}

func TestList_decodesItems(t *testing.T) {
	gw := &fakeGateway{queryRes: fabric.QueryResult{
		Kind: fabric.ResultParsed,
		JSON: json.RawMessage(`[{"id":"ev-1"},{"id":"ev-2"}]`),
	}}
	svc := newService(gw)

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[1].ID != "ev-2" {
		t.Errorf("decoded %v", items)
	}
}
