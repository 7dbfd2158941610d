package ledgerview_test

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/evidchain/custodia/internal/fabric"
	"github.com/evidchain/custodia/internal/ledgerview"
	"go.uber.org/zap"
)

// genesisRunner fakes the peer/configtxlator tool chain: the peer call
// writes the raw block file, the configtxlator call writes decoded JSON.
type genesisRunner struct {
	blockJSON  string
	skipFetch  bool
	decodeFail bool
}

func (g *genesisRunner) Run(_ context.Context, _ []string, name string, args ...string) (string, string, error) {
	if name == "peer" {
		if g.skipFetch {
			return "", "Error: can't read the block: ...", errors.New("exit status 1")
		}
		// peer channel fetch 0 <path> ...
		return "", "Received block: 0", os.WriteFile(args[3], []byte("rawblock"), 0o644)
	}

	if g.decodeFail {
		return "", "configtxlator: error: ...", errors.New("exit status 1")
	}
	out := argAfter(args, "--output")
	return "", "", os.WriteFile(out, []byte(g.blockJSON), 0o644)
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// genesisConfig scaffolds enough of a network tree for resolution: the
// configtxlator binary next to the network root.
func genesisConfig(t *testing.T) fabric.Config {
	t.Helper()
	root := t.TempDir()
	network := filepath.Join(root, "test-network")
	if err := os.MkdirAll(filepath.Join(root, "bin"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "bin", "configtxlator"), []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return fabric.Config{NetworkPath: network, Channel: "mychannel"}
}

func TestResolve_decodesAnchor(t *testing.T) {
	rawHash := []byte("0123456789abcdef0123456789ab")
	run := &genesisRunner{blockJSON: `{
		"header": {"data_hash": "` + base64.StdEncoding.EncodeToString(rawHash) + `"},
		"data": {"data": [{"payload": {"header": {"channel_header": {"timestamp": "2024-03-01T09:00:00Z"}}}}]}
	}`}
	r := ledgerview.NewGenesisResolverWithRunner(genesisConfig(t), run, zap.NewNop())

	anchor := r.Resolve(context.Background())
	if !anchor.Resolved() {
		t.Fatalf("expected a resolved anchor, got %+v", anchor)
	}
	if anchor.DataHash != hex.EncodeToString(rawHash) {
		t.Errorf("data hash: got %q, want hex of raw bytes", anchor.DataHash)
	}
	if anchor.Timestamp != "2024-03-01 09:00:00" {
		t.Errorf("timestamp: got %q, want %q", anchor.Timestamp, "2024-03-01 09:00:00")
	}
}

func TestResolve_fetchFailureYieldsPlaceholder(t *testing.T) {
	r := ledgerview.NewGenesisResolverWithRunner(genesisConfig(t), &genesisRunner{skipFetch: true}, zap.NewNop())

	anchor := r.Resolve(context.Background())
	if anchor.Resolved() {
		t.Fatal("fetch failure must not resolve")
	}
	if anchor.DataHash != ledgerview.PlaceholderHash {
		t.Errorf("data hash: got %q, want placeholder", anchor.DataHash)
	}
	if anchor.Timestamp != "fetch failed" {
		t.Errorf("diagnostic: got %q, want %q", anchor.Timestamp, "fetch failed")
	}
}

func TestResolve_decodeFailureYieldsPlaceholder(t *testing.T) {
	r := ledgerview.NewGenesisResolverWithRunner(genesisConfig(t), &genesisRunner{decodeFail: true}, zap.NewNop())

	anchor := r.Resolve(context.Background())
	if anchor.Timestamp != "decode failed" || anchor.DataHash != ledgerview.PlaceholderHash {
		t.Errorf("got %+v, want decode-failed placeholder", anchor)
	}
}

func TestResolve_malformedBlockYieldsPlaceholder(t *testing.T) {
	run := &genesisRunner{blockJSON: `{"header": {}, "data": {"data": []}}`}
	r := ledgerview.NewGenesisResolverWithRunner(genesisConfig(t), run, zap.NewNop())

	anchor := r.Resolve(context.Background())
	if anchor.Timestamp != "parse failed" || anchor.DataHash != ledgerview.PlaceholderHash {
		t.Errorf("got %+v, want parse-failed placeholder", anchor)
	}
}

func TestResolve_missingToolYieldsPlaceholder(t *testing.T) {
	cfg := fabric.Config{NetworkPath: filepath.Join(t.TempDir(), "test-network"), Channel: "mychannel"}
	r := ledgerview.NewGenesisResolverWithRunner(cfg, &genesisRunner{}, zap.NewNop())

	anchor := r.Resolve(context.Background())
	if anchor.Timestamp != "tool missing" || anchor.DataHash != ledgerview.PlaceholderHash {
		t.Errorf("got %+v, want tool-missing placeholder", anchor)
	}
}

func TestPlaceholderHash_width(t *testing.T) {
	if len(ledgerview.PlaceholderHash) != 56 {
		t.Errorf("placeholder width: got %d, want 56", len(ledgerview.PlaceholderHash))
	}
}
