package fabric

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
)

// ResultKind tags the two shapes a query result can take.
type ResultKind int

const (
	// ResultParsed means the payload decoded as JSON and is in QueryResult.JSON.
	ResultParsed ResultKind = iota
	// ResultRaw means the payload was not JSON; the verbatim text is in
	// QueryResult.Text so callers can still display diagnostics.
	ResultRaw
)

// QueryResult is the tagged outcome of a read-only chaincode query.
// Callers switch on Kind instead of probing the payload shape.
type QueryResult struct {
	Kind ResultKind
	JSON json.RawMessage
	Text string
}

// Decode unmarshals a parsed result into v. It reports ErrMalformed when
// the result is raw text or does not fit v's schema.
func (r QueryResult) Decode(op string, v any) error {
	if r.Kind != ResultParsed {
		return &GatewayError{Op: op, Kind: ErrMalformed, Stderr: r.Text}
	}
	if err := json.Unmarshal(r.JSON, v); err != nil {
		return &GatewayError{Op: op, Kind: ErrMalformed, Err: err}
	}
	return nil
}

// Gateway drives the peer binary for one configured identity.
type Gateway struct {
	cfg    Config
	run    Runner
	logger *zap.Logger
}

// NewGateway creates a Gateway that shells out to the peer binary.
func NewGateway(cfg Config, logger *zap.Logger) *Gateway {
	return NewGatewayWithRunner(cfg, ExecRunner{}, logger)
}

// NewGatewayWithRunner creates a Gateway with a custom command runner.
// Used by tests to avoid a live network.
func NewGatewayWithRunner(cfg Config, run Runner, logger *zap.Logger) *Gateway {
	return &Gateway{cfg: cfg, run: run, logger: logger}
}

// Config returns the gateway's immutable configuration.
func (g *Gateway) Config() Config { return g.cfg }

// chaincodeArgs is the -c payload of a peer chaincode command.
type chaincodeArgs struct {
	Function string   `json:"function"`
	Args     []string `json:"Args"`
}

// Invoke submits a transaction against both endorsing peers and returns
// the peer tool's stdout. Invokes are transactional, not idempotent;
// callers should allow settling time before assuming the write committed.
func (g *Gateway) Invoke(ctx context.Context, fn string, args ...string) (string, error) {
	ctor, err := json.Marshal(chaincodeArgs{Function: fn, Args: emptyNotNil(args)})
	if err != nil {
		return "", &GatewayError{Op: fn, Kind: ErrMalformed, Err: err}
	}

	org1CA, org2CA := g.cfg.PeerTLSCerts()
	cmdArgs := []string{
		"chaincode", "invoke",
		"-o", "localhost:7050",
		"--ordererTLSHostnameOverride", "orderer.example.com",
		"--tls", "--cafile", g.cfg.OrdererCA(),
		"-C", g.cfg.Channel, "-n", g.cfg.Chaincode,
		"--peerAddresses", "localhost:7051", "--tlsRootCertFiles", org1CA,
		"--peerAddresses", "localhost:9051", "--tlsRootCertFiles", org2CA,
		"-c", string(ctor),
	}

	stdout, stderr, err := g.run.Run(ctx, g.cfg.Env(), "peer", cmdArgs...)
	if err != nil {
		g.logger.Warn("invoke failed",
			zap.String("function", fn),
			zap.String("stderr", firstLine(stderr)),
			zap.Error(err),
		)
		return "", &GatewayError{Op: fn, Kind: classifyStderr(stderr), Stderr: stderr, Err: err}
	}

	g.logger.Debug("invoke submitted", zap.String("function", fn))
	return stdout, nil
}

// Query evaluates a read-only chaincode function. JSON payloads come back
// as ResultParsed; anything else degrades to ResultRaw rather than
// failing, so callers can surface the gateway's own diagnostics. An empty
// payload is reported as ErrNotFound.
func (g *Gateway) Query(ctx context.Context, fn string, args ...string) (QueryResult, error) {
	ctor, err := json.Marshal(chaincodeArgs{Function: fn, Args: emptyNotNil(args)})
	if err != nil {
		return QueryResult{}, &GatewayError{Op: fn, Kind: ErrMalformed, Err: err}
	}

	cmdArgs := []string{
		"chaincode", "query",
		"-C", g.cfg.Channel, "-n", g.cfg.Chaincode,
		"-c", string(ctor),
	}

	stdout, stderr, err := g.run.Run(ctx, g.cfg.Env(), "peer", cmdArgs...)
	if err != nil {
		return QueryResult{}, &GatewayError{Op: fn, Kind: classifyStderr(stderr), Stderr: stderr, Err: err}
	}

	payload := strings.TrimSpace(stdout)
	if payload == "" {
		return QueryResult{}, &GatewayError{Op: fn, Kind: ErrNotFound}
	}

	if json.Valid([]byte(payload)) {
		return QueryResult{Kind: ResultParsed, JSON: json.RawMessage(payload)}, nil
	}

	g.logger.Debug("query returned non-JSON payload", zap.String("function", fn))
	return QueryResult{Kind: ResultRaw, Text: payload}, nil
}

// emptyNotNil keeps the ctor's Args an empty array instead of null.
func emptyNotNil(args []string) []string {
	if args == nil {
		return []string{}
	}
	return args
}
