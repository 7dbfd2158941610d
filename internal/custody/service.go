// Package custody implements the evidence lifecycle operations: create,
// read, update, transfer, list, and delete. Writes go through the
// transactional invoke path and wait a settle interval before returning,
// since an accepted invoke is not yet a committed transaction.
package custody

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/evidchain/custodia/internal/evidence"
	"github.com/evidchain/custodia/internal/fabric"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Gateway is the slice of the fabric gateway the service needs.
// *fabric.Gateway satisfies this interface.
type Gateway interface {
	Invoke(ctx context.Context, fn string, args ...string) (string, error)
	Query(ctx context.Context, fn string, args ...string) (fabric.QueryResult, error)
}

// Service executes evidence lifecycle operations against the ledger.
type Service struct {
	gw     Gateway
	settle time.Duration
	logger *zap.Logger
}

// NewService creates a Service. settle is how long writes wait after an
// accepted invoke before assuming commit; zero disables the wait.
func NewService(gw Gateway, settle time.Duration, logger *zap.Logger) *Service {
	return &Service{gw: gw, settle: settle, logger: logger}
}

// Create registers a new evidence item and returns its generated id.
func (s *Service) Create(ctx context.Context, description, owner, location string, tags []string) (string, error) {
	id := uuid.NewString()

	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}

	if _, err := s.gw.Invoke(ctx, "CreateEvidence", id, description, owner, location, string(tagsJSON)); err != nil {
		return "", err
	}

	s.logger.Info("evidence created", zap.String("id", id), zap.String("owner", owner))
	return id, s.awaitSettle(ctx)
}

// Read returns the current state of one evidence item.
func (s *Service) Read(ctx context.Context, id string) (*evidence.Snapshot, error) {
	res, err := s.gw.Query(ctx, "ReadEvidence", id)
	if err != nil {
		return nil, err
	}

	var snap evidence.Snapshot
	if err := res.Decode("ReadEvidence", &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Update rewrites the mutable evidence fields.
func (s *Service) Update(ctx context.Context, id, description, location, status string) error {
	if _, err := s.gw.Invoke(ctx, "UpdateEvidence", id, description, location, status); err != nil {
		return err
	}
	s.logger.Info("evidence updated", zap.String("id", id))
	return s.awaitSettle(ctx)
}

// Transfer moves custody to a new owner, recording the reason and the
// transferring party on the ledger.
func (s *Service) Transfer(ctx context.Context, id, newOwner, reason, transferredBy string) error {
	if _, err := s.gw.Invoke(ctx, "TransferCustody", id, newOwner, reason, transferredBy); err != nil {
		return err
	}
	s.logger.Info("custody transferred",
		zap.String("id", id),
		zap.String("new_owner", newOwner),
	)
	return s.awaitSettle(ctx)
}

// Delete removes an evidence item from world state. Its history remains
// on the ledger and keeps appearing in the full ledger view.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.gw.Invoke(ctx, "DeleteEvidence", id); err != nil {
		return err
	}
	s.logger.Info("evidence deleted", zap.String("id", id))
	return s.awaitSettle(ctx)
}

// List returns the current state of every live evidence item.
func (s *Service) List(ctx context.Context) ([]evidence.Snapshot, error) {
	res, err := s.gw.Query(ctx, "GetAllEvidence")
	if err != nil {
		return nil, err
	}

	var items []evidence.Snapshot
	if err := res.Decode("GetAllEvidence", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// awaitSettle blocks for the configured settle interval or until the
// context is cancelled.
func (s *Service) awaitSettle(ctx context.Context) error {
	if s.settle <= 0 {
		return nil
	}
	t := time.NewTimer(s.settle)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
