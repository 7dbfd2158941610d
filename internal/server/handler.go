package server

import (
	"net/http"

	"github.com/evidchain/custodia/internal/evidence"
	"github.com/evidchain/custodia/internal/ledgerview"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// historyItem is the JSON shape of one classified timeline entry.
type historyItem struct {
	TxID      string             `json:"tx_id"`
	Timestamp string             `json:"timestamp"`
	Action    evidence.Action    `json:"action"`
	IsDelete  bool               `json:"is_delete"`
	Evidence  *evidence.Snapshot `json:"evidence,omitempty"`
}

// listEvidence handles GET /api/v1/evidence.
func (s *Server) listEvidence(c *gin.Context) {
	items, err := s.reader.List(c.Request.Context())
	if err != nil {
		s.logger.Warn("list evidence", zap.Error(err))
		c.JSON(httpStatus(err), gin.H{"error": err.Error()})
		return
	}
	if items == nil {
		items = []evidence.Snapshot{}
	}
	c.JSON(http.StatusOK, items)
}

// getEvidence handles GET /api/v1/evidence/:id.
func (s *Server) getEvidence(c *gin.Context) {
	snap, err := s.reader.Read(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(httpStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// getHistory handles GET /api/v1/evidence/:id/history — the single-asset
// audit view, oldest first.
func (s *Server) getHistory(c *gin.Context) {
	timeline, err := s.history.Timeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.logger.Warn("asset timeline", zap.String("id", c.Param("id")), zap.Error(err))
		c.JSON(httpStatus(err), gin.H{"error": err.Error()})
		return
	}

	items := make([]historyItem, 0, len(timeline))
	for _, e := range timeline {
		items = append(items, historyItem{
			TxID:      e.TxID,
			Timestamp: e.Timestamp.Display(),
			Action:    e.Action,
			IsDelete:  e.IsDelete,
			Evidence:  e.Snapshot,
		})
	}
	c.JSON(http.StatusOK, items)
}

// getLedger handles GET /api/v1/ledger — the full cross-asset chain view
// anchored at the genesis block. Per-asset fetch failures are reported as
// warnings alongside the chain, never as a failed response.
func (s *Server) getLedger(c *gin.Context) {
	ctx := c.Request.Context()

	merged, warnings, err := s.merger.Merge(ctx)
	if err != nil {
		s.logger.Warn("ledger merge", zap.Error(err))
		c.JSON(httpStatus(err), gin.H{"error": err.Error()})
		return
	}

	anchor := s.resolver.Resolve(ctx)
	chain := ledgerview.Render(merged, anchor)
	recordLedgerRender(len(warnings))

	warningList := make([]gin.H, 0, len(warnings))
	for _, w := range warnings {
		warningList = append(warningList, gin.H{
			"asset_id": w.AssetID,
			"error":    w.Err.Error(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"genesis": gin.H{
			"timestamp": anchor.Timestamp,
			"data_hash": anchor.DataHash,
			"resolved":  anchor.Resolved(),
		},
		"transactions": chain,
		"warnings":     warningList,
	})
}
