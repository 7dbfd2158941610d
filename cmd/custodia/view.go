package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/evidchain/custodia/internal/evidence"
	"github.com/evidchain/custodia/internal/ledgerview"
)

// Box layout shared by the history and ledger views.
const (
	boxInner  = 66
	valWidth  = 52
	arrowPad  = 35
	ruleWidth = 70
)

func boxTop()    { fmt.Printf("  ┌%s┐\n", strings.Repeat("─", boxInner)) }
func boxRule()   { fmt.Printf("  ├%s┤\n", strings.Repeat("─", boxInner)) }
func boxBottom() { fmt.Printf("  └%s┘\n", strings.Repeat("─", boxInner)) }

func boxTitle(title string) {
	fmt.Printf("  │ %s │\n", center(title, boxInner-2))
}

func boxField(label, value string) {
	fmt.Printf("  │ %-12s %-*s │\n", label+":", valWidth, truncate(value, valWidth))
}

func center(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func downArrow() {
	pad := strings.Repeat(" ", arrowPad)
	fmt.Println(pad + "│")
	fmt.Println(pad + "▼")
}

// printTimeline renders one asset's classified history, oldest first.
func printTimeline(assetID string, timeline []evidence.ClassifiedEntry) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Printf("\n%s\n", rule)
	fmt.Printf("  EVIDENCE HISTORY: %s\n", assetID)
	fmt.Println(rule)

	for i, e := range timeline {
		if i > 0 {
			downArrow()
		}
		fmt.Println()
		boxTop()
		boxTitle(string(e.Action))
		boxRule()
		boxField("Timestamp", e.Timestamp.Display())
		boxField("TX ID", e.TxID)
		if !e.IsDelete && e.Snapshot != nil {
			boxRule()
			boxField("Owner", e.Snapshot.Owner)
			boxField("Description", e.Snapshot.Description)
			boxField("Location", e.Snapshot.Location)
			boxField("Status", e.Snapshot.Status)
			boxField("Tags", strings.Join(e.Snapshot.Tags, ", "))
		}
		boxBottom()
	}

	fmt.Printf("\n%s\n", rule)
	fmt.Printf("  Total Records: %d\n", len(timeline))
	fmt.Println(rule)
}

// showLedger reconstructs and prints the full cross-asset chain view.
func showLedger(c *clients) error {
	ctx := context.Background()

	fmt.Println("  Fetching all transactions... this might take a moment...")
	merged, warnings, err := c.merger.Merge(ctx)
	if err != nil {
		return fmt.Errorf("reconstruct ledger: %w", err)
	}

	anchor := c.resolver.Resolve(ctx)
	chain := ledgerview.Render(merged, anchor)

	rule := strings.Repeat("=", ruleWidth)
	fmt.Printf("\n%s\n", rule)
	fmt.Println("  BLOCKCHAIN LEDGER")
	fmt.Println(rule)

	// Genesis block header.
	fmt.Println()
	boxTop()
	boxTitle("GENESIS BLOCK")
	boxRule()
	boxField("Timestamp", anchor.Timestamp)
	boxField("Data Hash", anchor.DataHash)
	boxField("Prev Hash", strings.Repeat("0", valWidth))
	boxBottom()

	for _, e := range chain {
		downArrow()
		fmt.Println()
		boxTop()
		boxTitle(string(e.Action))
		boxRule()
		boxField("Timestamp", e.Timestamp)
		boxField("TX ID", e.TxID)
		boxField("Prev Hash", e.PrevLinkHash)
		boxField("Evidence ID", e.AssetID)
		if e.Action != evidence.Deleted {
			boxRule()
			boxField("Owner", e.Owner)
			boxField("Description", e.Description)
			boxField("Location", e.Location)
			boxField("Status", e.Status)
		}
		boxBottom()
	}

	if len(chain) == 0 {
		fmt.Println("\n  No transactions found.")
	}

	for _, w := range warnings {
		fmt.Printf("\n  ⚠ skipped %s: %v\n", w.AssetID, w.Err)
	}

	fmt.Printf("\n%s\n", rule)
	fmt.Printf("  Total Transactions: %d\n", len(chain))
	fmt.Println(rule)
	return nil
}
