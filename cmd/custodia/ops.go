package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	createDescription string
	createOwner       string
	createLocation    string
	createTags        []string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new evidence item on the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClients(orgFlag, userFlag)
		if err != nil {
			return err
		}
		defer c.logger.Sync() //nolint:errcheck

		id, err := c.custody.Create(context.Background(), createDescription, createOwner, createLocation, createTags)
		if err != nil {
			return fmt.Errorf("create evidence: %w", err)
		}
		fmt.Printf("✓ Evidence created\n\n  ID: %s\n", id)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createDescription, "description", "", "Evidence description")
	createCmd.Flags().StringVar(&createOwner, "owner", "", "Initial custody owner")
	createCmd.Flags().StringVar(&createLocation, "location", "", "Storage location")
	createCmd.Flags().StringSliceVar(&createTags, "tags", nil, "Comma-separated tags")

	_ = createCmd.MarkFlagRequired("description")
	_ = createCmd.MarkFlagRequired("owner")
	_ = createCmd.MarkFlagRequired("location")
}

var readCmd = &cobra.Command{
	Use:   "read <evidence-id>",
	Short: "Show the current state of an evidence item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClients(orgFlag, userFlag)
		if err != nil {
			return err
		}
		defer c.logger.Sync() //nolint:errcheck

		snap, err := c.custody.Read(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("read evidence: %w", err)
		}

		out, _ := json.MarshalIndent(snap, "", "  ")
		fmt.Println(string(out))
		return nil
	},
}

var (
	updateDescription string
	updateLocation    string
	updateStatus      string
)

var updateCmd = &cobra.Command{
	Use:   "update <evidence-id>",
	Short: "Update an evidence item's description, location, or status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClients(orgFlag, userFlag)
		if err != nil {
			return err
		}
		defer c.logger.Sync() //nolint:errcheck

		if err := c.custody.Update(context.Background(), args[0], updateDescription, updateLocation, updateStatus); err != nil {
			return fmt.Errorf("update evidence: %w", err)
		}
		fmt.Println("✓ Evidence updated")
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "New description")
	updateCmd.Flags().StringVar(&updateLocation, "location", "", "New location")
	updateCmd.Flags().StringVar(&updateStatus, "status", "", "New status (e.g. Collected, Archived)")
}

var (
	transferOwner  string
	transferReason string
	transferBy     string
)

var transferCmd = &cobra.Command{
	Use:   "transfer <evidence-id>",
	Short: "Transfer custody of an evidence item to a new owner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClients(orgFlag, userFlag)
		if err != nil {
			return err
		}
		defer c.logger.Sync() //nolint:errcheck

		if err := c.custody.Transfer(context.Background(), args[0], transferOwner, transferReason, transferBy); err != nil {
			return fmt.Errorf("transfer custody: %w", err)
		}
		fmt.Printf("✓ Custody transferred to %s\n", transferOwner)
		return nil
	},
}

func init() {
	transferCmd.Flags().StringVar(&transferOwner, "to", "", "New custody owner")
	transferCmd.Flags().StringVar(&transferReason, "reason", "", "Transfer reason")
	transferCmd.Flags().StringVar(&transferBy, "by", "", "Person performing the transfer")

	_ = transferCmd.MarkFlagRequired("to")
}

var historyCmd = &cobra.Command{
	Use:   "history <evidence-id>",
	Short: "Show the classified audit trail of one evidence item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClients(orgFlag, userFlag)
		if err != nil {
			return err
		}
		defer c.logger.Sync() //nolint:errcheck

		timeline, err := c.fetcher.Timeline(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("fetch history: %w", err)
		}
		if len(timeline) == 0 {
			fmt.Println("No history found.")
			return nil
		}
		printTimeline(args[0], timeline)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all live evidence items",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClients(orgFlag, userFlag)
		if err != nil {
			return err
		}
		defer c.logger.Sync() //nolint:errcheck

		items, err := c.custody.List(context.Background())
		if err != nil {
			return fmt.Errorf("list evidence: %w", err)
		}
		if len(items) == 0 {
			fmt.Println("No evidence found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDESCRIPTION\tOWNER\tLOCATION\tSTATUS")
		for _, item := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				item.ID, item.Description, item.Owner, item.Location, item.Status)
		}
		return w.Flush()
	},
}

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <evidence-id>",
	Short: "Delete an evidence item (its ledger history is retained)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !deleteForce {
			fmt.Printf("Delete %s? This cannot be undone. [y/N]: ", args[0])
			var answer string
			fmt.Scanln(&answer) //nolint:errcheck
			if strings.ToLower(strings.TrimSpace(answer)) != "y" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		c, err := newClients(orgFlag, userFlag)
		if err != nil {
			return err
		}
		defer c.logger.Sync() //nolint:errcheck

		if err := c.custody.Delete(context.Background(), args[0]); err != nil {
			return fmt.Errorf("delete evidence: %w", err)
		}
		fmt.Println("✓ Evidence deleted")
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteForce, "force", false, "Skip confirmation prompt")
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Reconstruct and display the full blockchain ledger view",
	Long: `ledger merges every asset's transaction history into one
chronological chain anchored at the network's genesis block.

Assets whose history cannot be fetched are skipped with a warning rather
than aborting the view.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClients(orgFlag, userFlag)
		if err != nil {
			return err
		}
		defer c.logger.Sync() //nolint:errcheck

		return showLedger(c)
	},
}
