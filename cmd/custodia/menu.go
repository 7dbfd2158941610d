package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/evidchain/custodia/internal/fabric"
)

// runShell is the interactive terminal: organization and user selection
// followed by the numbered evidence menu.
func runShell() error {
	fmt.Println("Welcome to the Secure Evidence Ledger.")

	orgs, err := fabric.DiscoverOrgs(networkPath)
	if err != nil || len(orgs) == 0 {
		fmt.Println("Error: could not find any organizations.")
		fmt.Printf("Checked path: %s/organizations/peerOrganizations\n", networkPath)
		if err == nil {
			err = fmt.Errorf("no organizations under %s", networkPath)
		}
		return err
	}

	stdin := bufio.NewReader(os.Stdin)

	orgNames := make([]string, 0, len(orgs))
	for name := range orgs {
		orgNames = append(orgNames, name)
	}
	sort.Strings(orgNames)

	org := pickOne(stdin, "Select Organization:", orgNames, displayName)
	orgDomain := orgs[org]

	users, err := fabric.DiscoverUsers(networkPath, orgDomain)
	if err != nil || len(users) == 0 {
		fmt.Printf("No users found for %s.\n", displayName(org))
		if err == nil {
			err = fmt.Errorf("no users for %s", orgDomain)
		}
		return err
	}
	user := pickOne(stdin, fmt.Sprintf("Select User for %s:", displayName(org)), users, nil)

	fmt.Printf("\nInitializing client as %s @ %s...\n", user, org)
	c, err := newClients(org, user)
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer c.logger.Sync() //nolint:errcheck
	fmt.Println("Login successful.")

	for {
		fmt.Println()
		fmt.Println(strings.Repeat("=", 60))
		fmt.Printf("  USER: %s | ORG: %s\n", user, strings.ToUpper(displayName(org)))
		fmt.Println(strings.Repeat("=", 60))
		fmt.Println("  1. Create Evidence")
		fmt.Println("  2. Read Evidence")
		fmt.Println("  3. Update Evidence")
		fmt.Println("  4. Transfer Custody")
		fmt.Println("  5. History")
		fmt.Println("  6. Get All")
		fmt.Println("  7. Delete")
		fmt.Println("  8. View Blockchain Ledger")
		fmt.Println("  0. Exit")
		fmt.Println()

		switch promptLine(stdin, "Select > ") {
		case "1":
			menuCreate(stdin, c)
		case "2":
			menuRead(stdin, c)
		case "3":
			menuUpdate(stdin, c)
		case "4":
			menuTransfer(stdin, c)
		case "5":
			menuHistory(stdin, c)
		case "6":
			menuList(c)
		case "7":
			menuDelete(stdin, c)
		case "8":
			if err := showLedger(c); err != nil {
				fmt.Printf("Failed: %v\n", err)
			}
		case "0":
			return nil
		default:
			fmt.Println("Invalid choice.")
		}

		promptLine(stdin, "\nPress Enter to continue...")
	}
}

// pickOne shows a numbered list and loops until a valid selection.
// display optionally maps items to friendlier labels.
func pickOne(stdin *bufio.Reader, title string, items []string, display func(string) string) string {
	for {
		fmt.Println("\n" + title)
		for i, item := range items {
			label := item
			if display != nil {
				label = display(item)
			}
			fmt.Printf("  [%d] %s\n", i+1, label)
		}

		choice := promptLine(stdin, "\nSelect Number > ")
		idx, err := strconv.Atoi(choice)
		if err != nil {
			fmt.Println("Please enter a number.")
			continue
		}
		if idx < 1 || idx > len(items) {
			fmt.Println("Invalid number.")
			continue
		}
		return items[idx-1]
	}
}

func promptLine(stdin *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := stdin.ReadString('\n')
	return strings.TrimSpace(line)
}

func menuCreate(stdin *bufio.Reader, c *clients) {
	fmt.Println("\n--- Create New Evidence ---")
	desc := promptLine(stdin, "Description: ")
	owner := promptLine(stdin, "Initial Owner Name: ")
	loc := promptLine(stdin, "Location: ")
	tagsInput := promptLine(stdin, "Tags (comma separated): ")

	var tags []string
	for _, t := range strings.Split(tagsInput, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	id, err := c.custody.Create(context.Background(), desc, owner, loc, tags)
	if err != nil {
		fmt.Printf("Failed: %v\n", err)
		return
	}
	fmt.Printf("Evidence created: %s\n", id)
}

func menuRead(stdin *bufio.Reader, c *clients) {
	id := promptLine(stdin, "\nEnter Evidence ID: ")
	snap, err := c.custody.Read(context.Background(), id)
	if err != nil {
		fmt.Printf("Failed: %v\n", err)
		return
	}
	out, _ := json.MarshalIndent(snap, "", "  ")
	fmt.Println(string(out))
}

func menuUpdate(stdin *bufio.Reader, c *clients) {
	fmt.Println("\n--- Update Evidence ---")
	id := promptLine(stdin, "ID: ")
	desc := promptLine(stdin, "New Description: ")
	loc := promptLine(stdin, "New Location: ")
	status := promptLine(stdin, "New Status: ")

	if err := c.custody.Update(context.Background(), id, desc, loc, status); err != nil {
		fmt.Printf("Failed: %v\n", err)
		return
	}
	fmt.Println("Updated.")
}

func menuTransfer(stdin *bufio.Reader, c *clients) {
	fmt.Println("\n--- Transfer Custody ---")
	id := promptLine(stdin, "ID: ")
	newOwner := promptLine(stdin, "New Owner: ")
	reason := promptLine(stdin, "Reason: ")
	by := promptLine(stdin, "Transferred By: ")

	if err := c.custody.Transfer(context.Background(), id, newOwner, reason, by); err != nil {
		fmt.Printf("Failed: %v\n", err)
		return
	}
	fmt.Println("Transferred.")
}

func menuHistory(stdin *bufio.Reader, c *clients) {
	id := promptLine(stdin, "\nEnter ID for History: ")
	timeline, err := c.fetcher.Timeline(context.Background(), id)
	if err != nil {
		fmt.Printf("Failed: %v\n", err)
		return
	}
	if len(timeline) == 0 {
		fmt.Println("No history found.")
		return
	}
	printTimeline(id, timeline)
}

func menuList(c *clients) {
	items, err := c.custody.List(context.Background())
	if err != nil {
		fmt.Printf("Failed: %v\n", err)
		return
	}
	if len(items) == 0 {
		fmt.Println("No evidence found.")
		return
	}
	for _, item := range items {
		fmt.Printf("[%s] %s (Owner: %s)\n", item.ID, item.Description, item.Owner)
	}
}

func menuDelete(stdin *bufio.Reader, c *clients) {
	id := promptLine(stdin, "\n[DANGER] ID to DELETE: ")
	if strings.ToLower(promptLine(stdin, fmt.Sprintf("Delete %s? (y/n): ", id))) != "y" {
		return
	}
	if err := c.custody.Delete(context.Background(), id); err != nil {
		fmt.Printf("Failed: %v\n", err)
		return
	}
	fmt.Println("Deleted.")
}
