package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gem-arcade/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available games",
	Long:  `Shows a list of all games registered in the arcade.`,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	games := registry.List()
	if len(games) == 0 {
		fmt.Println("No games available.")
		return
	}

	fmt.Println("Available games:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, g := range games {
		maxIDLen = max(maxIDLen, len(g.ID))
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----")
	for _, g := range games {
		title := g.Title
		if g.MembersOnly {
			title += " [members]"
		}
		fmt.Printf("  %-*s  %s\n", maxIDLen, g.ID, title)
	}

	fmt.Println()
	fmt.Println("Run 'arcade play <id>' to play a game.")
}
