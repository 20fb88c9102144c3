package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"m3m/internal/source/nexus"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search Nexus Mods for a game's mods",
	Long: `Search the Nexus Mods catalogue. Set NEXUS_API_KEY to raise the
unauthenticated rate limits.

Examples:
  m3m search --game eldenring "seamless"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum results")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}

	src := nexus.New(nil, os.Getenv("NEXUS_API_KEY"))
	results, err := src.Search(cmd.Context(), game.ID, args[0], searchLimit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No results")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tVERSION\tAUTHOR")
	for _, m := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.RemoteID, m.Name, m.Version, m.Author)
	}
	return w.Flush()
}
