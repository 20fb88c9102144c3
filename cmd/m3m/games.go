package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List configured games",
	RunE:  runGames,
}

var gameExeCmd = &cobra.Command{
	Use:   "set-exe <path>",
	Short: "Pin a game's executable path (empty path clears the override)",
	Args:  cobra.ExactArgs(1),
	RunE:  runGameExe,
}

func init() {
	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(gameExeCmd)
}

func runGames(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	games, err := engine.Games()
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(games)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMODS DIR\tEXECUTABLE")
	for _, g := range games {
		exe := g.Executable
		if g.ExePath != "" {
			exe = g.ExePath
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.ID, g.Name, engine.Paths().ModsDir(g), exe)
	}
	return w.Flush()
}

func runGameExe(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	if err := engine.SetGameExecutable(game, args[0]); err != nil {
		return err
	}
	if args[0] == "" {
		fmt.Printf("Cleared executable override for %s\n", game.Name)
	} else {
		fmt.Printf("Pinned %s executable to %s\n", game.Name, args[0])
	}
	return nil
}
