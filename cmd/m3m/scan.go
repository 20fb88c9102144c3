package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var scanWatch bool

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Re-scan a game's mods directory",
	Long: `Re-scan the mods directory and report what changed. With --watch,
keep watching and reconcile automatically as files change, until
interrupted.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVarP(&scanWatch, "watch", "w", false, "keep watching for changes")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}

	snap, diff, err := engine.Refresh(game)
	if err != nil {
		return err
	}
	fmt.Printf("%d mods found for %s\n", len(snap.Order), game.Name)
	for _, id := range diff.Added {
		fmt.Printf("  added   %s\n", id)
	}
	for _, id := range diff.Removed {
		fmt.Printf("  removed %s\n", id)
	}
	for _, id := range diff.Changed {
		fmt.Printf("  changed %s\n", id)
	}
	for _, w := range snap.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if !scanWatch {
		return nil
	}
	if err := engine.Watch(game); err != nil {
		return err
	}
	fmt.Printf("Watching %s (ctrl-c to stop)\n", engine.Paths().ModsDir(game))
	return engine.Run(cmd.Context())
}
