package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var externalCmd = &cobra.Command{
	Use:   "external",
	Short: "Track mods living outside the managed mods directory",
}

var externalAddCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Track an external mod folder or native module",
	Args:  cobra.ExactArgs(1),
	RunE:  runExternalAdd,
}

var externalRemoveCmd = &cobra.Command{
	Use:   "remove <path>",
	Short: "Stop tracking an external mod",
	Args:  cobra.ExactArgs(1),
	RunE:  runExternalRemove,
}

func init() {
	externalCmd.AddCommand(externalAddCmd)
	externalCmd.AddCommand(externalRemoveCmd)
	rootCmd.AddCommand(externalCmd)
}

func runExternalAdd(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving %s: %w", args[0], err)
	}
	if err := engine.AddExternal(game, abs); err != nil {
		return err
	}
	fmt.Printf("Tracking external mod %s for %s\n", abs, game.Name)
	return nil
}

func runExternalRemove(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving %s: %w", args[0], err)
	}
	if err := engine.RemoveExternal(game, abs); err != nil {
		return err
	}
	fmt.Printf("Stopped tracking %s\n", abs)
	return nil
}
