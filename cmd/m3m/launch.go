package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"m3m/internal/core"
)

var (
	launchProfile string
	launchDryRun  bool
	loaderBinary  = "me3"
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch a game through the mod loader",
	Long: `Launch the game with the selected profile. The load order is
resolved first; a broken dependency or cycle aborts the launch.

Examples:
  m3m launch --game eldenring
  m3m launch --game eldenring --profile coop --dry-run`,
	RunE: runLaunch,
}

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Show the resolved load order for a profile",
	RunE:  runOrder,
}

var reorderCmd = &cobra.Command{
	Use:   "reorder <mod-id>...",
	Short: "Set the explicit order of a profile's enabled mods",
	Long: `Rearrange the profile's enabled mods to the given sequence. Mods
not named keep their relative order after the named ones. Dependencies
still win: the resolved load order may differ where a dependency demands it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReorder,
}

func init() {
	launchCmd.Flags().StringVarP(&launchProfile, "profile", "p", "", "profile to launch with (default: active profile)")
	launchCmd.Flags().BoolVar(&launchDryRun, "dry-run", false, "print the loader invocation instead of running it")
	orderCmd.Flags().StringVarP(&launchProfile, "profile", "p", "", "profile to resolve (default: active profile)")
	reorderCmd.Flags().StringVarP(&launchProfile, "profile", "p", "", "profile to modify (default: active profile)")
	rootCmd.AddCommand(launchCmd)
	rootCmd.AddCommand(orderCmd)
	rootCmd.AddCommand(reorderCmd)
}

func runLaunch(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	profileName, err := profileOrActive(engine, game, launchProfile)
	if err != nil {
		return err
	}

	// Resolve the order up front so dependency problems surface before the
	// loader starts.
	order, err := engine.LoadOrder(game, profileName)
	if err != nil {
		return fmt.Errorf("resolving load order: %w", err)
	}
	if verbose {
		fmt.Printf("Load order: %v\n", order)
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	launcher := core.NewLauncher(log, core.NewExecRunner(), loaderBinary, engine.Paths())
	if launchDryRun {
		fmt.Printf("%s %v\n", loaderBinary, launcher.LaunchArgs(game, profileName))
		return nil
	}
	return launcher.Launch(cmd.Context(), game, profileName)
}

func runReorder(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	profileName, err := profileOrActive(engine, game, launchProfile)
	if err != nil {
		return err
	}
	if err := engine.Reorder(game, profileName, args); err != nil {
		return err
	}
	fmt.Printf("Reordered %d mods in profile %s\n", len(args), profileName)
	return nil
}

func runOrder(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	profileName, err := profileOrActive(engine, game, launchProfile)
	if err != nil {
		return err
	}
	order, err := engine.LoadOrder(game, profileName)
	if err != nil {
		return err
	}
	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(order)
	}
	for i, id := range order {
		fmt.Printf("%d. %s\n", i+1, id)
	}
	return nil
}
