package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"m3m/internal/core"
	"m3m/internal/domain"
	"m3m/internal/storage/config"
)

var (
	version = "0.3.0"

	// Global flags
	configDir  string
	gameSlug   string
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "m3m",
	Short: "Mod and profile manager for the me3 mod loader",
	Long: `m3m manages mods and launch profiles for games run through the me3
mod loader: it tracks each game's mods directory, keeps .me3 profile files
in sync, and launches games with the profile you choose.

Use subcommands for operations. Run 'm3m --help' for available commands.`,
	Version:       version,
	SilenceUsage:  true, // Runtime errors should not print usage
	SilenceErrors: true, // We handle error output in Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: ~/.config/m3m)")
	rootCmd.PersistentFlags().StringVarP(&gameSlug, "game", "g", "", "game to operate on")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format (list, status, order)")
}

// Execute runs the root command. Exit codes: 0 = success, 1 = error.
// When --json is set and an error occurs, prints {"error":"..."} to stdout.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if jsonOutput {
			fmt.Printf(`{"error":%q}`+"\n", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// resolveConfigDir returns the config root, defaulting under the user's home.
func resolveConfigDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "m3m"), nil
}

// newLogger builds the CLI logger. Verbose runs get development output at
// debug level; otherwise only warnings and errors reach the terminal.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// initEngine creates the engine over the resolved config directory.
func initEngine() (*core.Engine, error) {
	dir, err := resolveConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}
	log, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return core.NewEngine(log, config.NewStore(dir))
}

// requireGame resolves the --game flag to a configured game.
func requireGame(engine *core.Engine) (domain.Game, error) {
	if gameSlug == "" {
		return domain.Game{}, fmt.Errorf("no game specified; use --game or -g flag (run 'm3m games' to list)")
	}
	return engine.Game(gameSlug)
}

// profileOrActive returns the given profile name, or the game's active
// profile when empty.
func profileOrActive(engine *core.Engine, game domain.Game, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	return engine.Profiles().Active(game.ID)
}
