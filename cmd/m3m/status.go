package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"m3m/internal/core"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize a game's active profile and loader state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusReport struct {
	Game          string `json:"game"`
	ActiveProfile string `json:"active_profile"`
	ModsFound     int    `json:"mods_found"`
	Enabled       int    `json:"enabled"`
	Missing       int    `json:"missing"`
	Regulation    string `json:"regulation,omitempty"`
	LoaderVersion string `json:"loader_version,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}

	prof, _, err := engine.ActiveProfile(game)
	if err != nil {
		return err
	}
	snap, err := engine.Mods(game)
	if err != nil {
		return err
	}

	report := statusReport{
		Game:          game.ID,
		ActiveProfile: prof.Name,
		ModsFound:     len(snap.Order),
		Enabled:       len(prof.Enabled),
	}
	for _, em := range prof.Enabled {
		if em.Missing {
			report.Missing++
		}
	}
	if reg, ok, err := engine.ActiveRegulation(game); err == nil && ok {
		report.Regulation = reg.ID
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	if info := core.NewRuntimeInfo(log, core.NewExecRunner(), loaderBinary).Get(cmd.Context()); info.Installed {
		report.LoaderVersion = info.Version
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(report)
	}

	fmt.Printf("Game:           %s\n", game.Name)
	fmt.Printf("Active profile: %s\n", report.ActiveProfile)
	fmt.Printf("Mods found:     %d\n", report.ModsFound)
	fmt.Printf("Enabled:        %d (%d missing)\n", report.Enabled, report.Missing)
	if report.Regulation != "" {
		fmt.Printf("Regulation:     %s\n", report.Regulation)
	}
	if report.LoaderVersion != "" {
		fmt.Printf("Loader:         me3 %s\n", report.LoaderVersion)
	} else {
		fmt.Println("Loader:         not found on PATH")
	}
	return nil
}
