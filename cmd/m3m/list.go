package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"m3m/internal/domain"
)

var listProfile string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List a game's mods and their status",
	Long: `List every mod found for the game, with its status under the
selected profile.

Examples:
  m3m list --game eldenring
  m3m list --game eldenring --profile coop`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listProfile, "profile", "p", "", "profile to report status against (default: active profile)")
	rootCmd.AddCommand(listCmd)
}

type listedMod struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Status   string `json:"status"`
	External bool   `json:"external"`
	Active   bool   `json:"regulation_active,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	profileName, err := profileOrActive(engine, game, listProfile)
	if err != nil {
		return err
	}

	snap, err := engine.Mods(game)
	if err != nil {
		return err
	}
	prof, warns, err := engine.LoadProfile(game, profileName)
	if err != nil {
		return err
	}

	var rows []listedMod
	for _, m := range snap.List() {
		rows = append(rows, listedMod{
			ID:       m.ID,
			Name:     m.Name,
			Kind:     m.Kind.String(),
			Status:   engine.ModStatus(prof, m.ID).String(),
			External: m.External,
			Active:   m.RegulationActive,
		})
	}
	// Profile entries whose mod is gone from disk still show up, as missing.
	for _, em := range prof.Enabled {
		if !em.Missing {
			continue
		}
		rows = append(rows, listedMod{
			ID:     em.ModID,
			Name:   em.ModID,
			Status: domain.StatusMissing.String(),
		})
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(rows)
	}

	if verbose {
		fmt.Printf("Mods for %s (profile: %s)\n", game.Name, profileName)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tSTATUS\tNOTES")
	for _, r := range rows {
		notes := ""
		if r.External {
			notes = "external"
		}
		if r.Active {
			if notes != "" {
				notes += ", "
			}
			notes += "regulation active"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Kind, r.Status, notes)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, sw := range snap.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", sw)
	}
	for _, pw := range warns {
		fmt.Fprintf(os.Stderr, "warning: profile %s: %s\n", profileName, pw)
	}
	return nil
}
