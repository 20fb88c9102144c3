package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var regulationCmd = &cobra.Command{
	Use:   "regulation",
	Short: "Manage the game's active regulation override",
	Long: `Games patch their core parameters through a single regulation file,
so at most one regulation mod can be active at a time. These commands switch
which mod's regulation file is live.`,
}

var regulationStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show regulation mods and which one is active",
	RunE:  runRegulationStatus,
}

var regulationActivateCmd = &cobra.Command{
	Use:   "activate <mod-id>",
	Short: "Make a regulation mod the sole active one",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegulationActivate,
}

var regulationOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Deactivate every regulation override",
	RunE:  runRegulationOff,
}

func init() {
	regulationCmd.AddCommand(regulationStatusCmd)
	regulationCmd.AddCommand(regulationActivateCmd)
	regulationCmd.AddCommand(regulationOffCmd)
	rootCmd.AddCommand(regulationCmd)
}

func runRegulationStatus(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	snap, err := engine.Mods(game)
	if err != nil {
		return err
	}
	regs := snap.RegulationMods()
	if len(regs) == 0 {
		fmt.Printf("No regulation mods found for %s\n", game.Name)
		return nil
	}
	for _, m := range regs {
		state := "inactive"
		if m.RegulationActive {
			state = "active"
		}
		fmt.Printf("%s\t%s\n", m.ID, state)
	}
	return nil
}

func runRegulationActivate(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	if err := engine.ActivateRegulation(game, args[0]); err != nil {
		return err
	}
	fmt.Printf("Regulation override now served by %s\n", args[0])
	return nil
}

func runRegulationOff(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	if err := engine.DeactivateRegulations(game); err != nil {
		return err
	}
	fmt.Printf("All regulation overrides for %s deactivated\n", game.Name)
	return nil
}
