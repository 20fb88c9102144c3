package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	enableProfile  string
	disableProfile string
)

var enableCmd = &cobra.Command{
	Use:   "enable <mod-id>",
	Short: "Enable a mod in a profile",
	Long: `Add a mod to the selected profile. Enabling a regulation mod also
makes it the game's active regulation override; any other active one is
switched off first.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnable,
}

var disableCmd = &cobra.Command{
	Use:   "disable <mod-id>",
	Short: "Disable a mod in a profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runDisable,
}

func init() {
	enableCmd.Flags().StringVarP(&enableProfile, "profile", "p", "", "profile to modify (default: active profile)")
	disableCmd.Flags().StringVarP(&disableProfile, "profile", "p", "", "profile to modify (default: active profile)")
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}

func runEnable(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	profileName, err := profileOrActive(engine, game, enableProfile)
	if err != nil {
		return err
	}
	if err := engine.EnableMod(game, profileName, args[0]); err != nil {
		return err
	}
	fmt.Printf("Enabled %s in profile %s\n", args[0], profileName)
	return nil
}

func runDisable(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	profileName, err := profileOrActive(engine, game, disableProfile)
	if err != nil {
		return err
	}
	if err := engine.DisableMod(game, profileName, args[0]); err != nil {
		return err
	}
	fmt.Printf("Disabled %s in profile %s\n", args[0], profileName)
	return nil
}
