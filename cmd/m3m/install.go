package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"m3m/internal/core"
)

var installEnable bool

var installCmd = &cobra.Command{
	Use:   "install <path>",
	Short: "Install a mod into a game's mods directory",
	Long: `Copy a mod payload into the game's managed mods directory. The
payload can be a native module file, a mod folder, or a zip archive.

Examples:
  m3m install --game eldenring ~/Downloads/SeamlessCoop.zip
  m3m install --game eldenring ./MyOverhaul --enable`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installEnable, "enable", false, "enable the mod in the active profile after install")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	installer := core.NewInstaller(log)
	modName, err := installer.Install(engine.Paths().ModsDir(game), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Installed %s for %s\n", modName, game.Name)

	snap, _, err := engine.Refresh(game)
	if err != nil {
		return err
	}
	if !installEnable {
		return nil
	}

	mod, ok := snap.Lookup(modName)
	if !ok {
		return fmt.Errorf("installed mod %s not found after scan", modName)
	}
	profileName, err := engine.Profiles().Active(game.ID)
	if err != nil {
		return err
	}
	if err := engine.EnableMod(game, profileName, mod.ID); err != nil {
		return err
	}
	fmt.Printf("Enabled %s in profile %s\n", mod.ID, profileName)
	return nil
}
