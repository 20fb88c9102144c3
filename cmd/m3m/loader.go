package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"m3m/internal/core"
)

// loaderRepo is the release feed used for update checks.
const loaderRepo = "garyttierney/me3"

var loaderCmd = &cobra.Command{
	Use:   "loader",
	Short: "Inspect the installed mod loader",
}

var loaderInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the installed loader's version and paths",
	RunE:  runLoaderInfo,
}

var loaderUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check the loader's release feed for a newer version",
	RunE:  runLoaderUpdate,
}

func init() {
	loaderCmd.AddCommand(loaderInfoCmd)
	loaderCmd.AddCommand(loaderUpdateCmd)
	rootCmd.AddCommand(loaderCmd)
}

func runLoaderInfo(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	info := core.NewRuntimeInfo(log, core.NewExecRunner(), loaderBinary).Get(cmd.Context())
	if !info.Installed {
		fmt.Println("Loader not found on PATH")
		return nil
	}
	fmt.Printf("Version:  %s\n", info.Version)
	if info.Commit != "" {
		fmt.Printf("Commit:   %s\n", info.Commit)
	}
	if info.InstallPath != "" {
		fmt.Printf("Install:  %s\n", info.InstallPath)
	}
	if info.ProfileDir != "" {
		fmt.Printf("Profiles: %s\n", info.ProfileDir)
	}
	if info.LogsDir != "" {
		fmt.Printf("Logs:     %s\n", info.LogsDir)
	}
	return nil
}

func runLoaderUpdate(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	info := core.NewRuntimeInfo(log, core.NewExecRunner(), loaderBinary).Get(cmd.Context())

	release, newer, err := core.NewUpdater(log, loaderRepo).Check(cmd.Context(), info.Version)
	if err != nil {
		return err
	}
	if !newer {
		fmt.Printf("Loader is up to date (%s)\n", info.Version)
		return nil
	}
	if info.Installed {
		fmt.Printf("Update available: %s -> %s\n", info.Version, release.Version())
	} else {
		fmt.Printf("Loader not installed; latest release is %s\n", release.Version())
	}
	fmt.Printf("Release page: %s\n", release.URL)
	return nil
}
