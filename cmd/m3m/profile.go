package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"m3m/internal/domain"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage a game's profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a game's profiles",
	RunE:  runProfileList,
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new empty profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileCreate,
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a profile (the last profile of a game cannot be deleted)",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileDelete,
}

var profileRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a profile",
	Args:  cobra.ExactArgs(2),
	RunE:  runProfileRename,
}

var profileDuplicateCmd = &cobra.Command{
	Use:   "duplicate <src> <dst>",
	Short: "Copy a profile under a new name",
	Args:  cobra.ExactArgs(2),
	RunE:  runProfileDuplicate,
}

var profileActivateCmd = &cobra.Command{
	Use:   "activate <name>",
	Short: "Make a profile the game's active profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileActivate,
}

var (
	setProfile      string
	setSavefile     string
	setStartOnline  bool
	setDisableArxan bool
	setSkipLogos    bool
)

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update a profile's launch settings",
	Long: `Replace the profile's launch settings with the given flags.
Omitted boolean flags reset to their defaults.

Examples:
  m3m profile set --game eldenring --savefile coop.sl2 --start-online`,
	RunE: runProfileSet,
}

func init() {
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileCreateCmd)
	profileCmd.AddCommand(profileDeleteCmd)
	profileCmd.AddCommand(profileRenameCmd)
	profileCmd.AddCommand(profileDuplicateCmd)
	profileCmd.AddCommand(profileActivateCmd)
	profileSetCmd.Flags().StringVarP(&setProfile, "profile", "p", "", "profile to modify (default: active profile)")
	profileSetCmd.Flags().StringVar(&setSavefile, "savefile", "", "alternate save file name")
	profileSetCmd.Flags().BoolVar(&setStartOnline, "start-online", false, "allow online play")
	profileSetCmd.Flags().BoolVar(&setDisableArxan, "disable-arxan", false, "disable the anti-tamper runtime")
	profileSetCmd.Flags().BoolVar(&setSkipLogos, "skip-logos", false, "skip intro logos")
	profileCmd.AddCommand(profileSetCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	profileName, err := profileOrActive(engine, game, setProfile)
	if err != nil {
		return err
	}
	set := domain.ProfileSettings{
		Savefile:     setSavefile,
		StartOnline:  setStartOnline,
		DisableArxan: setDisableArxan,
		SkipLogos:    setSkipLogos,
	}
	if err := engine.UpdateSettings(game, profileName, set); err != nil {
		return err
	}
	fmt.Printf("Updated settings for profile %s\n", profileName)
	return nil
}

func runProfileList(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	profiles, err := engine.Profiles().List(game.ID)
	if err != nil {
		return err
	}
	active, _ := engine.Profiles().Active(game.ID)

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(profiles)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tUPDATED\tACTIVE")
	for _, p := range profiles {
		mark := ""
		if p.Name == active {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.UpdatedAt.Format("2006-01-02 15:04"), mark)
	}
	return w.Flush()
}

func runProfileCreate(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	if err := engine.Profiles().Create(game, args[0]); err != nil {
		return err
	}
	fmt.Printf("Created profile %s for %s\n", args[0], game.Name)
	return nil
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	if err := engine.Profiles().Delete(game, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted profile %s\n", args[0])
	return nil
}

func runProfileRename(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	if err := engine.Profiles().Rename(game, args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("Renamed profile %s to %s\n", args[0], args[1])
	return nil
}

func runProfileDuplicate(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	if err := engine.Profiles().Duplicate(game, args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("Duplicated profile %s as %s\n", args[0], args[1])
	return nil
}

func runProfileActivate(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	if err := engine.Profiles().SetActive(game, args[0]); err != nil {
		return err
	}
	fmt.Printf("Activated profile %s for %s\n", args[0], game.Name)
	return nil
}
