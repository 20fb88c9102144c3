package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"m3m/internal/source"
	"m3m/internal/source/nexus"
	"m3m/internal/storage/db"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Tie local mods to their Nexus Mods pages",
}

var linkAddCmd = &cobra.Command{
	Use:   "add <mod-id> <nexus-mod-id>",
	Short: "Link a local mod to a Nexus Mods page and cache its metadata",
	Args:  cobra.ExactArgs(2),
	RunE:  runLinkAdd,
}

var linkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List linked mods with their cached metadata",
	RunE:  runLinkList,
}

var linkRemoveCmd = &cobra.Command{
	Use:   "remove <mod-id>",
	Short: "Remove a mod's source link",
	Args:  cobra.ExactArgs(1),
	RunE:  runLinkRemove,
}

func init() {
	linkCmd.AddCommand(linkAddCmd)
	linkCmd.AddCommand(linkListCmd)
	linkCmd.AddCommand(linkRemoveCmd)
	rootCmd.AddCommand(linkCmd)
}

func openDB() (*db.DB, error) {
	dir, err := resolveConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}
	return db.Open(filepath.Join(dir, "m3m.db"))
}

func runLinkAdd(cmd *cobra.Command, args []string) error {
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
	mod, ok := snap.Lookup(args[0])
	if !ok {
		return fmt.Errorf("mod %s not found for %s", args[0], game.Name)
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	src := nexus.New(nil, os.Getenv("NEXUS_API_KEY"))
	if err := database.SaveModLink(db.ModLink{
		GameID:   game.ID,
		ModID:    mod.ID,
		SourceID: src.ID(),
		RemoteID: args[1],
	}); err != nil {
		return err
	}

	meta, err := src.Lookup(cmd.Context(), source.Query{GameSlug: game.ID, RemoteID: args[1]})
	if err != nil {
		// The link is saved; metadata refresh can happen next time.
		fmt.Fprintf(os.Stderr, "warning: fetching metadata: %v\n", err)
		fmt.Printf("Linked %s to nexus mod %s\n", mod.ID, args[1])
		return nil
	}
	if err := database.SaveMetadata(meta); err != nil {
		return err
	}
	fmt.Printf("Linked %s to %q (%s) by %s\n", mod.ID, meta.Name, meta.Version, meta.Author)
	return nil
}

func runLinkList(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	links, err := database.GetModLinks(game.ID)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MOD\tSOURCE\tREMOTE\tNAME\tVERSION")
	for _, link := range links {
		name, ver := "", ""
		meta, _, err := database.GetMetadata(link.SourceID, link.RemoteID)
		if err == nil {
			name, ver = meta.Name, meta.Version
		} else if !errors.Is(err, db.ErrNotFound) {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", link.ModID, link.SourceID, link.RemoteID, name, ver)
	}
	return w.Flush()
}

func runLinkRemove(cmd *cobra.Command, args []string) error {
	engine, err := initEngine()
	if err != nil {
		return err
	}
	game, err := requireGame(engine)
	if err != nil {
		return err
	}
	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.DeleteModLink(game.ID, args[0]); err != nil {
		return err
	}
	fmt.Printf("Removed link for %s\n", args[0])
	return nil
}
