package main

import (
	"context"
	"fmt"
	"os"

	"github.com/donos-project/donosd/internal/blocklist"
	"github.com/donos-project/donosd/internal/config"
	"github.com/donos-project/donosd/internal/database"
)

// runBlocklistCommand implements the "blocklist" subcommand: "sync" fetches
// and imports one hosts-file blocklist, "list" prints known sources.
func runBlocklistCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("blocklist: missing action (sync|list)")
	}

	switch args[0] {
	case "sync":
		return runBlocklistSync(args[1:])
	case "list":
		return runBlocklistList(args[1:])
	default:
		return fmt.Errorf("blocklist: unknown action %q", args[0])
	}
}

func runBlocklistSync(args []string) error {
	fs := newFlagSet("blocklist sync")
	configPath := fs.String("config", "", "path to the YAML configuration file")
	url := fs.String("url", "", "hosts-file blocklist URL to fetch")
	description := fs.String("description", "", "human-readable description stored with the source")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *url == "" {
		return fmt.Errorf("blocklist sync: --url is required")
	}

	cfg, err := config.Load(config.ResolveConfigPath(*configPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	loader := blocklist.NewLoader()
	list, err := loader.Load(context.Background(), *url)
	if err != nil {
		return fmt.Errorf("fetch blocklist: %w", err)
	}

	desc := *description
	if desc == "" {
		desc = fmt.Sprintf("blocklist from %s", *url)
	}

	sourceID, err := db.UpsertSource(desc, *url, desc, list.Hash)
	if err != nil {
		return fmt.Errorf("upsert blocklist source: %w", err)
	}

	inserted, deleted, err := db.ReplaceDomains(sourceID, list.Domains)
	if err != nil {
		return fmt.Errorf("sync blocklist domains: %w", err)
	}

	fmt.Fprintf(os.Stdout, "inserted %d new domains and deleted %d existing domains\n", inserted, deleted)
	return nil
}

func runBlocklistList(args []string) error {
	fs := newFlagSet("blocklist list")
	configPath := fs.String("config", "", "path to the YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(config.ResolveConfigPath(*configPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	reports, err := db.SourceReports()
	if err != nil {
		return fmt.Errorf("list blocklist sources: %w", err)
	}

	if len(reports) == 0 {
		fmt.Fprintln(os.Stdout, "there is no blocklist in the database")
		return nil
	}
	for _, r := range reports {
		fmt.Fprintf(os.Stdout, "blocklist %s (%s) contains %d domains\n", r.ID, r.Description, r.DomainCount)
	}
	return nil
}
