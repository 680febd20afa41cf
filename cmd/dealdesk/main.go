package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dealdesk/internal"
	"dealdesk/internal/config"
	"dealdesk/internal/observability"
	"dealdesk/internal/om"
	"dealdesk/internal/resume"
	"dealdesk/internal/seed"
	"dealdesk/internal/server"
	"dealdesk/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := makeStore(ctx, cfg)
	must(err)
	defer store.Close()

	cmd := os.Args[1]
	switch cmd {
	case "seed:demo":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		org := fs.String("org", cfg.SeedOrgID, "org id to seed into")
		_ = fs.Parse(os.Args[2:])
		svc := seed.NewService(store)
		result, err := svc.SeedDemo(ctx, *org)
		must(err)
		fmt.Printf("seeded org=%s projects=%s\n", result.OrgID, strings.Join(result.ProjectIDs, ","))
	case "om:show":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		projectID := fs.String("project", "", "project id")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*projectID) == "" {
			must(fmt.Errorf("--project is required"))
		}
		content, err := store.GetOMContent(ctx, *projectID)
		must(err)
		if content == nil {
			must(fmt.Errorf("no om content for project %s", *projectID))
		}
		normalized := om.Normalize(om.Content(content))
		blob, err := json.MarshalIndent(normalized, "", "  ")
		must(err)
		fmt.Println(string(blob))
	case "om:export":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		projectID := fs.String("project", "", "project id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*projectID) == "" {
			must(fmt.Errorf("--project is required"))
		}
		content, err := store.GetOMContent(ctx, *projectID)
		must(err)
		if content == nil {
			must(fmt.Errorf("no om content for project %s", *projectID))
		}
		path := *out
		if strings.TrimSpace(path) == "" {
			path = filepath.Join(cfg.OutputDir, *projectID+".xlsx")
		}
		normalized := om.Normalize(om.Content(content))
		must(om.ExportDashboardXLSX(normalized, path))
		fmt.Printf("exported om dashboard to %s\n", path)
	case "resume:merge":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		projectID := fs.String("project", "", "project id")
		updatesPath := fs.String("updates", "", "path to updates json")
		kind := fs.String("kind", "borrower", "borrower|project")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*projectID) == "" || strings.TrimSpace(*updatesPath) == "" {
			must(fmt.Errorf("--project and --updates are required"))
		}
		must(mergeResume(ctx, store, *projectID, *updatesPath, *kind))
		fmt.Printf("merged %s resume updates for project %s\n", *kind, *projectID)
	case "serve":
		observability.Start(cfg.MetricsPort)
		must(server.New(store).Run(ctx, cfg.HTTPPort))
	default:
		usage()
		os.Exit(1)
	}
}

func mergeResume(ctx context.Context, store storage.Store, projectID, updatesPath, kind string) error {
	blob, err := os.ReadFile(updatesPath)
	if err != nil {
		return err
	}
	var updates map[string]any
	if err := json.Unmarshal(blob, &updates); err != nil {
		return fmt.Errorf("parse updates: %w", err)
	}
	metadata := mapOrNil(updates["_metadata"])

	var existing *internal.ResumeRow
	switch kind {
	case "borrower":
		existing, err = store.GetBorrowerResume(ctx, projectID)
	case "project":
		existing, err = store.GetProjectResume(ctx, projectID)
	default:
		return fmt.Errorf("unsupported resume kind: %s", kind)
	}
	if err != nil {
		return err
	}

	existingContent := map[string]any{}
	row := internal.ResumeRow{ProjectID: projectID}
	if existing != nil {
		existingContent = existing.Content
		row = *existing
	}

	merged, lockedFields := resume.MergeUpdates(existingContent, updates, metadata)
	row.Content = merged
	if locked := mapOrNil(lockedFields); locked != nil {
		row.LockedFields = locked
	}
	if pct, ok := updates["completenessPercent"]; ok {
		row.CompletenessPercent = resume.ParseCompletenessPercent(pct)
	}

	if kind == "borrower" {
		return store.SaveBorrowerResume(ctx, row)
	}
	return store.SaveProjectResume(ctx, row)
}

func mapOrNil(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func makeStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StoreDriver)) {
	case "sqlite", "":
		return storage.Open(cfg.DBPath)
	case "postgres":
		if err := cfg.Require("DATABASE_URL", cfg.DatabaseURL); err != nil {
			return nil, err
		}
		return storage.OpenPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}
}

func usage() {
	fmt.Println("usage: dealdesk <command>")
	fmt.Println("commands:")
	fmt.Println("  seed:demo [--org=demo-org]")
	fmt.Println("  om:show --project=<id>")
	fmt.Println("  om:export --project=<id> [--out=./out/project.xlsx]")
	fmt.Println("  resume:merge --project=<id> --updates=updates.json [--kind=borrower|project]")
	fmt.Println("  serve")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
