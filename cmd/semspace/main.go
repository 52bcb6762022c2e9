package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dshills/semspace/internal/backup"
	"github.com/dshills/semspace/internal/coordinate"
	"github.com/dshills/semspace/internal/discovery"
	"github.com/dshills/semspace/internal/embedder"
	"github.com/dshills/semspace/internal/query"
	"github.com/dshills/semspace/internal/storage"
	"github.com/dshills/semspace/pkg/types"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

const envDBPath = "SEMSPACE_DB_PATH"

func defaultDBPath() string {
	if p := os.Getenv(envDBPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "semspace.db"
	}
	return filepath.Join(home, ".semspace", "semspace.db")
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: semspace <command> [flags]

Commands:
  store     store a concept (computes its coordinates)
  get       fetch a stored concept
  search    proximity search around a concept's coordinates
  semantic  free-text search
  anchor    search near a named anchor point
  discover  discover proximity relationships
  stats     database statistics
  backup    write a timestamped database backup
  restore   restore the database from a backup file
  export    export all data as JSON
  import    replace all data from a JSON export
  version   print build information
`)
	os.Exit(2)
}

func main() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	if len(os.Args) < 2 {
		usage()
	}

	if os.Args[1] == "version" || os.Args[1] == "--version" {
		fmt.Printf("semspace %s (built %s, %s, driver %s)\n",
			version, buildTime, storage.BuildMode, storage.DriverName)
		return
	}

	ctx := context.Background()
	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("semspace: %v", err)
	}
}

func run(ctx context.Context, command string, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			log.Printf("close: %v", cerr)
		}
	}()

	switch command {
	case "store":
		return cmdStore(ctx, store, args)
	case "get":
		return cmdGet(ctx, store, args)
	case "search":
		return cmdSearch(ctx, store, args)
	case "semantic":
		return cmdSemantic(ctx, store, args)
	case "anchor":
		return cmdAnchor(ctx, store, args)
	case "discover":
		return cmdDiscover(ctx, store, args)
	case "stats":
		return cmdStats(ctx, store)
	case "backup":
		return cmdBackup(ctx, store, args)
	case "restore":
		return cmdRestore(ctx, store, args)
	case "export":
		return cmdExport(ctx, store, args)
	case "import":
		return cmdImport(ctx, store, args)
	default:
		usage()
		return nil
	}
}

func openStore() (*storage.Store, error) {
	dbPath := defaultDBPath()
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		// Coordinates never require embeddings; degrade to keyword scoring.
		log.Printf("embeddings unavailable: %v", err)
		emb = nil
	}

	opts := &storage.Options{Embedder: emb}
	if emb != nil {
		opts.Engine = coordinate.NewEngineWithEmbedder(emb)
	}
	return storage.Open(dbPath, opts)
}

func cmdStore(ctx context.Context, store *storage.Store, args []string) error {
	fs := flag.NewFlagSet("store", flag.ExitOnError)
	contextName := fs.String("context", coordinate.GeneralProfile, "scoring context")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: semspace store [-context name] <text>")
	}

	id, err := store.Store(ctx, fs.Arg(0), *contextName)
	if err != nil {
		return err
	}
	concept, err := store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	printConcept(concept)
	return nil
}

func cmdGet(ctx context.Context, store *storage.Store, args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	contextName := fs.String("context", coordinate.GeneralProfile, "scoring context")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: semspace get [-context name] <text>")
	}

	concept, err := store.Get(ctx, fs.Arg(0), *contextName)
	if err != nil {
		return err
	}
	printConcept(concept)
	return nil
}

func cmdSearch(ctx context.Context, store *storage.Store, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	contextName := fs.String("context", coordinate.GeneralProfile, "scoring context")
	maxDist := fs.Float64("max-distance", 0.5, "maximum distance")
	limit := fs.Int("limit", 10, "result limit")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: semspace search [flags] <text>")
	}

	target := store.Engine().Calculate(ctx, fs.Arg(0), *contextName)
	results, err := query.New(store).Proximity(ctx, target, *maxDist, query.Options{Limit: *limit})
	if err != nil {
		return err
	}
	printResults(results)
	return nil
}

func cmdSemantic(ctx context.Context, store *storage.Store, args []string) error {
	fs := flag.NewFlagSet("semantic", flag.ExitOnError)
	limit := fs.Int("limit", 10, "result limit")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: semspace semantic [flags] <text>")
	}

	results, err := query.New(store).Semantic(ctx, fs.Arg(0), *limit)
	if err != nil {
		return err
	}
	printResults(results)
	return nil
}

func cmdAnchor(ctx context.Context, store *storage.Store, args []string) error {
	fs := flag.NewFlagSet("anchor", flag.ExitOnError)
	maxDist := fs.Float64("max-distance", coordinate.MaxDistance, "maximum distance")
	limit := fs.Int("limit", 10, "result limit")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: semspace anchor [flags] <name>")
	}

	results, err := query.New(store).NearAnchor(ctx, fs.Arg(0), *maxDist, *limit)
	if err != nil {
		return err
	}
	printResults(results)
	return nil
}

func cmdDiscover(ctx context.Context, store *storage.Store, args []string) error {
	fs := flag.NewFlagSet("discover", flag.ExitOnError)
	contextName := fs.String("context", "", "restrict to one context")
	maxDist := fs.Float64("max-distance", discovery.DefaultOptions().MaxDistance, "maximum link distance")
	maxRels := fs.Int("max-relationships", discovery.DefaultOptions().MaxRelationships, "max neighbors per concept")
	_ = fs.Parse(args)

	n, err := discovery.New(store).Discover(ctx, discovery.Options{
		Context:          *contextName,
		MaxDistance:      *maxDist,
		MaxRelationships: *maxRels,
	})
	if err != nil {
		return err
	}
	fmt.Printf("discovered %d new relationships\n", n)
	return nil
}

func cmdStats(ctx context.Context, store *storage.Store) error {
	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("concepts:       %d\n", stats.Concepts)
	fmt.Printf("sacred numbers: %d\n", stats.SacredNumbers)
	fmt.Printf("anchors:        %d\n", stats.Anchors)
	fmt.Printf("relationships:  %d\n", stats.Relationships)
	fmt.Printf("size:           %.2f MB\n", stats.SizeMB)
	return nil
}

func cmdBackup(ctx context.Context, store *storage.Store, args []string) error {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	dir := fs.String("dir", filepath.Join(filepath.Dir(defaultDBPath()), "backups"), "backup directory")
	keep := fs.Int("keep", 5, "backups to retain (0 keeps all)")
	_ = fs.Parse(args)

	path, err := backup.New(store).Auto(ctx, *dir, *keep)
	if err != nil {
		return err
	}
	fmt.Printf("backup written to %s\n", path)
	return nil
}

func cmdRestore(ctx context.Context, store *storage.Store, args []string) error {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: semspace restore <backup-file>")
	}

	if err := backup.New(store).Restore(ctx, fs.Arg(0)); err != nil {
		return err
	}
	fmt.Println("restore complete")
	return nil
}

func cmdExport(ctx context.Context, store *storage.Store, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: semspace export <file.json>")
	}

	if err := backup.New(store).ExportJSON(ctx, fs.Arg(0)); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", fs.Arg(0))
	return nil
}

func cmdImport(ctx context.Context, store *storage.Store, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: semspace import <file.json>")
	}

	if err := backup.New(store).RestoreJSON(ctx, fs.Arg(0)); err != nil {
		return err
	}
	fmt.Println("import complete")
	return nil
}

func printResults(results []query.Result) {
	if len(results) == 0 {
		fmt.Println("no results")
		return
	}
	for _, r := range results {
		fmt.Printf("%-8.4f ", r.Distance)
		printConcept(r.Concept)
	}
}

func printConcept(c *types.Concept) {
	fmt.Printf("[%d] %q (%s) L=%.3f J=%.3f P=%.3f W=%.3f resonance=%.3f\n",
		c.ID, c.Text, c.Context,
		c.Coordinate.Love, c.Coordinate.Justice, c.Coordinate.Power, c.Coordinate.Wisdom,
		c.Resonance)
}
