package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgschema/pgcanon/internal/canonical"
	"github.com/pgschema/pgcanon/internal/config"
	"github.com/pgschema/pgcanon/internal/extractor"
	"github.com/pgschema/pgcanon/internal/schema"
	"github.com/pgschema/pgcanon/internal/util"
	"github.com/pgschema/pgcanon/pkg/database"
)

type extractConfig struct {
	databaseURL   string
	output        string
	configPath    string
	excludeSchema []string
}

func newExtractCommand(ctx context.Context) *cobra.Command {
	cfg := &extractConfig{}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract a live database schema in canonical dump form",
		Long: `Introspect a running database over pg_catalog and emit its schema in the
same canonical form render produces, so a file-based schema can be compared
directly against a live database.`,
		Example: `  # Extract to stdout
  pgcanon extract --database-url "$DATABASE_URL"

  # Extract to a file, excluding a schema
  pgcanon extract --database-url "$DATABASE_URL" -o live.sql --exclude-schema audit`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExtract(ctx, cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.databaseURL, "database-url", os.Getenv("DATABASE_URL"),
		"PostgreSQL connection URL (or set DATABASE_URL env var)")
	cmd.Flags().StringVarP(&cfg.output, "output", "o", "",
		"Output file path (default stdout)")
	cmd.Flags().StringVar(&cfg.configPath, "config", "",
		"Config file (default pgcanon.yaml when present)")
	cmd.Flags().StringArrayVar(&cfg.excludeSchema, "exclude-schema", []string{},
		"Additional schemas to exclude (can be specified multiple times). "+
			"System schemas (pg_catalog, information_schema, pg_toast) are excluded by default.")

	cmd.MarkFlagRequired("database-url") //nolint:errcheck

	return cmd
}

func runExtract(ctx context.Context, cmd *cobra.Command, cfg *extractConfig) error {
	conf, err := config.Load(cfg.configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	pool, err := database.NewPoolFromURL(ctx, cfg.databaseURL)
	if err != nil {
		return util.WrapError("connect to database", err)
	}
	defer pool.Close()

	ext, err := extractor.New(pool, extractor.Options{
		ExcludeSchemas: cfg.excludeSchema,
	})
	if err != nil {
		return util.WrapError("create extractor", err)
	}

	dbName, _ := pool.CurrentDatabase(ctx)

	serverVersion, err := pool.ServerVersion(ctx)
	if err != nil {
		return util.WrapError("get server version", err)
	}

	fmt.Fprintf(os.Stderr, "Connected to database: %s (PostgreSQL %s)\n", dbName, serverVersion)
	fmt.Fprintf(os.Stderr, "Extracting schema...\n")

	startTime := time.Now()

	dbSchema, err := ext.Extract(ctx)
	if err != nil {
		return util.WrapError("extract schema", err)
	}

	printExtractionSummary(dbSchema, time.Since(startTime))

	renderer := canonical.NewRenderer(canonical.Options{
		Guards:     conf.GuardsEnabled(),
		ShowOwners: conf.Render.ShowOwners,
		Schemas:    conf.Render.Schemas,
	})

	rendered, err := renderer.Render(dbSchema)
	if err != nil {
		return util.WrapError("render schema", err)
	}

	color := cfg.output == "" && colorEnabled(cmd, conf.Output.Color)

	if err := writeOutput(cfg.output, []byte(rendered), color); err != nil {
		return err
	}

	if cfg.output != "" && cfg.output != "-" {
		absPath, _ := filepath.Abs(cfg.output)
		fmt.Fprintf(os.Stderr, "\nSchema written to: %s\n", absPath)
	}

	return nil
}

func printExtractionSummary(db *schema.Database, elapsed time.Duration) {
	fmt.Fprintf(os.Stderr, "\nExtraction complete in %v\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "Summary:\n")
	fmt.Fprintf(os.Stderr, "  Schemas:    %d\n", db.GetSchemas())
	fmt.Fprintf(os.Stderr, "  Extensions: %d\n", db.GetExtensions())
	fmt.Fprintf(os.Stderr, "  Types:      %d\n", db.GetTypes())
	fmt.Fprintf(os.Stderr, "  Domains:    %d\n", db.GetDomains())
	fmt.Fprintf(os.Stderr, "  Sequences:  %d\n", db.GetSequences())
	fmt.Fprintf(os.Stderr, "  Tables:     %d\n", db.GetTables())
	fmt.Fprintf(os.Stderr, "  Views:      %d\n", db.GetViews())
	fmt.Fprintf(os.Stderr, "  Functions:  %d\n", db.GetFunctions())
	fmt.Fprintf(os.Stderr, "  Triggers:   %d\n", db.GetTriggers())
}
