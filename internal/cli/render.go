package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgschema/pgcanon/internal/canonical"
	"github.com/pgschema/pgcanon/internal/config"
	"github.com/pgschema/pgcanon/internal/util"
)

type renderConfig struct {
	file       string
	output     string
	configPath string
}

func newRenderCommand() *cobra.Command {
	cfg := &renderConfig{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a schema source tree in canonical dump form",
		Long: `Expand includes, parse the schema into an object model, and emit it in a
deterministic pg_dump-style form: objects grouped by kind, tables in foreign
key dependency order, generated constraint names, and SERIAL columns
expanded to their integer type, sequence, and nextval default.`,
		Example: `  # Render to stdout
  pgcanon render --file schema/schema.sql

  # Render to a file with a config
  pgcanon render --file schema/schema.sql -o canonical.sql --config pgcanon.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.file, "file", "", "Root schema file")
	cmd.Flags().StringVarP(&cfg.output, "output", "o", "",
		"Output file path (default stdout)")
	cmd.Flags().StringVar(&cfg.configPath, "config", "",
		"Config file (default pgcanon.yaml when present)")

	cmd.MarkFlagRequired("file") //nolint:errcheck

	return cmd
}

func runRender(cmd *cobra.Command, cfg *renderConfig) error {
	conf, err := config.Load(cfg.configPath)
	if err != nil {
		return err
	}

	rendered, err := renderFile(cfg.file, conf)
	if err != nil {
		return err
	}

	color := cfg.output == "" && colorEnabled(cmd, conf.Output.Color)

	return writeOutput(cfg.output, []byte(rendered), color)
}

func renderFile(path string, conf *config.Config) (string, error) {
	db, err := expandAndParse(path)
	if err != nil {
		return "", err
	}

	renderer := canonical.NewRenderer(canonical.Options{
		Guards:     conf.GuardsEnabled(),
		ShowOwners: conf.Render.ShowOwners,
		Schemas:    conf.Render.Schemas,
	})

	rendered, err := renderer.Render(db)
	if err != nil {
		return "", util.WrapError("render schema", err)
	}

	return rendered, nil
}
