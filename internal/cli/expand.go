package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgschema/pgcanon/internal/include"
	"github.com/pgschema/pgcanon/internal/util"
)

type expandConfig struct {
	file   string
	output string
}

func newExpandCommand() *cobra.Command {
	cfg := &expandConfig{}

	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Resolve \\i and \\ir includes into one document",
		Long: `Read a root schema file and recursively resolve its psql \i and \ir
include directives into a single concatenated SQL document. Include paths
resolve relative to the file containing the directive; cycles and missing
files are reported as errors.`,
		Example: `  # Expand to stdout
  pgcanon expand --file schema/schema.sql

  # Expand to a file
  pgcanon expand --file schema/schema.sql -o expanded.sql`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExpand(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.file, "file", "", "Root schema file")
	cmd.Flags().StringVarP(&cfg.output, "output", "o", "",
		"Output file path (default stdout)")

	cmd.MarkFlagRequired("file") //nolint:errcheck

	return cmd
}

func runExpand(cmd *cobra.Command, cfg *expandConfig) error {
	expanded, err := include.ExpandFile(cfg.file)
	if err != nil {
		return util.WrapError("expand includes", err)
	}

	color := cfg.output == "" && colorEnabled(cmd, "")

	return writeOutput(cfg.output, []byte(expanded), color)
}
