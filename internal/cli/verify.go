package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgschema/pgcanon/internal/compare"
	"github.com/pgschema/pgcanon/internal/config"
	"github.com/pgschema/pgcanon/internal/util"
)

type verifyConfig struct {
	file       string
	expected   string
	configPath string
}

func newVerifyCommand() *cobra.Command {
	cfg := &verifyConfig{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the canonical rendering against an expected fixture",
		Long: `Render the input schema and compare it statement by statement against the
expected fixture. Both documents are normalized first (collapsed whitespace,
uppercased keywords outside strings, stripped comments), so formatting-only
differences do not fail verification. Exits non-zero on mismatch.`,
		Example: `  # Verify a schema tree against its fixture
  pgcanon verify --file schema/schema.sql --expected fixtures/expected.sql`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.file, "file", "", "Root schema file")
	cmd.Flags().StringVar(&cfg.expected, "expected", "", "Expected fixture file")
	cmd.Flags().StringVar(&cfg.configPath, "config", "",
		"Config file (default pgcanon.yaml when present)")

	cmd.MarkFlagRequired("file")     //nolint:errcheck
	cmd.MarkFlagRequired("expected") //nolint:errcheck

	return cmd
}

func runVerify(cmd *cobra.Command, cfg *verifyConfig) error {
	conf, err := config.Load(cfg.configPath)
	if err != nil {
		return err
	}

	rendered, err := renderFile(cfg.file, conf)
	if err != nil {
		return err
	}

	expectedData, err := os.ReadFile(cfg.expected)
	if err != nil {
		return util.WrapError("read expected fixture", err)
	}

	result, err := compare.Documents(rendered, string(expectedData))
	if err != nil {
		return util.WrapError("compare documents", err)
	}

	if result.Equal {
		fmt.Fprintf(os.Stderr, "OK: %d statements match\n", result.ActualCount)
		return nil
	}

	printDiff(result.Diff, colorEnabled(cmd, conf.Output.Color))

	return fmt.Errorf("rendered output does not match %s (%d vs %d statements)",
		cfg.expected, result.ActualCount, result.ExpectedCount)
}

func printDiff(diff string, color bool) {
	if !color {
		fmt.Print(diff)
		return
	}

	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}

		trimmed := strings.TrimSuffix(line, "\n")

		switch {
		case strings.HasPrefix(line, "+"):
			fmt.Println(diffAddStyle.Render(trimmed))
		case strings.HasPrefix(line, "-"):
			fmt.Println(diffRemoveStyle.Render(trimmed))
		case strings.HasPrefix(line, "@@"):
			fmt.Println(diffHunkStyle.Render(trimmed))
		default:
			fmt.Print(line)
		}
	}
}
