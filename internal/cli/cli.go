package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgschema/pgcanon/internal/util"
)

type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

func Execute(ctx context.Context, info BuildInfo) error {
	rootCmd := newRootCommand()
	rootCmd.AddCommand(
		newExpandCommand(),
		newRenderCommand(),
		newVerifyCommand(),
		newExtractCommand(ctx),
		newVersionCommand(info),
	)

	return util.WrapError("execute command", rootCmd.ExecuteContext(ctx))
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pgcanon",
		Short: "PostgreSQL schema canonicalizer",
		Long: `pgcanon resolves psql \i and \ir includes in a schema source tree, parses
the result into an object model, and re-renders it in a canonical,
pg_dump-style form.

The verify command compares the canonical rendering against an expected
fixture and prints a unified diff on mismatch; extract produces the same
canonical form from a live database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("color", "auto",
		"Colorize output: auto, always, or never")

	return cmd
}

func newVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("pgcanon %s\n", info.Version)
			fmt.Printf("  commit:     %s\n", info.Commit)
			fmt.Printf("  built:      %s\n", info.BuildTime)
		},
	}
}
