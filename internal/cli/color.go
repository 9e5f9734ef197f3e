package cli

import (
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	diffAddStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) //nolint:gochecknoglobals
	diffRemoveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) //nolint:gochecknoglobals
	diffHunkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) //nolint:gochecknoglobals
)

// colorEnabled resolves the --color flag against TTY detection. The flag
// wins over any config file setting.
func colorEnabled(cmd *cobra.Command, configMode string) bool {
	mode, err := cmd.Flags().GetString("color")
	if err != nil || mode == "auto" {
		if configMode != "" && configMode != "auto" {
			mode = configMode
		}
	}

	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
}

// printSQL writes a SQL document to stdout, syntax highlighted when color
// is on.
func printSQL(sql string, color bool) error {
	if !color {
		_, err := os.Stdout.WriteString(sql)
		return err //nolint:wrapcheck
	}

	return quick.Highlight(os.Stdout, sql, "postgresql", "terminal256", "monokai") //nolint:wrapcheck
}
