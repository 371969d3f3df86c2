package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fitcharts/pkg/theme"
)

// themeCommand creates the theme command.
func (c *CLI) themeCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "theme [hex]",
		Short: "Show the palette derived from a brand colour",
		Long: `Show the dashboard palette derived from one primary colour: light and
dark variants, the complementary accent, and the text, background and grid
colours that keep charts readable on it.`,
		Example: `  fitcharts theme "#4cc27d"
  fitcharts theme 1e3a8a --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			primary := theme.DefaultColor
			if len(args) == 1 {
				primary = args[0]
			}
			if !theme.Valid(primary) {
				printWarning("%q is not a hex colour, using %s", primary, theme.DefaultColor)
			}
			t := theme.Derive(primary)

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(t)
			}
			fmt.Println(themeTable(t))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the palette as JSON")
	return cmd
}

// themeTable renders t as a table of named swatches.
func themeTable(t theme.Theme) string {
	mode := "light"
	if t.Dark {
		mode = "dark"
	}
	rows := [][]string{
		{"primary", swatch(t.Primary), fmt.Sprintf("brightness %.0f, %s", theme.Brightness(t.Primary), mode)},
		{"primary light", swatch(t.PrimaryLight), ""},
		{"primary dark", swatch(t.PrimaryDark), ""},
		{"accent", swatch(t.Accent), "complementary hue"},
		{"text", swatch(t.Text), "on primary"},
		{"background", swatch(t.Background), ""},
		{"grid", swatch(t.Grid), ""},
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Role", "Colour", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 2:
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
