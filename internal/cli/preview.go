package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fitcharts/pkg/dataset"
	"github.com/matzehuels/fitcharts/pkg/pipeline"
	"github.com/matzehuels/fitcharts/pkg/render/chart"
	"github.com/matzehuels/fitcharts/pkg/render/chart/sink"
)

// previewTypes is the order the preview cycles through.
var previewTypes = []chart.Type{chart.TypeBar, chart.TypeLine, chart.TypeArea}

// previewRows is the number of item rows shown below the plot.
const previewRows = 6

var (
	previewTabStyle    = lipgloss.NewStyle().Padding(0, 1).Foreground(colorDim)
	previewActiveStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(colorCyan).Underline(true)
	previewPlotStyle   = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// PreviewModel - Interactive chart preview
// =============================================================================

// PreviewModel is the bubbletea model for browsing a dataset as terminal plots.
type PreviewModel struct {
	Title   string
	DataKey string
	Items   []dataset.Item
	TypeIdx int
	Cursor  int
	Width   int
	Height  int
}

// NewPreviewModel creates a preview starting at chart type t.
func NewPreviewModel(title, dataKey string, items []dataset.Item, t chart.Type) PreviewModel {
	m := PreviewModel{
		Title:   title,
		DataKey: dataKey,
		Items:   items,
		Width:   pipeline.DefaultTextWidth + 4,
		Height:  pipeline.DefaultTextHeight + previewRows + 10,
	}
	for i, pt := range previewTypes {
		if pt == chart.ParseType(string(t)) {
			m.TypeIdx = i
		}
	}
	return m
}

// Type returns the chart type currently shown.
func (m PreviewModel) Type() chart.Type {
	return previewTypes[m.TypeIdx]
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "right", "l":
			m.TypeIdx = (m.TypeIdx + 1) % len(previewTypes)
		case "shift+tab", "left", "h":
			m.TypeIdx = (m.TypeIdx + len(previewTypes) - 1) % len(previewTypes)
		case "1", "2", "3":
			m.TypeIdx = int(msg.String()[0] - '1')
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
			}
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
	}
	return m, nil
}

func (m PreviewModel) View() string {
	var b strings.Builder

	title := m.Title
	if title == "" {
		title = "Preview"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(m.DataKey))
	b.WriteString("\n")

	tabs := make([]string, len(previewTypes))
	for i, t := range previewTypes {
		label := fmt.Sprintf("%d %s", i+1, t)
		if i == m.TypeIdx {
			tabs[i] = previewActiveStyle.Render(label)
		} else {
			tabs[i] = previewTabStyle.Render(label)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	plotW, plotH := m.plotSize()
	b.WriteString(previewPlotStyle.Render(sink.RenderText(m.Items, m.Type(), plotW, plotH)))
	b.WriteString("\n")

	if len(m.Items) > 0 {
		b.WriteString(m.itemTable())
		b.WriteString("\n")
		b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Items))))
		b.WriteString("\n")
	}
	b.WriteString(StyleDim.Render("tab/←/→ chart type  ↑/↓ items  q quit"))
	return b.String()
}

// plotSize leaves room for the header, item table and help line.
func (m PreviewModel) plotSize() (int, int) {
	w := max(m.Width-4, 10)
	h := max(m.Height-previewRows-10, 4)
	return w, h
}

// itemTable renders a window of items around the cursor.
func (m PreviewModel) itemTable() string {
	offset := 0
	if m.Cursor >= previewRows {
		offset = m.Cursor - previewRows + 1
	}
	end := min(offset+previewRows, len(m.Items))

	rows := make([][]string, 0, end-offset)
	for i := offset; i < end; i++ {
		it := m.Items[i]
		marker := "  "
		if i == m.Cursor {
			marker = "▸ "
		}
		note := ""
		if it.Coerced {
			note = "not a number"
		}
		rows = append(rows, []string{marker, it.Name, chart.FormatValue(it.Value), note})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Value", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := offset + row
			if idx >= len(m.Items) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if m.Items[idx].Coerced {
				base = base.Foreground(colorYellow)
			}
			if idx == m.Cursor {
				return base.Bold(true).Foreground(colorCyan)
			}
			return base
		})
	return t.Render()
}

// =============================================================================
// Command
// =============================================================================

// previewCommand creates the interactive preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		opts        pipeline.Options
		inputFormat string
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "preview [dataset]",
		Short: "Browse a dataset as terminal charts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd.Context(), args[0], inputFormat, noCache, opts)
		},
	}

	addChartFlags(cmd, &opts)
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "dataset format: json, csv, toml (default from extension)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")
	return cmd
}

func (c *CLI) runPreview(ctx context.Context, input, inputFormat string, noCache bool, opts pipeline.Options) error {
	records, err := loadDataset(ctx, input, inputFormat)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts.Logger = c.Logger
	if err := opts.ValidateForRender(); err != nil {
		return err
	}
	items, err := runner.Normalize(ctx, records, opts)
	if err != nil {
		return err
	}

	model := NewPreviewModel(opts.Title, opts.DataKey, items, chart.Type(opts.Type))
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
