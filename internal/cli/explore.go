package cli

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archtower/pkg/analysis"
	"github.com/matzehuels/archtower/pkg/arch"
	"github.com/matzehuels/archtower/pkg/graph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// exploreCommand creates the interactive node browser.
func (c *CLI) exploreCommand() *cobra.Command {
	var flags analyzeFlags

	cmd := &cobra.Command{
		Use:   "explore <dir|tree.json|analysis.json>",
		Short: "Browse an analysis by layer, language and type",
		Long: `Browse an analysis by layer, language and type.

Nodes are listed layer by layer. Keys:
  ↑/↓ j/k   move
  l         cycle the language filter
  t         cycle the node type filter
  ⏎         show or hide node details
  q         quit

An *.analysis.json file is browsed as is; any other input is analyzed first,
with the same flags as 'analyze'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, input string, flags analyzeFlags) error {
	a, err := c.loadAnalysis(ctx, input, flags)
	if err != nil {
		return err
	}
	if len(a.Nodes) == 0 {
		printInfo("Nothing to explore: the analysis has no nodes")
		return nil
	}

	p := tea.NewProgram(NewExploreModel(a), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	_, err = p.Run()
	return err
}

// loadAnalysis reads an analysis file, or analyzes any other input.
func (c *CLI) loadAnalysis(ctx context.Context, input string, flags analyzeFlags) (*arch.Analysis, error) {
	if strings.HasSuffix(input, ".analysis.json") {
		a, err := graph.ReadAnalysisFile(input)
		if err != nil {
			return nil, fmt.Errorf("load analysis %s: %w", input, err)
		}
		return a, nil
	}

	opts := c.pipelineOptions()
	flags.apply(&opts)
	if err := opts.ValidateForAnalyze(); err != nil {
		return nil, err
	}
	files, err := loadFiles(ctx, input, flags.inputOpts(opts))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", input, err)
	}
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	return runner.Analyze(ctx, files, opts)
}

// =============================================================================
// ExploreModel - Interactive node browser
// =============================================================================

// ExploreModel is the bubbletea model for browsing the nodes of an analysis.
type ExploreModel struct {
	Analysis *arch.Analysis
	Filter   analysis.Filter
	Rows     []*arch.Node
	Cursor   int
	Offset   int
	Height   int
	Detail   bool

	languages []arch.Language // "" first, meaning all
	types     []arch.NodeType // "" first, meaning all
	layerOf   map[string]arch.Layer
	index     map[string]*arch.Node
}

// NewExploreModel creates a browser over a.
func NewExploreModel(a *arch.Analysis) ExploreModel {
	langs := slices.Sorted(maps.Keys(analysis.LanguageBreakdown(a)))
	types := map[arch.NodeType]bool{}
	for _, n := range a.Nodes {
		types[n.Type] = true
	}

	m := ExploreModel{
		Analysis:  a,
		Height:    15,
		languages: append([]arch.Language{""}, langs...),
		types:     append([]arch.NodeType{""}, slices.Sorted(maps.Keys(types))...),
		layerOf:   a.Layers.Index(),
		index:     a.NodeIndex(),
	}
	m.refresh()
	return m
}

// refresh recomputes the visible rows for the current filter, ordered by
// layer and then id.
func (m *ExploreModel) refresh() {
	rows := analysis.FilterNodes(m.Analysis, m.Filter)
	slices.SortFunc(rows, func(a, b *arch.Node) int {
		return cmp.Or(
			cmp.Compare(m.layerOf[a.ID], m.layerOf[b.ID]),
			cmp.Compare(a.ID, b.ID),
		)
	})
	m.Rows = rows
	m.Cursor = min(m.Cursor, max(0, len(rows)-1))
	m.Offset = min(m.Offset, m.Cursor)
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "l":
			m.Filter.Language = next(m.languages, m.Filter.Language)
			m.refresh()
		case "t":
			m.Filter.Type = next(m.types, m.Filter.Type)
			m.refresh()
		case "enter":
			m.Detail = !m.Detail
		}
	case tea.WindowSizeMsg:
		m.Height = max(5, msg.Height-8)
		if m.Detail {
			m.Height = max(5, m.Height-6)
		}
	}
	return m, nil
}

// next returns the element after cur in options, wrapping around.
func next[T comparable](options []T, cur T) T {
	i := slices.Index(options, cur)
	return options[(i+1)%len(options)]
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Architecture"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("language: %s  type: %s",
		orAll(string(m.Filter.Language)), orAll(string(m.Filter.Type)))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  l language  t type  ⏎ details  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  no nodes match the filter"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Rows))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			m.layerOf[n.ID].String(),
			n.FilePath,
			string(n.Type),
			string(n.Language),
			fmt.Sprint(n.LinesOfCode),
			fmt.Sprint(n.Complexity),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Layer", "File", "Type", "Lang", "LOC", "Cx").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Rows) {
				return lipgloss.NewStyle()
			}
			style := lipgloss.NewStyle().Foreground(colorWhite)
			if col == 1 {
				style = style.Foreground(layerColors[m.layerOf[m.Rows[idx].ID]])
			}
			if col >= 3 {
				style = style.Foreground(colorGray)
			}
			if idx == m.Cursor {
				style = style.Bold(true)
			}
			return style
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))
	b.WriteString("\n")

	if m.Detail {
		b.WriteString("\n")
		b.WriteString(m.detailView(m.Rows[m.Cursor]))
	}
	return b.String()
}

// detailView describes one node: its dependencies, dependents and tags.
func (m ExploreModel) detailView(n *arch.Node) string {
	var b strings.Builder
	b.WriteString(listSelectedStyle.Render(n.Name))
	b.WriteString(listDimStyle.Render("  " + n.ID))
	b.WriteString("\n")

	line := func(label string, values []string) {
		if len(values) == 0 {
			values = []string{"-"}
		}
		fmt.Fprintf(&b, "  %s %s\n",
			lipgloss.NewStyle().Foreground(colorGray).Width(14).Render(label),
			StyleValue.Render(strings.Join(values, ", ")))
	}

	deps := make([]string, 0, len(n.Dependencies))
	for _, id := range n.Dependencies {
		if dep, ok := m.index[id]; ok {
			deps = append(deps, dep.FilePath)
		} else {
			deps = append(deps, id)
		}
	}
	dependents := make([]string, 0, len(n.Dependents))
	for _, id := range n.Dependents {
		if dep, ok := m.index[id]; ok {
			dependents = append(dependents, dep.FilePath)
		}
	}
	patterns := make([]string, len(n.Metadata.Patterns))
	for i, p := range n.Metadata.Patterns {
		patterns[i] = string(p)
	}
	var flags []string
	if n.Metadata.IsEntry {
		flags = append(flags, "entry")
	}
	if n.Metadata.IsAsync {
		flags = append(flags, "async")
	}
	if n.Metadata.HasErrorHandling {
		flags = append(flags, "error handling")
	}

	line("depends on", deps)
	line("used by", dependents)
	line("exports", n.Exports)
	line("patterns", patterns)
	line("flags", flags)
	return b.String()
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}
