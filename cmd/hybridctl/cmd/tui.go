package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/lumensearch/hybrid"
	"github.com/lumensearch/hybrid/internal/corpus"
)

var (
	tuiHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("154"))
	tuiDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	tuiScoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tuiBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
)

func newTUICmd() *cobra.Command {
	var configDir string
	var limit int

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactively search the corpus",
		Long: `Opens a search box over the corpus and shows ranked hybrid results for
each query submitted with Enter. Falls back to a prompt/print loop when
stdout isn't a terminal.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, configDir, limit)
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "directory to load .hybridctl.yaml from (default: current directory)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of results per query")
	return cmd
}

func runTUI(cmd *cobra.Command, configDir string, limit int) error {
	if configDir == "" {
		configDir = workingDir()
	}

	ctx := cmd.Context()
	engine, store, _, err := openEngine(ctx, configDir)
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	defer func() { _ = store.Close() }()

	stdout := cmd.OutOrStdout()
	f, isFile := stdout.(*os.File)
	if !isFile || !isatty.IsTerminal(f.Fd()) {
		return runPlainSearchLoop(cmd, engine, limit)
	}

	m := newSearchModel(engine, limit)
	program := tea.NewProgram(m, tea.WithOutput(f))
	_, err = program.Run()
	return err
}

// runPlainSearchLoop is the non-interactive fallback for redirected or
// non-terminal output: read a query per line, print ranked results.
func runPlainSearchLoop(cmd *cobra.Command, engine *hybrid.Engine, limit int) error {
	fmt.Fprintln(cmd.OutOrStdout(), "stdout is not a terminal; reading queries one per line")
	scanner := cmd.InOrStdin()
	buf := make([]byte, 4096)
	for {
		n, err := scanner.Read(buf)
		if n > 0 {
			for _, line := range strings.Split(strings.TrimRight(string(buf[:n]), "\n"), "\n") {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				results, searchErr := engine.SearchHybrid(line, nil, limit, hybrid.RRF, 0.5)
				if searchErr != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "error: %v\n", searchErr)
					continue
				}
				printResults(cmd, results, false)
			}
		}
		if err != nil {
			return nil
		}
	}
}

type searchModel struct {
	engine  *hybrid.Engine
	input   textinput.Model
	results []hybrid.Result
	limit   int
	err     error
}

func newSearchModel(engine *hybrid.Engine, limit int) *searchModel {
	ti := textinput.New()
	ti.Placeholder = "search the corpus..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60

	return &searchModel{engine: engine, input: ti, limit: limit}
}

func (m *searchModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *searchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			m.runQuery()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *searchModel) runQuery() {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		m.results = nil
		m.err = nil
		return
	}
	results, err := m.engine.SearchHybrid(query, nil, m.limit, hybrid.RRF, 0.5)
	m.results = results
	m.err = err
}

func (m *searchModel) View() string {
	var b strings.Builder
	b.WriteString(tuiHeaderStyle.Render("hybridctl search"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(fmt.Sprintf("error: %v\n", m.err))
	case len(m.results) == 0:
		b.WriteString(tuiDimStyle.Render("no results yet (press enter to search)"))
	default:
		var rows []string
		for _, r := range m.results {
			rows = append(rows, fmt.Sprintf("%-30s %s", r.ID, tuiScoreStyle.Render(fmt.Sprintf("%.6f", r.Score))))
		}
		b.WriteString(tuiBoxStyle.Render(strings.Join(rows, "\n")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(tuiDimStyle.Render("enter to search · esc to quit"))
	return b.String()
}
