package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/artpar/tally/internal/history"
)

var (
	browseTitleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	browseSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("14"))
	browseHelpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// browseModel is a scrollable viewer over archived calculations.
type browseModel struct {
	records []history.Record
	cursor  int
	height  int
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.records)-1 {
				m.cursor++
			}
		case "g", "home":
			m.cursor = 0
		case "G", "end":
			m.cursor = len(m.records) - 1
		}
	}
	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(browseTitleStyle.Render(fmt.Sprintf("Archive (%d calculations)", len(m.records))))
	b.WriteString("\n\n")

	visible := m.height - 4
	if visible < 1 {
		visible = 10
	}

	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := start + visible
	if end > len(m.records) {
		end = len(m.records)
	}

	for i := start; i < end; i++ {
		r := m.records[i]
		line := fmt.Sprintf("%s  %s", r.Timestamp.Format("2006-01-02 15:04:05"), r.String())
		if i == m.cursor {
			line = browseSelectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(browseHelpStyle.Render("↑/↓ scroll | g/G top/bottom | q quit"))

	return b.String()
}

func newHistoryBrowseCommand(root *Options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the archive interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, _, err := openArchive(root)
			if err != nil {
				return err
			}
			defer archive.Close()

			records, err := archive.List(context.Background(), history.QueryOptions{Limit: limit})
			if err != nil {
				return fmt.Errorf("failed to list archive: %w", err)
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No archived calculations")
				return nil
			}

			p := tea.NewProgram(browseModel{records: records}, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("failed to run archive browser: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 500, "Maximum number of records to load")

	return cmd
}
