package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/ivoronin/diskhound/internal/types"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	dirStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

const chromeRows = 3 // title + blank + help line

func (m *Model) listHeight() int {
	h := m.height - chromeRows
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) View() string {
	var b strings.Builder
	if m.showInsights {
		b.WriteString(titleStyle.Render("Insights") + "\n")
		m.renderRows(&b, m.insightRows())
	} else {
		b.WriteString(titleStyle.Render(fmt.Sprintf("%s — %s",
			m.current.Path, humanize.IBytes(uint64(m.current.Size)))) + "\n")
		m.renderRows(&b, m.dirRows())
	}
	b.WriteString(helpStyle.Render("↑/↓ move · enter open · backspace up · tab insights · q quit"))
	return b.String()
}

func (m Model) renderRows(b *strings.Builder, rows []string) {
	visible := m.listHeight()
	end := min(m.viewTop+visible, len(rows))
	for i := m.viewTop; i < end; i++ {
		line := rows[i]
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	for i := end - m.viewTop; i < visible; i++ {
		b.WriteString("\n")
	}
}

func (m Model) dirRows() []string {
	children := m.children(m.current)
	rows := make([]string, len(children))
	for i, n := range children {
		size := fmt.Sprintf("%10s", humanize.IBytes(uint64(n.Size)))
		name := n.Name
		switch {
		case n.HadError:
			name = errStyle.Render(name + " !")
		case n.IsDir():
			name = dirStyle.Render(name + "/")
		}
		rows[i] = fmt.Sprintf("  %s  %s", size, name)
	}
	if len(rows) == 0 {
		rows = []string{dimStyle.Render("  (empty)")}
	}
	return rows
}

// insightRows flattens the bundle into display lines: a header per
// category followed by its ranked matches.
func (m Model) insightRows() []string {
	var rows []string
	for _, rep := range m.bundle.Categories {
		rows = append(rows, dirStyle.Render(fmt.Sprintf("%s — %s across %d matches",
			categoryLabel(rep.Category), humanize.IBytes(uint64(rep.TotalBytes)), rep.Total)))
		for _, in := range rep.Top {
			rows = append(rows, fmt.Sprintf("  %10s  %s  %s",
				humanize.IBytes(uint64(in.Size)), in.Path, dimStyle.Render(in.RuleName)))
		}
	}
	if len(rows) == 0 {
		rows = []string{dimStyle.Render("  no insights matched")}
	}
	return rows
}

func categoryLabel(c types.Category) string {
	words := strings.Split(string(c), "_")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}
