// Package ui is an interactive terminal browser over a frozen scan
// snapshot and its insight bundle.
//
// The UI never mutates the snapshot. Because the core tree keeps no
// child→parent pointers, the model maintains its own trail of visited
// directories for the "go up" action, and caches a size-sorted copy of
// each directory's children for display.
package ui

import (
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/key"

	"github.com/ivoronin/diskhound/internal/types"
)

// Model is the bubbletea model for the snapshot browser.
type Model struct {
	snap   *types.ScanSnapshot
	bundle *types.InsightBundle
	keys   KeyMap

	current *types.Node
	trail   []*types.Node // path from root to current's parent
	cursor  int
	viewTop int

	showInsights bool
	width        int
	height       int

	// Per-directory sorted views, built lazily. Safe to cache forever:
	// the snapshot is immutable.
	sorted map[*types.Node][]*types.Node
}

// NewModel creates a browser rooted at the snapshot root.
func NewModel(snap *types.ScanSnapshot, bundle *types.InsightBundle) Model {
	return Model{
		snap:    snap,
		bundle:  bundle,
		keys:    DefaultKeyMap(),
		current: snap.Root,
		width:   100,
		height:  30,
		sorted:  make(map[*types.Node][]*types.Node),
	}
}

// Run starts the browser and blocks until the user quits.
func Run(snap *types.ScanSnapshot, bundle *types.InsightBundle) error {
	_, err := tea.NewProgram(NewModel(snap, bundle), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampView()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Insights):
			m.showInsights = !m.showInsights
			m.cursor, m.viewTop = 0, 0
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.move(1)
		case key.Matches(msg, m.keys.Top):
			m.cursor = 0
			m.clampView()
		case key.Matches(msg, m.keys.Bottom):
			m.cursor = m.rowCount() - 1
			m.clampView()
		case key.Matches(msg, m.keys.Enter):
			if !m.showInsights {
				m.descend()
			}
		case key.Matches(msg, m.keys.Back):
			if !m.showInsights {
				m.ascend()
			}
		}
	}
	return m, nil
}

func (m *Model) move(d int) {
	m.cursor += d
	m.clampView()
}

func (m *Model) descend() {
	children := m.children(m.current)
	if m.cursor >= len(children) {
		return
	}
	target := children[m.cursor]
	if !target.IsDir() || len(target.Children) == 0 {
		return
	}
	m.trail = append(m.trail, m.current)
	m.current = target
	m.cursor, m.viewTop = 0, 0
}

func (m *Model) ascend() {
	if len(m.trail) == 0 {
		return
	}
	child := m.current
	m.current = m.trail[len(m.trail)-1]
	m.trail = m.trail[:len(m.trail)-1]

	// Land the cursor on the directory we came from.
	m.cursor = 0
	for i, n := range m.children(m.current) {
		if n == child {
			m.cursor = i
			break
		}
	}
	m.viewTop = 0
	m.clampView()
}

// children returns the directory's children sorted by size descending
// (ties by name), building and caching the sorted copy on first use.
func (m *Model) children(dir *types.Node) []*types.Node {
	if s, ok := m.sorted[dir]; ok {
		return s
	}
	s := make([]*types.Node, len(dir.Children))
	copy(s, dir.Children)
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Size != s[j].Size {
			return s[i].Size > s[j].Size
		}
		return s[i].Name < s[j].Name
	})
	m.sorted[dir] = s
	return s
}

func (m *Model) rowCount() int {
	if m.showInsights {
		return len(m.insightRows())
	}
	return len(m.children(m.current))
}

func (m *Model) clampView() {
	rows := m.rowCount()
	if m.cursor >= rows {
		m.cursor = rows - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	visible := m.listHeight()
	if m.cursor < m.viewTop {
		m.viewTop = m.cursor
	}
	if m.cursor >= m.viewTop+visible {
		m.viewTop = m.cursor - visible + 1
	}
}
