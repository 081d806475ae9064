// Package ui renders the interactive progress view of perltoolbox check.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"perltoolbox/internal/check"
)

// maxRows bounds the file list; active files are listed first.
const maxRows = 12

type fileState uint8

const (
	stateQueued fileState = iota
	stateLinting
	stateCompiling
	stateDone
	stateFailed
)

func (s fileState) String() string {
	switch s {
	case stateLinting:
		return "linting"
	case stateCompiling:
		return "compiling"
	case stateDone:
		return "done"
	case stateFailed:
		return "error"
	default:
		return "queued"
	}
}

func (s fileState) finished() bool {
	return s == stateDone || s == stateFailed
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (s fileState) style() lipgloss.Style {
	switch s {
	case stateLinting, stateCompiling:
		return activeStyle
	case stateDone:
		return doneStyle
	case stateFailed:
		return failStyle
	default:
		return dimStyle
	}
}

type fileItem struct {
	path  string
	state fileState
	// pipelines started so far
	started int
	diags   int
}

type progressModel struct {
	title     string
	events    <-chan check.Event
	spinner   spinner.Model
	bar       progress.Model
	items     []fileItem
	index     map[string]int
	pipelines int
	width     int
	done      bool
}

type eventMsg check.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders check progress
// for files. pipelines is how many pipelines run per file. The model quits
// when events is closed.
func NewProgressModel(title string, files []string, pipelines int, events <-chan check.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = activeStyle

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 60

	if pipelines <= 0 {
		pipelines = len(check.Pipelines)
	}
	m := &progressModel{
		title:     title,
		events:    events,
		spinner:   sp,
		bar:       bar,
		items:     make([]fileItem, len(files)),
		index:     make(map[string]int, len(files)),
		pipelines: pipelines,
		width:     80,
	}
	for i, file := range files {
		m.items[i] = fileItem{path: file}
		m.index[file] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(check.Event(msg)), m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-24, 10)
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	finished, failed, diags := m.counts()

	var b strings.Builder
	marker := m.spinner.View()
	if m.done {
		marker = doneStyle.Render("✓")
	}
	b.WriteString(marker + " " + titleStyle.Render(m.title) + "\n")

	nameWidth := max(m.width-16, 20)
	rows := m.visibleRows()
	for _, i := range rows {
		item := m.items[i]
		status := item.state.style().Render(fmt.Sprintf("%10s", item.state))
		line := fmt.Sprintf("  %s  %s", status, truncate(item.path, nameWidth))
		if item.state.finished() && item.diags > 0 {
			line += dimStyle.Render(fmt.Sprintf("  %d", item.diags))
		}
		b.WriteString(line + "\n")
	}
	if hidden := len(m.items) - len(rows); hidden > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d more", hidden)) + "\n")
	}

	if m.done {
		b.WriteString(m.bar.ViewAs(1.0))
	} else {
		b.WriteString(m.bar.View())
	}
	summary := fmt.Sprintf("  %d/%d files  %d diagnostics", finished, len(m.items), diags)
	if failed > 0 {
		summary += failStyle.Render(fmt.Sprintf("  %d failed", failed))
	}
	b.WriteString(summary + "\n")
	return b.String()
}

// visibleRows lists running files, then finished ones, then queued ones,
// up to maxRows.
func (m *progressModel) visibleRows() []int {
	rows := make([]int, 0, min(len(m.items), maxRows))
	for _, pick := range []func(fileState) bool{
		func(s fileState) bool { return s == stateLinting || s == stateCompiling },
		fileState.finished,
		func(s fileState) bool { return s == stateQueued },
	} {
		for i, item := range m.items {
			if len(rows) == maxRows {
				return rows
			}
			if pick(item.state) {
				rows = append(rows, i)
			}
		}
	}
	return rows
}

func (m *progressModel) counts() (finished, failed, diags int) {
	for _, item := range m.items {
		if item.state.finished() {
			finished++
			diags += item.diags
		}
		if item.state == stateFailed {
			failed++
		}
	}
	return finished, failed, diags
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev check.Event) tea.Cmd {
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	switch ev.Status {
	case check.StatusQueued:
		item.state = stateQueued
	case check.StatusWorking:
		item.started++
		item.state = stateLinting
		if ev.Pipeline == check.PipelineSyntax {
			item.state = stateCompiling
		}
	case check.StatusDone:
		item.state = stateDone
		item.diags = ev.Diagnostics
	case check.StatusError:
		item.state = stateFailed
		item.diags = ev.Diagnostics
	}
	return m.bar.SetPercent(m.fraction())
}

// fraction counts a running file by the pipelines it has finished.
func (m *progressModel) fraction() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		if item.state.finished() {
			total++
			continue
		}
		finished := max(min(item.started, m.pipelines)-1, 0)
		total += float64(finished) / float64(m.pipelines)
	}
	return total / float64(len(m.items))
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	// Keep the file name end of long paths.
	tail := []rune(value)
	for runewidth.StringWidth(string(tail)) > width-3 {
		tail = tail[1:]
	}
	return "..." + string(tail)
}
