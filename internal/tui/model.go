// Package tui renders the alarm board in the terminal with bubbletea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"alarmboard/internal/board"
	"alarmboard/internal/refresh"
)

var (
	clockStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f2f2f2"))
	dateStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8a9099"))
	bannerStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#8a9099"))
	soonestStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFC107"))
	passedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5c636b"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
)

type tickMsg time.Time

// Model is the bubbletea model for the watch screen.
type Model struct {
	ctx      context.Context
	board    *board.Board
	clock    refresh.Clock
	interval time.Duration

	snap  board.Snapshot
	ready bool
	width int
}

func New(ctx context.Context, b *board.Board, clock refresh.Clock, interval time.Duration) Model {
	if interval < time.Second {
		interval = time.Second
	}
	return Model{ctx: ctx, board: b, clock: clock, interval: interval}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init takes the first snapshot right away instead of waiting a full tick.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return tickMsg(m.clock.Now()) }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		m.snap = m.board.Snapshot(m.ctx, m.clock.Now())
		m.ready = true
		return m, m.tick()
	}
	return m, nil
}

// Snapshot returns the last rendered snapshot.
func (m Model) Snapshot() board.Snapshot { return m.snap }

func (m Model) View() string {
	if !m.ready {
		return "Loading alarms...\n"
	}

	var sb strings.Builder
	now := m.snap.Now
	sb.WriteString(clockStyle.Render(now.Format("15:04:05")))
	sb.WriteString("  ")
	sb.WriteString(dateStyle.Render(now.Format("Monday, 02 January 2006")))
	sb.WriteString("\n\n")

	if m.snap.Message != "" {
		sb.WriteString(bannerStyle.Render(m.snap.Message))
		sb.WriteString("\n\n")
	}

	if m.snap.Empty() {
		sb.WriteString(board.NoAlarmsMessage)
		sb.WriteString("\n")
	}
	for _, c := range m.snap.Countdowns {
		line := fmt.Sprintf("%s  %-20s %s", c.Alarm.At.Format("15:04"), c.Alarm.Label, c.String())
		switch {
		case c.IsSoonest:
			line = soonestStyle.Render(line)
		case c.Passed:
			line = passedStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("q: quit"))
	sb.WriteString("\n")
	return sb.String()
}

// Run shows the board until the user quits or ctx is cancelled.
func Run(ctx context.Context, b *board.Board, clock refresh.Clock, interval time.Duration) error {
	p := tea.NewProgram(New(ctx, b, clock, interval), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
