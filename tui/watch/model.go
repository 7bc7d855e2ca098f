// Package watch implements the live state view: one panel per daemon,
// updated from the daemon sockets in real time.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/slatebar/slate/config"
	"github.com/slatebar/slate/pkg/client"
	"github.com/slatebar/slate/pkg/models"
	"github.com/slatebar/slate/tui/theme"
)

// snapshotMsg carries one decoded daemon line into the update loop.
type snapshotMsg struct {
	daemon string
	line   []byte
}

type streamClosedMsg struct{ daemon string }

// Model is the bubbletea model for `slate watch`.
type Model struct {
	cfg     *config.Config
	theme   *theme.Theme
	spinner spinner.Model

	ctx    context.Context
	cancel context.CancelFunc
	lines  chan snapshotMsg

	timeInfo *models.TimeInfo
	display  *models.DisplayState
	metrics  *models.MetricsState

	lastSeen map[string]time.Time
	width    int
}

// New builds the watch model and starts one stream per daemon.
func New(cfg *config.Config) *Model {
	ctx, cancel := context.WithCancel(context.Background())

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.DefaultTheme.Colors.Cyan)

	m := &Model{
		cfg:      cfg,
		theme:    theme.DefaultTheme,
		spinner:  s,
		ctx:      ctx,
		cancel:   cancel,
		lines:    make(chan snapshotMsg, 64),
		lastSeen: make(map[string]time.Time),
		width:    80,
	}

	for _, name := range []string{"time", "display", "metrics"} {
		name := name
		go func() {
			stream := client.Stream(ctx, name, client.StreamOptions{
				SocketPath: cfg.SocketPath(name),
			})
			for line := range stream {
				select {
				case m.lines <- snapshotMsg{daemon: name, line: line}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForLine())
}

// waitForLine blocks until any stream produces a snapshot.
func (m *Model) waitForLine() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.lines:
			return msg
		case <-m.ctx.Done():
			return streamClosedMsg{}
		}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancel()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case snapshotMsg:
		m.apply(msg)
		return m, m.waitForLine()

	case streamClosedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) apply(msg snapshotMsg) {
	m.lastSeen[msg.daemon] = time.Now()
	switch msg.daemon {
	case "time":
		var v models.TimeInfo
		if json.Unmarshal(msg.line, &v) == nil {
			m.timeInfo = &v
		}
	case "display":
		var v models.DisplayState
		if json.Unmarshal(msg.line, &v) == nil {
			m.display = &v
		}
	case "metrics":
		var v models.MetricsState
		if json.Unmarshal(msg.line, &v) == nil {
			m.metrics = &v
		}
	}
}

func (m *Model) View() string {
	t := m.theme

	panels := []string{
		m.renderPanel("time", m.renderTime()),
		m.renderPanel("display", m.renderDisplay()),
		m.renderPanel("metrics", m.renderMetrics()),
	}

	body := lipgloss.JoinVertical(lipgloss.Left, panels...)
	hint := t.Muted.Render("q to quit")
	return lipgloss.JoinVertical(lipgloss.Left, body, " "+hint)
}

func (m *Model) renderPanel(name, content string) string {
	t := m.theme
	header := t.Header.Render(strings.ToUpper(name))
	if _, ok := m.lastSeen[name]; !ok {
		content = m.spinner.View() + " " + t.Muted.Render("waiting for daemon...")
	}
	box := t.Box.Width(min(m.width-2, 60))
	return box.Render(header + "\n" + content)
}

func (m *Model) renderTime() string {
	if m.timeInfo == nil {
		return ""
	}
	return m.theme.Bold.Render(m.timeInfo.FullDisplay)
}

func (m *Model) renderDisplay() string {
	if m.display == nil {
		return ""
	}
	t := m.theme

	var b strings.Builder
	b.WriteString(t.Highlight.Render(m.display.ActiveWindow.Title))
	if m.display.ActiveWindow.Class != "" {
		b.WriteString(t.Muted.Render(fmt.Sprintf(" (%s)", m.display.ActiveWindow.Class)))
	}
	b.WriteString("\n")

	for i, ws := range m.display.Workspaces {
		if i > 0 {
			b.WriteString(" ")
		}
		label := fmt.Sprintf("%d:%d", ws.ID, ws.Windows)
		if m.display.ActiveWorkspaceID != nil && ws.ID == *m.display.ActiveWorkspaceID {
			b.WriteString(t.Selected.Render(" " + label + " "))
		} else {
			b.WriteString(t.Muted.Render(label))
		}
	}
	return b.String()
}

func (m *Model) renderMetrics() string {
	if m.metrics == nil {
		return ""
	}
	t := m.theme

	var rows []string
	if m.metrics.BatteryPercentage != nil {
		pct := *m.metrics.BatteryPercentage
		style := t.Success
		if pct < 20 {
			style = t.Error
		} else if pct < 50 {
			style = t.Warning
		}
		row := "battery   " + style.Render(fmt.Sprintf("%d%%", pct))
		if m.metrics.IsCharging {
			row += t.Info.Render(" ++")
		}
		if m.metrics.BatteryTimeRemaining != nil {
			d := time.Duration(*m.metrics.BatteryTimeRemaining) * time.Second
			row += t.Muted.Render(fmt.Sprintf(" (%s)", d.Round(time.Minute)))
		}
		rows = append(rows, row)
	}
	if m.metrics.BacklightPercentage != nil {
		rows = append(rows, fmt.Sprintf("backlight %d%%", *m.metrics.BacklightPercentage))
	}
	if m.metrics.VolumePercentage != nil {
		row := fmt.Sprintf("volume    %d%%", *m.metrics.VolumePercentage)
		if m.metrics.SpeakerMuted != nil && *m.metrics.SpeakerMuted {
			row += t.Warning.Render(" muted")
		}
		rows = append(rows, row)
	}
	if m.metrics.MicMuted != nil && *m.metrics.MicMuted {
		rows = append(rows, t.Warning.Render("mic muted"))
	}
	return strings.Join(rows, "\n")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
