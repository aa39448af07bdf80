// Package admin implements a small terminal dashboard showing the
// tracker's current connection-ID slot and rolling issue/verify counts.
// It is a terminal view only — no HTTP surface is exposed.
package admin

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/torrust/udp-connid-tracker/connid"
)

// StatsProvider is the read-only view of a running tracker.udp.Server
// the dashboard polls. It is a narrow interface so the dashboard can be
// tested against a fake without spinning up a real UDP socket.
type StatsProvider interface {
	Stats() Snapshot
}

// Snapshot mirrors udp.Snapshot; the two types are kept distinct so this
// package does not need to import tracker/udp.
type Snapshot struct {
	ConnectsIssued   uint64
	VerifiesOK       uint64
	VerifiesRejected uint64
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle = lipgloss.NewStyle().Bold(true)
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is a bubbletea model rendering the live slot countdown and
// connect/verify counters.
type Model struct {
	provider StatsProvider
	now      func() uint64
	snapshot Snapshot
	slotBar  progress.Model
}

// NewModel returns a dashboard Model polling provider once per second.
func NewModel(provider StatsProvider) Model {
	return Model{
		provider: provider,
		now:      func() uint64 { return uint64(time.Now().Unix()) },
		slotBar:  progress.New(progress.WithDefaultGradient()),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		m.snapshot = m.provider.Stats()
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	now := m.now()
	currentSlot := now / connid.SlotDuration
	elapsed := now % connid.SlotDuration
	remaining := connid.SlotDuration - elapsed

	return fmt.Sprintf(
		"%s\n\n%s %s\n%s %s\n%s\n\n%s %s\n%s %s\n%s %s\n\n%s",
		titleStyle.Render("udp-connid-tracker — live"),
		labelStyle.Render("slot:"), valueStyle.Render(fmt.Sprintf("%d", currentSlot)),
		labelStyle.Render("rotates in:"), valueStyle.Render(fmt.Sprintf("%ds", remaining)),
		m.slotBar.ViewAs(float64(elapsed)/float64(connid.SlotDuration)),
		labelStyle.Render("connects issued:"), valueStyle.Render(fmt.Sprintf("%d", m.snapshot.ConnectsIssued)),
		labelStyle.Render("verifies ok:"), valueStyle.Render(fmt.Sprintf("%d", m.snapshot.VerifiesOK)),
		labelStyle.Render("verifies rejected:"), valueStyle.Render(fmt.Sprintf("%d", m.snapshot.VerifiesRejected)),
		labelStyle.Render("press q to quit"),
	)
}
