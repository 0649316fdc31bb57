package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shekel-lab/ratewatch/internal/report"
)

// Application states.
const (
	StateLoading = iota
	StateDashboard
)

// refreshTimeout bounds one full refresh cycle, including every fallback.
const refreshTimeout = 30 * time.Second

// refresher produces a fresh analysis snapshot. Satisfied by the service.
type refresher interface {
	Refresh(ctx context.Context) (*report.Snapshot, error)
}

// Model is the main Bubble Tea model for the dashboard.
type Model struct {
	state           int
	refresher       refresher
	refreshInterval time.Duration
	snapshot        *report.Snapshot
	rateTable       table.Model
	refreshing      bool
	err             error
	width           int
	height          int
}

// NewModel creates a new Model in the loading state. A zero refreshInterval
// disables auto refresh.
func NewModel(r refresher, refreshInterval time.Duration) Model {
	return Model{
		state:           StateLoading,
		refresher:       r,
		refreshInterval: refreshInterval,
		rateTable:       NewRateTable(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.tickCmd())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			if !m.refreshing {
				m.refreshing = true
				m.err = nil
				return m, m.refreshCmd()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rateTable.SetWidth(msg.Width)
		return m, nil

	case SnapshotMsg:
		m.state = StateDashboard
		m.snapshot = msg.Snapshot
		m.refreshing = false
		m.err = nil
		m.rateTable = UpdateRateRows(m.rateTable, msg.Snapshot)
		return m, nil

	case RefreshErrorMsg:
		m.refreshing = false
		m.err = msg.Err
		return m, nil

	case AutoRefreshMsg:
		if m.refreshing {
			return m, m.tickCmd()
		}

		m.refreshing = true
		return m, tea.Batch(m.refreshCmd(), m.tickCmd())
	}

	if m.state == StateDashboard {
		var cmd tea.Cmd
		m.rateTable, cmd = m.rateTable.Update(msg)
		return m, cmd
	}

	return m, nil
}

// tickCmd schedules the next auto refresh.
func (m Model) tickCmd() tea.Cmd {
	if m.refreshInterval <= 0 {
		return nil
	}

	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return AutoRefreshMsg{}
	})
}

// refreshCmd returns a command that runs one refresh cycle.
func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		snapshot, err := m.refresher.Refresh(ctx)
		if err != nil {
			return RefreshErrorMsg{Err: err}
		}

		return SnapshotMsg{Snapshot: snapshot}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("RateWatch - USD/ILS Dashboard"))
	s.WriteString("\n\n")

	switch m.state {
	case StateLoading:
		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
			s.WriteString(HelpStyle.Render("r: retry | q: quit"))
		} else {
			s.WriteString("Fetching rates...\n\n")
			s.WriteString(HelpStyle.Render("q: quit"))
		}

	case StateDashboard:
		m.renderDashboard(&s)
	}

	return s.String()
}

func (m Model) renderDashboard(s *strings.Builder) {
	snapshot := m.snapshot

	if m.err != nil {
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Refresh failed: %v", m.err)))
		s.WriteString("\n\n")
	}

	rate := FormatRateWithColor(snapshot.Current.Rate, snapshot.PrevClose)
	fmt.Fprintf(s, "Rate: %s  (%s)", rate, snapshot.Current.Time.Format("2006-01-02"))

	if change, ok := snapshot.DailyChange(); ok {
		fmt.Fprintf(s, "  %+.2f%%", change*100)
	}

	s.WriteString("\n")

	source := "Source: " + snapshot.SourceName
	switch {
	case snapshot.Demo:
		s.WriteString(StaleStyle.Render(source + " (demo)"))
	case snapshot.Stale:
		s.WriteString(StaleStyle.Render(fmt.Sprintf("%s (cached %s ago)", source, snapshot.CacheAge.Round(time.Minute))))
	default:
		s.WriteString(source)
	}

	s.WriteString("\n\n")

	if snapshot.HaveAverages {
		fmt.Fprintf(s, "MA7 %.4f | MA14 %.4f | Range %.4f-%.4f\n",
			snapshot.ShortMA, snapshot.LongMA, snapshot.Min, snapshot.Max)
	}

	fmt.Fprintf(s, "Recommendation: %s\n", FormatRecommendation(snapshot.Recommendation))

	if result := snapshot.Backtest; result != nil {
		fmt.Fprintf(s, "Backtest %dd: %+.2f%% | drawdown %.2f%% | trades %d",
			result.WindowDays, result.ROI*100, result.MaxDrawdown*100,
			result.TradeResult.NumberOfTrades)

		if result.TradeResult.NumberOfTrades > 0 {
			fmt.Fprintf(s, " | win %.0f%%", result.TradeResult.WinRate*100)
		}

		if result.PartialWindow {
			s.WriteString(StaleStyle.Render("  (partial window)"))
		}

		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(m.rateTable.View())
	s.WriteString("\n")

	if m.refreshing {
		s.WriteString(HelpStyle.Render("refreshing..."))
	} else {
		s.WriteString(HelpStyle.Render("r: refresh | q: quit"))
	}
}
