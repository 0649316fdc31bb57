package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/shekel-lab/ratewatch/internal/report"
)

// historyRows is how many trailing days the dashboard table shows.
const historyRows = 10

// NewRateTable creates the table for the trailing rate history.
func NewRateTable() table.Model {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Rate", Width: 14},
		{Title: "Change", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(historyRows),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// UpdateRateRows fills the table with the newest points of the snapshot
// window, most recent last.
func UpdateRateRows(t table.Model, snapshot *report.Snapshot) table.Model {
	points := snapshot.RecentRates(historyRows + 1)
	if len(points) == 0 {
		t.SetRows(nil)

		return t
	}

	rows := make([]table.Row, 0, historyRows)

	for i := 1; i < len(points); i++ {
		change := points[i].Rate/points[i-1].Rate - 1

		rows = append(rows, table.Row{
			points[i].Time.Format("2006-01-02"),
			FormatRateWithColor(points[i].Rate, points[i-1].Rate),
			fmt.Sprintf("%+.2f%%", change*100),
		})
	}

	t.SetRows(rows)
	t.GotoBottom()

	return t
}
