package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/shekel-lab/ratewatch/internal/types"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true)

	// StaleStyle marks data served from the cache or demo generator.
	StaleStyle = lipgloss.NewStyle().Faint(true).Italic(true)

	buyStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	sellStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	holdStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
)

// FormatRateWithColor formats a rate with an indicator based on comparison
// with the previous rate.
func FormatRateWithColor(current, previous float64) string {
	rateStr := fmt.Sprintf("%.4f", current)

	if previous == 0 {
		return rateStr
	}

	if current > previous {
		return rateStr + " ▲"
	} else if current < previous {
		return rateStr + " ▼"
	}

	return rateStr
}

// FormatRecommendation renders a signal type in its action color.
func FormatRecommendation(signal types.SignalType) string {
	label := strings.ToUpper(string(signal))

	switch signal {
	case types.SignalTypeBuy:
		return buyStyle.Render(label)
	case types.SignalTypeSell:
		return sellStyle.Render(label)
	default:
		return holdStyle.Render(label)
	}
}
