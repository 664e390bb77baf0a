package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#FF00FF")).
			Foreground(lipgloss.Color("#0A0E27")).
			Bold(true).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FFFF")).
			Bold(true).
			Width(12)

	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#39FF14")).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
)

// RenderSummary draws the end-of-run counters as a bordered panel
func RenderSummary(st *StatusTracker) string {
	failed := valueStyle.Render(fmt.Sprint(st.Failed()))
	if st.Failed() > 0 {
		failed = failureStyle.Render(fmt.Sprint(st.Failed()))
	}

	rows := []string{
		titleStyle.Render(" RUN SUMMARY "),
		"",
		row("Downloaded", successStyle.Render(fmt.Sprint(st.Downloaded()))),
		row("Skipped", valueStyle.Render(fmt.Sprint(st.Skipped()))),
		row("Failed", failed),
	}
	if st.Retried() > 0 {
		rows = append(rows, row("Retried", valueStyle.Render(fmt.Sprint(st.Retried()))))
	}
	rows = append(rows,
		row("Elapsed", valueStyle.Render(formatDuration(st.GetElapsedTime()))),
		row("Rate", valueStyle.Render(fmt.Sprintf("%.1f posts/min", st.GetDownloadRate()))),
	)

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

// formatDuration formats a duration as mm:ss or hh:mm:ss
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
