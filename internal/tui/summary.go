package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"rescale/internal/scaler"
)

type SummaryRow struct {
	Label string
	Value string
}

func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		if w := lipgloss.Width(row.Label); w > labelWidth {
			labelWidth = w
		}
		if w := lipgloss.Width(row.Value); w > valueWidth {
			valueWidth = w
		}
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		line := fmt.Sprintf("%s | %s", labelStyle.Render(label), valueStyle.Render(value))
		lines = append(lines, line)
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

// ResultRows lists one row per batch item: the saved file name or the
// failure.
func ResultRows(results []scaler.Result) []SummaryRow {
	rows := make([]SummaryRow, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			rows = append(rows, SummaryRow{Label: res.Name, Value: errorStyle.Render("failed: " + res.Err.Error())})
			continue
		}
		rows = append(rows, SummaryRow{
			Label: res.Name,
			Value: fmt.Sprintf("%s  %dx%d  %s", res.Output.Filename, res.Width, res.Height, scaler.FormatBytes(len(res.Output.Data))),
		})
	}
	return rows
}

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
