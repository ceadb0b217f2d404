package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jinwoo1225/gh-prmetrics/internal/utils"
)

const (
	timeLayout = "2006-01-02 15:04:05.000000"
	ruleWidth  = 50
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	labelStyle = lipgloss.NewStyle().
			Bold(true)
)

// StartBanner announces a run.
func StartBanner(name, version string) string {
	return titleStyle.Render(fmt.Sprintf("====== %s %s ==========", name, version))
}

// FinishBanner reports when a run started and finished.
func FinishBanner(start, end time.Time, records int, output string) string {
	rule := ruleStyle.Render(strings.Repeat("-", ruleWidth))
	lines := []string{
		rule,
		labelStyle.Render("Started : ") + start.Format(timeLayout),
		labelStyle.Render("Finished: ") + end.Format(timeLayout),
		labelStyle.Render("Elapsed : ") + utils.Elapsed(start, end),
		labelStyle.Render("Records : ") + fmt.Sprintf("%d -> %s", records, output),
		rule,
	}
	return strings.Join(lines, "\n")
}
