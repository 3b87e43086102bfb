// ABOUTME: Full dashboard rendering for the terminal
// ABOUTME: Lays out greeting, live risk, statistics, recent searches and reports

package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/harper/hazardwatch/internal/dashboard"
	"github.com/harper/hazardwatch/internal/models"
)

func heading(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", color.New(color.Bold).Sprint(title))
}

// RenderDashboard writes view to w. tips are shown next to the live risk.
func RenderDashboard(w io.Writer, view dashboard.View, tips []string) {
	name := "guest"
	if view.User != nil {
		name = view.User.Username
		if view.User.FullName != "" {
			name = view.User.FullName
		}
	}
	fmt.Fprintf(w, "Hello, %s\n", color.GreenString(name))

	if view.Position != nil {
		heading(w, "Current location")
		fmt.Fprintf(w, "%s\n", FormatPosition(view.Position))
		if view.Current != nil {
			fmt.Fprintf(w, "%s\n", FormatCurrentRisk(view.Current))
		}
		if len(tips) > 0 {
			heading(w, "Safety tips")
			for _, tip := range tips {
				fmt.Fprintf(w, "  • %s\n", tip)
			}
		}
	}

	heading(w, "Statistics")
	fmt.Fprintf(w, "%s\n", FormatSummary(view.Summary))
	fmt.Fprintf(w, "%s\n", faint.Sprintf("pending %d  verified %d  false positive %d",
		view.StatusCounts[models.StatusPending],
		view.StatusCounts[models.StatusVerified],
		view.StatusCounts[models.StatusFalsePositive]))

	heading(w, "Recent searches")
	if len(view.Recent) == 0 {
		fmt.Fprintf(w, "%s\n", faint.Sprint("No searches yet."))
	}
	for _, row := range view.Recent {
		fmt.Fprintf(w, "  %s\n", FormatSearchRow(row))
	}

	heading(w, "Reports")
	if len(view.ReportRows) == 0 {
		fmt.Fprintf(w, "%s\n", faint.Sprint("No reports yet."))
	}
	for _, row := range view.ReportRows {
		fmt.Fprintf(w, "  %s\n", FormatReportRow(row))
	}

	for _, warning := range view.Warnings {
		fmt.Fprintf(w, "%s %s\n", color.YellowString("!"), warning)
	}
}
