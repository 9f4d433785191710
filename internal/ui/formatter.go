package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/ryo246912/gh-pr-report/internal/models"
)

const (
	summaryTitleWidth  = 60
	summaryStateWidth  = 8
	summaryNumberWidth = 7
)

func PadRight(str string, width int) string {
	w := runewidth.StringWidth(str)
	if w < width {
		return str + strings.Repeat(" ", width-w)
	}
	return str
}

// Truncate shortens str to at most width display columns, ending in "..."
// when anything was cut.
func Truncate(str string, width int) string {
	return runewidth.Truncate(str, width, "...")
}

// SummaryLine formats one pull request as an aligned terminal row
func SummaryLine(pr models.PullRequest) string {
	author, ok := pr.Author.Get()
	if !ok {
		author = "N/A"
	}
	return fmt.Sprintf(
		"%s %s %s %s",
		PadRight(fmt.Sprintf("#%d", pr.Number), summaryNumberWidth),
		PadRight(Truncate(pr.Title, summaryTitleWidth), summaryTitleWidth),
		PadRight(string(pr.State), summaryStateWidth),
		author,
	)
}

// PrintSummary writes one SummaryLine per pull request to w
func PrintSummary(w io.Writer, prs []models.PullRequest) error {
	for _, pr := range prs {
		if _, err := fmt.Fprintln(w, strings.TrimRight(SummaryLine(pr), " ")); err != nil {
			return fmt.Errorf("failed to print summary: %w", err)
		}
	}
	return nil
}
