package ranker

import (
	"fmt"
	"strings"
)

const reportHeader = "GitHub Repository Issue Management Report"

const reportDivider = "----------------------------------------------------"

// Render produces the ranking report text. Output is deterministic for a
// given ranking.
func Render(entries []Entry) string {
	lines := []string{reportHeader, ""}
	for i := range entries {
		e := &entries[i]
		lines = append(lines,
			fmt.Sprintf("Repository: %s", e.Name),
			fmt.Sprintf("Stars: %d, Language: %s, Issues: %d", e.Stars, e.Language, e.IssueCount),
			fmt.Sprintf("Issue Handling Score: %.3f", e.Score),
			fmt.Sprintf("Sample Insights: %s", strings.Join(e.Samples, " | ")),
			reportDivider,
		)
	}
	return strings.Join(lines, "\n")
}
