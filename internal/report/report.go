package report

import (
	"fmt"
	"strings"

	"earnings-scanner/internal/types"
)

const sectionRule = "--------------------------------------------------"

// Render formats a run's results as the human-readable report. Only
// the Recommended and Consider buckets are printed; the Avoid bucket
// stays in the data but is deliberately left out of the report.
func Render(result types.RunResult) string {
	var b strings.Builder

	b.WriteString("\nEarnings Analysis Results\n")
	b.WriteString("==================================================\n")

	renderBucket(&b, "RECOMMENDED PLAYS:", result.Recommended)
	renderBucket(&b, "CONSIDER PLAYS:", result.Consider)

	if len(result.Errors) > 0 {
		b.WriteString("\nErrors encountered:\n")
		b.WriteString(sectionRule + "\n")
		for _, rec := range result.Errors {
			fmt.Fprintf(&b, "%s: %s\n", rec.Symbol, rec.Message)
		}
	}

	return b.String()
}

func renderBucket(b *strings.Builder, title string, entries []types.CategorizedEntry) {
	b.WriteString("\n" + title + "\n")
	b.WriteString(sectionRule + "\n")
	if len(entries) == 0 {
		b.WriteString("None\n")
		return
	}
	for _, entry := range entries {
		fmt.Fprintf(b, "\nSymbol: %s | Time: %s\n", entry.Symbol, entry.Time)
		fmt.Fprintf(b, "Expected Move: %s\n", entry.ExpectedMove)
		fmt.Fprintf(b, "Recommendation: %s\n", entry.Recommendation)
	}
}
