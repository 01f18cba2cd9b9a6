package service

import (
	"fmt"
	"strings"

	"dsar/internal/discovery/models"
)

// summarize renders the run outcome. The text depends only on totals and
// findings, so two runs with the same outcome read the same.
func summarize(r *models.RunResult) string {
	t := r.Totals
	var b strings.Builder

	switch {
	case t.Sources == 0:
		b.WriteString("Discovery completed but no sources were enabled for this case; no sources returned data.")
	case t.QueriesCompleted == 0:
		fmt.Fprintf(&b, "Discovery completed but no sources returned data (%d failed, %d skipped of %d). "+
			"These results do not reflect complete coverage of the subject's data.",
			t.QueriesFailed, t.QueriesSkipped, t.Sources)
	default:
		fmt.Fprintf(&b, "Discovery completed: %d of %d sources returned data", t.QueriesCompleted, t.Sources)
		if t.QueriesFailed > 0 || t.QueriesSkipped > 0 {
			fmt.Fprintf(&b, " (%d failed, %d skipped; coverage is partial)", t.QueriesFailed, t.QueriesSkipped)
		}
		fmt.Fprintf(&b, ". %d evidence items, %d records.", t.EvidenceItems, t.RecordsFound)
	}

	if len(r.Findings) == 0 {
		b.WriteString(" No personal data categories detected.")
	} else {
		parts := make([]string, len(r.Findings))
		for i, f := range r.Findings {
			parts[i] = fmt.Sprintf("%s (%s)", f.DataCategory, f.Severity)
		}
		fmt.Fprintf(&b, " Findings: %s.", strings.Join(parts, ", "))
	}
	if r.LegalHold {
		fmt.Fprintf(&b, " Special category data found (%s); legal review required before export.",
			strings.Join(categoryNames(r.SpecialCategories), ", "))
	}
	if t.IdentifiersAdded > 0 {
		fmt.Fprintf(&b, " %d new subject identifiers discovered.", t.IdentifiersAdded)
	}
	return b.String()
}

func summarizeFailure(reason string) string {
	return "Discovery failed: " + reason + ". No sources were queried."
}
