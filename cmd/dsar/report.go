package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"dsar/internal/detection/catalog"
	"dsar/internal/detection/engine"
	detection "dsar/internal/detection/models"
	"dsar/internal/discovery/models"
	"dsar/internal/identity"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinCategories(cs []catalog.Category) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}

// scanView is the printable form of one detection report.
type scanView struct {
	File                    string                       `json:"file"`
	Mode                    detection.ContentMode        `json:"mode"`
	Results                 []detection.DetectionResult  `json:"results"`
	Categories              []detection.DetectedCategory `json:"categories"`
	ContainsSpecialCategory bool                         `json:"containsSpecialCategory"`
	SpecialCategories       []catalog.Category           `json:"specialCategories,omitempty"`
	ThirdPartyDataSuspected bool                         `json:"thirdPartyDataSuspected"`
	Truncated               bool                         `json:"truncated"`
}

func newScanView(file string, mode detection.ContentMode, r *engine.Report) scanView {
	return scanView{
		File:                    file,
		Mode:                    mode,
		Results:                 r.Results,
		Categories:              r.Categories,
		ContainsSpecialCategory: r.ContainsSpecialCategory,
		SpecialCategories:       r.SpecialCategories,
		ThirdPartyDataSuspected: r.ThirdPartyDataSuspected,
		Truncated:               r.Truncated,
	}
}

func (v scanView) writeTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DETECTOR\tELEMENT\tCATEGORY\tCONFIDENCE\tMATCHES\tSAMPLE")
	for _, res := range v.Results {
		for _, el := range res.Elements {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f (%s)\t%d\t%s\n",
				res.DetectorType, el.ElementType, el.Category, el.Confidence, el.ConfidenceLevel, el.MatchCount, dash(el.RedactedSample))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tCONFIDENCE\tLEVEL")
	for _, c := range v.Categories {
		fmt.Fprintf(tw, "%s\t%.2f\t%s\n", c.Category, c.Confidence, c.ConfidenceLevel)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if v.ContainsSpecialCategory {
		fmt.Fprintf(w, "\nspecial category data suspected: %s\n", joinCategories(v.SpecialCategories))
	}
	if v.ThirdPartyDataSuspected {
		fmt.Fprintln(w, "third-party personal data suspected")
	}
	if v.Truncated {
		fmt.Fprintln(w, "content was truncated before scanning")
	}
	return nil
}

type findingView struct {
	ID                      string                    `json:"id"`
	Category                catalog.Category          `json:"dataCategory"`
	Severity                models.Severity           `json:"severity"`
	Confidence              float64                   `json:"confidence"`
	ConfidenceLevel         detection.ConfidenceLevel `json:"confidenceLevel"`
	EvidenceItemIDs         []string                  `json:"evidenceItemIds"`
	ContainsSpecialCategory bool                      `json:"containsSpecialCategory"`
	RequiresLegalReview     bool                      `json:"requiresLegalReview"`
}

type queryView struct {
	SourceID       string             `json:"sourceId"`
	Provider       string             `json:"provider"`
	Status         models.QueryStatus `json:"status"`
	Reason         string             `json:"reason,omitempty"`
	ErrorCategory  string             `json:"errorCategory,omitempty"`
	RecordsFound   int                `json:"recordsFound"`
	EvidenceItemID string             `json:"evidenceItemId,omitempty"`
}

// runView is the printable form of a run result. Domain IDs are UUID-backed
// types without text marshaling, so they are rendered as strings here.
type runView struct {
	RunID                   string                `json:"runId"`
	CaseID                  string                `json:"caseId"`
	Status                  models.RunStatus      `json:"status"`
	Mode                    detection.ContentMode `json:"mode"`
	Error                   string                `json:"error,omitempty"`
	Summary                 string                `json:"summary"`
	LegalHold               bool                  `json:"legalHold"`
	ContainsSpecialCategory bool                  `json:"containsSpecialCategory"`
	SpecialCategories       []catalog.Category    `json:"specialCategories,omitempty"`
	Totals                  models.RunTotals      `json:"totals"`
	Identity                *identity.Graph       `json:"identity,omitempty"`
	Findings                []findingView         `json:"findings"`
	Queries                 []queryView           `json:"queries"`
	StartedAt               time.Time             `json:"startedAt"`
	CompletedAt             time.Time             `json:"completedAt"`
}

func newRunView(r *models.RunResult) runView {
	v := runView{
		RunID:                   r.RunID.String(),
		CaseID:                  r.CaseID.String(),
		Status:                  r.Status,
		Mode:                    r.Mode,
		Error:                   r.Error,
		Summary:                 r.Summary,
		LegalHold:               r.LegalHold,
		ContainsSpecialCategory: r.ContainsSpecialCategory,
		SpecialCategories:       r.SpecialCategories,
		Totals:                  r.Totals,
		Identity:                r.Graph,
		Findings:                make([]findingView, 0, len(r.Findings)),
		Queries:                 make([]queryView, 0, len(r.Queries)),
		StartedAt:               r.StartedAt,
		CompletedAt:             r.CompletedAt,
	}
	for _, f := range r.Findings {
		fv := findingView{
			ID:                      f.ID.String(),
			Category:                f.DataCategory,
			Severity:                f.Severity,
			Confidence:              f.Confidence,
			ConfidenceLevel:         f.ConfidenceLevel,
			EvidenceItemIDs:         make([]string, len(f.EvidenceItemIDs)),
			ContainsSpecialCategory: f.ContainsSpecialCategory,
			RequiresLegalReview:     f.RequiresLegalReview,
		}
		for i, e := range f.EvidenceItemIDs {
			fv.EvidenceItemIDs[i] = e.String()
		}
		v.Findings = append(v.Findings, fv)
	}
	for _, q := range r.Queries {
		qv := queryView{
			SourceID:      q.SourceID.String(),
			Provider:      q.Provider,
			Status:        q.Status,
			Reason:        q.Reason,
			ErrorCategory: q.ErrorCategory,
			RecordsFound:  q.RecordsFound,
		}
		if !q.EvidenceItemID.IsNil() {
			qv.EvidenceItemID = q.EvidenceItemID.String()
		}
		v.Queries = append(v.Queries, qv)
	}
	return v
}

func (v runView) writeTable(w io.Writer) error {
	fmt.Fprintf(w, "run %s  case %s  status %s  mode %s\n", v.RunID, v.CaseID, v.Status, v.Mode)
	if v.Error != "" {
		fmt.Fprintf(w, "error: %s\n", v.Error)
	}
	fmt.Fprintf(w, "%s\n", v.Summary)
	if v.LegalHold {
		fmt.Fprintf(w, "LEGAL HOLD: special category data found (%s)\n", joinCategories(v.SpecialCategories))
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tPROVIDER\tSTATUS\tRECORDS\tREASON")
	for _, q := range v.Queries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", q.SourceID, q.Provider, q.Status, q.RecordsFound, dash(q.Reason))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(v.Findings) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tSEVERITY\tCONFIDENCE\tEVIDENCE\tLEGAL REVIEW")
	for _, f := range v.Findings {
		fmt.Fprintf(tw, "%s\t%s\t%.2f (%s)\t%d\t%t\n", f.Category, f.Severity, f.Confidence, f.ConfidenceLevel, len(f.EvidenceItemIDs), f.RequiresLegalReview)
	}
	return tw.Flush()
}
