package main

import (
	"fmt"
	"io"

	"mediasorter/internal/services"
	"mediasorter/internal/sorter"
)

type operationView struct {
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
	MediaType   string `json:"media_type,omitempty"`
	Action      string `json:"action"`
	State       string `json:"state"`
	Outcome     string `json:"outcome"`
	ErrorKind   string `json:"error_kind,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Tags        string `json:"tags,omitempty"`
	Checksum    string `json:"checksum,omitempty"`
}

type reportView struct {
	RunID      string          `json:"run_id"`
	DryRun     bool            `json:"dry_run"`
	Succeeded  int             `json:"succeeded"`
	Skipped    int             `json:"skipped"`
	Failed     int             `json:"failed"`
	Operations []operationView `json:"operations"`
}

func newReportView(report *sorter.Report) reportView {
	view := reportView{RunID: report.RunID, DryRun: report.DryRun}
	view.Succeeded, view.Skipped, view.Failed = report.Counts()
	view.Operations = make([]operationView, 0, len(report.Operations))
	for _, op := range report.Operations {
		view.Operations = append(view.Operations, operationView{
			Source:      op.Source,
			Destination: op.Destination,
			MediaType:   op.MediaType,
			Action:      string(op.Action),
			State:       string(op.State),
			Outcome:     string(op.Outcome),
			ErrorKind:   string(op.ErrorKind),
			Reason:      op.Reason(),
			Tags:        op.Tags,
			Checksum:    op.Checksum,
		})
	}
	return view
}

// renderReport lists every file with its outcome. Skipped and failed files
// show the reason in place of a destination; sources are printed verbatim.
func renderReport(out io.Writer, report *sorter.Report) {
	rows := make([][]string, 0, len(report.Operations))
	for _, op := range report.Operations {
		detail := op.Destination
		if op.Outcome != services.OutcomeSuccess {
			detail = op.Reason()
		}
		rows = append(rows, []string{
			outcomeLabel(op, report.DryRun),
			string(op.ErrorKind),
			op.Source,
			detail,
		})
	}
	if len(rows) > 0 {
		columns := cols("Status", "Kind", "Source", "Destination / Reason")
		columns[2].Path = true
		columns[3].Path = true
		renderRows(out, columns, rows)
	}

	succeeded, skipped, failed := report.Counts()
	verb := "Sorted"
	if report.DryRun {
		verb = "Planned"
	}
	fmt.Fprintf(out, "%s %d, skipped %d, failed %d (run %s)\n", verb, succeeded, skipped, failed, report.RunID)
}

func outcomeLabel(op sorter.Operation, dryRun bool) string {
	if op.Outcome == services.OutcomeSuccess && dryRun {
		return "planned"
	}
	if op.Outcome == "" {
		return "pending"
	}
	return string(op.Outcome)
}
