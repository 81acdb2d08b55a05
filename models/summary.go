package models

// RunSummary reports the outcome of one audit run.
type RunSummary struct {
	// ReportPath is the dated CSV file the rows were written to.
	ReportPath string `json:"report_path"`

	// Total is the number of URLs in the input list.
	Total int `json:"total"`

	// Written is the number of rows written.
	Written int `json:"written"`

	// Skipped lists every URL that produced no row, with its reason.
	Skipped []SkipDetail `json:"skipped"`

	// Canceled is true when the run stopped before the last URL.
	Canceled bool `json:"canceled,omitempty"`

	DurationMs int64 `json:"duration_ms"`
}
