// Package checks runs independent on-page SEO checks over a parsed document
// and folds their results into one ordered PageRecord.
package checks

import (
	"github.com/use-agent/audit-seo/document"
	"github.com/use-agent/audit-seo/models"
)

// Page is the input every check sees.
type Page struct {
	Doc *document.Document
	URL string

	// Status is the HTTP status code, or 0 when the fetch produced none.
	Status int
}

// Check computes one or more named values for a page. Implementations must
// not keep state between calls and must not depend on other checks.
type Check interface {
	// Name identifies the check in logs.
	Name() string

	// Columns lists the field names Apply produces, in order.
	Columns() []string

	// Apply returns exactly one field per column, in column order.
	Apply(p Page) []models.Field
}

// Extractor applies a fixed, ordered list of checks.
type Extractor struct {
	checks []Check
}

// NewExtractor returns an Extractor running list in the given order.
func NewExtractor(list ...Check) *Extractor {
	cs := make([]Check, len(list))
	copy(cs, list)
	return &Extractor{checks: cs}
}

// Default returns an Extractor with the built-in check order.
func Default() *Extractor {
	return NewExtractor(DefaultChecks()...)
}

// DefaultChecks returns the built-in checks in report column order.
func DefaultChecks() []Check {
	return []Check{
		URLCheck{},
		StatusCheck{},
		TitleCheck{},
		MetaDescriptionCheck{},
		H1CountCheck{},
		ImageAltCheck{},
		CanonicalCheck{},
		NewOpenGraphCheck(DefaultOGProperties...),
	}
}

// Extract runs every check and returns the merged record.
func (e *Extractor) Extract(doc *document.Document, url string, status int) *models.PageRecord {
	if doc == nil {
		doc = document.Empty()
	}
	p := Page{Doc: doc, URL: url, Status: status}

	rec := &models.PageRecord{}
	for _, c := range e.checks {
		for _, f := range c.Apply(p) {
			rec.Add(f.Name, f.Value)
		}
	}
	return rec
}

// Columns returns the column order produced by Extract.
func (e *Extractor) Columns() []string {
	var cols []string
	for _, c := range e.checks {
		cols = append(cols, c.Columns()...)
	}
	return cols
}
