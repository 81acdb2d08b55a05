package report

import (
	"path/filepath"
	"strings"
	"time"
)

// DateLayout is the stamp inserted into report file names.
const DateLayout = "2006-01-02"

const defaultStem = "audit-seo"

// DatedPath inserts "-YYYY-MM-DD" between the stem and extension of base:
// "out/report.csv" becomes "out/report-2024-03-01.csv" and "report" becomes
// "report-2024-03-01".
func DatedPath(base string, t time.Time) string {
	dir, file := filepath.Split(base)
	ext := filepath.Ext(file)
	stem := strings.TrimSuffix(file, ext)
	if stem == "" {
		stem = defaultStem
	}
	return dir + stem + "-" + t.Format(DateLayout) + ext
}
