// Package report writes audit records to a dated CSV file.
package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/use-agent/audit-seo/models"
)

// ErrHeaderWritten is returned when WriteHeader is called a second time.
var ErrHeaderWritten = errors.New("report: header already written")

// ErrNoHeader is returned when a row is written before the header.
var ErrNoHeader = errors.New("report: header not written")

// Writer appends records to a CSV stream. The column set is fixed by the
// header; rows are projected onto it.
type Writer struct {
	w       io.Writer
	closer  io.Closer
	path    string
	columns []string
	rows    int
}

// Open creates (or truncates) the report file at path.
func Open(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("report: open %s: %w", path, err)
	}
	return &Writer{w: f, closer: f, path: path}, nil
}

// NewWriter wraps an arbitrary stream. Close does not close w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Path returns the file path, or "" for a wrapped stream.
func (w *Writer) Path() string { return w.path }

// Rows returns the number of data rows written.
func (w *Writer) Rows() int { return w.rows }

// Columns returns the header columns, or nil before WriteHeader.
func (w *Writer) Columns() []string {
	out := make([]string, len(w.columns))
	copy(out, w.columns)
	return out
}

// WriteHeader writes the header row. It may only be called once.
func (w *Writer) WriteHeader(columns []string) error {
	if w.columns != nil {
		return ErrHeaderWritten
	}
	if len(columns) == 0 {
		return errors.New("report: empty header")
	}
	if err := w.writeLine(columns); err != nil {
		return err
	}
	w.columns = append([]string(nil), columns...)
	return nil
}

// WriteRow writes one record. Columns missing from rec are left empty;
// fields not in the header are dropped.
func (w *Writer) WriteRow(rec *models.PageRecord) error {
	if w.columns == nil {
		return ErrNoHeader
	}
	cells := make([]string, len(w.columns))
	for i, col := range w.columns {
		if f, ok := rec.Get(col); ok {
			cells[i] = f.String()
		}
	}
	if err := w.writeLine(cells); err != nil {
		return err
	}
	w.rows++
	return nil
}

// writeLine encodes the full line in memory and hands it to the underlying
// writer in a single Write, so an interrupted run never leaves half a row.
func (w *Writer) writeLine(cells []string) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(cells); err != nil {
		return fmt.Errorf("report: encode row: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("report: encode row: %w", err)
	}
	if _, err := w.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("report: write row: %w", err)
	}
	return nil
}

// Close syncs and closes the underlying file.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	if f, ok := w.closer.(*os.File); ok {
		if err := f.Sync(); err != nil {
			f.Close()
			return fmt.Errorf("report: sync %s: %w", w.path, err)
		}
	}
	err := w.closer.Close()
	w.closer = nil
	if err != nil {
		return fmt.Errorf("report: close %s: %w", w.path, err)
	}
	return nil
}
