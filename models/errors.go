package models

import "fmt"

// Skip reason codes recorded when a URL produces no report row.
const (
	ErrCodeRetriesExhausted = "RETRIES_EXHAUSTED"
	ErrCodeInvalidURL       = "INVALID_URL"
	ErrCodeCanceled         = "CANCELED"
)

// SkipDetail is the structured skip reason carried in run summaries.
type SkipDetail struct {
	URL     string `json:"url"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AuditError is the internal error type carrying a skip code.
// It implements the error interface and supports error wrapping via Unwrap.
type AuditError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *AuditError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AuditError) Unwrap() error {
	return e.Err
}

// NewAuditError creates a new AuditError.
func NewAuditError(code, message string, err error) *AuditError {
	return &AuditError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to the summary-facing SkipDetail.
func (e *AuditError) ToDetail(url string) SkipDetail {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return SkipDetail{URL: url, Code: e.Code, Message: msg}
}
