package models

import (
	"net/http"
	"strconv"
)

// FetchOutcome is the result of a successful fetch. A fetch that gave up is
// reported as a nil outcome plus an *AuditError, never as a half-filled
// outcome: StatusCode is always set and Body may be empty.
type FetchOutcome struct {
	StatusCode int
	Body       []byte
	Header     http.Header

	// FinalURL is the URL after following all redirects.
	FinalURL string

	// Attempts counts the requests made, including the successful one.
	Attempts int
}

// Field is one named value of a PageRecord. Value is a string, an int, or
// nil for an absent value.
type Field struct {
	Name  string
	Value any
}

// String renders the value as a report cell.
func (f Field) String() string {
	switch v := f.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

// PageRecord is an ordered set of check results for one page.
type PageRecord struct {
	fields []Field
	index  map[string]int
}

// Add appends a field. A repeated name overwrites the earlier value in place
// so the first occurrence fixes the column position.
func (r *PageRecord) Add(name string, value any) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[name]; ok {
		r.fields[i].Value = value
		return
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, Field{Name: name, Value: value})
}

// Keys returns the field names in insertion order.
func (r *PageRecord) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Name
	}
	return keys
}

// Get returns the field with the given name.
func (r *PageRecord) Get(name string) (Field, bool) {
	i, ok := r.index[name]
	if !ok {
		return Field{}, false
	}
	return r.fields[i], true
}

// Fields returns a copy of the ordered fields.
func (r *PageRecord) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields.
func (r *PageRecord) Len() int { return len(r.fields) }
