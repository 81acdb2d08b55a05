package checks

import (
	"reflect"
	"testing"

	"github.com/use-agent/audit-seo/document"
	"github.com/use-agent/audit-seo/models"
)

var wantColumns = []string{
	"URL", "HTTP Status", "TITLE", "META-DESC", "H1 Count",
	"IMG-ALT Missing", "IMG Total", "CANONICAL",
	"OG og:title", "OG og:description", "OG og:image",
}

func extract(t *testing.T, html string, status int) *models.PageRecord {
	t.Helper()
	doc := document.Parse([]byte(html), "text/html; charset=utf-8")
	return Default().Extract(doc, "https://example.com/", status)
}

func value(t *testing.T, rec *models.PageRecord, name string) any {
	t.Helper()
	f, ok := rec.Get(name)
	if !ok {
		t.Fatalf("record has no %q field; keys: %v", name, rec.Keys())
	}
	return f.Value
}

func TestDefaultColumns(t *testing.T) {
	if got := Default().Columns(); !reflect.DeepEqual(got, wantColumns) {
		t.Errorf("Columns() = %v, want %v", got, wantColumns)
	}
}

func TestExtract_FullPage(t *testing.T) {
	page := `<html><head>
<title>
  Shop | Example
</title>
<meta name="description" content="  Best shop.  ">
<link rel="canonical" href="https://example.com/">
<meta property="og:title" content="Shop">
<meta property="og:image" content="https://example.com/a.png">
</head><body>
<h1>Shop</h1>
<img src="1.png" alt="one">
<img src="2.png" alt="">
<img src="3.png">
<img src="4.png" alt=" ">
</body></html>`

	rec := extract(t, page, 200)

	if got := rec.Keys(); !reflect.DeepEqual(got, wantColumns) {
		t.Fatalf("keys = %v, want %v", got, wantColumns)
	}

	tests := []struct {
		name string
		want any
	}{
		{"URL", "https://example.com/"},
		{"HTTP Status", 200},
		{"TITLE", "Shop | Example"},
		{"META-DESC", "Best shop."},
		{"H1 Count", 1},
		{"IMG-ALT Missing", 2},
		{"IMG Total", 4},
		{"CANONICAL", "yes"},
		{"OG og:title", "yes"},
		{"OG og:description", "no"},
		{"OG og:image", "yes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := value(t, rec, tt.name); got != tt.want {
				t.Errorf("%s = %#v, want %#v", tt.name, got, tt.want)
			}
		})
	}
}

func TestExtract_EmptyBody(t *testing.T) {
	rec := extract(t, "", 200)

	want := map[string]any{
		"TITLE":             "",
		"META-DESC":         "",
		"H1 Count":          0,
		"IMG Total":         0,
		"IMG-ALT Missing":   0,
		"CANONICAL":         "no",
		"OG og:title":       "no",
		"OG og:description": "no",
		"OG og:image":       "no",
	}
	for name, w := range want {
		if got := value(t, rec, name); got != w {
			t.Errorf("%s = %#v, want %#v", name, got, w)
		}
	}
}

func TestExtract_MalformedMarkup(t *testing.T) {
	rec := extract(t, `<html><title></title><meta name="description"><h1><h1><img alt`, 200)

	if got := value(t, rec, "TITLE"); got != "" {
		t.Errorf("TITLE = %#v, want empty", got)
	}
	if got := value(t, rec, "META-DESC"); got != "" {
		t.Errorf("META-DESC = %#v, want empty", got)
	}
	if got := value(t, rec, "H1 Count"); got != 2 {
		t.Errorf("H1 Count = %#v, want 2", got)
	}
}

func TestExtract_ColumnStabilityAcrossOGMarkup(t *testing.T) {
	a := extract(t, `<meta property="og:title" content="A"><meta property="og:image" content="x">`, 200)
	b := extract(t, `<meta property="og:description" content="B">`, 404)

	if !reflect.DeepEqual(a.Keys(), b.Keys()) {
		t.Fatalf("column sets differ:\n%v\n%v", a.Keys(), b.Keys())
	}
	if got := value(t, b, "OG og:title"); got != "no" {
		t.Errorf("absent og:title = %#v, want no", got)
	}
	if got := value(t, a, "OG og:description"); got != "no" {
		t.Errorf("absent og:description = %#v, want no", got)
	}
}

func TestCanonical_MatchesRelToken(t *testing.T) {
	rec := extract(t, `<link rel="alternate canonical" href="/">`, 200)
	if got := value(t, rec, "CANONICAL"); got != "yes" {
		t.Errorf("CANONICAL = %#v, want yes", got)
	}

	rec = extract(t, `<link rel="canonicalish" href="/">`, 200)
	if got := value(t, rec, "CANONICAL"); got != "no" {
		t.Errorf("CANONICAL = %#v, want no", got)
	}
}

func TestOpenGraph_ExactPropertyMatch(t *testing.T) {
	rec := extract(t, `<meta property="OG:TITLE" content="x"><meta property="og:title:alt" content="y">`, 200)
	if got := value(t, rec, "OG og:title"); got != "no" {
		t.Errorf("OG og:title = %#v, want no", got)
	}
}

func TestStatusAbsent(t *testing.T) {
	rec := extract(t, "", 0)
	if got := value(t, rec, "HTTP Status"); got != nil {
		t.Errorf("HTTP Status = %#v, want nil", got)
	}
}

func TestNewExtractor_CustomCheckSet(t *testing.T) {
	ex := NewExtractor(URLCheck{}, NewOpenGraphCheck("og:type"))
	doc := document.Parse([]byte(`<meta property="og:type" content="website">`), "")

	rec := ex.Extract(doc, "https://example.com/", 200)

	want := []string{"URL", "OG og:type"}
	if !reflect.DeepEqual(rec.Keys(), want) || !reflect.DeepEqual(ex.Columns(), want) {
		t.Fatalf("keys = %v, columns = %v, want %v", rec.Keys(), ex.Columns(), want)
	}
	if got := value(t, rec, "OG og:type"); got != "yes" {
		t.Errorf("OG og:type = %#v, want yes", got)
	}
}

func TestExtract_NilDocument(t *testing.T) {
	rec := Default().Extract(nil, "https://example.com/", 0)
	if rec.Len() != len(wantColumns) {
		t.Errorf("record has %d fields, want %d", rec.Len(), len(wantColumns))
	}
}
