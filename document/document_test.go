package document

import (
	"testing"
)

const samplePage = `<html><head>
<title>  Hello World </title>
<meta name="description" content=" A page ">
<meta property="og:title" content="Hello">
</head><body>
<h1>One</h1><h1>Two</h1>
<img src="a.png" alt="a"><img src="b.png">
</body></html>`

func TestParse_FirstAndAll(t *testing.T) {
	doc := Parse([]byte(samplePage), "text/html; charset=utf-8")

	title, ok := doc.First("title").Text()
	if !ok {
		t.Fatal("expected title element")
	}
	if title != "  Hello World " {
		t.Errorf("title text = %q", title)
	}

	if got := len(doc.All("h1")); got != 2 {
		t.Errorf("h1 count = %d, want 2", got)
	}
	if got := len(doc.All("img")); got != 2 {
		t.Errorf("img count = %d, want 2", got)
	}
}

func TestFirstWithAttr(t *testing.T) {
	doc := Parse([]byte(samplePage), "")

	desc := doc.FirstWithAttr("meta", "name", "description")
	content, ok := desc.Attr("content")
	if !ok || content != " A page " {
		t.Errorf("description content = %q (ok=%v)", content, ok)
	}

	if doc.FirstWithAttr("meta", "property", "og:image").Exists() {
		t.Error("og:image should not exist")
	}
	if !doc.FirstWithAttr("meta", "property", "og:title").Exists() {
		t.Error("og:title should exist")
	}
}

func TestMissingElementsReportAbsence(t *testing.T) {
	doc := Parse(nil, "")

	el := doc.First("title")
	if el.Exists() {
		t.Fatal("empty document should have no title")
	}
	if _, ok := el.Text(); ok {
		t.Error("Text on missing element should report absence")
	}
	if _, ok := el.Attr("content"); ok {
		t.Error("Attr on missing element should report absence")
	}
	if got := doc.All("img"); len(got) != 0 {
		t.Errorf("All on empty document = %d elements, want 0", len(got))
	}
}

func TestInvalidSelectorDegrades(t *testing.T) {
	doc := Parse([]byte(samplePage), "")
	if doc.First("h1[").Exists() {
		t.Error("invalid selector should match nothing")
	}
	if doc.All("img[") != nil {
		t.Error("invalid selector should return nil slice")
	}
}

func TestParse_DecodesDeclaredCharset(t *testing.T) {
	// "café" in ISO-8859-1.
	body := []byte("<html><head><title>caf\xe9</title></head></html>")
	doc := Parse(body, "text/html; charset=iso-8859-1")

	title, _ := doc.First("title").Text()
	if title != "café" {
		t.Errorf("title = %q, want café", title)
	}
}
