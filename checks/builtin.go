package checks

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/use-agent/audit-seo/models"
)

var (
	selTitle     = cascadia.MustCompile("title")
	selMetaDesc  = cascadia.MustCompile(`meta[name="description"]`)
	selH1        = cascadia.MustCompile("h1")
	selImg       = cascadia.MustCompile("img")
	selCanonical = cascadia.MustCompile(`link[rel~="canonical"]`)
)

// URLCheck echoes the audited URL.
type URLCheck struct{}

func (URLCheck) Name() string      { return "url" }
func (URLCheck) Columns() []string { return []string{"URL"} }
func (URLCheck) Apply(p Page) []models.Field {
	return []models.Field{{Name: "URL", Value: p.URL}}
}

// StatusCheck echoes the HTTP status code; an absent status is left empty.
type StatusCheck struct{}

func (StatusCheck) Name() string      { return "status" }
func (StatusCheck) Columns() []string { return []string{"HTTP Status"} }
func (StatusCheck) Apply(p Page) []models.Field {
	var v any
	if p.Status > 0 {
		v = p.Status
	}
	return []models.Field{{Name: "HTTP Status", Value: v}}
}

// TitleCheck reports the trimmed text of the first <title>.
type TitleCheck struct{}

func (TitleCheck) Name() string      { return "title" }
func (TitleCheck) Columns() []string { return []string{"TITLE"} }
func (TitleCheck) Apply(p Page) []models.Field {
	text, _ := p.Doc.FirstMatching(selTitle).Text()
	return []models.Field{{Name: "TITLE", Value: strings.TrimSpace(text)}}
}

// MetaDescriptionCheck reports the trimmed content of <meta name="description">.
type MetaDescriptionCheck struct{}

func (MetaDescriptionCheck) Name() string      { return "meta-description" }
func (MetaDescriptionCheck) Columns() []string { return []string{"META-DESC"} }
func (MetaDescriptionCheck) Apply(p Page) []models.Field {
	content, _ := p.Doc.FirstMatching(selMetaDesc).Attr("content")
	return []models.Field{{Name: "META-DESC", Value: strings.TrimSpace(content)}}
}

// H1CountCheck counts <h1> elements.
type H1CountCheck struct{}

func (H1CountCheck) Name() string      { return "h1-count" }
func (H1CountCheck) Columns() []string { return []string{"H1 Count"} }
func (H1CountCheck) Apply(p Page) []models.Field {
	return []models.Field{{Name: "H1 Count", Value: p.Doc.CountMatching(selH1)}}
}

// ImageAltCheck counts images and those whose alt is absent or empty.
// A whitespace-only alt counts as present.
type ImageAltCheck struct{}

func (ImageAltCheck) Name() string      { return "img-alt" }
func (ImageAltCheck) Columns() []string { return []string{"IMG-ALT Missing", "IMG Total"} }
func (ImageAltCheck) Apply(p Page) []models.Field {
	imgs := p.Doc.AllMatching(selImg)
	missing := 0
	for _, img := range imgs {
		if alt, ok := img.Attr("alt"); !ok || alt == "" {
			missing++
		}
	}
	return []models.Field{
		{Name: "IMG-ALT Missing", Value: missing},
		{Name: "IMG Total", Value: len(imgs)},
	}
}

// CanonicalCheck reports whether a <link rel="canonical"> is present.
type CanonicalCheck struct{}

func (CanonicalCheck) Name() string      { return "canonical" }
func (CanonicalCheck) Columns() []string { return []string{"CANONICAL"} }
func (CanonicalCheck) Apply(p Page) []models.Field {
	return []models.Field{{Name: "CANONICAL", Value: yesNo(p.Doc.FirstMatching(selCanonical).Exists())}}
}

// DefaultOGProperties are the Open Graph properties reported, in column order.
var DefaultOGProperties = []string{"og:title", "og:description", "og:image"}

// OpenGraphCheck reports one yes/no column per Open Graph property.
type OpenGraphCheck struct {
	props []string
	sels  []cascadia.Selector
}

// NewOpenGraphCheck builds a check for the given properties. Properties that
// cannot be expressed as a selector always report "no".
func NewOpenGraphCheck(props ...string) OpenGraphCheck {
	c := OpenGraphCheck{
		props: make([]string, len(props)),
		sels:  make([]cascadia.Selector, len(props)),
	}
	copy(c.props, props)
	for i, prop := range props {
		if sel, err := cascadia.Compile(`meta[property="` + cssEscape(prop) + `"]`); err == nil {
			c.sels[i] = sel
		}
	}
	return c
}

func (OpenGraphCheck) Name() string { return "open-graph" }

func (c OpenGraphCheck) Columns() []string {
	cols := make([]string, len(c.props))
	for i, prop := range c.props {
		cols[i] = "OG " + prop
	}
	return cols
}

func (c OpenGraphCheck) Apply(p Page) []models.Field {
	out := make([]models.Field, len(c.props))
	for i, prop := range c.props {
		found := c.sels[i] != nil && p.Doc.FirstMatching(c.sels[i]).Exists()
		out[i] = models.Field{Name: "OG " + prop, Value: yesNo(found)}
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// cssEscape escapes a value for use inside a double-quoted CSS string.
func cssEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
