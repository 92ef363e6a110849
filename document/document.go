// Package document holds the read-only view of a fetched HTML page that the
// classifiers and the scorer consume, and the goquery parser that builds it.
package document

// NotAvailable is the value every textual field takes when the page does not
// provide it, so consumers never have to check for empty strings.
const NotAvailable = "N/A"

// Document is a structured view of a single page. It is built once per audit
// and never mutated afterwards.
type Document struct {
	URL             string            `json:"url"`
	ResolvedURL     string            `json:"resolved_url"`
	Domain          string            `json:"domain"`
	Title           string            `json:"title"`
	MetaDescription string            `json:"meta_description"`
	RobotsDirective string            `json:"robots_directive"`
	Generator       string            `json:"generator"`
	Headings        Headings          `json:"headings"`
	HeadingOutline  []int             `json:"heading_outline"`
	Links           []Link            `json:"links"`
	ServicePages    []Link            `json:"service_pages"`
	Images          []Image           `json:"images"`
	RawMarkup       string            `json:"raw_markup"`
	Text            string            `json:"text"`
	ResponseHeaders map[string]string `json:"response_headers"`
	StatusCode      int               `json:"status_code"`
	LoadTimeSeconds float64           `json:"observed_load_time_seconds"`
	HasViewportMeta bool              `json:"has_viewport_meta"`
	HasStructured   bool              `json:"has_structured_data"`
}

// Headings keeps the text of the first headings of each of the top three levels.
type Headings struct {
	H1 []string `json:"h1"`
	H2 []string `json:"h2"`
	H3 []string `json:"h3"`
}

// Link is an anchor with an href.
type Link struct {
	Href       string `json:"href"`
	AnchorText string `json:"anchor_text"`
}

// Image records whether an <img> carries an alt attribute.
type Image struct {
	HasAlt bool `json:"has_alt"`
}

// H1Count returns the number of level-1 headings seen in the outline.
func (d *Document) H1Count() int {
	n := 0
	for _, level := range d.HeadingOutline {
		if level == 1 {
			n++
		}
	}
	return n
}

// Header returns the named response header, or "" when absent.
func (d *Document) Header(name string) string {
	if d.ResponseHeaders == nil {
		return ""
	}
	return d.ResponseHeaders[name]
}

// IsMissing reports whether s carries no usable value.
func IsMissing(s string) bool {
	return s == "" || s == NotAvailable
}

// orNA returns s, or NotAvailable when s is blank.
func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
