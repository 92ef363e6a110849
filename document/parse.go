package document

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// Source is a fetched page as handed over by the fetcher.
type Source struct {
	URL        string
	FinalURL   string
	Markup     string
	Headers    map[string]string
	StatusCode int
	LoadTime   time.Duration
}

// ParseOptions bounds how much of the page is examined.
type ParseOptions struct {
	// MarkupLimit truncates the raw markup to this many bytes before parsing.
	// Zero keeps the whole page.
	MarkupLimit int
	// MaxHeadings caps the text kept per heading level.
	MaxHeadings int
	// MaxOutline caps the number of headings in the outline. Zero is unbounded.
	MaxOutline int
	// MaxImages caps the number of images examined. Zero is unbounded.
	MaxImages int
	// ScanServicePages enables the service/product link scan.
	ScanServicePages bool
}

// FullOptions examines the whole page.
func FullOptions() ParseOptions {
	return ParseOptions{
		MaxHeadings:      10,
		ScanServicePages: true,
	}
}

// FastOptions trades completeness for latency.
func FastOptions() ParseOptions {
	return ParseOptions{
		MarkupLimit: 512 * 1024,
		MaxHeadings: 5,
		MaxOutline:  50,
		MaxImages:   50,
	}
}

const maxServicePages = 10

// noiseSelectors never contribute visible text.
var noiseSelectors = []string{
	"script", "style", "noscript", "template", "svg", "iframe", "canvas",
}

// serviceCues mark links that probably point at service or product pages.
var serviceCues = []string{
	"service", "product", "solution", "pricing", "offering",
	"what-we-do", "practice-area", "expertise",
}

var textPolicy = bluemonday.StrictPolicy()

// Parse builds a Document from a fetched page.
func Parse(src Source, opts ParseOptions) (*Document, error) {
	markup := Truncate(src.Markup, opts.MarkupLimit)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	d := &Document{
		URL:             orNA(src.URL),
		ResolvedURL:     orNA(firstNonEmpty(src.FinalURL, src.URL)),
		Domain:          NotAvailable,
		RawMarkup:       orNA(markup),
		ResponseHeaders: src.Headers,
		StatusCode:      src.StatusCode,
		LoadTimeSeconds: src.LoadTime.Seconds(),
		Links:           []Link{},
		ServicePages:    []Link{},
		Images:          []Image{},
		HeadingOutline:  []int{},
		Headings:        Headings{H1: []string{}, H2: []string{}, H3: []string{}},
	}
	if d.ResponseHeaders == nil {
		d.ResponseHeaders = map[string]string{}
	}
	if u, err := url.Parse(src.URL); err == nil && u.Host != "" {
		d.Domain = u.Host
	}

	d.Title = orNA(strings.TrimSpace(doc.Find("title").First().Text()))
	parseMeta(doc, d)
	parseHeadings(doc, d, opts)
	parseLinks(doc, d, opts)
	parseImages(doc, d, opts)

	d.HasStructured = doc.Find(`script[type="application/ld+json"], [itemscope], [typeof]`).Length() > 0
	d.Text = orNA(visibleText(doc))

	return d, nil
}

func parseMeta(doc *goquery.Document, d *Document) {
	d.MetaDescription = NotAvailable
	d.RobotsDirective = NotAvailable
	d.Generator = NotAvailable

	doc.Find("meta[name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		content := strings.TrimSpace(s.AttrOr("content", ""))
		if content == "" {
			return
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "description":
			if d.MetaDescription == NotAvailable {
				d.MetaDescription = content
			}
		case "robots":
			if d.RobotsDirective == NotAvailable {
				d.RobotsDirective = content
			}
		case "generator":
			if d.Generator == NotAvailable {
				d.Generator = content
			}
		case "viewport":
			if strings.Contains(strings.ToLower(content), "width=device-width") {
				d.HasViewportMeta = true
			}
		}
	})
}

func parseHeadings(doc *goquery.Document, d *Document, opts ParseOptions) {
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if opts.MaxOutline > 0 && len(d.HeadingOutline) >= opts.MaxOutline {
			return
		}
		level := int(goquery.NodeName(s)[1] - '0')
		d.HeadingOutline = append(d.HeadingOutline, level)

		text := collapse(s.Text())
		switch level {
		case 1:
			d.Headings.H1 = appendBounded(d.Headings.H1, text, opts.MaxHeadings)
		case 2:
			d.Headings.H2 = appendBounded(d.Headings.H2, text, opts.MaxHeadings)
		case 3:
			d.Headings.H3 = appendBounded(d.Headings.H3, text, opts.MaxHeadings)
		}
	})
}

func parseLinks(doc *goquery.Document, d *Document, opts ParseOptions) {
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || href == "#" {
			return
		}
		link := Link{Href: href, AnchorText: collapse(s.Text())}
		d.Links = append(d.Links, link)

		if !opts.ScanServicePages || len(d.ServicePages) >= maxServicePages || seen[href] {
			return
		}
		if looksLikeServicePage(link) {
			seen[href] = true
			d.ServicePages = append(d.ServicePages, link)
		}
	})
}

func parseImages(doc *goquery.Document, d *Document, opts ParseOptions) {
	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if opts.MaxImages > 0 && len(d.Images) >= opts.MaxImages {
			return false
		}
		_, hasAlt := s.Attr("alt")
		d.Images = append(d.Images, Image{HasAlt: hasAlt})
		return true
	})
}

func looksLikeServicePage(l Link) bool {
	haystack := strings.ToLower(l.Href + " " + l.AnchorText)
	for _, cue := range serviceCues {
		if strings.Contains(haystack, cue) {
			return true
		}
	}
	return false
}

// visibleText strips noise elements and markup from the body. The body is
// cloned so the caller's document keeps its scripts for fingerprinting.
func visibleText(doc *goquery.Document) string {
	body := doc.Find("body").First().Clone()
	if body.Length() == 0 {
		return ""
	}
	for _, sel := range noiseSelectors {
		body.Find(sel).Remove()
	}
	inner, err := body.Html()
	if err != nil {
		return ""
	}
	// Pad tags so adjacent block elements do not glue words together.
	inner = strings.ReplaceAll(inner, "<", " <")
	return collapse(html.UnescapeString(textPolicy.Sanitize(inner)))
}

// Truncate cuts s to at most limit bytes without splitting a UTF-8 sequence.
// A limit of zero or less returns s unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func appendBounded(list []string, s string, max int) []string {
	if max > 0 && len(list) >= max {
		return list
	}
	return append(list, s)
}
