// Package platform fingerprints the CMS, frameworks, hosting, server, CDN and
// auxiliary technologies behind a page from its markup, URL and headers.
package platform

import (
	"sort"
	"strings"

	"github.com/seo-optimizer/auditor/document"
)

// Fingerprint describes the technology behind a page.
type Fingerprint struct {
	CMS          string   `json:"cms"`
	Framework    string   `json:"framework"`
	Hosting      string   `json:"hosting"`
	Server       string   `json:"server"`
	CDN          string   `json:"cdn"`
	Technologies []string `json:"technologies"`
}

// Classifier matches a document against immutable rule tables.
type Classifier struct {
	rules Rules
}

// New creates a Classifier owning a normalized copy of rules.
func New(rules Rules) *Classifier {
	return &Classifier{rules: rules.normalized()}
}

// NewDefault creates a Classifier with the built-in tables.
func NewDefault() *Classifier {
	return New(DefaultRules())
}

// Classify fingerprints d. It never touches the network and never fails: a
// document without markup comes back as all Unknown.
func (c *Classifier) Classify(d *document.Document) Fingerprint {
	fp := Fingerprint{
		CMS:          Unknown,
		Framework:    Unknown,
		Hosting:      Unknown,
		Server:       Unknown,
		CDN:          Unknown,
		Technologies: []string{},
	}
	if d == nil || document.IsMissing(strings.TrimSpace(d.RawMarkup)) {
		return fp
	}

	markup := strings.ToLower(d.RawMarkup)
	pageURL := d.ResolvedURL
	if document.IsMissing(pageURL) {
		pageURL = d.URL
	}
	pageURL = strings.ToLower(pageURL)
	headers := headerBlob(d.ResponseHeaders)

	fp.CMS = c.rules.CMS.FirstMatch(markup)
	if frameworks := c.rules.Frameworks.AllMatches(markup); len(frameworks) > 0 {
		fp.Framework = strings.Join(frameworks, ", ")
	}
	fp.Hosting = c.rules.Hosting.FirstMatch(pageURL + "\n" + headers + "\n" + markup)
	fp.Server = c.rules.Servers.FirstMatch(strings.ToLower(d.Header("server") + "\n" + d.Header("x-powered-by")))
	fp.CDN = c.rules.CDNs.FirstMatch(headers + "\n" + markup)

	fp.Technologies = c.rules.Technologies.AllMatches(markup)
	if !document.IsMissing(d.Generator) {
		fp.Technologies = append(fp.Technologies, d.Generator)
	}

	return fp
}

// headerBlob renders headers as sorted "name: value" lines, lower-cased.
func headerBlob(h map[string]string) string {
	if len(h) == 0 {
		return ""
	}
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(strings.ToLower(name))
		b.WriteString(": ")
		b.WriteString(strings.ToLower(h[name]))
		b.WriteByte('\n')
	}
	return b.String()
}
