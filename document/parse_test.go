package document

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>  Acme Consulting | Strategy for Growing Firms </title>
  <meta name="description" content="We help small business owners grow.">
  <meta name="Robots" content="index, follow">
  <meta name="generator" content="WordPress 6.4">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <script type="application/ld+json">{"@type":"Organization"}</script>
</head>
<body>
  <h1>Welcome</h1>
  <h3>Skipped a level</h3>
  <h2>Our services</h2>
  <p>We offer strategy workshops.</p><p>Call us today</p>
  <script>var tracking = "hidden";</script>
  <a href="/services/strategy">Strategy</a>
  <a href="#">Top</a>
  <a href="https://example.org/about">About</a>
  <img src="a.png" alt="logo"><img src="b.png">
</body>
</html>`

func TestParse(t *testing.T) {
	src := Source{
		URL:        "https://acme.example.com/consulting",
		Markup:     samplePage,
		Headers:    map[string]string{"server": "nginx"},
		StatusCode: 200,
		LoadTime:   1500 * time.Millisecond,
	}

	d, err := Parse(src, FullOptions())
	require.NoError(t, err)

	assert.Equal(t, "acme.example.com", d.Domain)
	assert.Equal(t, "Acme Consulting | Strategy for Growing Firms", d.Title)
	assert.Equal(t, "We help small business owners grow.", d.MetaDescription)
	assert.Equal(t, "index, follow", d.RobotsDirective)
	assert.Equal(t, "WordPress 6.4", d.Generator)
	assert.True(t, d.HasViewportMeta)
	assert.True(t, d.HasStructured)
	assert.InDelta(t, 1.5, d.LoadTimeSeconds, 1e-9)

	assert.Equal(t, []string{"Welcome"}, d.Headings.H1)
	assert.Equal(t, []string{"Our services"}, d.Headings.H2)
	assert.Equal(t, []int{1, 3, 2}, d.HeadingOutline)
	assert.Equal(t, 1, d.H1Count())

	require.Len(t, d.Links, 2)
	assert.Equal(t, Link{Href: "/services/strategy", AnchorText: "Strategy"}, d.Links[0])
	assert.Equal(t, []Link{{Href: "/services/strategy", AnchorText: "Strategy"}}, d.ServicePages)

	assert.Equal(t, []Image{{HasAlt: true}, {HasAlt: false}}, d.Images)

	assert.Contains(t, d.Text, "We offer strategy workshops. Call us today")
	assert.NotContains(t, d.Text, "tracking")
	assert.Contains(t, d.RawMarkup, "tracking", "raw markup keeps scripts for fingerprinting")
	assert.Equal(t, "nginx", d.Header("server"))
}

func TestParseDefaultsToSentinel(t *testing.T) {
	d, err := Parse(Source{Markup: "<html><body></body></html>"}, FullOptions())
	require.NoError(t, err)

	assert.Equal(t, NotAvailable, d.URL)
	assert.Equal(t, NotAvailable, d.Domain)
	assert.Equal(t, NotAvailable, d.Title)
	assert.Equal(t, NotAvailable, d.MetaDescription)
	assert.Equal(t, NotAvailable, d.RobotsDirective)
	assert.Equal(t, NotAvailable, d.Generator)
	assert.Equal(t, NotAvailable, d.Text)
	assert.False(t, d.HasViewportMeta)
	assert.False(t, d.HasStructured)
	assert.Empty(t, d.Links)
	assert.Empty(t, d.HeadingOutline)
	assert.NotNil(t, d.ResponseHeaders)
}

func TestParseFastOptions(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 80; i++ {
		b.WriteString(`<h2>Section</h2><img src="x.png"><a href="/products/x">Product</a>`)
	}
	b.WriteString("</body></html>")

	d, err := Parse(Source{URL: "https://example.com", Markup: b.String()}, FastOptions())
	require.NoError(t, err)

	assert.Len(t, d.Headings.H2, 5)
	assert.Len(t, d.HeadingOutline, 50)
	assert.Len(t, d.Images, 50)
	assert.Empty(t, d.ServicePages, "fast mode skips the service page scan")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 0))
	assert.Equal(t, "hel", Truncate("hello", 3))
	assert.Equal(t, "hello", Truncate("hello", 10))
	// "é" is two bytes; cutting inside it backs off to the rune start.
	assert.Equal(t, "ab", Truncate("abé", 3))
}
