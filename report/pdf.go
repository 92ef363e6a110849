// Package report renders an audit result as a PDF document using gofpdf.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/seo-optimizer/auditor/analyzer"
	"github.com/seo-optimizer/auditor/document"
	"github.com/seo-optimizer/auditor/scorer"
)

const (
	pageMargin  = 10.0
	bottomSpace = 15.0
	lineHeight  = 5.0
)

type rgb struct{ r, g, b int }

var (
	headerFill = rgb{0, 0, 139}
	gridGrey   = rgb{128, 128, 128}

	priorityFill = map[string]rgb{
		scorer.PriorityHigh:   {240, 128, 128},
		scorer.PriorityMedium: {255, 240, 150},
		scorer.PriorityLow:    {144, 238, 144},
	}
)

// Filename is the attachment name used for downloads.
const Filename = "SEO_Audit_Report.pdf"

type renderer struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

// RenderPDF converts an audit result into PDF bytes.
func RenderPDF(res *analyzer.Result) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("no audit result to render")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, bottomSpace)
	pdf.SetTitle("SEO Audit Report", true)
	pdf.AddPage()

	r := &renderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	r.header(res)

	if res.Failed() {
		r.heading("Audit Failed")
		r.paragraph(res.Error)
	} else {
		r.recommendations(res.Recommendations)
		r.components(res.ComponentScores)
		r.technical(res.Document)
		r.platform(res)
		r.business(res)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *renderer) header(res *analyzer.Result) {
	pdf := r.pdf
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, "SEO Audit Report", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, lineHeight, r.tr("Source: "+res.URL), "", "L", false)
	meta := fmt.Sprintf("Audited %s in %s mode", res.AuditedAt.Format("2006-01-02 15:04 MST"), res.Mode)
	if res.FromCache {
		meta += " (cached)"
	}
	pdf.MultiCell(0, lineHeight, meta, "", "L", false)
	if res.ID != "" {
		pdf.MultiCell(0, lineHeight, "Audit ID: "+res.ID, "", "L", false)
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	if res.Failed() {
		return
	}

	c := scoreColor(res.OverallScore)
	pdf.SetFont("Helvetica", "B", 15)
	pdf.SetTextColor(c.r, c.g, c.b)
	pdf.CellFormat(0, 8, fmt.Sprintf("Overall SEO Score: %d/100", res.OverallScore), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	r.paragraph("Summary: " + summary(res))
}

func (r *renderer) recommendations(recs []scorer.Recommendation) {
	r.heading("Issues & Recommended Actions")
	if len(recs) == 0 {
		r.paragraph("Every component meets the target score.")
		return
	}

	widths := []float64{35, 45, 20, 90}
	r.headerRow(widths, "Category", "Issue", "Priority", "Recommended Action")
	for _, rec := range recs {
		fill := map[int]rgb{2: priorityFill[rec.Priority]}
		r.row(widths, fill, rec.Category, rec.Issue, rec.Priority, rec.RecommendedAction)
	}
}

func (r *renderer) components(scores scorer.Scores) {
	r.heading("Component Scores")
	widths := []float64{80, 40, 40}
	r.headerRow(widths, "Component", "Score", "Weight")
	for _, key := range scorer.Keys {
		score, ok := scores[key]
		if !ok {
			continue
		}
		fill := map[int]rgb{}
		if score < scorer.RecommendationThreshold {
			fill[1] = priorityFill[scorer.PriorityMedium]
		}
		r.row(widths, fill, label(key), fmt.Sprintf("%d", score), fmt.Sprintf("%d%%", scorer.Weights[key]))
	}
}

func (r *renderer) technical(d *document.Document) {
	if d == nil {
		return
	}
	r.heading("Technical Signals")
	widths := []float64{60, 130}
	r.headerRow(widths, "Metric", "Evaluation")
	r.row(widths, nil, "HTTP Status", fmt.Sprintf("%d", d.StatusCode))
	r.row(widths, nil, "Load Time", fmt.Sprintf("%.2f s", d.LoadTimeSeconds))
	r.row(widths, nil, "Mobile Viewport", yesNo(d.HasViewportMeta))
	r.row(widths, nil, "Structured Data", yesNo(d.HasStructured))
	r.row(widths, nil, "Robots Directive", d.RobotsDirective)
	r.row(widths, nil, "H1 Headings", fmt.Sprintf("%d", d.H1Count()))
	r.row(widths, nil, "Links / Images", fmt.Sprintf("%d / %d", len(d.Links), len(d.Images)))
}

func (r *renderer) platform(res *analyzer.Result) {
	p := res.Platform
	if p == nil {
		return
	}
	r.heading("Platform")
	widths := []float64{60, 130}
	r.headerRow(widths, "Signal", "Detected")
	r.row(widths, nil, "CMS", p.CMS)
	r.row(widths, nil, "Framework", p.Framework)
	r.row(widths, nil, "Hosting", p.Hosting)
	r.row(widths, nil, "Server", p.Server)
	r.row(widths, nil, "CDN", p.CDN)
	r.row(widths, nil, "Technologies", listOrNA(p.Technologies))
}

func (r *renderer) business(res *analyzer.Result) {
	c := res.Content
	if c == nil {
		return
	}
	r.heading("Business Context")
	widths := []float64{60, 130}
	r.headerRow(widths, "Aspect", "Value")
	r.row(widths, nil, "Category", label(c.BusinessCategory))
	r.row(widths, nil, "Main Topics", listOrNA(c.MainTopics))
	r.row(widths, nil, "Services", listOrNA(c.Services))
	r.row(widths, nil, "Audience", listOrNA(c.Audience))
}

func (r *renderer) heading(text string) {
	r.pdf.Ln(4)
	r.pdf.SetFont("Helvetica", "B", 13)
	r.pdf.MultiCell(0, 7, r.tr(text), "", "L", false)
	r.pdf.Ln(1)
}

func (r *renderer) paragraph(text string) {
	r.pdf.SetFont("Helvetica", "", 10)
	r.pdf.MultiCell(0, lineHeight, r.tr(text), "", "L", false)
	r.pdf.Ln(2)
}

func (r *renderer) headerRow(widths []float64, cells ...string) {
	pdf := r.pdf
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(headerFill.r, headerFill.g, headerFill.b)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetDrawColor(gridGrey.r, gridGrey.g, gridGrey.b)
	for i, cell := range cells {
		pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
}

// row draws one table row whose height fits the tallest wrapped cell. fill
// maps a column index to a background colour.
func (r *renderer) row(widths []float64, fill map[int]rgb, cells ...string) {
	pdf := r.pdf
	pdf.SetFont("Helvetica", "", 9)

	lines := make([][][]byte, len(cells))
	maxLines := 1
	for i, cell := range cells {
		lines[i] = pdf.SplitLines([]byte(r.tr(cell)), widths[i]-2)
		if len(lines[i]) > maxLines {
			maxLines = len(lines[i])
		}
	}
	height := float64(maxLines) * lineHeight

	_, pageHeight := pdf.GetPageSize()
	if pdf.GetY()+height > pageHeight-bottomSpace {
		pdf.AddPage()
	}

	x, y := pdf.GetXY()
	for i := range cells {
		style := "D"
		if c, ok := fill[i]; ok {
			pdf.SetFillColor(c.r, c.g, c.b)
			style = "FD"
		}
		pdf.Rect(x, y, widths[i], height, style)
		for j, line := range lines[i] {
			pdf.SetXY(x+1, y+float64(j)*lineHeight)
			pdf.CellFormat(widths[i]-2, lineHeight, string(line), "", 0, "L", false, 0, "")
		}
		x += widths[i]
	}
	pdf.SetXY(pageMargin, y+height)
}

func summary(res *analyzer.Result) string {
	below := len(res.Recommendations)
	switch {
	case below == 0:
		return fmt.Sprintf("All %d components score %d or higher.", len(scorer.Keys), scorer.RecommendationThreshold)
	case res.OverallScore >= 70:
		return fmt.Sprintf("Good overall; %d of %d components need attention.", below, len(scorer.Keys))
	case res.OverallScore >= 50:
		return fmt.Sprintf("Needs work; %d of %d components score below %d.", below, len(scorer.Keys), scorer.RecommendationThreshold)
	default:
		return fmt.Sprintf("Poor; %d of %d components score below %d.", below, len(scorer.Keys), scorer.RecommendationThreshold)
	}
}

func scoreColor(score int) rgb {
	switch {
	case score >= 70:
		return rgb{0, 128, 0}
	case score >= 50:
		return rgb{255, 140, 0}
	default:
		return rgb{200, 0, 0}
	}
}

func label(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func listOrNA(items []string) string {
	if len(items) == 0 {
		return document.NotAvailable
	}
	return strings.Join(items, ", ")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
