// Package content derives the business context of a page from its text: a
// category chosen by a term-frequency vote, the dominant topics, the service
// phrases the page advertises and the audience it addresses.
package content

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/seo-optimizer/auditor/document"
)

// Classification is the business context of a page.
type Classification struct {
	BusinessCategory string   `json:"business_category"`
	MainTopics       []string `json:"main_topics"`
	Services         []string `json:"services"`
	Audience         []string `json:"audience"`
}

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Classifier is a pure function of its tables and the input text.
type Classifier struct {
	tables    Tables
	stopWords map[string]struct{}
	cues      []*regexp.Regexp
}

// New compiles tables into a Classifier.
func New(tables Tables) (*Classifier, error) {
	if len(tables.Categories) == 0 {
		return nil, fmt.Errorf("content tables need at least one category")
	}

	if tables.MaxTopics <= 0 {
		tables.MaxTopics = 10
	}
	if tables.MaxServices <= 0 {
		tables.MaxServices = 5
	}
	if tables.ServiceWindow <= 0 {
		tables.ServiceWindow = 100
	}
	if tables.MinTokenLen <= 0 {
		tables.MinTokenLen = 4
	}

	c := &Classifier{
		tables:    copyTables(tables),
		stopWords: make(map[string]struct{}, len(tables.StopWords)),
	}
	for _, w := range tables.StopWords {
		c.stopWords[strings.ToLower(w)] = struct{}{}
	}
	for _, expr := range tables.ServiceCues {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compiling service cue %q: %w", expr, err)
		}
		c.cues = append(c.cues, re)
	}
	return c, nil
}

// NewDefault returns a Classifier over DefaultTables.
func NewDefault() *Classifier {
	c, err := New(DefaultTables())
	if err != nil {
		panic(err)
	}
	return c
}

// Classify reads the page text together with its title and description.
func (c *Classifier) Classify(text, title, description string) Classification {
	combined := joinPresent(title, description, text)
	lower := strings.ToLower(combined)

	return Classification{
		BusinessCategory: c.category(lower),
		MainTopics:       c.topics(lower),
		Services:         c.services(combined),
		Audience:         c.audience(lower),
	}
}

// category returns the category with the most indicator-term occurrences.
// Counting is by substring, so "lawyers" counts toward "lawyer".
func (c *Classifier) category(lower string) string {
	best, bestCount := c.tables.Categories[0].Name, 0
	for _, cat := range c.tables.Categories {
		count := 0
		for _, term := range cat.Terms {
			if term != "" {
				count += strings.Count(lower, term)
			}
		}
		if count > bestCount {
			best, bestCount = cat.Name, count
		}
	}
	return best
}

// topics ranks tokens by frequency, breaking ties by first appearance.
func (c *Classifier) topics(lower string) []string {
	counts := make(map[string]int)
	var order []string
	for _, tok := range tokenPattern.FindAllString(lower, -1) {
		if utf8.RuneCountInString(tok) < c.tables.MinTokenLen {
			continue
		}
		if _, stop := c.stopWords[tok]; stop {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	ranked := make([]string, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	if len(ranked) > c.tables.MaxTopics {
		ranked = ranked[:c.tables.MaxTopics]
	}
	return ranked
}

// services collects the phrase after each cue match, pattern by pattern.
func (c *Classifier) services(text string) []string {
	found := []string{}
	for _, re := range c.cues {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if len(found) >= c.tables.MaxServices {
				return found
			}
			if phrase := c.phraseAfter(text[loc[1]:]); phrase != "" {
				found = append(found, phrase)
			}
		}
	}
	return found
}

func (c *Classifier) phraseAfter(rest string) string {
	n := 0
	for i := range rest {
		if n == c.tables.ServiceWindow {
			rest = rest[:i]
			break
		}
		n++
	}
	if cut := strings.IndexAny(rest, ".!?"); cut >= 0 {
		rest = rest[:cut]
	}
	return strings.TrimSpace(rest)
}

func (c *Classifier) audience(lower string) []string {
	tags := []string{}
	for _, seg := range c.tables.Audiences {
		for _, term := range seg.Terms {
			if term != "" && strings.Contains(lower, term) {
				tags = append(tags, seg.Tag)
				break
			}
		}
	}
	return tags
}

func joinPresent(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if !document.IsMissing(p) {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func copyTables(t Tables) Tables {
	out := t
	out.Categories = make([]Category, len(t.Categories))
	for i, cat := range t.Categories {
		terms := make([]string, len(cat.Terms))
		for j, term := range cat.Terms {
			terms[j] = strings.ToLower(term)
		}
		out.Categories[i] = Category{Name: cat.Name, Terms: terms}
	}
	out.Audiences = make([]Segment, len(t.Audiences))
	for i, seg := range t.Audiences {
		terms := make([]string, len(seg.Terms))
		for j, term := range seg.Terms {
			terms[j] = strings.ToLower(term)
		}
		out.Audiences[i] = Segment{Tag: seg.Tag, Terms: terms}
	}
	out.StopWords = append([]string(nil), t.StopWords...)
	out.ServiceCues = append([]string(nil), t.ServiceCues...)
	return out
}
