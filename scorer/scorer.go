// Package scorer computes the component SEO scores of a document, combines
// them into an overall score and emits recommendations for weak components.
package scorer

import (
	"math"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/seo-optimizer/auditor/document"
)

// Component score keys.
const (
	Title           = "title"
	MetaDescription = "meta_description"
	URLStructure    = "url_structure"
	Headings        = "headings"
	Content         = "content"
	Links           = "links"
	MobileFriendly  = "mobile_friendly"
	LoadSpeed       = "load_speed"
	Technical       = "technical"
)

// Keys lists every component in reporting order.
var Keys = []string{
	Title, MetaDescription, URLStructure, Headings, Content,
	Links, MobileFriendly, LoadSpeed, Technical,
}

// Weights sum to 100.
var Weights = map[string]int{
	Title:           15,
	MetaDescription: 10,
	URLStructure:    10,
	Headings:        10,
	Content:         20,
	Links:           10,
	MobileFriendly:  10,
	LoadSpeed:       10,
	Technical:       5,
}

// RecommendationThreshold is the score below which a component gets a recommendation.
const RecommendationThreshold = 80

// Placeholders holds the fixed scores of components not yet derived from
// page signals.
type Placeholders struct {
	Content        int `mapstructure:"content"`
	Links          int `mapstructure:"links"`
	MobileFriendly int `mapstructure:"mobile_friendly"`
	LoadSpeed      int `mapstructure:"load_speed"`
}

// DefaultPlaceholders returns the stand-in component scores.
func DefaultPlaceholders() Placeholders {
	return Placeholders{Content: 75, Links: 70, MobileFriendly: 90, LoadSpeed: 85}
}

// Scores maps every component key to a value in [0,100].
type Scores map[string]int

// Result is the scorer's output.
type Result struct {
	Overall         int              `json:"overall_score"`
	Components      Scores           `json:"component_scores"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Scorer is stateless apart from its placeholder configuration.
type Scorer struct {
	placeholders Placeholders
}

// New creates a Scorer.
func New(p Placeholders) *Scorer {
	return &Scorer{placeholders: p}
}

// NewDefault creates a Scorer with DefaultPlaceholders.
func NewDefault() *Scorer {
	return New(DefaultPlaceholders())
}

// Score evaluates d.
func (s *Scorer) Score(d *document.Document) Result {
	components := Scores{
		Title:           ScoreTitle(d.Title),
		MetaDescription: ScoreMetaDescription(d.MetaDescription),
		URLStructure:    ScoreURL(d.URL),
		Headings:        ScoreHeadings(d.HeadingOutline),
		Content:         clamp(s.placeholders.Content),
		Links:           clamp(s.placeholders.Links),
		MobileFriendly:  clamp(s.placeholders.MobileFriendly),
		LoadSpeed:       clamp(s.placeholders.LoadSpeed),
		Technical:       ScoreTechnical(d.HasViewportMeta, d.LoadTimeSeconds, d.HasStructured),
	}

	return Result{
		Overall:         Overall(components),
		Components:      components,
		Recommendations: Recommend(components),
	}
}

// Overall combines component scores with the fixed weights, rounding half to even.
func Overall(components Scores) int {
	total := 0
	for key, weight := range Weights {
		total += components[key] * weight
	}
	return int(math.RoundToEven(float64(total) / 100))
}

var multiSpace = regexp.MustCompile(`\s{2,}`)

// ScoreTitle scores a title tag.
func ScoreTitle(title string) int {
	if document.IsMissing(title) {
		return 0
	}

	score := 100
	length := len([]rune(title))

	switch {
	case length < 30:
		score -= 30
	case length > 60:
		score -= 20
	case length < 40 || length > 50:
		score -= 10
	}

	if isShouting(title) {
		score -= 10
	}
	if isWhispering(title) {
		score -= 5
	}
	if multiSpace.MatchString(title) {
		score -= 5
	}

	return clamp(score)
}

// ScoreMetaDescription scores a meta description.
func ScoreMetaDescription(desc string) int {
	if document.IsMissing(desc) {
		return 0
	}

	score := 100
	length := len([]rune(desc))

	switch {
	case length < 120:
		score -= 30
	case length > 160:
		score -= 20
	case length < 140:
		score -= 10
	}

	if !strings.ContainsAny(desc, ".!?") {
		score -= 10
	}
	if strings.Count(desc, " ") < 10 {
		score -= 20
	}

	return clamp(score)
}

var disallowedPathChars = regexp.MustCompile(`[^a-z0-9\-/]`)

// ScoreURL scores the structure of the audited URL.
func ScoreURL(raw string) int {
	if document.IsMissing(raw) {
		return 0
	}

	score := 100
	path := ""
	if u, err := url.Parse(raw); err == nil {
		path = strings.ToLower(u.Path)
	}

	if len(raw) > 100 {
		score -= 20
	}
	if disallowedPathChars.MatchString(path) {
		score -= 15
	}
	if strings.Contains(path, "--") {
		score -= 10
	}

	depth := 0
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			depth++
		}
	}
	if depth > 3 {
		score -= 5 * (depth - 3)
	}

	return clamp(score)
}

// ScoreHeadings scores the heading outline (levels in document order).
func ScoreHeadings(outline []int) int {
	score := 100

	h1 := 0
	for _, level := range outline {
		if level == 1 {
			h1++
		}
	}
	if h1 == 0 {
		score -= 50
	} else if h1 > 1 {
		score -= 20
	}

	for i := 1; i < len(outline); i++ {
		if outline[i]-outline[i-1] > 1 {
			score -= 5
		}
	}

	return clamp(score)
}

// ScoreTechnical scores mobile readiness, load time and structured data.
func ScoreTechnical(hasViewport bool, loadSeconds float64, hasStructured bool) int {
	score := 100

	if !hasViewport {
		score -= 30
	}
	if loadSeconds > 3 {
		score -= 20
	} else if loadSeconds > 2 {
		score -= 10
	}
	if !hasStructured {
		score -= 15
	}

	return clamp(score)
}

// isShouting reports a multi-word title whose cased letters are all upper case.
// Single tokens are left alone so acronyms and brand marks are not penalized.
func isShouting(s string) bool {
	return len(strings.Fields(s)) > 1 && allCased(s, unicode.IsUpper, unicode.IsLower)
}

// isWhispering is the lower-case counterpart of isShouting.
func isWhispering(s string) bool {
	return len(strings.Fields(s)) > 1 && allCased(s, unicode.IsLower, unicode.IsUpper)
}

func allCased(s string, want, reject func(rune) bool) bool {
	seen := false
	for _, r := range s {
		if reject(r) {
			return false
		}
		if want(r) {
			seen = true
		}
	}
	return seen
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
