package scorer

// Priority levels.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Recommendation is a fixed piece of advice attached to a weak component.
type Recommendation struct {
	Category          string `json:"category"`
	Priority          string `json:"priority"`
	Issue             string `json:"issue"`
	Description       string `json:"description"`
	RecommendedAction string `json:"recommended_action"`
}

var recommendations = map[string]Recommendation{
	Title: {
		Category:          "Title Tag",
		Priority:          PriorityHigh,
		Issue:             "Title tag needs optimization",
		Description:       "Your title tag could be improved for better SEO performance",
		RecommendedAction: "Optimize title length (40-60 characters) and include primary keyword",
	},
	MetaDescription: {
		Category:          "Meta Description",
		Priority:          PriorityMedium,
		Issue:             "Meta description needs improvement",
		Description:       "Your meta description could be more compelling",
		RecommendedAction: "Write a compelling meta description (120-160 characters) with call-to-action",
	},
	URLStructure: {
		Category:          "URL Structure",
		Priority:          PriorityMedium,
		Issue:             "URL structure is not search friendly",
		Description:       "Long, deeply nested or special-character URLs are harder to crawl and share",
		RecommendedAction: "Use short, lowercase, hyphen-separated paths no more than three folders deep",
	},
	Headings: {
		Category:          "Heading Structure",
		Priority:          PriorityHigh,
		Issue:             "Heading hierarchy needs work",
		Description:       "Pages should have exactly one H1 and headings that do not skip levels",
		RecommendedAction: "Use a single descriptive H1 and nest H2-H6 in order without skipping levels",
	},
	Content: {
		Category:          "Content Quality",
		Priority:          PriorityHigh,
		Issue:             "Content depth could be improved",
		Description:       "Thin or unfocused content limits how many queries the page can rank for",
		RecommendedAction: "Expand the main copy around the primary topic and answer common customer questions",
	},
	Links: {
		Category:          "Internal Linking",
		Priority:          PriorityMedium,
		Issue:             "Link profile needs attention",
		Description:       "Internal links spread authority and help crawlers discover related pages",
		RecommendedAction: "Add descriptive internal links to key service pages and cite authoritative sources",
	},
	MobileFriendly: {
		Category:          "Mobile Usability",
		Priority:          PriorityHigh,
		Issue:             "Mobile experience needs improvement",
		Description:       "Search engines index the mobile version of the page first",
		RecommendedAction: "Use a responsive layout with a width=device-width viewport and tap-friendly controls",
	},
	LoadSpeed: {
		Category:          "Page Speed",
		Priority:          PriorityMedium,
		Issue:             "Page load speed is below target",
		Description:       "Slow pages lose visitors and rank lower on competitive queries",
		RecommendedAction: "Compress images, defer non-critical scripts and serve static assets from a CDN",
	},
	Technical: {
		Category:          "Technical SEO",
		Priority:          PriorityLow,
		Issue:             "Technical SEO signals are missing",
		Description:       "Viewport, response time and structured data all feed search engine understanding",
		RecommendedAction: "Add a viewport meta tag, keep load time under 2 seconds and publish JSON-LD structured data",
	},
}

// Recommend returns one record for every component scoring below the
// threshold, in Keys order.
func Recommend(components Scores) []Recommendation {
	out := []Recommendation{}
	for _, key := range Keys {
		score, ok := components[key]
		if !ok || score >= RecommendationThreshold {
			continue
		}
		out = append(out, recommendations[key])
	}
	return out
}

// RecommendationFor returns the fixed record for a component key.
func RecommendationFor(key string) (Recommendation, bool) {
	r, ok := recommendations[key]
	return r, ok
}
