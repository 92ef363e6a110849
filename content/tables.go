package content

// Category is a business category and the terms that vote for it.
type Category struct {
	Name  string
	Terms []string
}

// Segment is an audience tag and the terms that reveal it.
type Segment struct {
	Tag   string
	Terms []string
}

// Tables is the immutable vocabulary a Classifier works from.
type Tables struct {
	// Categories are evaluated in order; the earliest wins a tied vote.
	Categories []Category
	StopWords  []string
	// ServiceCues are regular expressions; the text following each match is
	// taken as a service phrase.
	ServiceCues []string
	Audiences   []Segment

	MaxTopics     int
	MaxServices   int
	ServiceWindow int
	MinTokenLen   int
}

// DefaultTables returns the built-in vocabulary.
func DefaultTables() Tables {
	return Tables{
		Categories: []Category{
			{Name: "consulting", Terms: []string{"consulting", "consultant", "advisory", "strategy", "business solutions", "management"}},
			{Name: "technology", Terms: []string{"software", "technology", "cloud", "saas", "platform", "developer", "digital transformation", "it services"}},
			{Name: "legal", Terms: []string{"law firm", "lawyer", "attorney", "legal", "litigation", "counsel"}},
			{Name: "healthcare", Terms: []string{"health", "medical", "clinic", "patient", "doctor", "hospital", "dental", "therapy"}},
			{Name: "education", Terms: []string{"education", "course", "student", "learning", "school", "training", "university", "tutor"}},
			{Name: "ecommerce", Terms: []string{"shop", "cart", "buy now", "product", "store", "checkout", "shipping", "sale"}},
			{Name: "finance", Terms: []string{"finance", "financial", "investment", "banking", "loan", "insurance", "accounting", "wealth"}},
			{Name: "marketing", Terms: []string{"marketing", "seo", "advertising", "branding", "social media", "campaign", "lead generation"}},
			{Name: "real_estate", Terms: []string{"real estate", "property", "realtor", "homes for sale", "mortgage", "apartment", "listing"}},
		},
		StopWords: []string{
			"the", "and", "for", "are", "but", "not", "you", "all", "any", "can", "her", "was", "one", "our", "out",
			"that", "this", "with", "from", "your", "have", "more", "will", "about", "what", "when", "which",
			"their", "there", "they", "them", "been", "were", "into", "also", "than", "other", "some", "just",
			"here", "over", "such", "only", "each", "most", "very", "where", "would", "could", "should",
		},
		ServiceCues: []string{
			`(?i)we\s+(?:offer|provide|deliver|specialize\s+in)`,
			`(?i)our\s+(?:services|solutions|products|expertise)`,
			`(?i)specialized\s+in`,
			`(?i)expert\s+in`,
			`(?i)consulting\s+for`,
		},
		Audiences: []Segment{
			{Tag: "small_business", Terms: []string{"small business", "smb", "local business", "entrepreneur"}},
			{Tag: "enterprise", Terms: []string{"enterprise", "corporation", "fortune 500", "large organization"}},
			{Tag: "startups", Terms: []string{"startup", "start-up", "founders"}},
			{Tag: "consumers", Terms: []string{"consumers", "shoppers", "families", "homeowners"}},
			{Tag: "professionals", Terms: []string{"professionals", "executives", "managers"}},
			{Tag: "students", Terms: []string{"students", "learners", "graduates"}},
			{Tag: "developers", Terms: []string{"developers", "engineers", "programmers"}},
			{Tag: "patients", Terms: []string{"patients"}},
		},
		MaxTopics:     10,
		MaxServices:   5,
		ServiceWindow: 100,
		MinTokenLen:   4,
	}
}
