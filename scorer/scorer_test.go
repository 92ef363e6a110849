package scorer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/auditor/document"
)

func TestScoreTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  int
	}{
		{"sentinel", document.NotAvailable, 0},
		{"empty", "", 0},
		{"short single token", strings.Repeat("A", 25), 70},
		{"all caps in optimum band", "ALL CAPS TITLE THAT IS QUITE LONG INDEED YES", 90},
		{"all lowercase", "all lowercase title here for the test page", 95},
		{"double space and short", "Best  Coffee Beans", 65},
		{"acceptable but not optimal", "Fresh Roasted Coffee Beans Delivered", 90},
		{"too long", "Fresh Roasted Coffee Beans Delivered Weekly From Our Family Farm To You", 80},
		{"optimal", "Fresh Roasted Coffee Beans Delivered Weekly", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreTitle(tt.title))
		})
	}
}

func TestScoreMetaDescription(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want int
	}{
		{"sentinel", document.NotAvailable, 0},
		{"optimal", strings.Repeat("word ", 29) + "end.", 100},
		{"acceptable length", strings.Repeat("word ", 25) + "end.", 90},
		{"too long", strings.Repeat("word ", 34) + "end.", 80},
		{"short, no punctuation, few words", "Buy coffee", 40},
		{"no punctuation", strings.Repeat("word ", 29) + "end", 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreMetaDescription(tt.desc))
		})
	}
}

func TestScoreURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want int
	}{
		{"clean", "https://example.com/coffee/beans", 100},
		{"root", "https://example.com", 100},
		{"special characters", "https://example.com/Coffee_Beans", 85},
		{"double hyphen", "https://example.com/a--b", 90},
		{"deep path", "https://example.com/a/b/c/d/e", 90},
		{"long", "https://example.com/" + strings.Repeat("a", 100), 80},
		{"floored at zero", "https://example.com/" + strings.Repeat("a/", 30), 0},
		{"sentinel", document.NotAvailable, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreURL(tt.url))
		})
	}
}

func TestScoreHeadings(t *testing.T) {
	tests := []struct {
		name    string
		outline []int
		want    int
	}{
		{"ordered", []int{1, 2, 3, 2}, 100},
		{"no headings", nil, 50},
		{"no h1", []int{2, 3}, 50},
		{"two h1", []int{1, 1}, 80},
		{"skipped level", []int{1, 3}, 95},
		{"skips are cumulative", []int{2, 4, 1, 3}, 90},
		{"multiple h1 and skips", []int{1, 1, 3, 6}, 70},
		{"going back up is fine", []int{1, 2, 3, 4, 1}, 80},
		{"deep first heading only counts pairs", []int{3, 4}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreHeadings(tt.outline))
		})
	}
}

func TestScoreTechnical(t *testing.T) {
	assert.Equal(t, 100, ScoreTechnical(true, 1.0, true))
	assert.Equal(t, 35, ScoreTechnical(false, 3.5, false))
	assert.Equal(t, 90, ScoreTechnical(true, 2.5, true))
	assert.Equal(t, 90, ScoreTechnical(true, 3.0, true))
	assert.Equal(t, 100, ScoreTechnical(true, 2.0, true))
}

func uniform(v int) Scores {
	s := Scores{}
	for _, k := range Keys {
		s[k] = v
	}
	return s
}

func TestOverall(t *testing.T) {
	total := 0
	for _, w := range Weights {
		total += w
	}
	require.Equal(t, 100, total)

	assert.Equal(t, 80, Overall(uniform(80)))
	assert.Equal(t, 0, Overall(uniform(0)))
	assert.Equal(t, 100, Overall(uniform(100)))

	// 70*95 + 80*5 = 7050: exactly half, rounds to even.
	s := uniform(70)
	s[Technical] = 80
	assert.Equal(t, 70, Overall(s))

	s = uniform(71)
	s[Technical] = 81
	assert.Equal(t, 72, Overall(s))
}

func TestRecommend(t *testing.T) {
	assert.Empty(t, Recommend(uniform(80)))

	s := uniform(100)
	s[Headings] = 79
	s[Title] = 10
	recs := Recommend(s)
	require.Len(t, recs, 2)
	assert.Equal(t, "Title Tag", recs[0].Category)
	assert.Equal(t, PriorityHigh, recs[0].Priority)
	assert.Equal(t, "Heading Structure", recs[1].Category)

	for _, key := range Keys {
		s := uniform(100)
		s[key] = 50
		recs := Recommend(s)
		require.Len(t, recs, 1, key)
		want, ok := RecommendationFor(key)
		require.True(t, ok)
		assert.Equal(t, want, recs[0])
		assert.Contains(t, []string{PriorityHigh, PriorityMedium, PriorityLow}, recs[0].Priority)
	}
}

func TestScoreDocument(t *testing.T) {
	d := &document.Document{
		URL:             "https://example.com",
		Title:           document.NotAvailable,
		MetaDescription: document.NotAvailable,
		HeadingOutline:  []int{1},
		HasViewportMeta: true,
		LoadTimeSeconds: 1.0,
		HasStructured:   true,
	}

	res := NewDefault().Score(d)

	assert.Equal(t, Scores{
		Title:           0,
		MetaDescription: 0,
		URLStructure:    100,
		Headings:        100,
		Content:         75,
		Links:           70,
		MobileFriendly:  90,
		LoadSpeed:       85,
		Technical:       100,
	}, res.Components)
	assert.Equal(t, 64, res.Overall)

	categories := make([]string, 0, len(res.Recommendations))
	for _, r := range res.Recommendations {
		categories = append(categories, r.Category)
	}
	assert.Equal(t, []string{"Title Tag", "Meta Description", "Content Quality", "Internal Linking"}, categories)
}

func TestPlaceholdersAreConfigurable(t *testing.T) {
	res := New(Placeholders{Content: 150, Links: -5, MobileFriendly: 80, LoadSpeed: 80}).Score(&document.Document{URL: "https://example.com"})

	assert.Equal(t, 100, res.Components[Content])
	assert.Equal(t, 0, res.Components[Links])
	for _, k := range Keys {
		v, ok := res.Components[k]
		require.True(t, ok, k)
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 100)
	}
}
