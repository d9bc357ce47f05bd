package patterns

import "github.com/MikeSquared-Agency/mimic/internal/style"

// ThemeGroup buckets themes for routing.
type ThemeGroup string

const (
	GroupAny      ThemeGroup = "any"
	GroupPersonal ThemeGroup = "personal"
	GroupOther    ThemeGroup = "other"
)

var personalThemes = map[style.Theme]bool{
	style.ThemeCareerGrowth:  true,
	style.ThemePersonalStory: true,
	style.ThemeWellBeing:     true,
}

func groupOf(theme style.Theme) ThemeGroup {
	if personalThemes[theme] {
		return GroupPersonal
	}
	return GroupOther
}

// RouteKey selects a routing rule.
type RouteKey struct {
	Sentiment style.Sentiment
	Group     ThemeGroup
}

// RouteRule lists the categories for a key. WithSpecificPoint is appended
// when the post carries a specific point to respond to.
type RouteRule struct {
	Categories        []Category
	WithSpecificPoint []Category
}

// Routes is the routing table. Keys with GroupAny match every theme group
// not listed explicitly for that sentiment.
var Routes = map[RouteKey]RouteRule{
	{style.SentimentPositive, GroupPersonal}: {
		Categories:        []Category{AgreementExtended, PersonalEndorsement},
		WithSpecificPoint: []Category{PracticalFeedback},
	},
	{style.SentimentPositive, GroupOther}: {
		Categories: []Category{AgreementShort, Observations},
	},
	{style.SentimentChallenging, GroupAny}: {
		Categories: []Category{ExperienceSharing, PersonalEndorsement},
	},
	{style.SentimentNeutral, GroupAny}: {
		Categories: []Category{Observations, AgreementShort},
	},
}

// ThemeExtras are appended for a theme regardless of sentiment.
var ThemeExtras = map[style.Theme][]Category{
	style.ThemeBusinessStrategy: {BusinessInsights},
}

// Route returns the candidate categories for a theme and sentiment. Unknown
// sentiments route as neutral.
func Route(theme style.Theme, sentiment style.Sentiment, hasSpecificPoint bool) []Category {
	rule, ok := Routes[RouteKey{sentiment, groupOf(theme)}]
	if !ok {
		rule, ok = Routes[RouteKey{sentiment, GroupAny}]
	}
	if !ok {
		rule = Routes[RouteKey{style.SentimentNeutral, GroupAny}]
	}

	cats := append([]Category(nil), rule.Categories...)
	if hasSpecificPoint {
		cats = append(cats, rule.WithSpecificPoint...)
	}
	cats = append(cats, ThemeExtras[theme]...)
	return cats
}
