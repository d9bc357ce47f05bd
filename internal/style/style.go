// Package style derives a style signature from a set of reference comments:
// the dominant theme and sentiment, the average comment length and the
// punctuation habits a reply has to reproduce to sound like its author.
package style

import (
	"strings"
)

type Theme string

const (
	ThemeCareerGrowth     Theme = "career_growth"
	ThemeLeadership       Theme = "leadership"
	ThemeBusinessStrategy Theme = "business_strategy"
	ThemePersonalStory    Theme = "personal_story"
	ThemeAdviceSharing    Theme = "advice_sharing"
	ThemeNetworking       Theme = "networking"
	ThemeMotivation       Theme = "motivation"
	ThemeWellBeing        Theme = "well_being"
	ThemeGeneralBusiness  Theme = "general_business"
)

type Sentiment string

const (
	SentimentPositive    Sentiment = "positive"
	SentimentChallenging Sentiment = "challenging"
	SentimentNeutral     Sentiment = "neutral"
)

// themeVocabularies is ordered: the first theme whose vocabulary appears in the
// text wins.
var themeVocabularies = []struct {
	theme    Theme
	keywords []string
}{
	{ThemeCareerGrowth, []string{"career", "growth", "promotion", "success", "achievement"}},
	{ThemeLeadership, []string{"leadership", "team", "management", "culture", "people"}},
	{ThemeBusinessStrategy, []string{"business", "strategy", "roi", "revenue", "growth"}},
	{ThemePersonalStory, []string{"journey", "experience", "learned", "challenge", "overcome"}},
	{ThemeAdviceSharing, []string{"advice", "tip", "lesson", "learned", "mistake"}},
	{ThemeNetworking, []string{"connection", "relationship", "network", "community"}},
	{ThemeMotivation, []string{"motivation", "inspiration", "mindset", "attitude"}},
	{ThemeWellBeing, []string{"mental health", "burnout", "well-being", "health", "rest"}},
}

var (
	positiveIndicators = []string{"success", "achievement", "great", "love", "excited", "proud"}
	negativeIndicators = []string{"challenge", "difficult", "problem", "struggle", "failed"}
)

// emojiSet is the tracked set of expressive markers. A signature asserting
// HasEmoji is satisfied by any rune from this set.
const emojiSet = "😀😁😂🤣😃😄😅😆😉😊😋😎😍😘🥰😗😙😚🙂🤗🤩🤔🤨😐😑😶🙄😏😣😥😮🤐😯😪😫😴😌😛😜😝🤤😒😓😔😕🙃🤑😲☹🙁😖😞😟😤😢😭😦😧😨😩🤯😬😰😱🥵🥶😳🤪😵😡😠🤬😷🤒🤕🤢🤮🤧😇🥳🥺🤠🤡🤥🤫🤭🧐🤓😈👿👹👺💀👻👽👾🤖😺😸😹😻😼😽🙀😿😾"

// DetectTheme returns the first theme whose vocabulary occurs in text, or
// ThemeGeneralBusiness when none does.
func DetectTheme(text string) Theme {
	lower := strings.ToLower(text)
	for _, v := range themeVocabularies {
		for _, kw := range v.keywords {
			if strings.Contains(lower, kw) {
				return v.theme
			}
		}
	}
	return ThemeGeneralBusiness
}

// DetectSentiment compares positive and negative indicator hits.
func DetectSentiment(text string) Sentiment {
	lower := strings.ToLower(text)
	pos, neg := 0, 0
	for _, w := range positiveIndicators {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range negativeIndicators {
		if strings.Contains(lower, w) {
			neg++
		}
	}
	switch {
	case pos > neg:
		return SentimentPositive
	case neg > pos:
		return SentimentChallenging
	default:
		return SentimentNeutral
	}
}

// HasEmoji reports whether text contains a tracked emoji.
func HasEmoji(text string) bool {
	return strings.ContainsAny(text, emojiSet)
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
