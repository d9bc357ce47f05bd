package style

import "strings"

// Signature is the aggregate style descriptor of a set of reference texts.
// A nil *Signature means "no signature": it is never guessed.
type Signature struct {
	Theme          Theme     `json:"theme"`
	Sentiment      Sentiment `json:"sentiment"`
	AvgLength      int       `json:"avg_length"`
	HasEmoji       bool      `json:"has_emoji"`
	HasExclamation bool      `json:"has_exclamation"`
	HasQuestion    bool      `json:"has_question"`
}

// Reference is a single reference text with its derived attributes.
type Reference struct {
	Text      string
	Words     int
	Theme     Theme
	Sentiment Sentiment
	Emoji     bool
	Exclaim   bool
	Question  bool
}

// Analyze derives the per-text attributes of a reference.
func Analyze(text string) Reference {
	return Reference{
		Text:      text,
		Words:     WordCount(text),
		Theme:     DetectTheme(text),
		Sentiment: DetectSentiment(text),
		Emoji:     HasEmoji(text),
		Exclaim:   strings.Contains(text, "!"),
		Question:  strings.Contains(text, "?"),
	}
}

// Profile derives a Signature from texts. It returns nil for empty input.
// Theme and sentiment are decided by majority vote across texts, falling back
// to the first text's vote when there is no single winner. Marker flags are
// OR-ed across the set and AvgLength is the truncated mean word count.
func Profile(texts []string) *Signature {
	if len(texts) == 0 {
		return nil
	}

	refs := make([]Reference, len(texts))
	themes := make([]Theme, len(texts))
	sentiments := make([]Sentiment, len(texts))
	totalWords := 0
	for i, t := range texts {
		refs[i] = Analyze(t)
		themes[i] = refs[i].Theme
		sentiments[i] = refs[i].Sentiment
		totalWords += refs[i].Words
	}

	sig := &Signature{
		Theme:     majority(themes),
		Sentiment: majority(sentiments),
		AvgLength: totalWords / len(texts),
	}
	for _, r := range refs {
		sig.HasEmoji = sig.HasEmoji || r.Emoji
		sig.HasExclamation = sig.HasExclamation || r.Exclaim
		sig.HasQuestion = sig.HasQuestion || r.Question
	}
	return sig
}

// majority returns the value with the strictly highest count, or votes[0]
// when two or more values tie for the top. votes must not be empty.
func majority[T comparable](votes []T) T {
	counts := make(map[T]int, len(votes))
	for _, v := range votes {
		counts[v]++
	}
	var best T
	bestCount, tied := 0, false
	for _, v := range votes {
		c := counts[v]
		switch {
		case c > bestCount:
			best, bestCount, tied = v, c, false
		case c == bestCount && v != best:
			tied = true
		}
	}
	if tied {
		return votes[0]
	}
	return best
}
