package patterns

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// fillOptions are the generic placeholder values. Entries are kept clear of
// the quality denylist.
var fillOptions = map[string][]string{
	"insight":             {"this mindset", "this perspective", "the small habits"},
	"topic":               {"this strategy", "building trust", "mental health", "showing up"},
	"lesson":              {"persistence", "patience", "consistency"},
	"point":               {"building relationships", "taking action", "consistency"},
	"observation":         {"timing", "execution", "mindset"},
	"reason":              {"experience", "timing", "execution"},
	"outcome":             {"the learning", "the growth", "the experience"},
	"subject":             {"leadership", "growth", "culture", "well-being"},
	"realization":         {"clarity", "focus", "priority"},
	"experience":          {"facing challenges", "learning from mistakes", "building trust"},
	"situation":           {"this challenge", "this scenario", "this experience"},
	"personal_experience": {"my own journey", "a similar situation", "past challenges"},
}

// placeholders mined from the post rather than drawn from fillOptions.
var minedPlaceholders = map[string]bool{SpecificPoint: true, "quote": true}

func knownPlaceholder(name string) bool {
	if minedPlaceholders[name] {
		return true
	}
	_, ok := fillOptions[name]
	return ok
}

var (
	listItemPattern = regexp.MustCompile(`(?m)^\s*(?:\d+\.\s+|-\s+)(.*)`)
	wordPattern     = regexp.MustCompile(`\b\w+\b`)
	aboutClause     = regexp.MustCompile(`(?i)\b(about )[^ ,.!?]+`)
	becauseClause   = regexp.MustCompile(`(?i)\b(because )[^ ,.!?]+`)
	braceClause     = regexp.MustCompile(`\{[^}]+\}`)
	sentencePattern = regexp.MustCompile(`[^.?]+[.?]*`)
)

var stopWords = map[string]bool{
	"the": true, "is": true, "and": true, "or": true, "but": true, "in": true,
	"on": true, "at": true, "to": true, "for": true, "of": true, "with": true,
	"by": true, "from": true, "up": true, "about": true, "into": true,
	"through": true, "during": true,
}

var humanizeFillers = compileFillers(
	"it is important to note", "it is worth mentioning",
	"in conclusion", "furthermore", "moreover", "additionally",
)

func compileFillers(phrases ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(phrases))
	for i, f := range phrases {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(f) + `\b,?`)
	}
	return out
}

// SpecificPoints returns the numbered ("1. ") or dashed ("- ") list items of
// a post.
func SpecificPoints(post string) []string {
	var points []string
	for _, m := range listItemPattern.FindAllStringSubmatch(post, -1) {
		if p := strings.TrimSpace(m[1]); p != "" {
			points = append(points, p)
		}
	}
	return points
}

// Sentences returns the period-delimited sentences of post longer than ten
// characters.
func Sentences(post string) []string {
	var out []string
	for _, s := range strings.Split(post, ".") {
		s = strings.TrimSpace(s)
		if len(s) > 10 {
			out = append(out, s)
		}
	}
	return out
}

// Keywords returns the distinct lower-cased words of post longer than three
// characters, minus stop words.
func Keywords(post string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(strings.ToLower(post), -1) {
		if len(w) > 3 && !stopWords[w] {
			out[w] = true
		}
	}
	return out
}

// KeywordOverlap counts the distinct words of text that are post keywords.
func KeywordOverlap(text, post string) int {
	kw := Keywords(post)
	seen := make(map[string]bool)
	n := 0
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if kw[w] && !seen[w] {
			seen[w] = true
			n++
		}
	}
	return n
}

// focusPoint is the post content a reply responds to: the first qualifying
// sentence, then the first list item, then fallback.
func focusPoint(post, fallback string, preferList bool) string {
	sentences := Sentences(post)
	points := SpecificPoints(post)
	if preferList && len(points) > 0 {
		return points[0]
	}
	if len(sentences) > 0 {
		return sentences[0]
	}
	if len(points) > 0 {
		return points[0]
	}
	return fallback
}

// Fill resolves every placeholder in t from post. An unresolved placeholder
// means the catalogue and filler disagree and Fill panics.
func (l *Library) Fill(t Template, post string) string {
	sentences := Sentences(post)
	values := map[string]string{
		SpecificPoint: lowerFirst(focusPoint(post, "this", false)),
		"quote":       "this idea",
	}
	if len(sentences) > 0 {
		values["quote"] = lowerFirst(sentences[l.intn(len(sentences))])
	}
	for name, opts := range fillOptions {
		values[name] = opts[l.intn(len(opts))]
	}

	for _, name := range t.Placeholders() {
		if _, ok := values[name]; !ok {
			panic(fmt.Sprintf("patterns: unresolved placeholder {%s} in template %q", name, t.Body))
		}
	}
	// Only the template body is scanned; values mined from the post may
	// carry braces of their own.
	return placeholderPattern.ReplaceAllStringFunc(t.Body, func(m string) string {
		return values[m[1:len(m)-1]]
	})
}

// Rewrite adapts a retrieved real-world comment to post by substituting its
// "about X" and "because X" clauses, and any brace placeholder, with a point
// mined from post. A sample with no such clause is returned as is.
func Rewrite(sample, post string) string {
	point := lowerFirst(focusPoint(post, "this topic", true))
	out := aboutClause.ReplaceAllString(sample, "${1}"+escapeRepl(point))
	out = becauseClause.ReplaceAllString(out, "${1}"+escapeRepl(point))
	out = braceClause.ReplaceAllLiteralString(out, point)
	return Humanize(out)
}

// Humanize strips filler connectives, flattens exclamations and capitalises
// each sentence.
func Humanize(text string) string {
	out := text
	for _, re := range humanizeFillers {
		out = re.ReplaceAllString(out, "")
	}
	out = strings.ReplaceAll(out, "!", ".")
	for strings.Contains(out, "..") {
		out = strings.ReplaceAll(out, "..", ".")
	}

	var sentences []string
	for _, s := range sentencePattern.FindAllString(out, -1) {
		s = strings.Join(strings.Fields(s), " ")
		if s == "" || s == "." || s == "?" {
			continue
		}
		sentences = append(sentences, upperFirst(s))
	}
	if len(sentences) == 0 {
		return ""
	}
	joined := strings.Join(sentences, " ")
	if !strings.HasSuffix(joined, ".") && !strings.HasSuffix(joined, "?") {
		joined += "."
	}
	return joined
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// lowerFirst lower-cases the first rune unless the word looks like an
// acronym.
func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	if next, _ := utf8.DecodeRuneInString(s[size:]); unicode.IsUpper(next) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func escapeRepl(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}
