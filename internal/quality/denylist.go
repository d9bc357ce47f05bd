// Package quality rates candidate replies: denylist cleanliness, length fit,
// closeness to the source post and conformance to a style signature.
package quality

import (
	_ "embed"
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

//go:embed denylist.json
var denylistJSON []byte

// denylist holds lower-cased phrases, longest first so Clean strips
// "can truly transform" before "truly".
var denylist = loadDenylist()

// Phrases match on word boundaries: "approach" does not hit "approaching".
var (
	denylistPatterns = compilePhrases(denylist)
	fillerPatterns   = compilePhrases(fillerPhrases)
)

// fillerPhrases are connective phrases stripped by Clean but not penalised.
var fillerPhrases = []string{
	"it is important to note", "it is worth mentioning",
	"in conclusion", "furthermore", "moreover", "additionally",
}

var (
	wordPattern = regexp.MustCompile(`\b\w+\b`)
	spaceRun    = regexp.MustCompile(`\s{2,}`)
	spaceBefore = regexp.MustCompile(`\s+([,.!?;:])`)
)

func loadDenylist() []string {
	var raw []string
	if err := json.Unmarshal(denylistJSON, &raw); err != nil {
		panic("quality: invalid embedded denylist: " + err.Error())
	}
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

func compilePhrases(phrases []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(phrases))
	for i, p := range phrases {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p) + `\b`)
	}
	return out
}

// Denylist returns a copy of the banned phrases.
func Denylist() []string {
	out := make([]string, len(denylist))
	copy(out, denylist)
	return out
}

// Violations returns every denylisted phrase found in candidate.
func Violations(candidate string) []string {
	var found []string
	for i, re := range denylistPatterns {
		if re.MatchString(candidate) {
			found = append(found, denylist[i])
		}
	}
	return found
}

// ViolatesDenylist reports whether candidate contains any banned phrase.
func ViolatesDenylist(candidate string) bool {
	for _, re := range denylistPatterns {
		if re.MatchString(candidate) {
			return true
		}
	}
	return false
}

// Clean strips banned and filler phrases case-insensitively and tidies the
// whitespace left behind. It is best effort: the result may read awkwardly.
func Clean(candidate string) string {
	out := candidate
	for _, re := range append(append([]*regexp.Regexp(nil), denylistPatterns...), fillerPatterns...) {
		out = re.ReplaceAllString(out, "")
	}
	out = spaceRun.ReplaceAllString(out, " ")
	out = spaceBefore.ReplaceAllString(out, "$1")
	return strings.TrimSpace(out)
}

func words(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}
