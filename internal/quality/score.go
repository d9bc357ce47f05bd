package quality

import (
	"strings"

	"github.com/MikeSquared-Agency/mimic/internal/style"
)

const (
	baseScore        = 1.0
	minScore         = 0.1
	maxScore         = 1.0
	overlapThreshold = 0.3
	lengthTolerance  = 5

	// MaxPoints is the gate score of a candidate passing every check.
	MaxPoints = 3
)

var naturalOpeners = []string{"so true", "exactly", "love this", "great point", "makes sense"}

// Score rates candidate in [0.1, 1.0]. target and sig are optional.
func Score(candidate, post string, target *int, sig *style.Signature) float64 {
	score := baseScore
	lower := strings.ToLower(candidate)

	n := style.WordCount(candidate)
	switch {
	case n >= 3 && n <= 15:
		score += 0.2
	case n > 25:
		score -= 0.3
	}

	score -= 0.4 * float64(len(Violations(candidate)))

	for _, opener := range naturalOpeners {
		if strings.Contains(lower, opener) {
			score += 0.2
			break
		}
	}

	if overlapRatio(candidate, post) > overlapThreshold {
		score -= 0.5
	}

	if target != nil && !LengthFits(candidate, target) {
		score -= 0.1
	}
	if sig != nil && !Conforms(candidate, sig) {
		score -= 0.1
	}

	return clamp(score)
}

// overlapRatio is the share of the candidate's distinct words that also occur
// in the post.
func overlapRatio(candidate, post string) float64 {
	cw := words(candidate)
	if len(cw) == 0 {
		return 0
	}
	postSet := make(map[string]struct{})
	for _, w := range words(post) {
		postSet[w] = struct{}{}
	}
	distinct := make(map[string]struct{}, len(cw))
	shared := 0
	for _, w := range cw {
		if _, dup := distinct[w]; dup {
			continue
		}
		distinct[w] = struct{}{}
		if _, ok := postSet[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(distinct))
}

// LengthFits reports whether candidate is within ±5 words of target. A nil
// target always fits.
func LengthFits(candidate string, target *int) bool {
	if target == nil {
		return true
	}
	d := style.WordCount(candidate) - *target
	return d >= -lengthTolerance && d <= lengthTolerance
}

// Conforms checks the punctuation markers sig asserts. A nil signature
// always conforms.
func Conforms(candidate string, sig *style.Signature) bool {
	if sig == nil {
		return true
	}
	if sig.HasEmoji && !style.HasEmoji(candidate) {
		return false
	}
	if sig.HasExclamation && !strings.Contains(candidate, "!") {
		return false
	}
	if sig.HasQuestion && !strings.Contains(candidate, "?") {
		return false
	}
	return true
}

// Gate scores candidate on the 0-3 scale used by the generation loop: one
// point each for denylist cleanliness, length fit and style conformance.
func Gate(candidate string, target *int, sig *style.Signature) int {
	points := 0
	if !ViolatesDenylist(candidate) {
		points++
	}
	if LengthFits(candidate, target) {
		points++
	}
	if Conforms(candidate, sig) {
		points++
	}
	return points
}

// Passes reports whether candidate clears every gate check.
func Passes(candidate string, target *int, sig *style.Signature) bool {
	return Gate(candidate, target, sig) == MaxPoints
}

func clamp(score float64) float64 {
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
