package synth

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/mimic/internal/quality"
)

// defaultExamples stand in for semantic exemplars when the index returns
// nothing. They only ever reach the prompt.
var defaultExamples = []string{"Great insight!", "This really resonates with me."}

const promptHeader = `Write a short, natural and relevant comment for the following post.

Post:
%s

Below are some example comments. Try to match their style and length, but it's okay if your response is not a perfect match.

Example comments:
`

// buildPrompt embeds the post, up to two references and two exemplars, the
// target length and the denylist.
func buildPrompt(post string, references, exemplars []string, target *int) string {
	var b strings.Builder
	fmt.Fprintf(&b, promptHeader, strings.TrimSpace(post))

	if len(exemplars) == 0 {
		exemplars = defaultExamples
	}
	for _, ex := range firstN(references, 2) {
		fmt.Fprintf(&b, "- %s\n", ex)
	}
	for _, ex := range firstN(exemplars, 2) {
		fmt.Fprintf(&b, "- %s\n", ex)
	}

	b.WriteString("\nConstraints:\n")
	b.WriteString("- Match the structure and style of the example comments.\n")
	b.WriteString("- Prefer the style of the saved comment closest to the post, otherwise the overall style of the saved comments.\n")
	if target != nil {
		fmt.Fprintf(&b, "- Target length: about %d words (±5 is OK).\n", *target)
	}
	fmt.Fprintf(&b, "- Avoid these words: %s\n", strings.Join(quality.Denylist(), ", "))
	return b.String()
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
