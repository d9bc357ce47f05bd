// Package patterns is the template fallback: a catalogue of reply templates
// grouped by category, a routing table from theme and sentiment to
// categories, a filler that resolves placeholders from the source post and a
// per-thread repetition ledger.
package patterns

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalogue.yaml
var catalogueYAML []byte

type Category string

const (
	AgreementShort      Category = "agreement_short"
	AgreementExtended   Category = "agreement_extended"
	Observations        Category = "observations"
	BusinessInsights    Category = "business_insights"
	PracticalFeedback   Category = "practical_feedback"
	ExperienceSharing   Category = "experience_sharing"
	PersonalEndorsement Category = "personal_endorsement"
)

// SpecificPoint is the placeholder filled with a sentence mined from the post.
const SpecificPoint = "specific_point"

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// Template is an immutable reply template.
type Template struct {
	Category Category
	Body     string
}

// Placeholders lists the placeholder names in the template body.
func (t Template) Placeholders() []string {
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(t.Body, -1) {
		names = append(names, m[1])
	}
	return names
}

// NeedsSpecificPoint reports whether the body uses {specific_point}.
func (t Template) NeedsSpecificPoint() bool {
	return strings.Contains(t.Body, "{"+SpecificPoint+"}")
}

// Catalogue maps categories to their templates in declaration order.
type Catalogue map[Category][]Template

// ParseCatalogue decodes a YAML catalogue and checks that every placeholder
// can be resolved by Fill.
func ParseCatalogue(data []byte) (Catalogue, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}

	cat := make(Catalogue, len(raw))
	for name, bodies := range raw {
		c := Category(name)
		for _, body := range bodies {
			t := Template{Category: c, Body: body}
			for _, p := range t.Placeholders() {
				if !knownPlaceholder(p) {
					return nil, fmt.Errorf("template %q: unknown placeholder {%s}", body, p)
				}
			}
			cat[c] = append(cat[c], t)
		}
	}
	return cat, nil
}

// DefaultCatalogue returns the embedded catalogue.
func DefaultCatalogue() Catalogue {
	cat, err := ParseCatalogue(catalogueYAML)
	if err != nil {
		panic("patterns: " + err.Error())
	}
	return cat
}
