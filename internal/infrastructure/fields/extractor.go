// Package fields applies the per-type extraction grammar: for every field of
// the resolved document type, an ordered list of patterns is tried against
// the full text and the first pattern with a match supplies the value.
package fields

import (
	"strings"

	"github.com/vmoraru/fiscaldoc/internal/core/domain"
)

type Extractor struct {
	registry *domain.Registry
}

func NewExtractor(registry *domain.Registry) *Extractor {
	return &Extractor{registry: registry}
}

// Extract pulls named fields out of raw text for the given type. Unknown or
// unconfigured types yield an empty result. Field order follows the declared
// rule order, so repeated runs over the same input produce identical output.
func (e *Extractor) Extract(text, typeID, _ string) []domain.ExtractedField {
	def := e.registry.Lookup(typeID)
	if def == nil {
		return nil
	}

	var out []domain.ExtractedField
	for _, rule := range def.Fields {
		value, ok := firstMatch(text, rule)
		if !ok {
			continue
		}
		out = append(out, domain.ExtractedField{
			Name:       rule.Name,
			Value:      value,
			Confidence: domain.ConfidenceRegex,
		})
	}
	return out
}

func firstMatch(text string, rule domain.FieldRule) (string, bool) {
	for _, pattern := range rule.Patterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		value := joinGroups(match)
		if value == "" {
			continue
		}
		return value, true
	}
	return "", false
}

// joinGroups concatenates all capture groups of the first match with single
// spaces; a pattern without groups contributes its whole match.
func joinGroups(match []string) string {
	if len(match) == 1 {
		return strings.TrimSpace(match[0])
	}

	parts := make([]string, 0, len(match)-1)
	for _, group := range match[1:] {
		group = strings.TrimSpace(group)
		if group != "" {
			parts = append(parts, group)
		}
	}
	return strings.Join(parts, " ")
}
