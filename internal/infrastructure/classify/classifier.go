package classify

import (
	"strings"

	"github.com/vmoraru/fiscaldoc/internal/core/domain"
)

// Strategy selects how keyword hits translate into a winner.
type Strategy string

const (
	// StrategyCount picks the type with the most keyword hits; ties go to
	// the earlier-registered type. No hits at all reports confidence 0.
	StrategyCount Strategy = "count"
	// StrategyRatio scores each type by matched/total keywords. No hits at
	// all reports confidence 1.0, a long-standing quirk kept on purpose;
	// callers distinguish "no match" by the unknown type id, not by the
	// confidence value.
	StrategyRatio Strategy = "ratio"
)

// KeywordClassifier scores raw text against the registry keyword sets. It is
// pure: the registry is read-only and no call mutates classifier state.
type KeywordClassifier struct {
	registry *domain.Registry
	strategy Strategy
}

func New(registry *domain.Registry, strategy Strategy) *KeywordClassifier {
	if strategy != StrategyCount {
		strategy = StrategyRatio
	}
	return &KeywordClassifier{registry: registry, strategy: strategy}
}

func (c *KeywordClassifier) Classify(text, language string) domain.TypeMatch {
	lower := strings.ToLower(text)

	if c.strategy == StrategyCount {
		return c.classifyByCount(lower, language)
	}
	return c.classifyByRatio(lower, language)
}

func (c *KeywordClassifier) classifyByCount(lower, language string) domain.TypeMatch {
	best := domain.TypeMatch{TypeID: domain.TypeUnknown, Confidence: 0}

	types := c.registry.Types()
	for i := range types {
		def := &types[i]
		keywords := def.Keywords(language)
		score := countHits(lower, keywords)
		// Strictly-greater keeps the first-registered type on ties.
		if score > best.Score {
			best = domain.TypeMatch{
				TypeID:     def.ID,
				Confidence: ratio(score, len(keywords)),
				Score:      score,
				Definition: def,
			}
		}
	}
	return best
}

func (c *KeywordClassifier) classifyByRatio(lower, language string) domain.TypeMatch {
	best := domain.TypeMatch{TypeID: domain.TypeUnknown, Confidence: 0}

	types := c.registry.Types()
	for i := range types {
		def := &types[i]
		keywords := def.Keywords(language)
		score := countHits(lower, keywords)
		confidence := ratio(score, len(keywords))
		if confidence > best.Confidence {
			best = domain.TypeMatch{
				TypeID:     def.ID,
				Confidence: confidence,
				Score:      score,
				Definition: def,
			}
		}
	}

	if best.Definition == nil {
		// Historical behavior of the ratio variant: zero matches
		// everywhere reports full confidence in "unknown".
		best.Confidence = 1.0
	}
	return best
}

func countHits(lower string, keywords []string) int {
	hits := 0
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(keyword)) {
			hits++
		}
	}
	return hits
}

func ratio(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(score) / float64(total)
}
