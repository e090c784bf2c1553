package domain

// ConfidenceRegex is assigned to every field pulled out by the pattern
// grammar, distinguishing it from provider-derived fields which carry the
// confidence the provider reported.
const ConfidenceRegex = 0.8

// ExtractedField is one value pulled out of the raw text. Value is kept as
// matched; callers parse it to a number or date when they need one.
type ExtractedField struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// ValidationOutcome holds the human-readable results of validating one
// document. Errors block acceptance; warnings do not.
type ValidationOutcome struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// DocumentRecord is the unit of truth for one processed document. It is
// assembled once by the pipeline and never mutated afterwards, except for the
// repository-level field edit which overwrites the value of an existing field.
type DocumentRecord struct {
	DocType    string           `json:"doc_type"`
	Fields     []ExtractedField `json:"fields"`
	RawText    string           `json:"raw_text"`
	Confidence float64          `json:"confidence"`
}

// MergeFields overlays provider-supplied fields onto the regex extraction.
// Provider values win on name collision; new names are appended in the order
// given, so field order stays deterministic.
func MergeFields(base []ExtractedField, overlay []ExtractedField) []ExtractedField {
	merged := make([]ExtractedField, len(base))
	copy(merged, base)

	for _, field := range overlay {
		replaced := false
		for i := range merged {
			if merged[i].Name == field.Name {
				merged[i] = field
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, field)
		}
	}
	return merged
}
