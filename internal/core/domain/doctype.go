package domain

import (
	"regexp"
	"strings"
)

// FieldRule is one named extraction rule: an ordered list of patterns tried
// against the full text, most specific first. The first pattern that matches
// wins.
type FieldRule struct {
	Name     string
	Patterns []*regexp.Regexp
}

// TypeDefinition is the static configuration for one fiscal document type.
// Loaded once at startup and read-only afterwards, so safe for concurrent use.
type TypeDefinition struct {
	ID         string
	NameRO     string
	NameRU     string
	FiscalCode string

	KeywordsRO []string
	KeywordsRU []string

	Fields   []FieldRule
	Required []string
}

// Keywords returns the keyword set for the given language hint. An unknown or
// empty hint yields both lists merged, RO first.
func (d *TypeDefinition) Keywords(language string) []string {
	switch language {
	case LanguageRO:
		return d.KeywordsRO
	case LanguageRU:
		return d.KeywordsRU
	default:
		merged := make([]string, 0, len(d.KeywordsRO)+len(d.KeywordsRU))
		merged = append(merged, d.KeywordsRO...)
		merged = append(merged, d.KeywordsRU...)
		return merged
	}
}

// Name returns the localized display name for the type.
func (d *TypeDefinition) Name(language string) string {
	if language == LanguageRO {
		return d.NameRO
	}
	return d.NameRU
}

// FieldLabel resolves the localized label for a field name, falling back to
// the raw name when no label is registered.
func FieldLabel(name, language string) string {
	labels := fieldLabelsRU
	if language == LanguageRO {
		labels = fieldLabelsRO
	}
	if label, ok := labels[name]; ok {
		return label
	}
	return name
}

var fieldLabelsRO = map[string]string{
	"number":        "numărul documentului",
	"date":          "data",
	"seller":        "furnizor",
	"buyer":         "cumpărător",
	"idno":          "IDNO",
	"vat_amount":    "suma TVA",
	"total_amount":  "suma totală",
	"amount":        "suma",
	"payer":         "plătitor",
	"payee":         "beneficiar",
	"purpose":       "destinația plății",
	"iban":          "IBAN",
	"period":        "perioada",
	"company":       "compania",
	"items":         "articole",
	"cash_register": "casa de marcat",
}

var fieldLabelsRU = map[string]string{
	"number":        "номер документа",
	"date":          "дата",
	"seller":        "поставщик",
	"buyer":         "покупатель",
	"idno":          "IDNO",
	"vat_amount":    "сумма НДС",
	"total_amount":  "итоговая сумма",
	"amount":        "сумма",
	"payer":         "плательщик",
	"payee":         "получатель",
	"purpose":       "назначение платежа",
	"iban":          "IBAN",
	"period":        "период",
	"company":       "компания",
	"items":         "позиции",
	"cash_register": "касса",
}

// Registry is the ordered set of configured document types. Order matters:
// the count classifier breaks score ties by registration order.
type Registry struct {
	types []TypeDefinition
	byID  map[string]*TypeDefinition
}

func NewRegistry(types []TypeDefinition) *Registry {
	r := &Registry{
		types: types,
		byID:  make(map[string]*TypeDefinition, len(types)),
	}
	for i := range r.types {
		r.byID[r.types[i].ID] = &r.types[i]
	}
	return r
}

// Types returns the definitions in registration order.
func (r *Registry) Types() []TypeDefinition {
	return r.types
}

// Lookup returns the definition for a type id, or nil for unknown ids.
func (r *Registry) Lookup(typeID string) *TypeDefinition {
	if r == nil {
		return nil
	}
	return r.byID[strings.TrimSpace(typeID)]
}
