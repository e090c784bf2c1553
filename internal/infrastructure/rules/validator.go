// Package rules holds the domain validation for Moldovan fiscal documents:
// IDNO format, date plausibility, amount sanity and the 20% VAT cross-check.
// Every applicable rule runs; validation never mutates the document and
// never fails, it only accumulates errors and warnings.
package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vmoraru/fiscaldoc/internal/core/domain"
)

const (
	vatRate      = 0.20
	vatTolerance = 0.01

	minPlausibleYear = 2000
	maxPlausibleYear = 2030
)

var idnoPattern = regexp.MustCompile(`^[0-9]{13}$`)

// dateLayouts are tried in order; the first that parses wins. The non-padded
// forms accept both "5.8.2023" and "15.08.2023".
var dateLayouts = []string{
	"2.1.2006",
	"2/1/2006",
	"2-1-2006",
	"2.1.06",
	"2/1/06",
}

type Validator struct {
	registry *domain.Registry
}

func NewValidator(registry *domain.Registry) *Validator {
	return &Validator{registry: registry}
}

// Validate runs every applicable rule over the extracted fields and collects
// the results. Hard failures land in Errors, soft findings in Warnings.
func (v *Validator) Validate(typeID string, fields []domain.ExtractedField) domain.ValidationOutcome {
	outcome := domain.ValidationOutcome{
		Errors:   []string{},
		Warnings: []string{},
	}

	for _, field := range fields {
		switch {
		case field.Name == "idno":
			checkIDNO(field.Value, &outcome)
		case field.Name == "date":
			checkDate(field.Value, &outcome)
		case strings.Contains(field.Name, "amount"):
			checkAmount(field.Value, &outcome)
		}
	}

	if typeID == "factura_fiscala" {
		checkVAT(fields, &outcome)
	}

	return outcome
}

// CheckRequired is the stricter validation path: every field the type
// declares as required must be present with a non-empty value.
func (v *Validator) CheckRequired(typeID string, fields []domain.ExtractedField, language string) []string {
	def := v.registry.Lookup(typeID)
	if def == nil {
		return nil
	}

	present := make(map[string]bool, len(fields))
	for _, field := range fields {
		if strings.TrimSpace(field.Value) != "" {
			present[field.Name] = true
		}
	}

	var missing []string
	for _, name := range def.Required {
		if !present[name] {
			missing = append(missing, fmt.Sprintf("Missing required field: %s", domain.FieldLabel(name, language)))
		}
	}
	return missing
}

func checkIDNO(value string, outcome *domain.ValidationOutcome) {
	if !idnoPattern.MatchString(value) {
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("Invalid IDNO format: %s (must be 13 digits)", value))
	}
}

func checkDate(value string, outcome *domain.ValidationOutcome) {
	parsed, ok := parseDate(value)
	if !ok {
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("Invalid date format: %s", value))
		return
	}
	if year := parsed.Year(); year < minPlausibleYear || year > maxPlausibleYear {
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("Suspicious date: %s", value))
	}
}

func checkAmount(value string, outcome *domain.ValidationOutcome) {
	amount, err := parseAmount(value)
	if err != nil {
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("Invalid amount format: %s", value))
		return
	}
	if amount <= 0 {
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("Invalid amount: %s", value))
	}
}

// checkVAT cross-checks the declared VAT against the 20% standard rate when
// both the VAT and the total are present on an invoice.
func checkVAT(fields []domain.ExtractedField, outcome *domain.ValidationOutcome) {
	vatField := findField(fields, "vat_amount")
	totalField := findField(fields, "total_amount")
	if vatField == nil || totalField == nil {
		return
	}

	vat, err := parseAmount(vatField.Value)
	if err != nil {
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("Invalid VAT format: %s", vatField.Value))
		return
	}
	total, err := parseAmount(totalField.Value)
	if err != nil {
		// The amount rule already reported the malformed total.
		return
	}

	expected := total * vatRate
	if diff := vat - expected; diff > vatTolerance || diff < -vatTolerance {
		outcome.Warnings = append(outcome.Warnings,
			fmt.Sprintf("VAT does not match 20%%: %.2f (expected %.2f)", vat, expected))
	}
}

func findField(fields []domain.ExtractedField, name string) *domain.ExtractedField {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i]
		}
	}
	return nil
}

func parseDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// parseAmount strips thousands-separator commas before parsing.
func parseAmount(value string) (float64, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(value, ",", ""))
	return strconv.ParseFloat(cleaned, 64)
}
