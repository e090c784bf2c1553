package rules

import (
	"testing"

	"github.com/vmoraru/fiscaldoc/internal/core/domain"
)

func testRegistry() *domain.Registry {
	return domain.NewRegistry([]domain.TypeDefinition{
		{
			ID:         "factura_fiscala",
			KeywordsRO: []string{"factură fiscală"},
			Required:   []string{"number", "date", "seller", "idno"},
		},
		{
			ID:         "bon_fiscal",
			KeywordsRU: []string{"чек"},
			Required:   []string{"date", "total_amount"},
		},
	})
}

func field(name, value string) domain.ExtractedField {
	return domain.ExtractedField{Name: name, Value: value, Confidence: domain.ConfidenceRegex}
}

func TestValidateCleanInvoice(t *testing.T) {
	v := NewValidator(testRegistry())

	outcome := v.Validate("factura_fiscala", []domain.ExtractedField{
		field("number", "FF-2023-001"),
		field("date", "15.08.2023"),
		field("idno", "1234567890123"),
		field("vat_amount", "200.00"),
		field("total_amount", "1000.00"),
	})
	if len(outcome.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", outcome.Errors)
	}
	if len(outcome.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", outcome.Warnings)
	}
}

func TestValidateIDNO(t *testing.T) {
	v := NewValidator(testRegistry())

	cases := []struct {
		value   string
		wantErr string
	}{
		{"1234567890123", ""},
		{"123456789012", "Invalid IDNO format: 123456789012 (must be 13 digits)"},
		{"12345678901234", "Invalid IDNO format: 12345678901234 (must be 13 digits)"},
		{"12345678901AB", "Invalid IDNO format: 12345678901AB (must be 13 digits)"},
	}
	for _, tc := range cases {
		outcome := v.Validate("contract", []domain.ExtractedField{field("idno", tc.value)})
		if tc.wantErr == "" {
			if len(outcome.Errors) != 0 {
				t.Errorf("idno %q: unexpected errors %v", tc.value, outcome.Errors)
			}
			continue
		}
		if len(outcome.Errors) != 1 || outcome.Errors[0] != tc.wantErr {
			t.Errorf("idno %q: errors = %v, want [%s]", tc.value, outcome.Errors, tc.wantErr)
		}
	}
}

func TestValidateDateFormats(t *testing.T) {
	v := NewValidator(testRegistry())

	valid := []string{"15.08.2023", "5.8.2023", "15/08/2023", "15-08-2023", "15.08.23"}
	for _, value := range valid {
		outcome := v.Validate("contract", []domain.ExtractedField{field("date", value)})
		if len(outcome.Errors) != 0 {
			t.Errorf("date %q should parse, got %v", value, outcome.Errors)
		}
	}

	outcome := v.Validate("contract", []domain.ExtractedField{field("date", "yesterday")})
	if len(outcome.Errors) != 1 || outcome.Errors[0] != "Invalid date format: yesterday" {
		t.Fatalf("errors = %v", outcome.Errors)
	}
}

func TestValidateImplausibleYearWarns(t *testing.T) {
	v := NewValidator(testRegistry())

	for _, value := range []string{"15.08.2035", "15.08.1999"} {
		outcome := v.Validate("contract", []domain.ExtractedField{field("date", value)})
		if len(outcome.Errors) != 0 {
			t.Errorf("date %q: unexpected errors %v", value, outcome.Errors)
		}
		if len(outcome.Warnings) != 1 || outcome.Warnings[0] != "Suspicious date: "+value {
			t.Errorf("date %q: warnings = %v", value, outcome.Warnings)
		}
	}
}

func TestValidateAmounts(t *testing.T) {
	v := NewValidator(testRegistry())

	outcome := v.Validate("contract", []domain.ExtractedField{field("amount", "1,234.50")})
	if len(outcome.Errors) != 0 {
		t.Fatalf("comma-separated amount should parse, got %v", outcome.Errors)
	}

	outcome = v.Validate("contract", []domain.ExtractedField{field("amount", "abc")})
	if len(outcome.Errors) != 1 || outcome.Errors[0] != "Invalid amount format: abc" {
		t.Fatalf("errors = %v", outcome.Errors)
	}

	outcome = v.Validate("contract", []domain.ExtractedField{field("total_amount", "0")})
	if len(outcome.Errors) != 1 || outcome.Errors[0] != "Invalid amount: 0" {
		t.Fatalf("errors = %v", outcome.Errors)
	}
}

func TestValidateVATCrossCheck(t *testing.T) {
	v := NewValidator(testRegistry())

	// 200 is exactly 20% of 1000.
	outcome := v.Validate("factura_fiscala", []domain.ExtractedField{
		field("vat_amount", "200.00"),
		field("total_amount", "1000.00"),
	})
	if len(outcome.Warnings) != 0 {
		t.Fatalf("matching VAT should not warn: %v", outcome.Warnings)
	}

	outcome = v.Validate("factura_fiscala", []domain.ExtractedField{
		field("vat_amount", "150.00"),
		field("total_amount", "1000.00"),
	})
	want := "VAT does not match 20%: 150.00 (expected 200.00)"
	if len(outcome.Warnings) != 1 || outcome.Warnings[0] != want {
		t.Fatalf("warnings = %v, want [%s]", outcome.Warnings, want)
	}
}

func TestValidateVATOnlyOnInvoices(t *testing.T) {
	v := NewValidator(testRegistry())

	outcome := v.Validate("bon_fiscal", []domain.ExtractedField{
		field("vat_amount", "150.00"),
		field("total_amount", "1000.00"),
	})
	if len(outcome.Warnings) != 0 {
		t.Fatalf("VAT cross-check must be invoice-only, got %v", outcome.Warnings)
	}
}

func TestValidateVATFormat(t *testing.T) {
	v := NewValidator(testRegistry())

	outcome := v.Validate("factura_fiscala", []domain.ExtractedField{
		field("vat_amount", "??"),
		field("total_amount", "1000.00"),
	})
	found := false
	for _, e := range outcome.Errors {
		if e == "Invalid VAT format: ??" {
			found = true
		}
	}
	if !found {
		t.Fatalf("errors = %v, want Invalid VAT format", outcome.Errors)
	}
}

func TestCheckRequired(t *testing.T) {
	v := NewValidator(testRegistry())

	missing := v.CheckRequired("factura_fiscala", []domain.ExtractedField{
		field("number", "FF-1"),
		field("date", "15.08.2023"),
		field("idno", "   "),
	}, domain.LanguageRO)

	want := []string{
		"Missing required field: furnizor",
		"Missing required field: IDNO",
	}
	if len(missing) != len(want) {
		t.Fatalf("missing = %v, want %v", missing, want)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Fatalf("missing[%d] = %q, want %q", i, missing[i], want[i])
		}
	}
}

func TestCheckRequiredUnknownType(t *testing.T) {
	v := NewValidator(testRegistry())

	if missing := v.CheckRequired(domain.TypeUnknown, nil, domain.LanguageRU); missing != nil {
		t.Fatalf("unknown type should have no requirements, got %v", missing)
	}
}
