package fields

import (
	"reflect"
	"regexp"
	"testing"

	"github.com/vmoraru/fiscaldoc/internal/config"
	"github.com/vmoraru/fiscaldoc/internal/core/domain"
)

const invoiceText = "Factură fiscală Nr. FF-2023-001\nData: 15.08.2023\nIDNO: 1234567890123\nTotal: 1000.00\nTVA: 200.00"

func defaultRegistry(t *testing.T) *domain.Registry {
	t.Helper()
	registry, err := config.CompileRegistry(config.DefaultTypeSpecs())
	if err != nil {
		t.Fatalf("CompileRegistry() error = %v", err)
	}
	return registry
}

func fieldMap(fields []domain.ExtractedField) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.Name] = f.Value
	}
	return out
}

func TestExtractInvoiceFields(t *testing.T) {
	e := NewExtractor(defaultRegistry(t))

	fields := e.Extract(invoiceText, "factura_fiscala", domain.LanguageRO)
	got := fieldMap(fields)

	want := map[string]string{
		"number":       "FF-2023-001",
		"date":         "15.08.2023",
		"idno":         "1234567890123",
		"vat_amount":   "200.00",
		"total_amount": "1000.00",
	}
	for name, value := range want {
		if got[name] != value {
			t.Errorf("field %s = %q, want %q", name, got[name], value)
		}
	}
	for _, f := range fields {
		if f.Confidence != domain.ConfidenceRegex {
			t.Errorf("field %s confidence = %v, want %v", f.Name, f.Confidence, domain.ConfidenceRegex)
		}
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	e := NewExtractor(defaultRegistry(t))

	first := e.Extract(invoiceText, "factura_fiscala", domain.LanguageRO)
	second := e.Extract(invoiceText, "factura_fiscala", domain.LanguageRO)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated extraction differs:\n%+v\n%+v", first, second)
	}
}

func TestExtractUnknownType(t *testing.T) {
	e := NewExtractor(defaultRegistry(t))

	if fields := e.Extract(invoiceText, domain.TypeUnknown, domain.LanguageRO); fields != nil {
		t.Fatalf("unknown type should yield nil, got %+v", fields)
	}
	if fields := e.Extract(invoiceText, "no_such_type", domain.LanguageRO); fields != nil {
		t.Fatalf("unregistered type should yield nil, got %+v", fields)
	}
}

func TestExtractMissingFieldsAreOmitted(t *testing.T) {
	e := NewExtractor(defaultRegistry(t))

	fields := e.Extract("Factură fiscală fără câmpuri utile", "factura_fiscala", domain.LanguageRO)
	got := fieldMap(fields)
	if _, ok := got["idno"]; ok {
		t.Fatalf("absent field must not be emitted: %+v", fields)
	}
}

func TestFirstPatternWins(t *testing.T) {
	registry := domain.NewRegistry([]domain.TypeDefinition{{
		ID:         "contract",
		KeywordsRO: []string{"contract"},
		Fields: []domain.FieldRule{{
			Name: "number",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?im)specific[^\S\n]+nr[.:]?[^\S\n]*(\d+)`),
				regexp.MustCompile(`(?im)nr[.:]?[^\S\n]*(\d+)`),
			},
		}},
	}})
	e := NewExtractor(registry)

	fields := e.Extract("nr. 7 then specific nr. 42", "contract", domain.LanguageRO)
	if len(fields) != 1 || fields[0].Value != "42" {
		t.Fatalf("first pattern should win, got %+v", fields)
	}
}

func TestMultipleGroupsJoined(t *testing.T) {
	registry := domain.NewRegistry([]domain.TypeDefinition{{
		ID:         "ordine_plata",
		KeywordsRU: []string{"платеж"},
		Fields: []domain.FieldRule{{
			Name: "period",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?im)perioada[^\S\n]+(\w+)[^\S\n]+(\d{4})`),
			},
		}},
	}})
	e := NewExtractor(registry)

	fields := e.Extract("Perioada august 2023", "ordine_plata", domain.LanguageRU)
	if len(fields) != 1 || fields[0].Value != "august 2023" {
		t.Fatalf("groups should join with a space, got %+v", fields)
	}
}
