package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vmoraru/fiscaldoc/internal/core/domain"
)

// TypeSpec is the serializable form of one document type definition, as
// authored in the registry YAML file. Patterns are plain strings here; they
// are compiled case-insensitive and multiline when the registry loads.
type TypeSpec struct {
	ID         string      `yaml:"id"`
	NameRO     string      `yaml:"name_ro"`
	NameRU     string      `yaml:"name_ru"`
	FiscalCode string      `yaml:"fiscal_code,omitempty"`
	KeywordsRO []string    `yaml:"keywords_ro"`
	KeywordsRU []string    `yaml:"keywords_ru"`
	Fields     []FieldSpec `yaml:"fields"`
	Required   []string    `yaml:"required,omitempty"`
}

type FieldSpec struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

type registryFile struct {
	Types []TypeSpec `yaml:"types"`
}

// LoadRegistry builds the document type registry. An empty path selects the
// built-in Moldovan registry. Every pattern is compiled here so that a bad
// registry fails the process at startup, not on the first request.
func LoadRegistry(path string) (*domain.Registry, error) {
	specs := DefaultTypeSpecs()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read registry file: %w", err)
		}
		var file registryFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("parse registry yaml: %w", err)
		}
		if len(file.Types) == 0 {
			return nil, fmt.Errorf("registry file %s defines no document types", path)
		}
		specs = file.Types
	}
	return CompileRegistry(specs)
}

// CompileRegistry turns raw specs into an immutable registry, validating ids
// and compiling every pattern.
func CompileRegistry(specs []TypeSpec) (*domain.Registry, error) {
	seen := make(map[string]bool, len(specs))
	types := make([]domain.TypeDefinition, 0, len(specs))

	for _, spec := range specs {
		id := strings.TrimSpace(spec.ID)
		if id == "" {
			return nil, fmt.Errorf("document type with empty id")
		}
		if id == domain.TypeUnknown {
			return nil, fmt.Errorf("document type id %q is reserved", id)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate document type id %q", id)
		}
		seen[id] = true

		if len(spec.KeywordsRO) == 0 && len(spec.KeywordsRU) == 0 {
			return nil, fmt.Errorf("document type %q has no keywords", id)
		}

		def := domain.TypeDefinition{
			ID:         id,
			NameRO:     spec.NameRO,
			NameRU:     spec.NameRU,
			FiscalCode: spec.FiscalCode,
			KeywordsRO: spec.KeywordsRO,
			KeywordsRU: spec.KeywordsRU,
			Required:   spec.Required,
		}

		for _, field := range spec.Fields {
			if strings.TrimSpace(field.Name) == "" {
				return nil, fmt.Errorf("document type %q has a field with empty name", id)
			}
			if len(field.Patterns) == 0 {
				return nil, fmt.Errorf("field %s.%s has no patterns", id, field.Name)
			}
			rule := domain.FieldRule{Name: field.Name}
			for _, pattern := range field.Patterns {
				compiled, err := regexp.Compile("(?im)" + pattern)
				if err != nil {
					return nil, fmt.Errorf("compile pattern for %s.%s: %w", id, field.Name, err)
				}
				rule.Patterns = append(rule.Patterns, compiled)
			}
			def.Fields = append(def.Fields, rule)
		}

		types = append(types, def)
	}

	if len(types) == 0 {
		return nil, fmt.Errorf("registry defines no document types")
	}
	return domain.NewRegistry(types), nil
}
