package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"dsar/internal/detection/masking"
)

// File is the on-disk shape of a custom pattern catalog.
//
//	patterns:
//	  - name: employee_number
//	    kind: regex
//	    expression: '\bEMP-\d{6}\b'
//	    category: HR
//	    pii_type: GENERIC
//	  - name: union_terms_de
//	    kind: keyword
//	    keywords: [betriebsrat, verdi]
//	    category: UNION
//
// The special-category flag is never read from the file: it follows from the
// category.
type File struct {
	Patterns []PatternSpec `yaml:"patterns"`
}

// PatternSpec describes one custom pattern.
type PatternSpec struct {
	Name       string   `yaml:"name"`
	Kind       Kind     `yaml:"kind"`
	Expression string   `yaml:"expression,omitempty"`
	Keywords   []string `yaml:"keywords,omitempty"`
	Category   Category `yaml:"category"`
	PIIType    string   `yaml:"pii_type,omitempty"`
	Validator  string   `yaml:"validator,omitempty"`
}

// Parse decodes a catalog file and builds its patterns.
func Parse(data []byte) ([]*Pattern, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog file: %w", err)
	}

	patterns := make([]*Pattern, 0, len(f.Patterns))
	for i, spec := range f.Patterns {
		p, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// LoadFile reads path and returns base extended with its patterns.
func LoadFile(base *Catalog, path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	patterns, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return base.With(patterns...)
}

func (s PatternSpec) build() (*Pattern, error) {
	var opts []PatternOption
	if s.Validator != "" {
		v, ok := LookupValidator(s.Validator)
		if !ok {
			return nil, fmt.Errorf("pattern %s: unknown validator %q", s.Name, s.Validator)
		}
		opts = append(opts, WithValidator(strings.ToLower(s.Validator), v))
	}

	category := Category(strings.ToUpper(string(s.Category)))

	switch s.Kind {
	case KindRegex:
		piiType := masking.TypeGeneric
		if s.PIIType != "" {
			piiType = masking.PIIType(strings.ToUpper(s.PIIType))
		}
		return NewRegexPattern(s.Name, s.Expression, category, piiType, opts...)
	case KindKeyword:
		return NewKeywordPattern(s.Name, s.Keywords, category, opts...)
	default:
		return nil, fmt.Errorf("pattern %s: unknown kind %q", s.Name, s.Kind)
	}
}
