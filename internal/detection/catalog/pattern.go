// Package catalog defines the detection patterns, the data category taxonomy
// and the checksum validators used by the detection engine.
//
// A Catalog is an immutable value: it is built once (Default, NewCatalog or a
// catalog file) and injected into the engine. Patterns never change after
// construction and are safe for concurrent use.
package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"dsar/internal/detection/masking"
)

// Kind distinguishes structural regex patterns from keyword lists.
type Kind string

const (
	KindRegex   Kind = "regex"
	KindKeyword Kind = "keyword"
)

// Validator confirms a candidate match, e.g. a checksum.
type Validator func(match string) bool

// Pattern is one immutable detection rule.
type Pattern struct {
	name          string
	kind          Kind
	re            *regexp.Regexp
	keywords      []string
	category      Category
	piiType       masking.PIIType
	validate      Validator
	validatorName string
}

// PatternOption configures optional pattern behaviour.
type PatternOption func(*Pattern)

// WithValidator attaches a named validator. Matches failing it are dropped.
func WithValidator(name string, v Validator) PatternOption {
	return func(p *Pattern) {
		p.validatorName = name
		p.validate = v
	}
}

// NewRegexPattern compiles expr into a regex pattern.
func NewRegexPattern(name, expr string, category Category, piiType masking.PIIType, opts ...PatternOption) (*Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("pattern %s: compile: %w", name, err)
	}
	return newPattern(name, KindRegex, re, nil, category, piiType, opts)
}

// NewKeywordPattern builds a case-insensitive, word-bounded keyword matcher.
func NewKeywordPattern(name string, keywords []string, category Category, opts ...PatternOption) (*Pattern, error) {
	cleaned := make([]string, 0, len(keywords))
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		cleaned = append(cleaned, k)
		quoted = append(quoted, strings.ReplaceAll(regexp.QuoteMeta(k), " ", `\s+`))
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("pattern %s: no keywords", name)
	}
	re, err := regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("pattern %s: compile keywords: %w", name, err)
	}
	return newPattern(name, KindKeyword, re, cleaned, category, masking.TypeKeyword, opts)
}

func newPattern(name string, kind Kind, re *regexp.Regexp, keywords []string, category Category, piiType masking.PIIType, opts []PatternOption) (*Pattern, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("pattern name is required")
	}
	if !category.IsValid() {
		return nil, fmt.Errorf("pattern %s: unknown category %q", name, category)
	}
	if !piiType.IsValid() {
		return nil, fmt.Errorf("pattern %s: unknown pii type %q", name, piiType)
	}
	p := &Pattern{
		name:     name,
		kind:     kind,
		re:       re,
		keywords: keywords,
		category: category,
		piiType:  piiType,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func mustPattern(p *Pattern, err error) *Pattern {
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Pattern) Name() string             { return p.name }
func (p *Pattern) Kind() Kind               { return p.kind }
func (p *Pattern) Category() Category       { return p.category }
func (p *Pattern) PIIType() masking.PIIType { return p.piiType }
func (p *Pattern) HasValidator() bool       { return p.validate != nil }
func (p *Pattern) ValidatorName() string    { return p.validatorName }
func (p *Pattern) Expression() string       { return p.re.String() }

// Keywords returns a copy of the keyword list (keyword patterns only).
func (p *Pattern) Keywords() []string {
	return append([]string(nil), p.keywords...)
}

// IsSpecial is derived from the category so a pattern cannot disagree with
// the taxonomy.
func (p *Pattern) IsSpecial() bool {
	return IsSpecialCategory(p.category)
}

// Validate reports whether match passes the pattern's validator. Patterns
// without a validator accept every match.
func (p *Pattern) Validate(match string) bool {
	if p.validate == nil {
		return true
	}
	return p.validate(match)
}

// Redact masks a match with the pattern's PII type rule.
func (p *Pattern) Redact(match string) string {
	return masking.Mask(match, p.piiType)
}

// FindAll returns byte offsets of at most limit matches in text. A limit
// below one means no limit.
func (p *Pattern) FindAll(text string, limit int) [][]int {
	if limit < 1 {
		limit = -1
	}
	return p.re.FindAllStringIndex(text, limit)
}
