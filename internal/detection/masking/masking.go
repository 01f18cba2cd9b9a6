// Package masking turns raw detected values into previews that are safe to
// persist, log and display.
//
// Mask is the only function through which a value derived from scanned content
// may leave the detection engine. Each PIIType has exactly one rule; an
// unrecognised type is fully starred rather than falling back to a weaker rule.
package masking

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// PIIType selects the masking rule.
type PIIType string

const (
	TypeEmail         PIIType = "EMAIL"
	TypePhone         PIIType = "PHONE"
	TypeIBAN          PIIType = "IBAN"
	TypeCreditCard    PIIType = "CREDIT_CARD"
	TypeName          PIIType = "NAME"
	TypeNationalID    PIIType = "NATIONAL_ID"
	TypeTaxID         PIIType = "TAX_ID"
	TypeIPAddress     PIIType = "IP_ADDRESS"
	TypeDateOfBirth   PIIType = "DATE_OF_BIRTH"
	TypePostalAddress PIIType = "POSTAL_ADDRESS"
	TypeKeyword       PIIType = "KEYWORD"
	TypeGeneric       PIIType = "GENERIC"
)

// Redacted is returned for empty input and for unknown types.
const Redacted = "***"

// AllTypes lists every PIIType in declaration order.
func AllTypes() []PIIType {
	return []PIIType{
		TypeEmail, TypePhone, TypeIBAN, TypeCreditCard, TypeName, TypeNationalID,
		TypeTaxID, TypeIPAddress, TypeDateOfBirth, TypePostalAddress, TypeKeyword, TypeGeneric,
	}
}

// IsValid reports whether t is one of the declared types.
func (t PIIType) IsValid() bool {
	switch t {
	case TypeEmail, TypePhone, TypeIBAN, TypeCreditCard, TypeName, TypeNationalID,
		TypeTaxID, TypeIPAddress, TypeDateOfBirth, TypePostalAddress, TypeKeyword, TypeGeneric:
		return true
	}
	return false
}

// KeepBudget is the number of raw characters a rule may reveal. Values longer
// than the budget never appear verbatim in the masked output.
func KeepBudget(t PIIType) int {
	switch t {
	case TypeEmail:
		return 1
	case TypePhone, TypeNationalID, TypeTaxID:
		return 3
	case TypeIBAN:
		return 6
	case TypeCreditCard:
		return 8
	case TypeName, TypeKeyword:
		return 1
	case TypeIPAddress:
		return 3
	case TypeDateOfBirth:
		return 0
	case TypePostalAddress:
		return 2
	case TypeGeneric:
		return 4
	}
	return 0
}

// Mask applies the rule for t to value. It is deterministic and has no side effects.
// Values that already look masked would pass through a rule unchanged, so any
// output still containing a value longer than the keep budget is fully redacted.
func Mask(value string, t PIIType) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return Redacted
	}
	out := applyRule(v, t)
	if utf8.RuneCountInString(v) > KeepBudget(t) && strings.Contains(out, v) {
		return Redacted
	}
	return out
}

func applyRule(v string, t PIIType) string {
	switch t {
	case TypeEmail:
		return maskEmail(v)
	case TypePhone:
		return maskSuffix(digitsOnly(v), 3)
	case TypeIBAN:
		return maskIBAN(v)
	case TypeCreditCard:
		return maskCard(v)
	case TypeName:
		return maskName(v)
	case TypeNationalID, TypeTaxID:
		return maskSuffix(alnumOnly(v), 3)
	case TypeIPAddress:
		return maskIP(v)
	case TypeDateOfBirth:
		return "****-**-**"
	case TypePostalAddress:
		return keepPrefix(v, 2)
	case TypeKeyword:
		return keepPrefix(v, 1)
	case TypeGeneric:
		return maskGeneric(v)
	}
	return Redacted
}

func maskEmail(v string) string {
	at := strings.LastIndex(v, "@")
	if at <= 0 || at == len(v)-1 {
		return maskGeneric(v)
	}
	first, _ := utf8.DecodeRuneInString(v)
	return string(first) + "***@" + strings.ToLower(v[at+1:])
}

func maskIBAN(v string) string {
	n := []rune(strings.ToUpper(stripSpaces(v)))
	if len(n) <= KeepBudget(TypeIBAN) {
		return Redacted
	}
	return string(n[:2]) + strings.Repeat("*", len(n)-6) + string(n[len(n)-4:])
}

func maskCard(v string) string {
	d := digitsOnly(v)
	if len(d) <= KeepBudget(TypeCreditCard) {
		return Redacted
	}
	return d[:4] + strings.Repeat("*", len(d)-8) + d[len(d)-4:]
}

func maskName(v string) string {
	parts := strings.Fields(v)
	initials := make([]string, 0, len(parts))
	for _, p := range parts {
		r, _ := utf8.DecodeRuneInString(p)
		if !unicode.IsLetter(r) {
			continue
		}
		initials = append(initials, string(unicode.ToUpper(r))+".")
	}
	if len(initials) == 0 {
		return Redacted
	}
	return strings.Join(initials, " ")
}

func maskIP(v string) string {
	if i := strings.IndexByte(v, '.'); i > 0 {
		return v[:i] + ".***.***.***"
	}
	if i := strings.IndexByte(v, ':'); i > 0 {
		return v[:i] + ":****"
	}
	return maskGeneric(v)
}

func maskGeneric(v string) string {
	r := []rune(v)
	if len(r) <= KeepBudget(TypeGeneric) {
		return Redacted
	}
	return string(r[:2]) + "***" + string(r[len(r)-2:])
}

// maskSuffix keeps the last n characters behind a fixed-width run of stars so
// the output does not reveal the value's length.
func maskSuffix(v string, n int) string {
	r := []rune(v)
	if len(r) <= n {
		return Redacted
	}
	return "*****" + string(r[len(r)-n:])
}

func keepPrefix(v string, n int) string {
	r := []rune(v)
	if len(r) <= n {
		return Redacted
	}
	return string(r[:n]) + "***"
}

func stripSpaces(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, v)
}

func digitsOnly(v string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, v)
}

func alnumOnly(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, v)
}
