package catalog

import (
	"regexp"
	"strings"
	"unicode"
)

var ibanFormat = regexp.MustCompile(`^[A-Z]{2}\d{2}[A-Z0-9]+$`)

// ValidateIBAN checks an IBAN with ISO 7064 mod 97-10. Whitespace is ignored
// and letters are case-insensitive.
func ValidateIBAN(s string) bool {
	iban := strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s))

	if len(iban) < 5 || len(iban) > 34 {
		return false
	}
	if !ibanFormat.MatchString(iban) {
		return false
	}

	rearranged := iban[4:] + iban[:4]

	// Digit-by-digit reduction keeps the remainder below 97, so no big integers.
	remainder := 0
	for i := 0; i < len(rearranged); i++ {
		c := rearranged[i]
		switch {
		case c >= '0' && c <= '9':
			remainder = (remainder*10 + int(c-'0')) % 97
		case c >= 'A' && c <= 'Z':
			v := int(c-'A') + 10
			remainder = (remainder*10 + v/10) % 97
			remainder = (remainder*10 + v%10) % 97
		default:
			return false
		}
	}
	return remainder == 1
}

// ValidateLuhn checks a 13 to 19 digit number with the Luhn algorithm.
// Spaces and hyphens are ignored.
func ValidateLuhn(s string) bool {
	digits := strings.NewReplacer(" ", "", "-", "").Replace(s)
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// validatorsByName resolves validator references in catalog files.
var validatorsByName = map[string]Validator{
	"iban": ValidateIBAN,
	"luhn": ValidateLuhn,
}

// LookupValidator returns the named validator.
func LookupValidator(name string) (Validator, bool) {
	v, ok := validatorsByName[strings.ToLower(strings.TrimSpace(name))]
	return v, ok
}
