package masking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// =============================================================================
// Masking Policy Test Suite
// =============================================================================
// Justification for unit tests: masking is the single exit path for values
// derived from scanned content. A rule that leaks a raw value is a privacy
// incident, so each rule and the no-leak property are pinned here.

type MaskingSuite struct {
	suite.Suite
}

func TestMaskingSuite(t *testing.T) {
	suite.Run(t, new(MaskingSuite))
}

func (s *MaskingSuite) TestRules() {
	tests := []struct {
		name  string
		value string
		typ   PIIType
		want  string
	}{
		{"email keeps first char and domain", "test@example.com", TypeEmail, "t***@example.com"},
		{"email without at sign uses generic rule", "testexample", TypeEmail, "te***le"},
		{"iban keeps country and last four", "DE89 3704 0044 0532 0130 00", TypeIBAN, "DE****************3000"},
		{"card keeps first and last four", "4111-1111-1111-1111", TypeCreditCard, "4111********1111"},
		{"name becomes initials", "jane  van Doe", TypeName, "J. V. D."},
		{"phone keeps last three digits", "+49 151 2345 678", TypePhone, "*****678"},
		{"national id keeps last three", "AB 12 34 56 C", TypeNationalID, "*****56C"},
		{"ipv4 keeps first octet", "192.168.1.20", TypeIPAddress, "192.***.***.***"},
		{"date of birth fully masked", "01.02.1980", TypeDateOfBirth, "****-**-**"},
		{"address keeps two chars", "12 Main Street", TypePostalAddress, "12***"},
		{"keyword keeps first char", "diabetes", TypeKeyword, "d***"},
		{"generic keeps two and two", "secretvalue", TypeGeneric, "se***ue"},
		{"short generic fully masked", "abcd", TypeGeneric, Redacted},
		{"unknown type fully masked", "anything", PIIType("SHOE_SIZE"), Redacted},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, Mask(tt.value, tt.typ))
		})
	}
}

func (s *MaskingSuite) TestEmptyInputAlwaysRedacted() {
	for _, typ := range AllTypes() {
		s.Equal(Redacted, Mask("", typ), typ)
		s.Equal(Redacted, Mask(" \t\n ", typ), typ)
	}
}

func (s *MaskingSuite) TestNeverContainsRawValue() {
	samples := []string{
		"test@example.com",
		"DE89370400440532013000",
		"4111111111111111",
		"Jane Doe",
		"+49 151 23456789",
		"QQ123456C",
		"10.20.30.40",
		"1980-02-01",
		"221B Baker Street",
		"diabetes",
		"Müller-Lüdenscheidt",
		// inputs a rule would map to themselves
		"A.",
		"J. K.",
		"a***",
		"ab***yz",
		"****-**-**",
		"a***@example.com",
	}

	for _, typ := range AllTypes() {
		for _, v := range samples {
			if len([]rune(v)) <= KeepBudget(typ) {
				continue
			}
			out := Mask(v, typ)
			s.False(strings.Contains(out, v), "type %s leaked %q as %q", typ, v, out)
		}
	}
}

func (s *MaskingSuite) TestAlreadyMaskedInputIsRedacted() {
	s.Equal(Redacted, Mask("A.", TypeName))
	s.Equal(Redacted, Mask("a***", TypeKeyword))
	s.Equal(Redacted, Mask("ab***yz", TypeGeneric))
	s.Equal(Redacted, Mask("****-**-**", TypeDateOfBirth))
	s.Equal("J. D.", Mask("Jane Doe", TypeName))
}

func (s *MaskingSuite) TestDeterministic() {
	for _, typ := range AllTypes() {
		s.Equal(Mask("Jane.Doe@example.com", typ), Mask("Jane.Doe@example.com", typ))
	}
}

func TestAllTypesAreValid(t *testing.T) {
	for _, typ := range AllTypes() {
		assert.True(t, typ.IsValid(), typ)
	}
	assert.False(t, PIIType("").IsValid())
}
