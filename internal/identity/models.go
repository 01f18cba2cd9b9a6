// Package identity builds and merges the set of identifiers believed to refer
// to one data subject.
package identity

import (
	"strings"

	"dsar/pkg/platform/normalize"
)

// Type is the kind of an identifier.
type Type string

const (
	TypeEmail         Type = "email"
	TypePhone         Type = "phone"
	TypeName          Type = "name"
	TypeEmployeeID    Type = "employeeId"
	TypeUPN           Type = "upn"
	TypeObjectID      Type = "objectId"
	TypeSystemAccount Type = "system_account"
	TypeCustom        Type = "custom"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeEmail, TypePhone, TypeName, TypeEmployeeID, TypeUPN, TypeObjectID, TypeSystemAccount, TypeCustom:
		return true
	}
	return false
}

func (t Type) String() string { return string(t) }

// Identifier is one alternate identifier with its confidence and provenance.
// Source is the label of the first source that reported it; Sources lists
// every source that has corroborated it since.
type Identifier struct {
	Type       Type     `json:"type"`
	Value      string   `json:"value"`
	Confidence float64  `json:"confidence"`
	Source     string   `json:"source"`
	Sources    []string `json:"sources,omitempty"`
}

func (i Identifier) key() string {
	return string(i.Type) + "\x00" + canonicalKey(i.Type, i.Value)
}

func (i Identifier) clone() Identifier {
	i.Sources = append([]string(nil), i.Sources...)
	return i
}

// CaseSubject holds the case-record fields the initial graph is built from.
// Identifiers maps free-form labels (employeeId, upn, objectId, or anything
// else) to values.
type CaseSubject struct {
	Name          string
	Email         string
	EmailVerified bool
	Phone         string
	Address       string
	Identifiers   map[string]string
}

// SystemAccount is an opaque account ID reported by one record system.
type SystemAccount struct {
	System     string
	AccountID  string
	Confidence float64
}

// normalizeValue canonicalizes a value for storage.
func normalizeValue(t Type, v string) string {
	switch t {
	case TypeEmail:
		return normalize.Email(v)
	case TypePhone:
		return normalize.Phone(v)
	case TypeName:
		return normalize.Name(v)
	default:
		return normalize.Opaque(v)
	}
}

// canonicalKey is the comparison form. Names, UPNs and account keys compare
// case-insensitively; object and employee IDs do not.
func canonicalKey(t Type, v string) string {
	v = normalizeValue(t, v)
	switch t {
	case TypeName, TypeUPN, TypeSystemAccount:
		return strings.ToLower(v)
	}
	return v
}

// typeForLabel maps a case-record identifier label to a Type.
func typeForLabel(label string) Type {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "employeeid", "employee_id":
		return TypeEmployeeID
	case "upn", "userprincipalname":
		return TypeUPN
	case "objectid", "object_id":
		return TypeObjectID
	case "email":
		return TypeEmail
	case "phone":
		return TypePhone
	}
	return TypeCustom
}
