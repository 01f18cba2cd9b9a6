package catalog

import "sort"

// Category is a data category from the closed taxonomy.
type Category string

const (
	CategoryIdentification   Category = "IDENTIFICATION"
	CategoryContact          Category = "CONTACT"
	CategoryPayment          Category = "PAYMENT"
	CategoryCreditData       Category = "CREDIT_DATA"
	CategoryHR               Category = "HR"
	CategoryCommunication    Category = "COMMUNICATION"
	CategoryOnlineIdentifier Category = "ONLINE_IDENTIFIER"
	CategoryLocation         Category = "LOCATION"
	CategoryOther            Category = "OTHER"

	// Special categories. Biometric, ethnic origin, sexual orientation and
	// criminal record data all land in CategoryOtherSpecial.
	CategoryHealth       Category = "HEALTH"
	CategoryReligion     Category = "RELIGION"
	CategoryUnion        Category = "UNION"
	CategoryPolitical    Category = "POLITICAL"
	CategoryOtherSpecial Category = "OTHER_SPECIAL_CATEGORY"
)

var specialCategories = map[Category]struct{}{
	CategoryHealth:       {},
	CategoryReligion:     {},
	CategoryUnion:        {},
	CategoryPolitical:    {},
	CategoryOtherSpecial: {},
}

var sensitiveCategories = map[Category]struct{}{
	CategoryPayment:    {},
	CategoryCreditData: {},
	CategoryHR:         {},
}

// AllCategories returns every category in declaration order.
func AllCategories() []Category {
	return []Category{
		CategoryIdentification, CategoryContact, CategoryPayment, CategoryCreditData,
		CategoryHR, CategoryCommunication, CategoryOnlineIdentifier, CategoryLocation,
		CategoryOther, CategoryHealth, CategoryReligion, CategoryUnion, CategoryPolitical,
		CategoryOtherSpecial,
	}
}

// IsSpecialCategory is the sole predicate for special-category data. CRITICAL
// severity, legal review and the run-level legal hold are all derived from it.
func IsSpecialCategory(c Category) bool {
	_, ok := specialCategories[c]
	return ok
}

// IsSensitiveCategory reports categories that are not special but still
// warrant elevated severity.
func IsSensitiveCategory(c Category) bool {
	_, ok := sensitiveCategories[c]
	return ok
}

// IsValid reports whether c belongs to the taxonomy.
func (c Category) IsValid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// SortCategories sorts in place by name so summaries are deterministic.
func SortCategories(cs []Category) {
	sort.Slice(cs, func(i, j int) bool { return cs[i] < cs[j] })
}
