package catalog

import "dsar/internal/detection/masking"

// Default returns the built-in catalog. Each call builds a fresh value so
// callers can extend it without affecting others.
func Default() *Catalog {
	c, err := NewCatalog(defaultPatterns()...)
	if err != nil {
		panic(err)
	}
	return c
}

func defaultPatterns() []*Pattern {
	return []*Pattern{
		// Contact
		mustPattern(NewRegexPattern("email",
			`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`,
			CategoryContact, masking.TypeEmail)),
		mustPattern(NewRegexPattern("phone_international",
			`\+\d{1,3}(?:[\s\-]?\(?\d{2,5}\)?){2,4}`,
			CategoryContact, masking.TypePhone)),
		mustPattern(NewRegexPattern("phone_national",
			`\b0\d{2,4}[\s/\-]\d{3,8}\b`,
			CategoryContact, masking.TypePhone)),

		// Payment
		mustPattern(NewRegexPattern("iban",
			`(?i)\b[A-Z]{2}\d{2}(?:\s?[A-Z0-9]{4}){2,7}(?:\s?[A-Z0-9]{1,3})?\b`,
			CategoryPayment, masking.TypeIBAN,
			WithValidator("iban", ValidateIBAN))),
		mustPattern(NewRegexPattern("credit_card",
			`\b(?:\d[ \-]?){12,18}\d\b`,
			CategoryPayment, masking.TypeCreditCard,
			WithValidator("luhn", ValidateLuhn))),

		// Identification
		mustPattern(NewRegexPattern("us_ssn",
			`\b\d{3}-\d{2}-\d{4}\b`,
			CategoryIdentification, masking.TypeNationalID)),
		mustPattern(NewRegexPattern("uk_national_insurance",
			`\b[A-CEGHJ-PR-TW-Z]{2}\s?\d{2}\s?\d{2}\s?\d{2}\s?[A-D]\b`,
			CategoryIdentification, masking.TypeNationalID)),
		mustPattern(NewRegexPattern("date_of_birth",
			`(?i)\b(?:dob|date of birth|born on|geburtsdatum)[:\s]+\d{1,2}[./\-]\d{1,2}[./\-]\d{2,4}\b`,
			CategoryIdentification, masking.TypeDateOfBirth)),
		// Matches any two consecutive capitalised words. Known to be noisy.
		mustPattern(NewRegexPattern("full_name",
			`\b[A-Z][a-z]+\s[A-Z][a-z]+\b`,
			CategoryIdentification, masking.TypeName)),

		// Online identifiers and location
		mustPattern(NewRegexPattern("ipv4_address",
			`\b(?:(?:25[0-5]|2[0-4]\d|1?\d?\d)\.){3}(?:25[0-5]|2[0-4]\d|1?\d?\d)\b`,
			CategoryOnlineIdentifier, masking.TypeIPAddress)),
		mustPattern(NewRegexPattern("postal_address",
			`\b\d{1,5}\s(?:[A-Z][a-z]+\s){1,3}(?:Street|Avenue|Road|Lane|Strasse|Straße|Weg)`,
			CategoryLocation, masking.TypePostalAddress)),

		// Sensitive, not special
		mustPattern(NewKeywordPattern("hr_terms", []string{
			"salary", "payroll", "payslip", "performance review", "disciplinary",
			"termination", "employee number", "annual leave", "probation",
		}, CategoryHR)),
		mustPattern(NewKeywordPattern("credit_terms", []string{
			"credit score", "credit rating", "schufa", "loan default",
			"debt collection", "insolvency",
		}, CategoryCreditData)),

		// Special categories
		mustPattern(NewKeywordPattern("health_terms", []string{
			"diagnosis", "diagnosed", "diabetes", "cancer", "patient", "medication",
			"prescription", "therapy", "disability", "sick leave", "medical",
			"illness", "hiv", "pregnancy", "mental health", "depression",
		}, CategoryHealth)),
		mustPattern(NewKeywordPattern("religion_terms", []string{
			"religion", "religious", "church", "mosque", "synagogue", "catholic",
			"protestant", "muslim", "jewish", "buddhist", "hindu", "church tax",
			"kirchensteuer",
		}, CategoryReligion)),
		mustPattern(NewKeywordPattern("union_terms", []string{
			"trade union", "union member", "union membership", "works council",
			"gewerkschaft",
		}, CategoryUnion)),
		mustPattern(NewKeywordPattern("political_terms", []string{
			"political party", "political opinion", "party member", "voted for",
			"political affiliation",
		}, CategoryPolitical)),
		mustPattern(NewKeywordPattern("biometric_terms", []string{
			"fingerprint", "biometric", "facial recognition", "retina scan", "dna sample",
		}, CategoryOtherSpecial)),
		mustPattern(NewKeywordPattern("sensitive_origin_terms", []string{
			"ethnic origin", "racial origin", "sexual orientation", "criminal record",
			"criminal conviction",
		}, CategoryOtherSpecial)),
	}
}
