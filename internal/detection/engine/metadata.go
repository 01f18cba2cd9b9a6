package engine

import (
	"strings"
	"unicode"

	"dsar/internal/detection/catalog"
	"dsar/internal/detection/masking"
	"dsar/internal/detection/models"
)

// metadataRule assigns a category hint from item metadata alone. Confidence
// stays in the LOW/MEDIUM band: metadata is a hint, not evidence of content.
type metadataRule struct {
	name        string
	category    catalog.Category
	confidence  float64
	mimeTypes   []string
	mimePrefix  string
	fileTerms   []string
	sourceTerms []string
}

var metadataRules = []metadataRule{
	{name: "mail_message", category: catalog.CategoryCommunication, confidence: 0.45,
		mimeTypes: []string{"application/vnd.ms-outlook", "text/calendar"}, mimePrefix: "message/"},
	{name: "payroll_document", category: catalog.CategoryHR, confidence: 0.60,
		fileTerms: []string{"payslip", "payroll", "salary", "gehalt", "lohn", "compensation"}},
	{name: "employment_document", category: catalog.CategoryHR, confidence: 0.45,
		fileTerms: []string{"contract", "employment", "arbeitsvertrag", "resume", "lebenslauf", "cv", "appraisal"}},
	{name: "medical_document", category: catalog.CategoryHealth, confidence: 0.45,
		fileTerms: []string{"medical", "health", "sick", "krank", "diagnosis", "attest", "doctor"}},
	{name: "bank_document", category: catalog.CategoryPayment, confidence: 0.45,
		fileTerms: []string{"bank", "iban", "statement", "kontoauszug", "invoice", "rechnung"}},
	{name: "credit_document", category: catalog.CategoryCreditData, confidence: 0.45,
		fileTerms: []string{"credit", "schufa", "loan"}},
	{name: "identity_document", category: catalog.CategoryIdentification, confidence: 0.55,
		fileTerms: []string{"passport", "ausweis", "idcard", "license", "licence"}},
	{name: "hr_system", category: catalog.CategoryHR, confidence: 0.40,
		sourceTerms: []string{"hr", "workday", "personio", "successfactors", "payroll"}},
	{name: "crm_system", category: catalog.CategoryContact, confidence: 0.40,
		sourceTerms: []string{"crm", "salesforce", "hubspot"}},
	{name: "mail_system", category: catalog.CategoryCommunication, confidence: 0.40,
		sourceTerms: []string{"exchange", "m365", "gmail", "mail", "outlook"}},
	{name: "ticket_system", category: catalog.CategoryCommunication, confidence: 0.35,
		sourceTerms: []string{"zendesk", "jira", "servicedesk", "freshdesk"}},
}

// classifyMetadata is Stage A. It never touches item content.
func classifyMetadata(in Input) models.DetectionResult {
	res := models.DetectionResult{DetectorType: models.DetectorMetadata}

	mime := strings.ToLower(strings.TrimSpace(in.MIMEType))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	fileTokens := tokenize(in.FileName)
	sourceTokens := tokenize(in.SourceSystem)

	best := make(map[catalog.Category]float64)
	for _, rule := range metadataRules {
		hit, ok := rule.match(mime, fileTokens, sourceTokens)
		if !ok {
			continue
		}
		res.Elements = append(res.Elements, models.DetectedElement{
			ElementType:     "metadata:" + rule.name,
			PIIType:         masking.TypeKeyword,
			Category:        rule.category,
			Confidence:      rule.confidence,
			ConfidenceLevel: models.ToConfidenceLevel(rule.confidence),
			RedactedSample:  masking.Mask(hit, masking.TypeKeyword),
			MatchCount:      1,
		})
		if rule.confidence > best[rule.category] {
			best[rule.category] = rule.confidence
		}
		if catalog.IsSpecialCategory(rule.category) {
			res.ContainsSpecialCategorySuspected = true
		}
	}
	res.Categories = categoriesFrom(best)
	return res
}

func (r metadataRule) match(mime string, fileTokens, sourceTokens []string) (string, bool) {
	if mime != "" {
		for _, m := range r.mimeTypes {
			if mime == m {
				return mime, true
			}
		}
		if r.mimePrefix != "" && strings.HasPrefix(mime, r.mimePrefix) {
			return mime, true
		}
	}
	if t, ok := matchTerms(fileTokens, r.fileTerms); ok {
		return t, true
	}
	if t, ok := matchTerms(sourceTokens, r.sourceTerms); ok {
		return t, true
	}
	return "", false
}

// matchTerms matches a token equal to a term, or starting with a term of at
// least four characters ("krankmeldung" matches "krank", "cvs" does not match "cv").
func matchTerms(tokens, terms []string) (string, bool) {
	for _, tok := range tokens {
		for _, term := range terms {
			if tok == term || (len(term) >= 4 && strings.HasPrefix(tok, term)) {
				return tok, true
			}
		}
	}
	return "", false
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
