package engine

import "regexp"

// thirdPartyTerms flags text that likely mentions people other than the
// subject. The flag is informational and independent of category detection.
var thirdPartyTerms = regexp.MustCompile(`(?i)\b(?:spouse|emergency\s+contact|next\s+of\s+kin|husband|wife|child|children|dependant|dependent|beneficiary|guardian)\b`)

func suspectsThirdPartyData(text string) bool {
	return thirdPartyTerms.MatchString(text)
}
