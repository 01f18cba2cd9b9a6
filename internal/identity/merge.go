package identity

import (
	"slices"
	"strings"
)

const (
	DefaultMinConfidence = 0.30
	DefaultBoostFactor   = 0.5
)

// Policy holds the merge thresholds.
type Policy struct {
	// MinConfidence is the lowest confidence at which a new identifier is accepted.
	MinConfidence float64
	// BoostFactor scales how far corroboration moves an existing confidence toward 1.
	BoostFactor float64
}

func DefaultPolicy() Policy {
	return Policy{MinConfidence: DefaultMinConfidence, BoostFactor: DefaultBoostFactor}
}

// Merge merges candidates into g with the default policy.
func Merge(g *Graph, candidates []Identifier, source string) *Graph {
	return DefaultPolicy().Merge(g, candidates, source)
}

// ResolveSystemAccounts merges system accounts into g with the default policy.
func ResolveSystemAccounts(g *Graph, accounts []SystemAccount, source string) *Graph {
	return DefaultPolicy().ResolveSystemAccounts(g, accounts, source)
}

// Merge returns a new graph with candidates folded in. An identifier already
// present (same type and canonical value) has its confidence raised to
// c + (1-c)*BoostFactor*candidate; a new one is appended when its confidence
// reaches MinConfidence. g is never modified. Candidates without a source
// take the source argument.
func (p Policy) Merge(g *Graph, candidates []Identifier, source string) *Graph {
	if g == nil {
		g = Empty()
	}
	out := g.clone()
	if len(candidates) == 0 {
		return out
	}

	index := make(map[string]int, len(out.alternates))
	for i, a := range out.alternates {
		index[a.key()] = i
	}

	for _, cand := range candidates {
		if !cand.Type.IsValid() {
			continue
		}
		cand.Value = normalizeValue(cand.Type, cand.Value)
		if cand.Value == "" {
			continue
		}
		cand.Confidence = clampUnit(cand.Confidence)
		if cand.Source == "" {
			cand.Source = source
		}
		k := cand.key()

		if out.primary.Value != "" && out.primary.key() == k {
			out.primary = p.corroborate(out.primary, cand)
			continue
		}
		if i, ok := index[k]; ok {
			out.alternates[i] = p.corroborate(out.alternates[i], cand)
			continue
		}
		if cand.Confidence < p.MinConfidence {
			continue
		}
		cand.Sources = []string{cand.Source}
		index[k] = len(out.alternates)
		out.alternates = append(out.alternates, cand)
	}

	if out.primary.Value == "" && len(out.alternates) > 0 {
		out.primary, out.alternates = out.alternates[0], out.alternates[1:]
	}
	if out.displayName == "" {
		out.displayName = out.primary.Value
	}
	out.score = computeScore(out)
	return out
}

func (p Policy) corroborate(existing, cand Identifier) Identifier {
	boosted := existing.Confidence + (1-existing.Confidence)*p.BoostFactor*cand.Confidence
	existing.Confidence = max(existing.Confidence, clampUnit(boosted))
	if cand.Source != "" && !slices.Contains(existing.Sources, cand.Source) {
		existing.Sources = append(existing.Sources, cand.Source)
	}
	return existing
}

// ResolveSystemAccounts maps (system, account id) pairs to system_account
// identifiers valued "system:id" and merges them like any other candidate.
func (p Policy) ResolveSystemAccounts(g *Graph, accounts []SystemAccount, source string) *Graph {
	candidates := make([]Identifier, 0, len(accounts))
	for _, a := range accounts {
		system := strings.TrimSpace(a.System)
		id := strings.TrimSpace(a.AccountID)
		if system == "" || id == "" {
			continue
		}
		candidates = append(candidates, Identifier{
			Type:       TypeSystemAccount,
			Value:      system + ":" + id,
			Confidence: a.Confidence,
			Source:     source,
		})
	}
	return p.Merge(g, candidates, source)
}

func clampUnit(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
