package identity

import (
	"math"
	"sort"
)

const caseSource = "case"

// Confidence assigned to identifiers taken from the case record.
const (
	confidenceVerifiedEmail = 1.0
	confidenceEmail         = 0.9
	confidenceIdentifier    = 0.9
	confidencePhone         = 0.8
	confidenceName          = 0.7
	confidenceAddress       = 0.6
)

// Graph is a subject's identity graph. It is never mutated after
// construction: Merge and ResolveSystemAccounts return new graphs.
type Graph struct {
	displayName string
	primary     Identifier
	alternates  []Identifier
	score       int
}

// Empty returns a graph with no identifiers, used for runs that fail before
// the subject is known.
func Empty() *Graph {
	return &Graph{}
}

// Build creates the initial graph from case data. The primary identifier is
// the verified email, else the name, else the email, else the first other
// identifier in label order.
func Build(subject CaseSubject) *Graph {
	var all []Identifier
	add := func(t Type, v string, c float64) {
		v = normalizeValue(t, v)
		if v == "" {
			return
		}
		all = append(all, Identifier{Type: t, Value: v, Confidence: c, Source: caseSource, Sources: []string{caseSource}})
	}

	emailConfidence := confidenceEmail
	if subject.EmailVerified {
		emailConfidence = confidenceVerifiedEmail
	}
	add(TypeEmail, subject.Email, emailConfidence)
	add(TypeName, subject.Name, confidenceName)
	add(TypePhone, subject.Phone, confidencePhone)
	add(TypeCustom, subject.Address, confidenceAddress)

	labels := make([]string, 0, len(subject.Identifiers))
	for label := range subject.Identifiers {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		add(typeForLabel(label), subject.Identifiers[label], confidenceIdentifier)
	}

	g := &Graph{displayName: normalizeValue(TypeName, subject.Name)}
	if len(all) == 0 {
		return g
	}

	primaryIdx := 0
	verifiedEmail := subject.EmailVerified && all[0].Type == TypeEmail
	if i := indexOfType(all, TypeName); !verifiedEmail && i >= 0 {
		primaryIdx = i
	}
	g.primary = all[primaryIdx]

	seen := map[string]struct{}{g.primary.key(): {}}
	for i, id := range all {
		if i == primaryIdx {
			continue
		}
		if _, dup := seen[id.key()]; dup {
			continue
		}
		seen[id.key()] = struct{}{}
		g.alternates = append(g.alternates, id)
	}
	if g.displayName == "" {
		g.displayName = g.primary.Value
	}
	g.score = computeScore(g)
	return g
}

func indexOfType(ids []Identifier, t Type) int {
	for i, id := range ids {
		if id.Type == t {
			return i
		}
	}
	return -1
}

func (g *Graph) DisplayName() string { return g.displayName }

// Primary returns the primary identifier; its Type is empty for an empty graph.
func (g *Graph) Primary() Identifier { return g.primary.clone() }

// Alternates returns a copy of the alternates in insertion order.
func (g *Graph) Alternates() []Identifier {
	out := make([]Identifier, len(g.alternates))
	for i, a := range g.alternates {
		out[i] = a.clone()
	}
	return out
}

// ConfidenceScore is the mean identifier confidence scaled to 0-100.
func (g *Graph) ConfidenceScore() int { return g.score }

// IsEmpty reports whether the graph carries no identifiers.
func (g *Graph) IsEmpty() bool {
	return g == nil || (g.primary.Value == "" && len(g.alternates) == 0)
}

// Len counts the primary and alternate identifiers.
func (g *Graph) Len() int {
	if g.IsEmpty() {
		return 0
	}
	n := len(g.alternates)
	if g.primary.Value != "" {
		n++
	}
	return n
}

// Values lists the identifier values of the given types, primary first.
// With no types every value is returned.
func (g *Graph) Values(types ...Type) []string {
	want := make(map[Type]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	var out []string
	for _, id := range g.all() {
		if len(want) == 0 || want[id.Type] {
			out = append(out, id.Value)
		}
	}
	return out
}

// Identifiers returns a copy of every identifier, primary first.
func (g *Graph) Identifiers() []Identifier {
	ids := g.all()
	out := make([]Identifier, len(ids))
	for i, id := range ids {
		out[i] = id.clone()
	}
	return out
}

func (g *Graph) all() []Identifier {
	if g.IsEmpty() {
		return nil
	}
	out := make([]Identifier, 0, g.Len())
	if g.primary.Value != "" {
		out = append(out, g.primary)
	}
	return append(out, g.alternates...)
}

func (g *Graph) clone() *Graph {
	out := &Graph{displayName: g.displayName, primary: g.primary.clone(), score: g.score}
	out.alternates = make([]Identifier, len(g.alternates))
	for i, a := range g.alternates {
		out.alternates[i] = a.clone()
	}
	return out
}

func computeScore(g *Graph) int {
	ids := g.all()
	if len(ids) == 0 {
		return 0
	}
	var sum float64
	for _, id := range ids {
		sum += id.Confidence
	}
	return int(math.Round(sum / float64(len(ids)) * 100))
}
