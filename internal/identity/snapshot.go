package identity

import "encoding/json"

// Snapshot is the persisted form of a graph.
type Snapshot struct {
	DisplayName     string       `json:"displayName"`
	Primary         *Identifier  `json:"primary,omitempty"`
	Alternates      []Identifier `json:"alternates"`
	ConfidenceScore int          `json:"confidenceScore"`
}

func (g *Graph) Snapshot() Snapshot {
	s := Snapshot{
		DisplayName:     g.displayName,
		Alternates:      g.Alternates(),
		ConfidenceScore: g.score,
	}
	if g.primary.Value != "" {
		p := g.Primary()
		s.Primary = &p
	}
	return s
}

func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Snapshot())
}

// FromSnapshot restores a graph. The score is recomputed from the identifiers.
func FromSnapshot(s Snapshot) *Graph {
	g := &Graph{displayName: s.DisplayName}
	if s.Primary != nil {
		g.primary = s.Primary.clone()
	}
	for _, a := range s.Alternates {
		g.alternates = append(g.alternates, a.clone())
	}
	g.score = computeScore(g)
	return g
}
