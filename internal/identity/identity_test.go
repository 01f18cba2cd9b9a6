package identity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// =============================================================================
// Identity Graph Test Suite
// =============================================================================
// Justification for unit tests: Build and Merge are pure functions whose
// confidence arithmetic and de-duplication rules drive which identifiers
// reach connector queries. These cases pin the merge rule and the
// non-mutation guarantee.

type IdentitySuite struct {
	suite.Suite
	subject CaseSubject
}

func TestIdentitySuite(t *testing.T) {
	suite.Run(t, new(IdentitySuite))
}

func (s *IdentitySuite) SetupTest() {
	s.subject = CaseSubject{
		Name:          "  Alice   Example ",
		Email:         "Alice@Example.com",
		EmailVerified: true,
		Phone:         "+44 (20) 7946-0000",
		Identifiers: map[string]string{
			"employeeId": "E-1001",
			"email":      "alice@example.com",
		},
	}
}

func (s *IdentitySuite) TestBuild() {
	s.Run("verified email is primary", func() {
		g := Build(s.subject)
		s.Equal(Identifier{Type: TypeEmail, Value: "alice@example.com", Confidence: 1.0, Source: "case", Sources: []string{"case"}}, g.Primary())
		s.Equal("Alice Example", g.DisplayName())
	})

	s.Run("alternates are normalized and de-duplicated", func() {
		g := Build(s.subject)
		alts := g.Alternates()
		s.Require().Len(alts, 3)
		s.Equal(TypeName, alts[0].Type)
		s.Equal(TypePhone, alts[1].Type)
		s.Equal("+442079460000", alts[1].Value)
		s.Equal(TypeEmployeeID, alts[2].Type)
	})

	s.Run("unverified email falls back to name", func() {
		subj := s.subject
		subj.EmailVerified = false
		g := Build(subj)
		s.Equal(TypeName, g.Primary().Type)
	})

	s.Run("no name keeps email as primary", func() {
		g := Build(CaseSubject{Email: "bob@example.com"})
		s.Equal(TypeEmail, g.Primary().Type)
		s.Equal("bob@example.com", g.DisplayName())
	})

	s.Run("confidence score is the scaled mean", func() {
		g := Build(CaseSubject{Email: "bob@example.com", EmailVerified: true, Name: "Bob"})
		s.Equal(85, g.ConfidenceScore())
	})

	s.Run("empty subject yields empty graph", func() {
		g := Build(CaseSubject{})
		s.True(g.IsEmpty())
		s.Equal(0, g.ConfidenceScore())
		s.Equal(0, g.Len())
	})
}

func (s *IdentitySuite) TestMerge() {
	s.Run("existing identifier is boosted not duplicated", func() {
		g := Build(CaseSubject{Email: "bob@example.com"})
		merged := Merge(g, []Identifier{{Type: TypeEmail, Value: " BOB@example.com", Confidence: 0.8}}, "crm")

		s.Equal(1, merged.Len())
		s.InDelta(0.94, merged.Primary().Confidence, 1e-9)
		s.Equal([]string{"case", "crm"}, merged.Primary().Sources)
	})

	s.Run("boost never exceeds one", func() {
		g := Build(CaseSubject{Email: "bob@example.com"})
		for range 20 {
			g = Merge(g, []Identifier{{Type: TypeEmail, Value: "bob@example.com", Confidence: 1}}, "crm")
		}
		s.LessOrEqual(g.Primary().Confidence, 1.0)
		s.InDelta(1.0, g.Primary().Confidence, 1e-4)
	})

	s.Run("new identifier below threshold is ignored", func() {
		g := Build(CaseSubject{Email: "bob@example.com"})
		merged := Merge(g, []Identifier{{Type: TypePhone, Value: "555-0100", Confidence: 0.29}}, "crm")
		s.Equal(1, merged.Len())
	})

	s.Run("new identifier at threshold is appended", func() {
		g := Build(CaseSubject{Email: "bob@example.com"})
		merged := Merge(g, []Identifier{{Type: TypePhone, Value: "555-0100", Confidence: DefaultMinConfidence}}, "crm")
		s.Require().Equal(2, merged.Len())
		alt := merged.Alternates()[0]
		s.Equal("5550100", alt.Value)
		s.Equal("crm", alt.Source)
	})

	s.Run("input graph is not mutated", func() {
		g := Build(s.subject)
		before, err := json.Marshal(g)
		s.Require().NoError(err)

		_ = Merge(g, []Identifier{
			{Type: TypeEmail, Value: "alice@example.com", Confidence: 0.9},
			{Type: TypeUPN, Value: "alice@corp.example", Confidence: 0.9},
		}, "directory")

		after, err := json.Marshal(g)
		s.Require().NoError(err)
		s.JSONEq(string(before), string(after))
	})

	s.Run("invalid candidates are skipped", func() {
		g := Build(CaseSubject{Email: "bob@example.com"})
		merged := Merge(g, []Identifier{
			{Type: "shoe_size", Value: "42", Confidence: 1},
			{Type: TypePhone, Value: "n/a", Confidence: 1},
		}, "crm")
		s.Equal(1, merged.Len())
	})

	s.Run("merge into empty graph promotes a primary", func() {
		merged := Merge(Empty(), []Identifier{{Type: TypeEmail, Value: "x@example.com", Confidence: 0.7}}, "crm")
		s.Equal("x@example.com", merged.Primary().Value)
		s.Equal(70, merged.ConfidenceScore())
	})
}

func (s *IdentitySuite) TestResolveSystemAccounts() {
	g := Build(CaseSubject{Email: "bob@example.com"})
	accounts := []SystemAccount{
		{System: "hris", AccountID: "E123", Confidence: 0.6},
		{System: "", AccountID: "orphan", Confidence: 0.9},
	}

	once := ResolveSystemAccounts(g, accounts, "hris")
	s.Require().Equal(2, once.Len())
	s.Equal(Identifier{Type: TypeSystemAccount, Value: "hris:E123", Confidence: 0.6, Source: "hris", Sources: []string{"hris"}}, once.Alternates()[0])

	twice := ResolveSystemAccounts(once, []SystemAccount{{System: "HRIS", AccountID: "E123", Confidence: 0.6}}, "payroll")
	s.Equal(2, twice.Len())
	s.InDelta(0.6+0.4*0.5*0.6, twice.Alternates()[0].Confidence, 1e-9)
}

func TestSnapshotRestoresGraph(t *testing.T) {
	g := Merge(Build(CaseSubject{Name: "Carol", Email: "carol@example.com"}),
		[]Identifier{{Type: TypeObjectID, Value: "0f3a", Confidence: 0.5}}, "directory")

	data, err := json.Marshal(g)
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	restored := FromSnapshot(snap)

	assert.Equal(t, g.Primary(), restored.Primary())
	assert.Equal(t, g.Alternates(), restored.Alternates())
	assert.Equal(t, g.ConfidenceScore(), restored.ConfidenceScore())
	assert.Equal(t, []string{"carol@example.com"}, restored.Values(TypeEmail))
}
