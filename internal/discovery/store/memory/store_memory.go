// Package memory is an in-process discovery store. It backs the CLI and tests;
// all reads return copies.
package memory

import (
	"context"
	"sync"

	detection "dsar/internal/detection/models"
	"dsar/internal/discovery/models"
	"dsar/internal/identity"
	id "dsar/pkg/domain"
)

type InMemoryStore struct {
	mu sync.RWMutex

	cases    map[id.CaseID]models.Case
	subjects map[id.CaseID]identity.CaseSubject
	sources  map[id.CaseID][]models.SourceConfig

	statuses map[id.RunID][]models.RunStatusRecord
	evidence map[id.RunID][]models.EvidenceItem
	results  map[id.EvidenceItemID][]detection.DetectionResult
	findings map[id.RunID][]models.Finding
	profiles map[id.CaseID]identity.Snapshot
	tasks    map[id.CaseID][]models.LegalReviewTask
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		cases:    make(map[id.CaseID]models.Case),
		subjects: make(map[id.CaseID]identity.CaseSubject),
		sources:  make(map[id.CaseID][]models.SourceConfig),
		statuses: make(map[id.RunID][]models.RunStatusRecord),
		evidence: make(map[id.RunID][]models.EvidenceItem),
		results:  make(map[id.EvidenceItemID][]detection.DetectionResult),
		findings: make(map[id.RunID][]models.Finding),
		profiles: make(map[id.CaseID]identity.Snapshot),
		tasks:    make(map[id.CaseID][]models.LegalReviewTask),
	}
}

// PutCase stores a case; a nil subject leaves the case without one.
func (s *InMemoryStore) PutCase(c models.Case, subject *identity.CaseSubject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[c.ID] = c
	if subject != nil {
		s.subjects[c.ID] = *subject
	}
}

func (s *InMemoryStore) PutSources(caseID id.CaseID, sources ...models.SourceConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[caseID] = append(s.sources[caseID], sources...)
}

func (s *InMemoryStore) GetCase(_ context.Context, caseID id.CaseID) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[caseID]
	if !ok {
		return nil, models.ErrCaseNotFound
	}
	return &c, nil
}

func (s *InMemoryStore) GetSubject(_ context.Context, caseID id.CaseID) (*identity.CaseSubject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subject, ok := s.subjects[caseID]
	if !ok {
		return nil, models.ErrSubjectNotFound
	}
	return &subject, nil
}

func (s *InMemoryStore) ListSources(_ context.Context, caseID id.CaseID) ([]models.SourceConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SourceConfig(nil), s.sources[caseID]...), nil
}

func (s *InMemoryStore) WriteRunStatus(_ context.Context, status models.RunStatusRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[status.RunID] = append(s.statuses[status.RunID], status)
	return nil
}

func (s *InMemoryStore) WriteEvidenceItem(_ context.Context, item models.EvidenceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evidence[item.RunID] = append(s.evidence[item.RunID], item)
	return nil
}

func (s *InMemoryStore) WriteDetectionResult(_ context.Context, evidenceID id.EvidenceItemID, result detection.DetectionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[evidenceID] = append(s.results[evidenceID], result)
	return nil
}

func (s *InMemoryStore) WriteFinding(_ context.Context, finding models.Finding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findings[finding.RunID] = append(s.findings[finding.RunID], finding)
	return nil
}

func (s *InMemoryStore) UpsertIdentityProfile(_ context.Context, caseID id.CaseID, graph *identity.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[caseID] = graph.Snapshot()
	return nil
}

func (s *InMemoryStore) CreateLegalReviewTask(_ context.Context, task models.LegalReviewTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.CaseID] = append(s.tasks[task.CaseID], task)
	return nil
}

// RunStatus returns the latest status written for a run.
func (s *InMemoryStore) RunStatus(runID id.RunID) (models.RunStatusRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.statuses[runID]
	if len(history) == 0 {
		return models.RunStatusRecord{}, false
	}
	return history[len(history)-1], true
}

// StatusHistory returns every status written for a run, oldest first.
func (s *InMemoryStore) StatusHistory(runID id.RunID) []models.RunStatusRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.RunStatusRecord(nil), s.statuses[runID]...)
}

func (s *InMemoryStore) EvidenceItems(runID id.RunID) []models.EvidenceItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.EvidenceItem(nil), s.evidence[runID]...)
}

func (s *InMemoryStore) DetectionResults(evidenceID id.EvidenceItemID) []detection.DetectionResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]detection.DetectionResult(nil), s.results[evidenceID]...)
}

func (s *InMemoryStore) Findings(runID id.RunID) []models.Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Finding(nil), s.findings[runID]...)
}

func (s *InMemoryStore) IdentityProfile(caseID id.CaseID) (identity.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.profiles[caseID]
	return snap, ok
}

func (s *InMemoryStore) LegalReviewTasks(caseID id.CaseID) []models.LegalReviewTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.LegalReviewTask(nil), s.tasks[caseID]...)
}
