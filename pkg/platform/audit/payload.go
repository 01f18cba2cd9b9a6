package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "dsar/pkg/domain"
)

// Payload is the JSON form of an Event written to the outbox and published
// to Kafka. Field names are part of the consumer contract.
type Payload struct {
	ID        string `json:"ID"`
	Category  string `json:"Category"`
	Timestamp string `json:"Timestamp"`
	CaseID    string `json:"CaseID,omitempty"`
	RunID     string `json:"RunID,omitempty"`
	SourceID  string `json:"SourceID,omitempty"`
	Subject   string `json:"Subject,omitempty"`
	Action    string `json:"Action"`
	Purpose   string `json:"Purpose,omitempty"`
	Decision  string `json:"Decision,omitempty"`
	Reason    string `json:"Reason,omitempty"`
	RequestID string `json:"RequestID,omitempty"`
	ActorID   string `json:"ActorID,omitempty"`
}

// EncodePayload derives the category from the action, since the
// eventCategories map is the source of truth.
func EncodePayload(eventID uuid.UUID, e Event) ([]byte, error) {
	p := Payload{
		ID:        eventID.String(),
		Category:  string(AuditEvent(e.Action).Category()),
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
		SourceID:  e.SourceID,
		Subject:   e.Subject,
		Action:    e.Action,
		Purpose:   e.Purpose,
		Decision:  e.Decision,
		Reason:    e.Reason,
		RequestID: e.RequestID,
		ActorID:   e.ActorID,
	}
	if !e.CaseID.IsNil() {
		p.CaseID = e.CaseID.String()
	}
	if !e.RunID.IsNil() {
		p.RunID = e.RunID.String()
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal audit payload: %w", err)
	}
	return data, nil
}

// DecodePayload is the inverse of EncodePayload.
func DecodePayload(data []byte) (Event, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Event{}, fmt.Errorf("unmarshal audit payload: %w", err)
	}
	e := Event{
		Category:  EventCategory(p.Category),
		SourceID:  p.SourceID,
		Subject:   p.Subject,
		Action:    p.Action,
		Purpose:   p.Purpose,
		Decision:  p.Decision,
		Reason:    p.Reason,
		RequestID: p.RequestID,
		ActorID:   p.ActorID,
	}
	if p.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339Nano, p.Timestamp)
		if err != nil {
			return Event{}, fmt.Errorf("parse audit timestamp: %w", err)
		}
		e.Timestamp = ts
	}
	if p.CaseID != "" {
		caseID, err := id.ParseCaseID(p.CaseID)
		if err != nil {
			return Event{}, err
		}
		e.CaseID = caseID
	}
	if p.RunID != "" {
		runID, err := id.ParseRunID(p.RunID)
		if err != nil {
			return Event{}, err
		}
		e.RunID = runID
	}
	return e, nil
}

// OutboxEntry is one pending row of the transactional outbox.
type OutboxEntry struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}
