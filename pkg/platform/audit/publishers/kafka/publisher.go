// Package kafka streams audit events to per-category Kafka topics.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "dsar/pkg/platform/audit"
)

// Default topics, one per event category.
const (
	TopicCompliance = "dsar.audit.compliance"
	TopicSecurity   = "dsar.audit.security"
	TopicOperations = "dsar.audit.operations"
)

// Topics lists every topic the publisher may write to.
func Topics() []string {
	return []string{TopicCompliance, TopicSecurity, TopicOperations}
}

type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Publisher writes audit payloads to Kafka. It implements audit.Store for
// direct emission and PublishEntry for the outbox relay.
type Publisher struct {
	client producer
	topics map[audit.EventCategory]string
}

type Option func(*Publisher)

// WithTopic overrides the topic for one category.
func WithTopic(category audit.EventCategory, topic string) Option {
	return func(p *Publisher) {
		p.topics[category] = topic
	}
}

// New wraps a franz-go client (or anything with ProduceSync).
func New(client producer, opts ...Option) *Publisher {
	p := &Publisher{
		client: client,
		topics: map[audit.EventCategory]string{
			audit.CategoryCompliance: TopicCompliance,
			audit.CategorySecurity:   TopicSecurity,
			audit.CategoryOperations: TopicOperations,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Append publishes an event synchronously, keyed by case so a case's events
// stay ordered within a partition.
func (p *Publisher) Append(ctx context.Context, event audit.Event) error {
	payload, err := audit.EncodePayload(uuid.New(), event)
	if err != nil {
		return err
	}
	category := audit.AuditEvent(event.Action).Category()
	var key []byte
	if !event.CaseID.IsNil() {
		key = []byte(event.CaseID.String())
	}
	return p.produce(ctx, category, key, payload)
}

// PublishEntry relays one outbox row.
func (p *Publisher) PublishEntry(ctx context.Context, entry audit.OutboxEntry) error {
	var head struct {
		Category string `json:"Category"`
	}
	if err := json.Unmarshal(entry.Payload, &head); err != nil {
		return fmt.Errorf("decode outbox payload %s: %w", entry.ID, err)
	}
	return p.produce(ctx, audit.EventCategory(head.Category), []byte(entry.AggregateID), entry.Payload)
}

func (p *Publisher) produce(ctx context.Context, category audit.EventCategory, key, value []byte) error {
	topic, ok := p.topics[category]
	if !ok {
		topic = p.topics[audit.CategoryOperations]
	}
	record := &kgo.Record{Topic: topic, Key: key, Value: value}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event to %s: %w", topic, err)
	}
	return nil
}
