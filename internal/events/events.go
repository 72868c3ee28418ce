// Package events publishes agent activity to the message bus.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/spivot-hq/spivot/backend-go/internal/config"
	"github.com/spivot-hq/spivot/backend-go/pkg/metrics"
)

const (
	TypeLiquidityAlert  = "liquidity.alert"
	TypeReorderPlan     = "reorder.plan"
	TypeDocumentParsed  = "document.processed"
	TypeTransactionsAdd = "transactions.recorded"
)

// Event is the envelope written to the agent events topic.
type Event struct {
	Type       string          `json:"type"`
	UserID     int64           `json:"user_id"`
	AgentName  string          `json:"agent_name,omitempty"`
	Severity   string          `json:"severity,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewEvent encodes payload into an event stamped with the current time.
func NewEvent(eventType string, userID int64, payload any) (Event, error) {
	ev := Event{Type: eventType, UserID: userID, OccurredAt: time.Now().UTC()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Event{}, fmt.Errorf("encode %s payload: %w", eventType, err)
		}
		ev.Payload = raw
	}
	return ev, nil
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// KafkaPublisher writes events keyed by user so a user's events stay ordered.
type KafkaPublisher struct {
	writer  *kafka.Writer
	metrics *metrics.Recorder
}

func NewKafkaPublisher(cfg config.KafkaConfig, rec *metrics.Recorder) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Gzip,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
		BatchTimeout: 100 * time.Millisecond,
	}

	log.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Msg("Kafka event publisher configured")
	return &KafkaPublisher{writer: writer, metrics: rec}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.UserID, 10)),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	})
	p.metrics.RecordEvent(ev.Type, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher writes events to the application log. It is the fallback
// when no brokers are configured.
type LogPublisher struct {
	metrics *metrics.Recorder
}

func NewLogPublisher(rec *metrics.Recorder) *LogPublisher {
	return &LogPublisher{metrics: rec}
}

func (p *LogPublisher) Publish(ctx context.Context, ev Event) error {
	log.Info().
		Str("event_type", ev.Type).
		Int64("user_id", ev.UserID).
		Str("agent", ev.AgentName).
		Str("severity", ev.Severity).
		RawJSON("payload", orNull(ev.Payload)).
		Msg("Agent event")
	p.metrics.RecordEvent(ev.Type, nil)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// New picks the Kafka publisher when brokers are configured.
func New(cfg config.KafkaConfig, rec *metrics.Recorder) (Publisher, error) {
	if !cfg.Enabled {
		return NewLogPublisher(rec), nil
	}
	return NewKafkaPublisher(cfg, rec)
}

func orNull(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}

var (
	_ Publisher = (*KafkaPublisher)(nil)
	_ Publisher = (*LogPublisher)(nil)
)
