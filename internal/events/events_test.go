package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spivot-hq/spivot/backend-go/internal/config"
)

func TestNewEventEncodesPayload(t *testing.T) {
	ev, err := NewEvent(TypeLiquidityAlert, 42, map[string]any{"cash_runway_days": 12})
	require.NoError(t, err)

	assert.Equal(t, TypeLiquidityAlert, ev.Type)
	assert.Equal(t, int64(42), ev.UserID)
	assert.False(t, ev.OccurredAt.IsZero())
	assert.JSONEq(t, `{"cash_runway_days":12}`, string(ev.Payload))
}

func TestNewEventRejectsUnencodablePayload(t *testing.T) {
	_, err := NewEvent(TypeReorderPlan, 1, make(chan int))
	assert.Error(t, err)
}

func TestNewWithoutBrokersFallsBackToLog(t *testing.T) {
	p, err := New(config.KafkaConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogPublisher{}, p)

	ev, err := NewEvent(TypeDocumentParsed, 1, nil)
	require.NoError(t, err)
	assert.NoError(t, p.Publish(context.Background(), ev))
	assert.NoError(t, p.Close())
}

func TestKafkaPublisherRequiresTopic(t *testing.T) {
	_, err := NewKafkaPublisher(config.KafkaConfig{Enabled: true, Brokers: []string{"localhost:9092"}}, nil)
	assert.Error(t, err)

	_, err = NewKafkaPublisher(config.KafkaConfig{Enabled: true, Topic: "t"}, nil)
	assert.Error(t, err)
}

func TestEventJSONShape(t *testing.T) {
	ev, err := NewEvent(TypeReorderPlan, 3, []string{"CEM-01"})
	require.NoError(t, err)
	ev.AgentName = "Reorder Optimizer"

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "reorder.plan", decoded["type"])
	assert.Equal(t, "Reorder Optimizer", decoded["agent_name"])
	assert.Equal(t, []any{"CEM-01"}, decoded["payload"])
}
