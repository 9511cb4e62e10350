package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockCast/internal/domain/models"
)

type capturePublisher struct {
	topic string
	key   []byte
	value any
}

func (c *capturePublisher) Publish(_ context.Context, topic string, key []byte, value any) error {
	c.topic, c.key, c.value = topic, key, value
	return nil
}

func (c *capturePublisher) Close() error { return nil }

func TestKafkaEventPublisher_PublishRun(t *testing.T) {
	cp := &capturePublisher{}
	pub := &KafkaEventPublisher{p: cp, topic: "stockcast.runs"}

	ev := &models.RunEvent{
		RunID:     "r-1",
		Op:        models.OpForecast,
		Symbol:    "AAPL",
		Variant:   "lstm",
		Values:    map[string]float64{"last": 101.5},
		CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, pub.PublishRun(context.Background(), ev))
	assert.Equal(t, "stockcast.runs", cp.topic)
	assert.Equal(t, "AAPL", string(cp.key))

	b, err := json.Marshal(cp.value)
	require.NoError(t, err)
	var back models.RunEvent
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, ev.RunID, back.RunID)
	assert.Equal(t, 101.5, back.Values["last"])
}

func TestNopEventPublisher(t *testing.T) {
	var p NopEventPublisher
	assert.NoError(t, p.PublishRun(context.Background(), &models.RunEvent{}))
	assert.NoError(t, p.Close())
}
