package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_PublishOrderCreated(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	e := NewOrderCreated(12, 3, created, []TicketBooked{{FlightID: 1, Row: 1, Seat: 2}})
	require.NoError(t, p.PublishOrderCreated(context.Background(), e))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "12", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, TypeOrderCreated, string(msg.Headers[0].Value))

	var got OrderCreated
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, e.EventID, got.EventID)
	assert.Equal(t, int64(12), got.OrderID)
	assert.Equal(t, []TicketBooked{{FlightID: 1, Row: 1, Seat: 2}}, got.Tickets)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}}

	err := p.PublishOrderCreated(context.Background(), NewOrderCreated(1, 1, time.Now(), nil))
	assert.ErrorContains(t, err, "broker down")
}
