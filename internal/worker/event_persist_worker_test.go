package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conduit-api/internal/logging"
	"conduit-api/internal/model"
	"conduit-api/internal/repository/memory"
)

type ackRecorder struct {
	acked   int
	nacked  int
	requeue bool
}

func (a *ackRecorder) Ack(uint64, bool) error {
	a.acked++
	return nil
}

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	a.requeue = requeue
	return nil
}

func (a *ackRecorder) Reject(uint64, bool) error {
	return nil
}

type brokenEventRepo struct {
	*memory.EventRepository
}

func (brokenEventRepo) Create(context.Context, *model.AuthEvent) error {
	return errors.New("disk full")
}

func delivery(t *testing.T, ack amqp.Acknowledger, body any, redelivered bool) amqp.Delivery {
	t.Helper()
	raw, ok := body.([]byte)
	if !ok {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: raw, Redelivered: redelivered}
}

func TestEventPersistWorker_HandleStoresAndAcks(t *testing.T) {
	repo := memory.NewEventRepository()
	w := NewEventPersistWorker(nil, repo, "auth.events", logging.Discard())
	ack := &ackRecorder{}

	event := model.NewAuthEvent(model.EventLogoff, "jake@jake.jake", 3)
	w.handle(context.Background(), delivery(t, ack, event, false))

	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, 0, ack.nacked)

	stored, err := repo.ListByEmail(context.Background(), "jake@jake.jake", 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, model.EventLogoff, stored[0].Type)
	assert.Equal(t, int64(3), stored[0].Nonce)
}

func TestEventPersistWorker_HandleDropsGarbage(t *testing.T) {
	w := NewEventPersistWorker(nil, memory.NewEventRepository(), "auth.events", logging.Discard())
	ack := &ackRecorder{}

	w.handle(context.Background(), delivery(t, ack, []byte("{not json"), false))

	assert.Equal(t, 0, ack.acked)
	assert.Equal(t, 1, ack.nacked)
	assert.False(t, ack.requeue)
}

func TestEventPersistWorker_HandleRequeuesOnce(t *testing.T) {
	w := NewEventPersistWorker(nil, brokenEventRepo{memory.NewEventRepository()}, "auth.events", logging.Discard())
	event := model.NewAuthEvent(model.EventLogin, "jake@jake.jake", 2)

	first := &ackRecorder{}
	w.handle(context.Background(), delivery(t, first, event, false))
	assert.True(t, first.requeue)

	second := &ackRecorder{}
	w.handle(context.Background(), delivery(t, second, event, true))
	assert.False(t, second.requeue)
	assert.Equal(t, 1, second.nacked)
}
