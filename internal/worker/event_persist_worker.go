package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"conduit-api/internal/model"
	"conduit-api/internal/platform/rabbitmq"
	"conduit-api/internal/repository"
)

// EventPersistWorker drains the audit queue into the event repository.
type EventPersistWorker struct {
	conn      *amqp.Connection
	repo      repository.EventRepository
	queueName string
	log       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewEventPersistWorker(conn *amqp.Connection, repo repository.EventRepository, queueName string, log *slog.Logger) *EventPersistWorker {
	return &EventPersistWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
		log:       log.With("component", "event_persist_worker", "queue", queueName),
	}
}

func (w *EventPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.handle(workerCtx, d)
			}
		}
	}()

	w.log.Info("event persist worker started")
	return nil
}

// handle acks a delivery once it is stored. Undecodable payloads are
// dropped; store failures are requeued once.
func (w *EventPersistWorker) handle(ctx context.Context, d amqp.Delivery) {
	var event model.AuthEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		w.log.Error("decode event failed", "error", err)
		_ = d.Nack(false, false)
		return
	}

	if err := w.repo.Create(ctx, &event); err != nil {
		w.log.Error("persist event failed", "event_id", event.ID, "type", event.Type, "error", err)
		_ = d.Nack(false, !d.Redelivered)
		return
	}

	_ = d.Ack(false)
}

func (w *EventPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
