package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"tasktracker/internal/platform/rabbitmq"
	"tasktracker/internal/repository"
)

// ActivityPersistWorker drains the activity queue into the activity store.
type ActivityPersistWorker struct {
	conn      *amqp.Connection
	repo      repository.ActivityRepository
	queueName string
	log       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewActivityPersistWorker(conn *amqp.Connection, repo repository.ActivityRepository, queueName string, log *slog.Logger) *ActivityPersistWorker {
	if log == nil {
		log = slog.Default()
	}
	return &ActivityPersistWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
		log:       log.With("component", "activity_worker", "queue", queueName),
	}
}

func (w *ActivityPersistWorker) Start(ctx context.Context) error {
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
					w.log.Warn("delivery channel closed")
					return
				}
				w.handle(workerCtx, d)
			}
		}
	}()

	w.log.Info("activity worker started")
	return nil
}

func (w *ActivityPersistWorker) handle(ctx context.Context, d amqp.Delivery) {
	activity, err := rabbitmq.DecodeActivity(d.Body)
	if err != nil {
		w.log.Error("drop undecodable activity", "error", err)
		_ = d.Nack(false, false)
		return
	}

	err = w.repo.Create(ctx, &activity)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrDuplicateKey):
		// Redelivery of an event that was already stored.
		w.log.Debug("activity already persisted", "activity_id", activity.ID)
	default:
		w.log.Error("persist activity failed", "activity_id", activity.ID, "error", err)
		_ = d.Nack(false, false)
		return
	}

	_ = d.Ack(false)
}

func (w *ActivityPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
