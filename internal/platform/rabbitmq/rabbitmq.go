package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"tasktracker/internal/config"
)

const dialTimeout = 3 * time.Second

// New dials the broker and declares the activity queue, so a broker that
// accepts connections but refuses the queue fails at startup.
func New(ctx context.Context, cfg config.RabbitMQConfig) (*amqp.Connection, error) {
	if cfg.ActivityQueue == "" {
		return nil, fmt.Errorf("rabbitmq activity queue name is empty")
	}

	conn, err := amqp.DialConfig(cfg.URL, amqp.Config{
		Dial:      amqp.DefaultDial(dialTimeout),
		Heartbeat: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq failed: %w", err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		ch, err := conn.Channel()
		if err != nil {
			done <- fmt.Errorf("open rabbitmq channel failed: %w", err)
			return
		}
		defer ch.Close()
		done <- DeclareQueue(ch, cfg.ActivityQueue)
	}()

	select {
	case <-checkCtx.Done():
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq startup check timeout: %w", checkCtx.Err())
	case err := <-done:
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}
