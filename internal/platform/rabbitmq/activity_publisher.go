package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"tasktracker/internal/model"
)

type ActivityPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewActivityPublisher(conn *amqp.Connection, queueName string) *ActivityPublisher {
	return &ActivityPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *ActivityPublisher) Publish(ctx context.Context, activity model.Activity) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := DeclareQueue(ch, p.queueName); err != nil {
		return err
	}

	msg, err := NewActivityMessage(activity)
	if err != nil {
		return err
	}
	if err := ch.PublishWithContext(ctx, "", p.queueName, false, false, msg); err != nil {
		return fmt.Errorf("publish activity failed: %w", err)
	}
	return nil
}

// DeclareQueue declares the durable activity queue. Publisher and worker
// both call it so either side may start first.
func DeclareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}
	return nil
}

func NewActivityMessage(activity model.Activity) (amqp.Publishing, error) {
	payload, err := json.Marshal(activity)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal activity payload failed: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    activity.ID,
		Timestamp:    activity.OccurredAt,
		Body:         payload,
		DeliveryMode: amqp.Persistent,
	}, nil
}

func DecodeActivity(body []byte) (model.Activity, error) {
	var activity model.Activity
	if err := json.Unmarshal(body, &activity); err != nil {
		return model.Activity{}, fmt.Errorf("decode activity failed: %w", err)
	}
	if !model.IsValidID(activity.ID) || !model.IsValidID(activity.OwnerID) {
		return model.Activity{}, fmt.Errorf("decode activity failed: missing ids")
	}
	return activity, nil
}
