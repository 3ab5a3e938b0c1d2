package events

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitMQ struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
}

// DialRabbitMQ connects, opens a channel and declares the exchange and queue.
func DialRabbitMQ(url, exchange, queue string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	r := &RabbitMQ{conn: conn, channel: ch, exchange: exchange, queue: queue}
	if err := r.setup(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *RabbitMQ) setup() error {
	if err := r.channel.ExchangeDeclare(
		r.exchange,
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange %s: %w", r.exchange, err)
	}

	if _, err := r.channel.QueueDeclare(
		r.queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare queue %s: %w", r.queue, err)
	}

	if err := r.channel.QueueBind(r.queue, "", r.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", r.queue, err)
	}
	return nil
}

func (r *RabbitMQ) Publish(ctx context.Context, ev ProductEvent) error {
	body, err := ev.ToJSON()
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    ev.EventID,
		Type:         ev.EventType,
		Body:         body,
		Timestamp:    time.Now(),
	}

	return r.channel.PublishWithContext(ctx,
		r.exchange,
		"",    // routing key
		false, // mandatory
		false, // immediate
		msg,
	)
}

func (r *RabbitMQ) Close() error {
	var firstErr error
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			firstErr = err
		}
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
