package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends domain events to RabbitMQ. Publishing is best
// effort: a connection is dialed per publish, failures are logged and
// returned, and callers on the request path ignore the error so an
// unavailable broker never blocks tournament operations. Messages are
// marked persistent so a healthy broker keeps them across restarts.
type Publisher struct {
	url string
	log *zap.Logger
}

// NewPublisher returns a Publisher for the given AMQP URL.
func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// PlayerCheckedIn publishes to the check-in queue.
func (p *Publisher) PlayerCheckedIn(ctx context.Context, ev PlayerCheckedInEvent) error {
	return p.publish(ctx, CheckInQueue, ev)
}

// SeatingRebalanced publishes to the seating queue.
func (p *Publisher) SeatingRebalanced(ctx context.Context, ev SeatingRebalancedEvent) error {
	return p.publish(ctx, SeatingQueue, ev)
}

// ClockChanged publishes to the clock queue.
func (p *Publisher) ClockChanged(ctx context.Context, ev ClockChangedEvent) error {
	return p.publish(ctx, ClockQueue, ev)
}

// ResultsEntered publishes to the results queue.
func (p *Publisher) ResultsEntered(ctx context.Context, ev ResultsEnteredEvent) error {
	return p.publish(ctx, ResultsQueue, ev)
}

// TournamentFinished publishes to the finished queue.
func (p *Publisher) TournamentFinished(ctx context.Context, ev TournamentFinishedEvent) error {
	return p.publish(ctx, FinishedQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, queueName string, event interface{}) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("rabbitmq dial failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq channel open failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive
	// broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		p.log.Warn("rabbitmq queue declare failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.log.Warn("rabbitmq marshal event failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		p.log.Warn("rabbitmq publish failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}
	return nil
}
