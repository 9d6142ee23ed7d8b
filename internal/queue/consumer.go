package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// operationsLogPath is where the floor operations feed is appended.
const operationsLogPath = "logs/operations.log"

// StartOperationsConsumer connects to RabbitMQ, declares the check-in,
// seating and clock queues (durable), and consumes them into a single
// human-readable operations log that floor staff can tail. The
// function runs a reconnect loop with exponential backoff and never
// returns under normal operation; processing errors are logged and
// the offending message rejected without requeue so the feed keeps
// moving.
func StartOperationsConsumer(url string, log *zap.Logger) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("operations consumer dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, log); err != nil {
			log.Warn("operations consumer loop ended, reconnecting", zap.Error(err))
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("operations consumer set QoS failed", zap.Error(err))
	}

	queues := []string{CheckInQueue, SeatingQueue, ClockQueue}
	deliveries := make(chan amqp.Delivery)
	for _, name := range queues {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
		msgs, err := ch.Consume(name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", name, err)
		}
		go func() {
			for d := range msgs {
				deliveries <- d
			}
		}()
	}

	closed := make(chan *amqp.Error, 1)
	ch.NotifyClose(closed)
	for {
		select {
		case d := <-deliveries:
			if err := handleMessage(d.RoutingKey, d.Body); err != nil {
				log.Warn("operations consumer handle message failed", zap.String("queue", d.RoutingKey), zap.Error(err))
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		case err := <-closed:
			if err != nil {
				return err
			}
			return errors.New("channel closed")
		}
	}
}

// handleMessage renders one event as a single operations-log line.
func handleMessage(queueName string, body []byte) error {
	var line string
	switch queueName {
	case CheckInQueue:
		var ev PlayerCheckedInEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		seat := "unseated"
		if ev.TableNumber != nil && ev.SeatNumber != nil {
			seat = fmt.Sprintf("table %d seat %d", *ev.TableNumber, *ev.SeatNumber)
		}
		line = fmt.Sprintf("[%s] Player checked in | tournament=%q | player=%q | %s | strategy=%s | bonus=%d\n",
			ev.CheckedInAt, ev.TournamentName, ev.PlayerName, seat, ev.Strategy, ev.BonusChips)
	case SeatingQueue:
		var ev SeatingRebalancedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		line = fmt.Sprintf("[%s] Tables rebalanced | tournament_id=%s | moves=%d | %v\n",
			ev.RebalancedAt, ev.TournamentID, ev.MoveCount, ev.Moves)
	case ClockQueue:
		var ev ClockChangedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		line = fmt.Sprintf("[%s] Clock %s | tournament_id=%s | level=%d | blinds=%d/%d ante %d\n",
			ev.ChangedAt, ev.EventType, ev.TournamentID, ev.Level, ev.SmallBlind, ev.BigBlind, ev.Ante)
	default:
		return fmt.Errorf("unknown queue %q", queueName)
	}

	if err := os.MkdirAll(filepath.Dir(operationsLogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(operationsLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
