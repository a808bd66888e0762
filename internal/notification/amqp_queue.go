package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/eatsplorer/eatsplorer-backend/internal/metrics"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

const attemptHeader = "x-attempt"

// AMQPQueue publishes messages to a durable RabbitMQ queue and consumes
// them with manual acks. A failed send is republished with an incremented
// attempt header; after maxAttempts the delivery is rejected.
type AMQPQueue struct {
	conn        *amqp.Connection
	pub         *amqp.Channel
	sub         *amqp.Channel
	queue       string
	mailer      Mailer
	maxAttempts int
	sendTimeout time.Duration

	pubMu sync.Mutex
	wg    sync.WaitGroup
	once  sync.Once
}

type AMQPQueueOptions struct {
	URL         string
	Queue       string
	Prefetch    int
	MaxAttempts int
	SendTimeout time.Duration
}

// NewAMQPQueue dials the broker, declares the queue and starts the consumer.
func NewAMQPQueue(mailer Mailer, opts AMQPQueueOptions) (*AMQPQueue, error) {
	if opts.Prefetch <= 0 {
		opts.Prefetch = 20
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 30 * time.Second
	}

	conn, err := amqp.Dial(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}

	pub, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open publish channel: %w", err)
	}
	if _, err := pub.QueueDeclare(opts.Queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}

	sub, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open consume channel: %w", err)
	}
	if err := sub.Qos(opts.Prefetch, 0, false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := sub.Consume(opts.Queue, "", false, false, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("queue consume: %w", err)
	}

	q := &AMQPQueue{
		conn:        conn,
		pub:         pub,
		sub:         sub,
		queue:       opts.Queue,
		mailer:      mailer,
		maxAttempts: opts.MaxAttempts,
		sendTimeout: opts.SendTimeout,
	}
	q.wg.Add(1)
	go q.consume(deliveries)

	logger.Info("Email queue connected to RabbitMQ", map[string]interface{}{
		"queue":    opts.Queue,
		"prefetch": opts.Prefetch,
	})
	return q, nil
}

func (q *AMQPQueue) Enqueue(ctx context.Context, msg Message) error {
	if msg.Attempt == 0 {
		msg.Attempt = 1
	}
	if err := q.publish(ctx, msg); err != nil {
		return err
	}
	metrics.EmailsQueued.WithLabelValues(string(msg.Kind)).Inc()
	return nil
}

func (q *AMQPQueue) publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	q.pubMu.Lock()
	defer q.pubMu.Unlock()
	return q.pub.PublishWithContext(ctx,
		"",      // default exchange
		q.queue, // routing key = queue name
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.ID,
			Timestamp:    time.Now().UTC(),
			Headers:      amqp.Table{attemptHeader: int32(msg.Attempt)},
			Body:         body,
		},
	)
}

func (q *AMQPQueue) consume(deliveries <-chan amqp.Delivery) {
	defer q.wg.Done()
	for d := range deliveries {
		q.handle(d)
	}
	logger.Info("Email consumer stopped")
}

func (q *AMQPQueue) handle(d amqp.Delivery) {
	var msg Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		logger.Error("Dropping malformed email message", err)
		_ = d.Nack(false, false)
		return
	}
	msg.Attempt = attemptOf(d.Headers, msg.Attempt)

	ctx, cancel := context.WithTimeout(context.Background(), q.sendTimeout)
	err := q.mailer.Send(ctx, msg)
	cancel()
	if err == nil {
		metrics.RecordEmailDelivery("sent")
		_ = d.Ack(false)
		return
	}

	if msg.Attempt >= q.maxAttempts {
		metrics.RecordEmailDelivery("failed")
		logger.Error("Email delivery gave up", err, map[string]interface{}{
			"message_id": msg.ID,
			"kind":       string(msg.Kind),
			"attempts":   msg.Attempt,
		})
		_ = d.Nack(false, false)
		return
	}

	msg.Attempt++
	pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if perr := q.publish(pubCtx, msg); perr != nil {
		// fall back to broker redelivery
		logger.Error("Failed to republish email for retry", perr, map[string]interface{}{
			"message_id": msg.ID,
		})
		_ = d.Nack(false, true)
		return
	}
	metrics.RecordEmailDelivery("retry")
	logger.Warn("Email delivery failed, requeued", map[string]interface{}{
		"message_id": msg.ID,
		"attempt":    msg.Attempt,
		"error":      err.Error(),
	})
	_ = d.Ack(false)
}

func attemptOf(headers amqp.Table, fallback int) int {
	switch v := headers[attemptHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	if fallback <= 0 {
		return 1
	}
	return fallback
}

// Close stops the consumer and closes the connection.
func (q *AMQPQueue) Close() error {
	var err error
	q.once.Do(func() {
		_ = q.sub.Close()
		q.wg.Wait()
		_ = q.pub.Close()
		err = q.conn.Close()
	})
	return err
}
