package notification

import (
	"context"
	"sync"
	"time"

	"github.com/eatsplorer/eatsplorer-backend/internal/metrics"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
)

// LocalQueue delivers messages from an in-process buffer with a fixed
// worker pool. Failed sends are retried with linear backoff up to maxAttempts.
type LocalQueue struct {
	mailer      Mailer
	jobs        chan Message
	maxAttempts int
	backoff     time.Duration
	sendTimeout time.Duration

	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	stop    chan struct{}
	stopped sync.Once
}

type LocalQueueOptions struct {
	Workers     int
	Buffer      int
	MaxAttempts int
	Backoff     time.Duration
	SendTimeout time.Duration
}

func NewLocalQueue(mailer Mailer, opts LocalQueueOptions) *LocalQueue {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 256
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 2 * time.Second
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 30 * time.Second
	}

	q := &LocalQueue{
		mailer:      mailer,
		jobs:        make(chan Message, opts.Buffer),
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
		sendTimeout: opts.SendTimeout,
		stop:        make(chan struct{}),
	}
	for i := 0; i < opts.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	return q
}

func (q *LocalQueue) Enqueue(_ context.Context, msg Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- msg:
		metrics.EmailsQueued.WithLabelValues(string(msg.Kind)).Inc()
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *LocalQueue) worker(id int) {
	defer q.wg.Done()
	for msg := range q.jobs {
		q.deliver(id, msg)
	}
}

func (q *LocalQueue) deliver(worker int, msg Message) {
	for attempt := 1; attempt <= q.maxAttempts; attempt++ {
		msg.Attempt = attempt
		ctx, cancel := context.WithTimeout(context.Background(), q.sendTimeout)
		err := q.mailer.Send(ctx, msg)
		cancel()
		if err == nil {
			metrics.RecordEmailDelivery("sent")
			logger.Debug("Email delivered", map[string]interface{}{
				"message_id": msg.ID,
				"kind":       string(msg.Kind),
				"attempt":    attempt,
				"worker":     worker,
			})
			return
		}

		if attempt == q.maxAttempts {
			metrics.RecordEmailDelivery("failed")
			logger.Error("Email delivery gave up", err, map[string]interface{}{
				"message_id": msg.ID,
				"kind":       string(msg.Kind),
				"attempts":   attempt,
			})
			return
		}

		metrics.RecordEmailDelivery("retry")
		logger.Warn("Email delivery failed, retrying", map[string]interface{}{
			"message_id": msg.ID,
			"attempt":    attempt,
			"error":      err.Error(),
		})
		select {
		case <-time.After(q.backoff * time.Duration(attempt)):
		case <-q.stop:
			logger.Warn("Email queue stopping, dropping retry", map[string]interface{}{
				"message_id": msg.ID,
			})
			return
		}
	}
}

// Close stops accepting messages and waits for the buffered ones to be
// attempted. Pending retries are abandoned.
func (q *LocalQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.stopped.Do(func() { close(q.stop) })
	q.wg.Wait()
	return nil
}
