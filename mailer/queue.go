// mailer/queue.go
package mailer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dalemusser/eventdesk/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned by Enqueue when the buffer is full.
	ErrQueueFull = errors.New("mailer: queue full")
	// ErrQueueClosed is returned by Enqueue after Stop.
	ErrQueueClosed = errors.New("mailer: queue closed")
)

// QueueConfig sizes a Queue. Zero values take the defaults noted.
type QueueConfig struct {
	Workers     int           // default 2
	Buffer      int           // default 256
	MaxAttempts int           // default 3
	Backoff     time.Duration // first retry delay, doubled each time; default 2s
	SendTimeout time.Duration // per attempt; default 30s
}

// Queue delivers messages on background workers. Failures are logged and
// counted; they never reach the caller of Enqueue.
type Queue struct {
	transport Transport
	logger    *zap.Logger
	cfg       QueueConfig

	ch     chan Message
	ctx    context.Context // canceled when Stop gives up waiting
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	started bool
	closed  bool
}

func NewQueue(t Transport, logger *zap.Logger, cfg QueueConfig) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 2 * time.Second
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		transport: t,
		logger:    logger,
		cfg:       cfg,
		ch:        make(chan Message, cfg.Buffer),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
}

// Enqueue hands msg to the workers without blocking and returns its id.
func (q *Queue) Enqueue(msg Message) (string, error) {
	if err := msg.check(); err != nil {
		return "", err
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return "", ErrQueueClosed
	}
	select {
	case q.ch <- msg:
		return msg.ID, nil
	default:
		metrics.MailDelivered("dropped")
		q.logger.Warn("mail queue full, dropping message",
			zap.String("id", msg.ID), zap.String("subject", msg.Subject))
		return "", ErrQueueFull
	}
}

// Stop refuses new messages and waits for queued ones to be delivered.
// If ctx ends first, in-flight sends are canceled and ctx's error returned.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for msg := range q.ch {
		q.deliver(msg)
	}
}

func (q *Queue) deliver(msg Message) {
	delay := q.cfg.Backoff
	var err error
	for attempt := 1; attempt <= q.cfg.MaxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(q.ctx, q.cfg.SendTimeout)
		err = q.transport.Send(ctx, msg)
		cancel()
		if err == nil {
			metrics.MailDelivered("sent")
			q.logger.Debug("mail sent", zap.String("id", msg.ID), zap.Int("attempt", attempt))
			return
		}
		if attempt == q.cfg.MaxAttempts || q.ctx.Err() != nil {
			break
		}
		q.logger.Warn("mail send failed, retrying",
			zap.String("id", msg.ID), zap.Int("attempt", attempt), zap.Error(err))

		t := time.NewTimer(delay)
		select {
		case <-t.C:
		case <-q.ctx.Done():
			t.Stop()
		}
		delay *= 2
	}
	metrics.MailDelivered("failed")
	q.logger.Error("mail delivery failed",
		zap.String("id", msg.ID),
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Error(err))
}
