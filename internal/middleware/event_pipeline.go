package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/models"
	domrepo "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/repository"
	applogger "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/logger"
)

// ErrBufferFull is returned when an event could not be delivered and there
// is no room left to hold it for retry.
var ErrBufferFull = errors.New("event buffer full")

// errBacklog is the cause reported when an event is queued behind earlier
// undelivered ones.
var errBacklog = errors.New("earlier events awaiting delivery")

// EventPipeline sits between the contract and the event log. Events the
// downstream publisher rejects are buffered and retried in the background
// with capped exponential backoff, so a broker outage does not lose events
// that fit in the buffer.
//
// Delivery is FIFO: while anything is buffered, new events queue behind it
// and the retry loop holds the head event until it is delivered.
type EventPipeline struct {
	next       domrepo.EventPublisher
	metrics    domrepo.Metrics
	logger     *applogger.Logger
	bufSize    int
	maxBackoff time.Duration
	bufCh      chan models.ContractEvent
	stopCh     chan struct{}
	wg         sync.WaitGroup
	startOnce  sync.Once
	stopOnce   sync.Once

	mu      sync.Mutex
	pending int // buffered plus the one being retried
}

var _ domrepo.EventPublisher = (*EventPipeline)(nil)

type PipelineOption func(*EventPipeline)

// WithBufferSize sets how many undelivered events are held for retry.
func WithBufferSize(n int) PipelineOption {
	return func(p *EventPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithMaxBackoff caps the delay between retries.
func WithMaxBackoff(d time.Duration) PipelineOption {
	return func(p *EventPipeline) {
		if d > 0 {
			p.maxBackoff = d
		}
	}
}

func NewEventPipeline(next domrepo.EventPublisher, metrics domrepo.Metrics, logger *applogger.Logger, opts ...PipelineOption) *EventPipeline {
	p := &EventPipeline{
		next:       next,
		metrics:    metrics,
		logger:     logger,
		bufSize:    1000,
		maxBackoff: 2 * time.Second,
		stopCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan models.ContractEvent, p.bufSize)
	return p
}

// Start launches the retry loop. Calling it more than once has no effect.
func (p *EventPipeline) Start() {
	p.startOnce.Do(func() {
		p.wg.Add(1)
		go p.retryLoop()
	})
}

// PublishEvent forwards ev downstream. On failure the event is buffered and
// nil is returned; only an event that cannot be buffered is reported.
func (p *EventPipeline) PublishEvent(ctx context.Context, ev models.ContractEvent) error {
	if err := validateEvent(ev); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	cause := errBacklog
	if p.pending == 0 {
		start := time.Now()
		err := p.next.PublishEvent(ctx, ev)
		if err == nil {
			p.metrics.RecordLatency("event_publish", time.Since(start).Seconds())
			return nil
		}
		p.metrics.RecordError("pipeline_publish")
		cause = err
	}

	select {
	case p.bufCh <- ev:
		p.pending++
		p.logger.Warn("event buffered for retry",
			applogger.String("event_id", ev.ID),
			applogger.Int("depth", p.pending),
			applogger.Error(cause),
		)
		return nil
	default:
		p.metrics.RecordError("pipeline_buffer_full")
		return fmt.Errorf("%w: %v", ErrBufferFull, cause)
	}
}

// Pending reports the number of events waiting for delivery.
func (p *EventPipeline) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

func (p *EventPipeline) retryLoop() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopCh:
			return
		case ev := <-p.bufCh:
			if !p.deliver(ev) {
				return
			}
		}
	}
}

// deliver retries ev until it is accepted or the pipeline stops. Later events
// wait in the buffer meanwhile, which keeps per-key order on the log.
func (p *EventPipeline) deliver(ev models.ContractEvent) bool {
	const minBackoff = 50 * time.Millisecond
	backoff := minBackoff

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := p.next.PublishEvent(ctx, ev)
		cancel()

		if err == nil {
			p.mu.Lock()
			p.pending--
			p.mu.Unlock()
			return true
		}

		p.metrics.RecordError("pipeline_retry")
		p.logger.Debug("event retry failed",
			applogger.String("event_id", ev.ID),
			applogger.Duration("backoff", backoff),
			applogger.Error(err),
		)

		select {
		case <-p.stopCh:
			return false
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > p.maxBackoff {
			backoff = p.maxBackoff
		}
	}
}

// Close stops the retry loop and closes the downstream publisher. Events
// still buffered are logged as lost.
func (p *EventPipeline) Close() error {
	p.stopOnce.Do(func() {
		close(p.stopCh)
		p.wg.Wait()
	})

	if n := p.Pending(); n > 0 {
		p.logger.Error("undelivered events at shutdown", applogger.Int("count", n))
	}
	return p.next.Close()
}

func validateEvent(ev models.ContractEvent) error {
	if ev.ID == "" {
		return errors.New("event id empty")
	}
	if ev.Operation == "" {
		return errors.New("event operation empty")
	}
	return nil
}
