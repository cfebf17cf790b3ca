package events

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DispatcherConfig sizes the dispatcher queue and batches.
type DispatcherConfig struct {
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	// PublishTimeout bounds one Publish call.
	PublishTimeout time.Duration
}

func (c *DispatcherConfig) setDefaults() {
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 16
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 200 * time.Millisecond
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = 5 * time.Second
	}
}

// Dispatcher batches events on worker goroutines and fans each batch out to
// its publishers. Send never blocks; events are dropped when the queue is full.
type Dispatcher struct {
	inputCh    chan OrderEvent
	publishers []Publisher
	cfg        DispatcherConfig
	log        *slog.Logger

	dropped atomic.Int64
	stop    chan struct{}
	wg      sync.WaitGroup

	// No event enters inputCh once closed is set.
	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(cfg DispatcherConfig, log *slog.Logger, publishers ...Publisher) *Dispatcher {
	cfg.setDefaults()
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		inputCh:    make(chan OrderEvent, cfg.QueueSize),
		publishers: publishers,
		cfg:        cfg,
		log:        log,
		stop:       make(chan struct{}),
	}
}

// Start launches numWorkers workers.
func (d *Dispatcher) Start(numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.worker()
		}()
	}
}

func (d *Dispatcher) worker() {
	var batch []OrderEvent
	ticker := time.NewTicker(d.cfg.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-d.stop:
			// Drain what is already queued.
			for {
				select {
				case e := <-d.inputCh:
					batch = append(batch, e)
				default:
					d.flush(batch)
					return
				}
			}
		case e := <-d.inputCh:
			batch = append(batch, e)
			if len(batch) >= d.cfg.BatchSize {
				d.flush(batch)
				batch = nil
			}
		case <-ticker.C:
			d.flush(batch)
			batch = nil
		}
	}
}

func (d *Dispatcher) flush(batch []OrderEvent) {
	if len(batch) == 0 {
		return
	}
	for _, p := range d.publishers {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.PublishTimeout)
		err := p.Publish(ctx, batch)
		cancel()
		if err != nil {
			d.log.Error("publish order events", "events", len(batch), "err", err)
		}
	}
}

// Send queues an event.
func (d *Dispatcher) Send(e OrderEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped.Add(1)
		return
	}
	select {
	case d.inputCh <- e:
	default:
		d.dropped.Add(1)
		d.log.Warn("order event queue full, dropping event", "order_id", e.OrderID, "type", e.Type)
	}
}

// Dropped returns how many events were discarded.
func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }

// Shutdown stops the workers and publishes whatever is still queued. Safe to
// call twice.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.wg.Wait()
		return
	}
	d.closed = true
	close(d.stop)
	d.mu.Unlock()

	d.wg.Wait()
	// Workers may never have been started.
	var rest []OrderEvent
	for {
		select {
		case e := <-d.inputCh:
			rest = append(rest, e)
		default:
			d.flush(rest)
			return
		}
	}
}
