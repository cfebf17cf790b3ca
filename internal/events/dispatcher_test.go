package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"droneFoodDelivery/internal/logger"
)

type recordingPublisher struct {
	mu      sync.Mutex
	batches [][]OrderEvent
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, batch []OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := append([]OrderEvent(nil), batch...)
	p.batches = append(p.batches, cp)
	return p.err
}

func (p *recordingPublisher) events() []OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []OrderEvent
	for _, b := range p.batches {
		out = append(out, b...)
	}
	return out
}

func TestDispatcher_DeliversToAllPublishers(t *testing.T) {
	a, b := &recordingPublisher{}, &recordingPublisher{err: errors.New("broker down")}
	d := NewDispatcher(DispatcherConfig{BatchSize: 3, FlushInterval: 10 * time.Millisecond}, logger.Discard(), a, b)
	d.Start(2)

	for i := 1; i <= 7; i++ {
		d.Send(OrderEvent{Type: TypeOrderPlaced, OrderID: int64(i)})
	}
	require.Eventually(t, func() bool { return len(a.events()) == 7 }, time.Second, 5*time.Millisecond)
	d.Shutdown()

	// A failing publisher does not stop the others.
	assert.Len(t, b.events(), 7)
	for _, batch := range a.batches {
		assert.LessOrEqual(t, len(batch), 3)
	}
}

func TestDispatcher_ShutdownFlushesQueue(t *testing.T) {
	p := &recordingPublisher{}
	d := NewDispatcher(DispatcherConfig{BatchSize: 100, FlushInterval: time.Hour}, logger.Discard(), p)
	d.Start(1)
	for i := 0; i < 5; i++ {
		d.Send(OrderEvent{Type: TypeOrderPaid, OrderID: int64(i)})
	}
	d.Shutdown()
	assert.Len(t, p.events(), 5)

	// Events sent after shutdown are dropped, not panicking on a closed queue.
	d.Send(OrderEvent{OrderID: 99})
	d.Shutdown()
	assert.Equal(t, int64(1), d.Dropped())
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	p := &recordingPublisher{}
	d := NewDispatcher(DispatcherConfig{QueueSize: 2}, logger.Discard(), p)
	// No workers: the queue fills up.
	for i := 0; i < 5; i++ {
		d.Send(OrderEvent{OrderID: int64(i)})
	}
	assert.Equal(t, int64(3), d.Dropped())
}

func TestDispatcher_ShutdownWithoutWorkersPublishesQueue(t *testing.T) {
	p := &recordingPublisher{}
	d := NewDispatcher(DispatcherConfig{QueueSize: 4}, logger.Discard(), p)
	for i := 0; i < 3; i++ {
		d.Send(OrderEvent{OrderID: int64(i)})
	}
	d.Shutdown()
	assert.Len(t, p.events(), 3)
	assert.Zero(t, d.Dropped())
}

func TestDispatcher_SendRacingShutdownLosesNothing(t *testing.T) {
	const senders, perSender = 8, 50
	p := &recordingPublisher{}
	d := NewDispatcher(DispatcherConfig{QueueSize: senders * perSender, BatchSize: 7, FlushInterval: time.Millisecond}, logger.Discard(), p)
	d.Start(2)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			<-start
			for i := 0; i < perSender; i++ {
				d.Send(OrderEvent{OrderID: int64(s*perSender + i)})
			}
		}(s)
	}
	close(start)
	d.Shutdown()
	wg.Wait()

	// Every event is either published or counted as dropped.
	assert.Equal(t, senders*perSender, len(p.events())+int(d.Dropped()))
}
