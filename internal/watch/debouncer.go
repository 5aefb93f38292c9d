package watch

import (
	"context"
	"sync"
	"time"
)

// eventDebouncer batches events per path, keeping the latest one. A batch
// is flushed on the run goroutine once no event arrived for the debounce
// interval.
type eventDebouncer struct {
	mu       sync.Mutex
	events   map[string]eventType
	debounce time.Duration
	timer    *time.Timer
	stopped  bool
	fire     chan struct{}
	flush    func(map[string]eventType)
}

func newEventDebouncer(debounce time.Duration, flush func(map[string]eventType)) *eventDebouncer {
	return &eventDebouncer{
		events:   make(map[string]eventType),
		debounce: debounce,
		fire:     make(chan struct{}, 1),
		flush:    flush,
	}
}

func (d *eventDebouncer) add(path string, et eventType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	// A file created and then written in one batch is still a create.
	if prev, ok := d.events[path]; ok && prev == eventCreate && et == eventWrite {
		et = eventCreate
	}
	d.events[path] = et

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, func() {
		select {
		case d.fire <- struct{}{}:
		default:
		}
	})
}

func (d *eventDebouncer) take() map[string]eventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	events := d.events
	d.events = make(map[string]eventType)
	return events
}

func (d *eventDebouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *eventDebouncer) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.fire:
			if events := d.take(); len(events) > 0 {
				d.flush(events)
			}
		}
	}
}
