package search

import (
	"sync"
	"time"
)

const DefaultDebounce = 300 * time.Millisecond

// Debouncer coalesces bursts of queries into one search that runs after the
// input has been quiet for the configured delay. A result whose query was
// superseded while it ran is dropped instead of delivered.
type Debouncer struct {
	mu         sync.Mutex
	delay      time.Duration
	run        func(Query) []Result
	deliver    func(Query, []Result)
	timer      *time.Timer
	generation uint64
}

func NewDebouncer(delay time.Duration, run func(Query) []Result, deliver func(Query, []Result)) *Debouncer {
	return &Debouncer{delay: delay, run: run, deliver: deliver}
}

// Trigger supersedes any pending or running query with q.
func (d *Debouncer) Trigger(q Query) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.generation++
	gen := d.generation
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen, q) })
}

// Stop cancels the pending query and discards any in-flight result.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.generation++
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer) fire(gen uint64, q Query) {
	if !d.isCurrent(gen) {
		return
	}
	results := d.run(q)
	if !d.isCurrent(gen) {
		return
	}
	d.deliver(q, results)
}

func (d *Debouncer) isCurrent(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return gen == d.generation
}
