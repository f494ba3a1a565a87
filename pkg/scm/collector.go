package scm

import (
	"sync"

	"golang.org/x/exp/slices"
)

// CollectorState tracks the collector's lifecycle. A collector starts
// Collecting and is sealed exactly once, as Complete or as Cancelled.
type CollectorState uint8

const (
	Collecting CollectorState = iota
	Complete
	Cancelled
)

var collectorStateString = map[CollectorState]string{
	Collecting: "collecting",
	Complete:   "complete",
	Cancelled:  "cancelled",
}

func (s CollectorState) String() string {
	text, ok := collectorStateString[s]
	if !ok {
		text = "unknown"
	}
	return text
}

// Observer receives accepted heads while a fetch cycle runs. ShouldContinue
// is consulted before every connector call; once it reports false the cycle
// stops issuing new work. Cancellation is cooperative, never preemptive:
// in-flight calls complete.
type Observer interface {
	Observe(head Head, rev Revision)
	ShouldContinue() bool
}

// Collector is the standard Observer: it accumulates head to revision pairs
// in observation order, last write winning per head identity. Safe for
// concurrent observation.
type Collector struct {
	mu      sync.Mutex
	order   []Head
	revs    map[Head]Revision
	state   CollectorState
	stopped bool
	limit   int // 0 means unlimited
}

// NewCollector returns a collector that accumulates until the fetch cycle
// completes or Stop is called.
func NewCollector() *Collector {
	return &Collector{revs: make(map[Head]Revision)}
}

// NewLimitCollector returns a collector that stops the cycle after n
// observations. With n of 1 it answers "does this repository have anything
// to build" without enumerating the rest.
func NewLimitCollector(n int) *Collector {
	return &Collector{revs: make(map[Head]Revision), limit: n}
}

// Observe records rev for head. A head observed twice keeps its original
// position and takes the newer revision.
func (c *Collector) Observe(head Head, rev Revision) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Collecting {
		return
	}

	if _, seen := c.revs[head]; !seen {
		if c.limit > 0 && len(c.revs) >= c.limit {
			return
		}
		c.order = append(c.order, head)
	}
	c.revs[head] = rev

	if c.limit > 0 && len(c.revs) >= c.limit {
		c.stopped = true
	}
}

// Stop requests cooperative cancellation of the running cycle.
func (c *Collector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
}

func (c *Collector) ShouldContinue() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Collecting && !c.stopped
}

// Finish seals the collector once the fetch cycle has returned: Cancelled if
// the cycle was stopped early, Complete otherwise. Sealing twice is a no-op.
func (c *Collector) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Collecting {
		return
	}
	if c.stopped {
		c.state = Cancelled
	} else {
		c.state = Complete
	}
}

// State returns the lifecycle state.
func (c *Collector) State() CollectorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Result returns the final head to revision mapping. It is nil until the
// collector is sealed by Finish; partial results collected before a
// cancellation are included.
func (c *Collector) Result() map[Head]Revision {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Collecting {
		return nil
	}
	result := make(map[Head]Revision, len(c.revs))
	for head, rev := range c.revs {
		result[head] = rev
	}
	return result
}

// Heads returns the observed heads in insertion order; nil until sealed.
func (c *Collector) Heads() []Head {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Collecting {
		return nil
	}
	return slices.Clone(c.order)
}
