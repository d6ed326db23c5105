// Package calculator holds the live state behind the savings calculator form:
// the current selections, a debounced recompute and the subscribers that
// render each result.
package calculator

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/pricing"
)

// Update is one recompute outcome. Revision identifies the selection state
// it was computed from.
type Update struct {
	Revision uint64         `json:"revision"`
	Params   pricing.Params `json:"params"`
	Result   pricing.Result `json:"result"`
	Err      error          `json:"-"`
}

type EngineFunc func(pricing.Params) (pricing.Result, error)

type Option func(*Controller)

// WithEngine replaces the pricing engine, mainly for tests.
func WithEngine(fn EngineFunc) Option {
	return func(c *Controller) { c.engine = fn }
}

func WithParams(p pricing.Params) Option {
	return func(c *Controller) { c.params = p }
}

type Controller struct {
	mu       sync.Mutex
	engine   EngineFunc
	debounce *Debouncer
	params   pricing.Params
	revision uint64
	nextSub  int
	subs     map[int]func(Update)
	closed   bool
}

func NewController(delay time.Duration, opts ...Option) *Controller {
	c := &Controller{
		engine:   validatedEstimate,
		debounce: NewDebouncer(delay),
		params:   pricing.DefaultParams(),
		subs:     make(map[int]func(Update)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func validatedEstimate(p pricing.Params) (pricing.Result, error) {
	if err := p.Validate(); err != nil {
		return pricing.Result{}, err
	}
	return pricing.Estimate(p)
}

// Params returns the current selections and their revision.
func (c *Controller) Params() (pricing.Params, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params, c.revision
}

// Subscribe registers fn for every delivered update. The returned func removes it.
func (c *Controller) Subscribe(fn func(Update)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Update applies mutate to the selections and schedules a recompute.
func (c *Controller) Update(mutate func(*pricing.Params)) uint64 {
	c.mu.Lock()
	if c.closed {
		rev := c.revision
		c.mu.Unlock()
		return rev
	}
	mutate(&c.params)
	c.revision++
	rev := c.revision
	ready := c.params.MonthlyBill > 0 && c.params.RoofArea > 0
	c.mu.Unlock()

	if ready {
		c.debounce.Trigger(c.recompute)
	}
	return rev
}

// Compute runs the engine on the current selections right away and returns
// the outcome without notifying subscribers.
func (c *Controller) Compute() Update {
	p, rev := c.Params()
	res, err := c.engine(p)
	return Update{Revision: rev, Params: p, Result: res, Err: err}
}

func (c *Controller) recompute() {
	u := c.Compute()

	c.mu.Lock()
	if c.closed || u.Revision != c.revision {
		c.mu.Unlock()
		log.Debug().Uint64("revision", u.Revision).Msg("dropping stale calculator result")
		return
	}
	subs := make([]func(Update), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(u)
	}
}

// Close cancels any pending recompute and drops all subscribers.
func (c *Controller) Close() {
	c.debounce.Stop()
	c.mu.Lock()
	c.closed = true
	c.subs = map[int]func(Update){}
	c.mu.Unlock()
}
