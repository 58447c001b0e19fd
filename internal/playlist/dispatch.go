package playlist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"smartplaylist/internal/adapters"
)

// FailurePolicy decides what a batch does when one of its slots fails.
type FailurePolicy int

const (
	// FailFast cancels the siblings and fails the batch with the first error.
	FailFast FailurePolicy = iota
	// BestEffort logs the failure and drops the failed slot.
	BestEffort
)

// ParseFailurePolicy maps "skip" to BestEffort and anything else to FailFast.
func ParseFailurePolicy(s string) FailurePolicy {
	if strings.EqualFold(strings.TrimSpace(s), "skip") {
		return BestEffort
	}
	return FailFast
}

func (p FailurePolicy) String() string {
	if p == BestEffort {
		return "skip"
	}
	return "fail"
}

// DefaultMaxPasses bounds the resolve+flatten loop. A similar-artist entry
// needs two passes; the rest is headroom.
const DefaultMaxPasses = 4

// Dispatcher resolves queues against the metadata services. Resolution is
// concurrent, but results always keep the position of the element they
// came from.
type Dispatcher struct {
	catalog     adapters.Catalog
	charts      adapters.Charts
	logger      *zap.Logger
	policy      FailurePolicy
	concurrency int
	maxPasses   int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithPolicy sets the failure policy.
func WithPolicy(policy FailurePolicy) Option {
	return func(d *Dispatcher) { d.policy = policy }
}

// WithConcurrency caps concurrent resolutions per batch. Zero is unbounded.
func WithConcurrency(n int) Option {
	return func(d *Dispatcher) { d.concurrency = n }
}

// WithMaxPasses bounds the resolve+flatten loop.
func WithMaxPasses(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxPasses = n
		}
	}
}

// NewDispatcher creates a dispatcher. charts may be nil when Last.fm is not
// configured; entries that need it then fail.
func NewDispatcher(catalog adapters.Catalog, charts adapters.Charts, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		catalog:   catalog,
		charts:    charts,
		logger:    zap.NewNop(),
		policy:    FailFast,
		maxPasses: DefaultMaxPasses,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) requireCharts() (adapters.Charts, error) {
	if d.charts == nil {
		return nil, fmt.Errorf("last.fm: %w", adapters.ErrNotConfigured)
	}
	return d.charts, nil
}

// Dispatch runs one pass: every element is resolved concurrently and the
// results are reassembled in the original order. Nested queues are
// dispatched recursively. The returned queue may itself contain queues.
func (d *Dispatcher) Dispatch(ctx context.Context, q *Queue) (*Queue, error) {
	results := make([]Element, len(q.elements))

	g, gctx := errgroup.WithContext(ctx)
	if d.concurrency > 0 {
		g.SetLimit(d.concurrency)
	}
	for i, el := range q.elements {
		g.Go(func() error {
			res, err := el.Resolve(gctx, d)
			if err != nil {
				if d.policy == BestEffort && ctx.Err() == nil {
					d.logger.Warn("dropping entry that failed to resolve",
						zap.Int("position", i), zap.Error(err))
					return nil
				}
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := NewQueue()
	for _, res := range results {
		if res != nil {
			out.Add(res)
		}
	}
	return out, nil
}

// Resolve repeats Dispatch and Flatten until the queue holds only resolved
// tracks. Whatever is still unresolved after the pass limit is dropped.
func (d *Dispatcher) Resolve(ctx context.Context, q *Queue) (*Queue, error) {
	current := q.Flatten()
	for pass := 1; !current.IsResolved(); pass++ {
		if pass > d.maxPasses {
			resolved := resolvedTracks(current)
			d.logger.Warn("pass limit reached, dropping unresolved entries",
				zap.Int("passes", d.maxPasses),
				zap.Int("dropped", current.Len()-len(resolved)))
			return NewQueue(resolved...), nil
		}

		start := time.Now()
		next, err := d.Dispatch(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("resolve pass %d: %w", pass, err)
		}
		current = next.Flatten()
		d.logger.Debug("resolve pass complete",
			zap.Int("pass", pass),
			zap.Int("elements", current.Len()),
			zap.Duration("took", time.Since(start)))
	}
	return current, nil
}

func resolvedTracks(q *Queue) []Element {
	var out []Element
	for _, t := range q.Tracks() {
		if t.IsResolved() {
			out = append(out, t)
		}
	}
	return out
}

// Each runs fn on every track concurrently. Under BestEffort a failing
// track is logged and kept as it is.
func (d *Dispatcher) Each(ctx context.Context, tracks []*Track, fn func(context.Context, *Track) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if d.concurrency > 0 {
		g.SetLimit(d.concurrency)
	}
	for _, t := range tracks {
		g.Go(func() error {
			err := fn(gctx, t)
			if err != nil && d.policy == BestEffort && ctx.Err() == nil {
				d.logger.Warn("track update failed", zap.Stringer("track", t), zap.Error(err))
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
