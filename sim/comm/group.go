package comm

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/ocean-sim/ocean-sim/sim"
)

// Group runs n ranks as goroutines in one process and connects them with
// in-memory collectives. If any rank returns an error the others are
// released from pending collectives with sim.ErrComm.
type Group struct {
	size int
	x    *exchange
}

// NewGroup creates an n-rank group.
func NewGroup(n int) (*Group, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: group needs at least one rank, got %d", sim.ErrConfig, n)
	}
	return &Group{size: n, x: newExchange(n)}, nil
}

func (g *Group) Size() int { return g.size }

// Run calls fn once per rank and waits for every rank to return. It returns
// the first error.
func (g *Group) Run(ctx context.Context, fn func(ctx context.Context, c Communicator) error) error {
	eg, ctx := errgroup.WithContext(ctx)
	for r := 0; r < g.size; r++ {
		c := &rankComm{rank: r, g: g}
		eg.Go(func() error {
			err := fn(ctx, c)
			if err != nil {
				g.x.abort(fmt.Errorf("%w: rank %d failed", sim.ErrComm, c.rank))
			}
			return err
		})
	}
	return eg.Wait()
}

type rankComm struct {
	rank int
	g    *Group
}

func (c *rankComm) Rank() int { return c.rank }
func (c *rankComm) Size() int { return c.g.size }

func (c *rankComm) gatherVectors(ctx context.Context, vals []float64) ([][]float64, error) {
	all, err := c.g.x.do(ctx, c.rank, append([]float64(nil), vals...))
	if err != nil {
		return nil, err
	}
	parts := make([][]float64, len(all))
	for r, v := range all {
		parts[r] = v.([]float64)
	}
	return parts, nil
}

func (c *rankComm) Max(ctx context.Context, vals []float64) ([]float64, error) {
	parts, err := c.gatherVectors(ctx, vals)
	if err != nil {
		return nil, err
	}
	return reduce(parts, floats.Max)
}

func (c *rankComm) Min(ctx context.Context, vals []float64) ([]float64, error) {
	parts, err := c.gatherVectors(ctx, vals)
	if err != nil {
		return nil, err
	}
	return reduce(parts, floats.Min)
}

func (c *rankComm) Sum(ctx context.Context, vals []float64) ([]float64, error) {
	parts, err := c.gatherVectors(ctx, vals)
	if err != nil {
		return nil, err
	}
	return reduce(parts, floats.Sum)
}

func (c *rankComm) SumOrdered(ctx context.Context, width int, items []Keyed) ([]float64, error) {
	all, err := c.g.x.do(ctx, c.rank, items)
	if err != nil {
		return nil, err
	}
	var gathered []Keyed
	for _, v := range all {
		gathered = append(gathered, v.([]Keyed)...)
	}
	return sumOrdered(width, gathered)
}

// exchange is a reusable all-gather barrier. Each generation completes when
// every rank has deposited a contribution; all ranks then read the same slice.
type exchange struct {
	mu      sync.Mutex
	n       int
	arrived int
	slots   []any
	result  []any
	done    chan struct{}
	err     error
}

func newExchange(n int) *exchange {
	return &exchange{n: n, slots: make([]any, n), done: make(chan struct{})}
}

func (x *exchange) do(ctx context.Context, rank int, v any) ([]any, error) {
	x.mu.Lock()
	if x.err != nil {
		err := x.err
		x.mu.Unlock()
		return nil, err
	}
	x.slots[rank] = v
	x.arrived++
	if x.arrived == x.n {
		x.result = x.slots
		x.slots = make([]any, x.n)
		x.arrived = 0
		close(x.done)
		x.done = make(chan struct{})
		res := x.result
		x.mu.Unlock()
		return res, nil
	}
	done := x.done
	x.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		x.abort(fmt.Errorf("%w: collective cancelled: %v", sim.ErrComm, ctx.Err()))
		return nil, fmt.Errorf("%w: rank %d: %v", sim.ErrComm, rank, ctx.Err())
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if x.err != nil {
		return nil, x.err
	}
	return x.result, nil
}

// abort poisons the exchange and releases every waiter.
func (x *exchange) abort(err error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.err != nil {
		return
	}
	x.err = err
	close(x.done)
}
