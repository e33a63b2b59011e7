package workerpool

import (
	"context"
	"fmt"

	"github.com/panjf2000/ants/v2"
)

// Pool runs long-lived identity tasks on a bounded ants pool. Size must cover
// the number of tasks expected to run at once, Submit blocks otherwise.
type Pool struct {
	pool *ants.Pool
}

func New(size int) (*Pool, error) {
	p, err := ants.NewPool(size, ants.WithNonblocking(false))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Pool{pool: p}, nil
}

// Submit schedules job with ctx. A job whose context is already done when a
// worker picks it up is skipped.
func (p *Pool) Submit(ctx context.Context, job func(ctx context.Context)) error {
	return p.pool.Submit(func() {
		if ctx.Err() != nil {
			return
		}
		job(ctx)
	})
}

func (p *Pool) Running() int {
	return p.pool.Running()
}

func (p *Pool) Stop() {
	p.pool.Release()
}

func (p *Pool) Workers() int {
	return p.pool.Cap()
}
