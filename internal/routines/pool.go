// Package routines provides a bounded pool of go-routines.
package routines

import "sync"

// Pool runs queued functions concurrently in a fixed number of go-routines.
type Pool struct {
	work chan func()
	wg   sync.WaitGroup

	closeOnce sync.Once
}

// NewPool creates a pool with workers go-routines.
// If workers is <1, 1 go-routine is started.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}

	p := Pool{
		work: make(chan func()),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return &p
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for fn := range p.work {
		fn()
	}
}

// Queue schedules fn to be run by the pool. It blocks until a go-routine
// is available.
// Calling Queue after Wait panics.
func (p *Pool) Queue(fn func()) {
	p.work <- fn
}

// Wait waits until all queued functions finished and terminates the
// go-routines of the pool.
func (p *Pool) Wait() {
	p.closeOnce.Do(func() {
		close(p.work)
	})

	p.wg.Wait()
}
