package similarity

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
)

type Job interface {
	Execute(ctx context.Context) error
}

// WorkerPool runs independent per-quest recomputation jobs during admin
// rebuilds. The core itself stays synchronous; the pool only parallelizes
// across quests, which have no ordering requirement between them.
type WorkerPool struct {
	workers  int
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// creates a new worker pool with CPU-based sizing
func NewWorkerPool(ctx context.Context) *WorkerPool {
	totalCPU := runtime.NumCPU()
	systemReserve := totalCPU / 4
	if systemReserve < 1 {
		systemReserve = 1
	}
	size := totalCPU - systemReserve
	if size < 1 {
		size = 1
	}
	log.Info().
		Int("totalCPU", totalCPU).
		Int("workers", size).
		Msg("Worker pool initialized")
	poolCtx, cancel := context.WithCancel(ctx)

	pool := &WorkerPool{
		workers:  size,
		jobQueue: make(chan Job, size*2),
		ctx:      poolCtx,
		cancel:   cancel,
	}

	pool.start()

	return pool
}

func (p *WorkerPool) start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			if err := job.Execute(p.ctx); err != nil {
				log.Error().Err(err).Msg("Worker failed to execute job")
			}
		}
	}
}

// submits a job to the pool
func (p *WorkerPool) Submit(job Job) error {
	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.jobQueue <- job:
		return nil
	}
}

// closes the worker pool and waits for all workers to finish
func (p *WorkerPool) Close() {
	close(p.jobQueue)
	p.cancel()
	p.wg.Wait()
}

// returns the number of workers
func (p *WorkerPool) Size() int {
	return p.workers
}
