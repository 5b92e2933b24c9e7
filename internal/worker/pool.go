package worker

import (
	"context"
	"sync"

	"regimeforge-go/internal/model"
)

// Scanner produces a signal for one coin
type Scanner interface {
	Scan(ctx context.Context, coin string) *model.Signal
}

// ScanResult pairs a coin with its analysis result
type ScanResult struct {
	Coin   string
	Signal *model.Signal
}

// Pool fans coin scans out over a fixed number of workers
type Pool struct {
	workers int
	jobs    chan string
	results chan ScanResult
	wg      sync.WaitGroup
	scanner Scanner
}

// NewPool creates a scan pool
func NewPool(workers int, scanner Scanner) *Pool {
	return &Pool{
		workers: workers,
		jobs:    make(chan string, 100),
		results: make(chan ScanResult, 100),
		scanner: scanner,
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for coin := range p.jobs {
		signal := p.scanner.Scan(ctx, coin)
		if signal != nil {
			p.results <- ScanResult{Coin: coin, Signal: signal}
		}
	}
}

// AddJob queues a coin for scanning
func (p *Pool) AddJob(coin string) {
	p.jobs <- coin
}

// Wait closes the job queue, waits for the workers and returns all results
func (p *Pool) Wait() []ScanResult {
	close(p.jobs)
	p.wg.Wait()
	close(p.results)

	results := make([]ScanResult, 0, len(p.results))
	for r := range p.results {
		results = append(results, r)
	}
	return results
}
