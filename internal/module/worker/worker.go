package worker

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/project-tktt/go-techwatch/internal/common/indexer"
	"github.com/project-tktt/go-techwatch/internal/pipeline"
	"github.com/project-tktt/go-techwatch/internal/queue"
)

// Worker processes raw postings from the queue and indexes the results
type Worker struct {
	consumer *queue.Consumer
	pipe     *pipeline.Pipeline
	indexer  indexer.Indexer

	batchSize   int
	concurrency int
}

// Config holds worker configuration
type Config struct {
	Concurrency int
	BatchSize   int
}

// NewWorker creates a new worker
func NewWorker(consumer *queue.Consumer, pipe *pipeline.Pipeline, idx indexer.Indexer, cfg Config) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}

	return &Worker{
		consumer:    consumer,
		pipe:        pipe,
		indexer:     idx,
		batchSize:   cfg.BatchSize,
		concurrency: cfg.Concurrency,
	}
}

// Run starts the worker pool
func (w *Worker) Run(ctx context.Context) error {
	log.Printf("Starting worker pool with %d workers", w.concurrency)

	var wg sync.WaitGroup
	errChan := make(chan error, w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			if err := w.runSingle(ctx, workerID); err != nil {
				errChan <- fmt.Errorf("worker %d: %w", workerID, err)
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errChan:
		return err
	case <-done:
		return nil
	}
}

func (w *Worker) runSingle(ctx context.Context, workerID int) error {
	log.Printf("Worker %d started", workerID)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Worker %d stopping", workerID)
			return nil
		default:
		}

		// ConsumeBatch blocks on BRPOP for the first item, so no CPU spinning
		raws, err := w.consumer.ConsumeBatch(ctx, w.batchSize)
		if err != nil {
			log.Printf("Worker %d consume error: %v", workerID, err)
			continue
		}

		if len(raws) == 0 {
			continue // Timeout from BRPOP, try again
		}

		postings, report := w.pipe.ProcessBatch(ctx, raws)
		log.Printf("Worker %d: %d received, %d analyzed, %d with skills, %d failed",
			workerID, report.Received, report.Analyzed, report.WithSkills, len(report.Failed))
		for _, failure := range report.Failed {
			log.Printf("Worker %d: skipped posting %q: %s", workerID, failure.SourceID, failure.Reason)
		}

		if len(postings) > 0 {
			if err := w.indexer.BulkIndex(ctx, postings); err != nil {
				log.Printf("Worker %d index error: %v", workerID, err)
			} else {
				log.Printf("Worker %d indexed %d postings", workerID, len(postings))
			}
		}
	}
}
