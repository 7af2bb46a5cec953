package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/project-tktt/go-techwatch/internal/common/cleaner"
	"github.com/project-tktt/go-techwatch/internal/common/indexer"
	"github.com/project-tktt/go-techwatch/internal/common/matcher"
	"github.com/project-tktt/go-techwatch/internal/common/normalizer"
	"github.com/project-tktt/go-techwatch/internal/config"
	"github.com/project-tktt/go-techwatch/internal/domain"
	"github.com/project-tktt/go-techwatch/internal/module/worker"
	"github.com/project-tktt/go-techwatch/internal/pipeline"
	"github.com/project-tktt/go-techwatch/internal/queue"
	"github.com/project-tktt/go-techwatch/internal/taxonomy"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Posting Worker Service")

	_ = godotenv.Load()
	cfg := config.Load()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	log.Println("Redis connected")

	idx, closeIdx, err := buildIndexer(ctx, cfg)
	if err != nil {
		log.Fatalf("Indexer setup failed: %v", err)
	}
	defer closeIdx()

	// Taxonomy problems are fatal before any posting is processed
	tax, err := loadTaxonomy(cfg.TaxonomyPath)
	if err != nil {
		log.Fatalf("Taxonomy load failed: %v", err)
	}
	log.Printf("Taxonomy loaded: %d categories, %d skills", len(tax.Categories), tax.SkillCount())

	match, err := matcher.NewMatcher(tax)
	if err != nil {
		log.Fatalf("Matcher build failed: %v", err)
	}

	pipe := pipeline.New(cleaner.NewCleaner(), normalizer.NewNormalizer(), match, nil)
	consumer := queue.NewConsumer(rdb, cfg.Redis.PostingQueue, 5*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		w := worker.NewWorker(consumer, pipe, idx, worker.Config{
			Concurrency: cfg.Worker.Concurrency,
			BatchSize:   cfg.Worker.BatchSize,
		})
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("Worker error: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutdown signal received, stopping...")
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Graceful shutdown complete")
	case <-time.After(30 * time.Second):
		log.Println("Shutdown timeout, forcing exit")
	}
}

func loadTaxonomy(path string) (*domain.Taxonomy, error) {
	if path == "" {
		return taxonomy.Default()
	}
	return taxonomy.Load(path)
}

// buildIndexer selects the storage backend per INDEXER_BACKEND: postgres
// (default), elasticsearch, or both fanned out.
func buildIndexer(ctx context.Context, cfg *config.Config) (indexer.Indexer, func(), error) {
	backend := cfg.Worker.IndexerBackend

	var pg *indexer.PostgresIndexer
	var err error
	if backend == "postgres" || backend == "both" {
		pg, err = indexer.NewPostgresIndexer(cfg.Postgres.ConnectionString, cfg.Postgres.PostingsTable, cfg.Postgres.StatsTable)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		log.Println("PostgreSQL connected")
	}

	var es *indexer.ElasticsearchIndexer
	if backend == "elasticsearch" || backend == "both" {
		es, err = indexer.NewElasticsearchIndexer(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Index)
		if err != nil {
			if pg != nil {
				pg.Close()
			}
			return nil, nil, fmt.Errorf("elasticsearch: %w", err)
		}
		if err := es.EnsureIndex(ctx); err != nil {
			if pg != nil {
				pg.Close()
			}
			return nil, nil, fmt.Errorf("ensure index: %w", err)
		}
		log.Printf("Elasticsearch connected, index: %s", cfg.Elasticsearch.Index)
	}

	closeAll := func() {
		if pg != nil {
			pg.Close()
		}
	}

	switch {
	case pg != nil && es != nil:
		return indexer.NewMulti(pg, es), closeAll, nil
	case es != nil:
		return es, closeAll, nil
	case pg != nil:
		return pg, closeAll, nil
	default:
		return nil, nil, fmt.Errorf("unknown indexer backend %q", backend)
	}
}
