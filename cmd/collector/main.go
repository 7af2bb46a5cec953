package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/project-tktt/go-techwatch/internal/collector"
	"github.com/project-tktt/go-techwatch/internal/collector/francetravail"
	"github.com/project-tktt/go-techwatch/internal/common/dedup"
	"github.com/project-tktt/go-techwatch/internal/config"
	"github.com/project-tktt/go-techwatch/internal/domain"
	"github.com/project-tktt/go-techwatch/internal/queue"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Posting Collector Service")

	// .env is optional; real deployments use environment variables
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

	ft, err := francetravail.NewCollector(ctx, francetravail.Config{
		ClientID:     cfg.FranceTravail.ClientID,
		ClientSecret: cfg.FranceTravail.ClientSecret,
		TokenURL:     cfg.FranceTravail.TokenURL,
		APIBaseURL:   cfg.FranceTravail.APIBaseURL,
		Scopes:       strings.Fields(cfg.FranceTravail.Scopes),
		RomeCode:     cfg.FranceTravail.RomeCode,
		RequestDelay: cfg.FranceTravail.RequestDelay,
		MaxPostings:  cfg.FranceTravail.MaxPostings,
	})
	if err != nil {
		log.Fatalf("France Travail collector init failed: %v", err)
	}

	collectors := []collector.Collector{ft}
	publisher := queue.NewPublisher(rdb, cfg.Redis.PostingQueue)

	// Fail fast if the seen-set is unreachable before the first run
	if _, err := dedup.NewDeduplicator(ctx, dedup.NewRedisStore(rdb, string(ft.Source()))); err != nil {
		log.Fatalf("Seen-state load failed: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go runCollectorScheduler(ctx, collectors, rdb, publisher)

	<-sigChan
	log.Println("Shutdown signal received, stopping...")
	cancel()
	log.Println("Collector stopped")
}

// runCollectorScheduler runs each collector sequentially at intervals
func runCollectorScheduler(ctx context.Context, collectors []collector.Collector, rdb *redis.Client, publisher *queue.Publisher) {
	// Run immediately on startup
	runAllCollectors(ctx, collectors, rdb, publisher)

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runAllCollectors(ctx, collectors, rdb, publisher)
		}
	}
}

func runAllCollectors(ctx context.Context, collectors []collector.Collector, rdb *redis.Client, publisher *queue.Publisher) {
	for _, c := range collectors {
		select {
		case <-ctx.Done():
			return
		default:
		}

		log.Printf("Running collector: %s", c.Source())

		// Fresh seen-set per run; a load failure aborts this run rather
		// than flooding the queue with already-known postings
		deduplicator, err := dedup.NewDeduplicator(ctx, dedup.NewRedisStore(rdb, string(c.Source())))
		if err != nil {
			log.Printf("Collector %s: %v - run aborted", c.Source(), err)
			continue
		}
		log.Printf("Collector %s: %d postings already known", c.Source(), deduplicator.SeenCount())

		var newPostings, duplicates, total int

		err = c.CollectWithCallback(ctx, func(postings []*domain.RawPosting) error {
			var fresh []*domain.RawPosting
			for _, posting := range postings {
				if !deduplicator.IsNew(posting.SourceID) {
					duplicates++
					continue
				}
				fresh = append(fresh, posting)
			}

			if len(fresh) > 0 {
				if err := publisher.PublishBatch(ctx, fresh); err != nil {
					log.Printf("Publish error: %v", err)
					return nil
				}
				for _, posting := range fresh {
					if err := deduplicator.MarkSeen(ctx, posting.SourceID); err != nil {
						log.Printf("Mark seen error: %v", err)
					}
				}
				newPostings += len(fresh)
			}
			total += len(postings)
			return nil
		})
		if err != nil {
			log.Printf("Collector %s error: %v", c.Source(), err)
		}

		log.Printf("Collector %s: %d total, %d new, %d duplicates", c.Source(), total, newPostings, duplicates)
	}
}
