package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/project-tktt/go-techwatch/internal/common/aggregator"
	"github.com/project-tktt/go-techwatch/internal/common/indexer"
	"github.com/project-tktt/go-techwatch/internal/config"
	"github.com/project-tktt/go-techwatch/internal/domain"
	"github.com/project-tktt/go-techwatch/internal/taxonomy"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	granularity := flag.String("granularity", "month", "time-series bucket size: day, month or quarter")
	source := flag.String("source", string(domain.SourceFranceTravail), "posting source to aggregate")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()

	var tax *domain.Taxonomy
	var err error
	if cfg.TaxonomyPath != "" {
		tax, err = taxonomy.Load(cfg.TaxonomyPath)
	} else {
		tax, err = taxonomy.Default()
	}
	if err != nil {
		log.Fatalf("Taxonomy load failed: %v", err)
	}

	pg, err := indexer.NewPostgresIndexer(cfg.Postgres.ConnectionString, cfg.Postgres.PostingsTable, cfg.Postgres.StatsTable)
	if err != nil {
		log.Fatalf("PostgreSQL connection failed: %v", err)
	}
	defer pg.Close()

	postings, err := pg.FetchAnalyzed(ctx, *source)
	if err != nil {
		log.Fatalf("Fetch analyzed postings failed: %v", err)
	}
	log.Printf("Loaded %d analyzed postings for %s", len(postings), *source)

	agg := aggregator.NewAggregator(tax)
	stats := agg.Aggregate(postings, *source, aggregator.Granularity(*granularity))

	if err := pg.SaveStats(ctx, stats); err != nil {
		log.Fatalf("Save stats failed: %v", err)
	}

	logSummary(stats)
}

func logSummary(stats *domain.AggregateStats) {
	log.Printf("Statistics for %s, period %s: %d postings with skills", stats.Source, stats.Period, stats.TotalPostings)

	top := stats.TopSkills
	if len(top) > 10 {
		top = top[:10]
	}
	for i, sc := range top {
		log.Printf("  %2d. %-20s %4d postings (%.1f%%)", i+1, sc.Name, sc.Count, sc.Percentage)
	}

	for category, cs := range stats.Categories {
		if cs.PostingCount == 0 {
			continue
		}
		log.Printf("  category %-24s %4d postings (%.1f%%), %d/%d skills detected",
			category, cs.PostingCount, cs.Percentage, cs.SkillsDetected, cs.SkillsTotal)
	}
}
