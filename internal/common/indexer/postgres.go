package indexer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/lib/pq"

	"github.com/project-tktt/go-techwatch/internal/domain"
)

// PostgresIndexer stores postings and aggregate statistics in PostgreSQL
type PostgresIndexer struct {
	db            *sql.DB
	postingsTable string
	statsTable    string
}

// NewPostgresIndexer opens the connection and ensures both tables exist
func NewPostgresIndexer(connStr, postingsTable, statsTable string) (*PostgresIndexer, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	idx := &PostgresIndexer{
		db:            db,
		postingsTable: postingsTable,
		statsTable:    statsTable,
	}

	if err := idx.ensureTables(); err != nil {
		return nil, fmt.Errorf("ensure tables: %w", err)
	}

	return idx, nil
}

func (i *PostgresIndexer) ensureTables() error {
	postings := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			source_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			company_name TEXT,
			city TEXT,
			postal_code TEXT,
			department TEXT,
			contract_type TEXT,
			contract_label TEXT,
			experience TEXT,
			rome_code TEXT,
			rome_label TEXT,
			alternance BOOLEAN DEFAULT FALSE,
			source TEXT,
			source_url TEXT,
			skills TEXT[],
			processed BOOLEAN DEFAULT FALSE,
			processed_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE,
			updated_at TIMESTAMP WITH TIME ZONE,
			collected_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`, i.postingsTable)

	if _, err := i.db.Exec(postings); err != nil {
		return err
	}

	stats := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			source TEXT NOT NULL,
			period TEXT NOT NULL,
			analyzed_at TIMESTAMP WITH TIME ZONE,
			total_postings INTEGER,
			stats JSONB,
			PRIMARY KEY (source, period)
		)
	`, i.statsTable)

	_, err := i.db.Exec(stats)
	return err
}

const postingColumns = `
	source_id, title, description, company_name, city, postal_code,
	department, contract_type, contract_label, experience, rome_code,
	rome_label, alternance, source, source_url, skills, processed,
	processed_at, created_at, updated_at, collected_at`

func (i *PostgresIndexer) upsertQuery() string {
	return fmt.Sprintf(`
		INSERT INTO %s (%s) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21
		)
		ON CONFLICT (source_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			company_name = EXCLUDED.company_name,
			city = EXCLUDED.city,
			postal_code = EXCLUDED.postal_code,
			department = EXCLUDED.department,
			contract_type = EXCLUDED.contract_type,
			contract_label = EXCLUDED.contract_label,
			experience = EXCLUDED.experience,
			rome_code = EXCLUDED.rome_code,
			rome_label = EXCLUDED.rome_label,
			alternance = EXCLUDED.alternance,
			source_url = EXCLUDED.source_url,
			skills = EXCLUDED.skills,
			processed = EXCLUDED.processed,
			processed_at = EXCLUDED.processed_at,
			updated_at = EXCLUDED.updated_at,
			collected_at = EXCLUDED.collected_at
	`, i.postingsTable, postingColumns)
}

func postingArgs(p *domain.Posting) []any {
	var processedAt any
	if !p.ProcessedAt.IsZero() {
		processedAt = p.ProcessedAt
	}
	var updatedAt any
	if !p.UpdatedAt.IsZero() {
		updatedAt = p.UpdatedAt
	}
	return []any{
		p.SourceID, p.Title, p.Description, p.CompanyName, p.City, p.PostalCode,
		p.Department, p.ContractType, p.ContractLabel, p.Experience, p.RomeCode,
		p.RomeLabel, p.Alternance, p.Source, p.SourceURL, pq.Array(p.Skills), p.Processed,
		processedAt, p.CreatedAt, updatedAt, p.CollectedAt,
	}
}

// Index upserts a single posting
func (i *PostgresIndexer) Index(ctx context.Context, posting *domain.Posting) error {
	_, err := i.db.ExecContext(ctx, i.upsertQuery(), postingArgs(posting)...)
	return err
}

// BulkIndex upserts multiple postings inside one transaction
func (i *PostgresIndexer) BulkIndex(ctx context.Context, postings []*domain.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, i.upsertQuery())
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, posting := range postings {
		if _, err := stmt.ExecContext(ctx, postingArgs(posting)...); err != nil {
			log.Printf("Error indexing posting %s: %v", posting.SourceID, err)
			continue
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// FetchAnalyzed returns processed postings of a source for aggregation
func (i *PostgresIndexer) FetchAnalyzed(ctx context.Context, source string) ([]*domain.Posting, error) {
	query := fmt.Sprintf(`
		SELECT source_id, title, department, skills, created_at
		FROM %s
		WHERE source = $1 AND processed = TRUE
		ORDER BY created_at
	`, i.postingsTable)

	rows, err := i.db.QueryContext(ctx, query, source)
	if err != nil {
		return nil, fmt.Errorf("query analyzed postings: %w", err)
	}
	defer rows.Close()

	var postings []*domain.Posting
	for rows.Next() {
		p := &domain.Posting{Source: source, Processed: true}
		var skills pq.StringArray
		if err := rows.Scan(&p.SourceID, &p.Title, &p.Department, &skills, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan posting: %w", err)
		}
		p.Skills = []string(skills)
		postings = append(postings, p)
	}

	return postings, rows.Err()
}

// SaveStats upserts the aggregate statistics for (source, period)
func (i *PostgresIndexer) SaveStats(ctx context.Context, stats *domain.AggregateStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (source, period, analyzed_at, total_postings, stats)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source, period) DO UPDATE SET
			analyzed_at = EXCLUDED.analyzed_at,
			total_postings = EXCLUDED.total_postings,
			stats = EXCLUDED.stats
	`, i.statsTable)

	_, err = i.db.ExecContext(ctx, query, stats.Source, stats.Period, stats.AnalyzedAt, stats.TotalPostings, payload)
	return err
}

// Close closes the database connection
func (i *PostgresIndexer) Close() error {
	return i.db.Close()
}
