// Package pipeline runs one batch of raw postings through the analysis
// chain: clean, validate, normalize, extract skills, deduplicate. One
// malformed record is skipped and reported, it never aborts the batch.
package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/project-tktt/go-techwatch/internal/common/cleaner"
	"github.com/project-tktt/go-techwatch/internal/common/dedup"
	"github.com/project-tktt/go-techwatch/internal/common/matcher"
	"github.com/project-tktt/go-techwatch/internal/common/normalizer"
	"github.com/project-tktt/go-techwatch/internal/domain"
)

// RecordError reports one posting that could not be processed
type RecordError struct {
	SourceID string `json:"source_id"`
	Reason   string `json:"reason"`
}

// Report summarizes one pipeline run
type Report struct {
	Received   int           `json:"received"`
	Duplicates int           `json:"duplicates"`
	Analyzed   int           `json:"analyzed"`
	WithSkills int           `json:"with_skills"`
	Failed     []RecordError `json:"failed,omitempty"`
}

// Pipeline chains the per-posting processing steps
type Pipeline struct {
	cleaner    *cleaner.Cleaner
	normalizer *normalizer.Normalizer
	matcher    *matcher.Matcher
	dedup      *dedup.Deduplicator // Optional; nil when dedup happened upstream
}

// New creates a pipeline. Pass a nil deduplicator when identifiers were
// already deduplicated at collection time.
func New(clean *cleaner.Cleaner, norm *normalizer.Normalizer, match *matcher.Matcher, dd *dedup.Deduplicator) *Pipeline {
	return &Pipeline{
		cleaner:    clean,
		normalizer: norm,
		matcher:    match,
		dedup:      dd,
	}
}

// ProcessBatch runs a batch through the chain and returns the analyzed
// postings plus a run report. Validation failures are collected per record;
// everything else in the batch continues.
func (p *Pipeline) ProcessBatch(ctx context.Context, raws []*domain.RawPosting) ([]*domain.Posting, *Report) {
	report := &Report{Received: len(raws)}
	postings := make([]*domain.Posting, 0, len(raws))

	for _, raw := range raws {
		if p.dedup != nil && !p.dedup.IsNew(raw.SourceID) {
			report.Duplicates++
			continue
		}

		if raw.RawData != nil {
			raw.RawData = p.cleaner.CleanRawData(raw.RawData)
		}

		posting, err := p.normalizer.Normalize(raw)
		if err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				report.Failed = append(report.Failed, RecordError{SourceID: verr.SourceID, Reason: verr.Error()})
				continue
			}
			report.Failed = append(report.Failed, RecordError{SourceID: raw.SourceID, Reason: err.Error()})
			continue
		}

		p.attachSkills(posting, raw)
		report.Analyzed++
		if posting.HasSkills() {
			report.WithSkills++
		}

		if p.dedup != nil {
			if err := p.dedup.MarkSeen(ctx, posting.SourceID); err != nil {
				log.Printf("[Pipeline] Mark seen error for %s: %v", posting.SourceID, err)
			}
		}

		postings = append(postings, posting)
	}

	return postings, report
}

// attachSkills extracts skills from the posting's free text and from the
// structured competence labels the source API provides, merged with set
// semantics. Finding no skill is a normal outcome.
func (p *Pipeline) attachSkills(posting *domain.Posting, raw *domain.RawPosting) {
	text := p.cleaner.CleanToText(posting.Title + " " + posting.Description)
	fromText := p.matcher.ExtractText(text)

	var fromLabels []matcher.Match
	if raw.RawData != nil {
		fromLabels = p.matcher.MatchLabels(normalizer.CompetenceLabels(raw.RawData))
	}

	posting.Skills = matcher.Names(matcher.Merge(fromText, fromLabels))
	posting.Processed = true
	posting.ProcessedAt = time.Now()
}
