package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/civilnews/civic-engine/pkg/repositories"
	"github.com/civilnews/civic-engine/pkg/sources"
)

// Fetcher returns one batch of raw records from an upstream feed.
type Fetcher interface {
	Fetch(ctx context.Context) ([]any, error)
}

// RunResult summarizes a single pipeline run.
type RunResult struct {
	Source      string `json:"source"`
	Fetched     int    `json:"fetched"`
	Transformed int    `json:"transformed"`
	Inserted    int    `json:"inserted"`
	Updated     int    `json:"updated"`
}

// Pipeline pulls raw records from a feed, normalizes them into events and
// persists the batch. Individual records that fail to transform are skipped;
// fetch and persistence failures abort the run.
type Pipeline struct {
	transformer sources.Transformer
	fetcher     Fetcher
	events      repositories.EventRepository
	logger      *zap.Logger
}

func NewPipeline(transformer sources.Transformer, fetcher Fetcher, events repositories.EventRepository, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		transformer: transformer,
		fetcher:     fetcher,
		events:      events,
		logger:      logger.Named("pipeline"),
	}
}

func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	source := p.transformer.Source()

	raws, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s records: %w", source, err)
	}

	events := sources.TransformBatch(p.logger, p.transformer, raws)

	upserted, err := p.events.Upsert(ctx, events)
	if err != nil {
		return nil, fmt.Errorf("failed to persist %s events: %w", source, err)
	}

	result := &RunResult{
		Source:      source,
		Fetched:     len(raws),
		Transformed: len(events),
		Inserted:    upserted.Inserted,
		Updated:     upserted.Updated,
	}
	p.logger.Info("pipeline run complete",
		zap.String("source", result.Source),
		zap.Int("fetched", result.Fetched),
		zap.Int("transformed", result.Transformed),
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated))
	return result, nil
}
