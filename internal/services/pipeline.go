package services

import (
	"context"
	"fmt"

	"ledgerdash/internal/core"
	"ledgerdash/internal/log"
	"ledgerdash/internal/schema"
	"ledgerdash/internal/sheets"
)

// Pipeline fetches one table and normalizes it. Nothing is kept between
// calls: every Load re-fetches the whole source.
type Pipeline struct {
	name       string
	source     sheets.RowSource
	normalizer *schema.Normalizer
	logger     *log.Logger
}

func NewPipeline(name string, source sheets.RowSource, normalizer *schema.Normalizer, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Discard()
	}
	return &Pipeline{
		name:       name,
		source:     source,
		normalizer: normalizer,
		logger:     logger.WithComponent(log.ComponentPipeline),
	}
}

// Name identifies the table, e.g. "ledger" or "bank".
func (p *Pipeline) Name() string { return p.name }

// Fields returns the canonical column order.
func (p *Pipeline) Fields() []string { return p.normalizer.Fields() }

// Load fetches and normalizes every row of the source.
func (p *Pipeline) Load(ctx context.Context) ([]core.Record, error) {
	raw, err := p.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", p.name, err)
	}
	records := p.normalizer.Normalize(raw)
	p.logger.DebugContext(ctx, "Rows normalized", log.FieldSource, p.name, log.FieldRows, len(records))
	return records, nil
}

// Select loads the table and keeps the records inside w.
func (p *Pipeline) Select(ctx context.Context, w core.Window) ([]core.Record, error) {
	records, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}
	scoped := w.Select(records)
	p.logger.DebugContext(ctx, "Rows selected", log.FieldSource, p.name, log.FieldWindow, w.String(), log.FieldRows, len(scoped))
	return scoped, nil
}

// Ping fetches the source once and discards the result.
func (p *Pipeline) Ping(ctx context.Context) error {
	_, err := p.source.Fetch(ctx)
	return err
}
