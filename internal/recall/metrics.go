package recall

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fernwehlabs/recalld/internal/recall"

// Metrics holds retrieval pipeline instruments.
type Metrics struct {
	meter           metric.Meter
	logger          *zap.Logger
	ingestsTotal    metric.Int64Counter
	chunksIngested  metric.Int64Counter
	queriesTotal    metric.Int64Counter
	degradedAnswers metric.Int64Counter
}

// NewMetrics creates a Metrics instance. A nil logger is replaced with a
// nop logger.
func NewMetrics(logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Metrics{
		meter:  otel.Meter(instrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.ingestsTotal, err = m.meter.Int64Counter(
		"recalld.ingest.requests_total",
		metric.WithDescription("Total ingestion requests by outcome (ok, error)."),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		m.logger.Warn("failed to create ingests counter", zap.Error(err))
	}

	m.chunksIngested, err = m.meter.Int64Counter(
		"recalld.ingest.chunks_total",
		metric.WithDescription("Total chunks embedded and committed to the corpus."),
		metric.WithUnit("{chunk}"),
	)
	if err != nil {
		m.logger.Warn("failed to create chunks counter", zap.Error(err))
	}

	m.queriesTotal, err = m.meter.Int64Counter(
		"recalld.query.requests_total",
		metric.WithDescription("Total query requests by outcome (ok, error)."),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		m.logger.Warn("failed to create queries counter", zap.Error(err))
	}

	m.degradedAnswers, err = m.meter.Int64Counter(
		"recalld.query.degraded_answers_total",
		metric.WithDescription("Queries answered from raw retrieved context because generation was unavailable."),
		metric.WithUnit("{answer}"),
	)
	if err != nil {
		m.logger.Warn("failed to create degraded answers counter", zap.Error(err))
	}
}

func outcomeAttr(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("outcome", "error")
	}
	return attribute.String("outcome", "ok")
}

// RecordIngest records one ingestion request and its committed chunks.
func (m *Metrics) RecordIngest(ctx context.Context, chunksAdded int, err error) {
	if m.ingestsTotal != nil {
		m.ingestsTotal.Add(ctx, 1, metric.WithAttributes(outcomeAttr(err)))
	}
	if chunksAdded > 0 && m.chunksIngested != nil {
		m.chunksIngested.Add(ctx, int64(chunksAdded))
	}
}

// RecordQuery records one query request.
func (m *Metrics) RecordQuery(ctx context.Context, degraded bool, err error) {
	if m.queriesTotal != nil {
		m.queriesTotal.Add(ctx, 1, metric.WithAttributes(outcomeAttr(err)))
	}
	if degraded && m.degradedAnswers != nil {
		m.degradedAnswers.Add(ctx, 1)
	}
}
