package recall

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fernwehlabs/recalld/internal/chunker"
	"github.com/fernwehlabs/recalld/internal/corpus"
	"github.com/fernwehlabs/recalld/internal/embeddings"
	"github.com/fernwehlabs/recalld/internal/logging"
	"github.com/fernwehlabs/recalld/internal/ranker"
	"github.com/fernwehlabs/recalld/internal/synthesizer"
	"github.com/fernwehlabs/recalld/internal/tenant"
)

var (
	// ErrValidation indicates malformed or missing required input.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyCorpus indicates a query before any ingestion for the
	// tenant. Resolved only by ingesting data first.
	ErrEmptyCorpus = errors.New("no data ingested yet")
)

// Options configures a Service.
type Options struct {
	// TopK is the number of chunks retrieved per query. Defaults to
	// ranker.DefaultTopK.
	TopK int

	// ChunkTokenBudget is the approximate token budget per chunk.
	// Defaults to chunker.DefaultTokenBudget.
	ChunkTokenBudget int
}

// Service runs the ingestion and query pipelines against one corpus
// store.
type Service struct {
	store       *corpus.Store
	embedder    embeddings.Provider
	synthesizer *synthesizer.Synthesizer
	logger      *logging.Logger
	metrics     *Metrics
	topK        int
	targetChars int
}

// NewService creates a recall service.
func NewService(store *corpus.Store, embedder embeddings.Provider, synth *synthesizer.Synthesizer, logger *logging.Logger, opts Options) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = ranker.DefaultTopK
	}
	budget := opts.ChunkTokenBudget
	if budget <= 0 {
		budget = chunker.DefaultTokenBudget
	}

	return &Service{
		store:       store,
		embedder:    embedder,
		synthesizer: synth,
		logger:      logger,
		metrics:     NewMetrics(logger.Underlying()),
		topK:        topK,
		targetChars: chunker.TargetChars(budget),
	}
}

// IngestRequest is one document to ingest.
type IngestRequest struct {
	Text  string
	Title string
	// ContentTime is when the content is "about", distinct from storage
	// time. Zero means ingestion time.
	ContentTime time.Time
}

// IngestResult reports what an ingestion created.
type IngestResult struct {
	SourceID    int64
	ChunksAdded int
}

// Ingest splits, embeds, and stores one document for the tenant carried
// by ctx.
//
// Chunks are embedded strictly sequentially, one call per chunk. If an
// embedding call fails mid-request the request is aborted and reported,
// but chunks already committed by the same request remain in the store
// (no rollback), as does the source. The corpus is volatile and rebuilt
// by re-ingestion, so partial state is acceptable and the next ingestion
// is unaffected.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (IngestResult, error) {
	text := req.Text
	if strings.TrimSpace(text) == "" {
		return IngestResult{}, fmt.Errorf("%w: text is required", ErrValidation)
	}

	userID := tenant.UserIDFromContext(ctx)
	now := time.Now().UTC()
	contentTime := req.ContentTime
	if contentTime.IsZero() {
		contentTime = now
	}
	title := req.Title
	if title == "" {
		title = corpus.DefaultTitle
	}

	sourceID := s.store.AddSource(corpus.Source{
		UserID:      userID,
		Title:       title,
		Modality:    corpus.ModalityText,
		ContentTime: contentTime,
		CreatedAt:   now,
	})

	added := 0
	for _, raw := range chunker.Split(text, s.targetChars) {
		content := strings.TrimSpace(raw)
		if content == "" {
			continue
		}

		vectors, err := s.embedder.EmbedDocuments(ctx, []string{content})
		if err != nil {
			s.logger.Error(ctx, "ingestion aborted: embedding failed",
				zap.Int64("source_id", sourceID),
				zap.Int("chunks_committed", added),
				zap.Error(err))
			s.metrics.RecordIngest(ctx, added, err)
			return IngestResult{}, fmt.Errorf("embedding chunk %d: %w", added+1, err)
		}

		if _, err := s.store.AddChunk(corpus.Chunk{
			UserID:      userID,
			SourceID:    sourceID,
			Content:     content,
			Embedding:   vectors[0],
			ContentTime: contentTime,
			CreatedAt:   now,
		}); err != nil {
			s.metrics.RecordIngest(ctx, added, err)
			return IngestResult{}, fmt.Errorf("storing chunk: %w", err)
		}
		added++
	}

	s.logger.Info(ctx, "document ingested",
		zap.Int64("source_id", sourceID),
		zap.String("title", title),
		zap.Int("chunks_added", added))
	s.metrics.RecordIngest(ctx, added, nil)

	return IngestResult{SourceID: sourceID, ChunksAdded: added}, nil
}

// QueryRequest is one question against the corpus.
type QueryRequest struct {
	Question string
}

// QueryResult carries the answer and how many chunks grounded it.
type QueryResult struct {
	Answer           string
	ContextUsedCount int
	Degraded         bool
}

// Query embeds the question, ranks the tenant's chunks, and synthesizes
// an answer from the top results.
//
// The empty-corpus precondition is checked before the question is
// embedded, so a query against an empty corpus costs no external call.
func (s *Service) Query(ctx context.Context, req QueryRequest) (QueryResult, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return QueryResult{}, fmt.Errorf("%w: question is required", ErrValidation)
	}

	userID := tenant.UserIDFromContext(ctx)
	candidates := s.store.ChunksForUser(userID)
	if len(candidates) == 0 {
		return QueryResult{}, ErrEmptyCorpus
	}

	queryVec, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		s.logger.Error(ctx, "query aborted: embedding failed", zap.Error(err))
		s.metrics.RecordQuery(ctx, false, err)
		return QueryResult{}, fmt.Errorf("embedding question: %w", err)
	}

	ranked, err := ranker.Rank(queryVec, candidates, s.topK)
	if err != nil {
		// Unreachable given the precondition check above; kept so a
		// future caller bypassing the check still gets a clean error.
		s.metrics.RecordQuery(ctx, false, err)
		return QueryResult{}, fmt.Errorf("ranking candidates: %w", err)
	}

	answer := s.synthesizer.Synthesize(ctx, question, ranked)

	s.logger.Info(ctx, "query answered",
		zap.Int("candidates", len(candidates)),
		zap.Int("context_used", answer.UsedCount),
		zap.Bool("degraded", answer.Degraded))
	s.metrics.RecordQuery(ctx, answer.Degraded, nil)

	return QueryResult{
		Answer:           answer.Text,
		ContextUsedCount: answer.UsedCount,
		Degraded:         answer.Degraded,
	}, nil
}
