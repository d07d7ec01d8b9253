package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernwehlabs/recalld/internal/corpus"
	"github.com/fernwehlabs/recalld/internal/embeddings"
	"github.com/fernwehlabs/recalld/internal/logging"
	"github.com/fernwehlabs/recalld/internal/recall"
	"github.com/fernwehlabs/recalld/internal/synthesizer"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) vector(text string) []float32 {
	return []float32{float32(len(text)), 1}
}

func (s *stubEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = s.vector(t)
	}
	return out, nil
}

func (s *stubEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vector(text), nil
}

func (s *stubEmbedder) Dimension() int { return 2 }
func (s *stubEmbedder) Close() error   { return nil }

type stubGenerator struct {
	answer string
	err    error
}

func (s *stubGenerator) Generate(context.Context, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func newTestServer(t *testing.T, embedder *stubEmbedder, gen *stubGenerator) *Server {
	t.Helper()
	store := corpus.NewStore()
	service := recall.NewService(store, embedder, synthesizer.New(gen, nil), nil, recall.Options{})

	server, err := NewServer(service, store, logging.NewNop(), nil)
	require.NoError(t, err)
	return server
}

func doJSON(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Echo().ServeHTTP(rec, req)
	return rec
}

func TestNewServer(t *testing.T) {
	t.Run("requires service", func(t *testing.T) {
		_, err := NewServer(nil, corpus.NewStore(), logging.NewNop(), nil)
		require.Error(t, err)
	})

	t.Run("requires logger", func(t *testing.T) {
		store := corpus.NewStore()
		service := recall.NewService(store, &stubEmbedder{}, synthesizer.New(&stubGenerator{}, nil), nil, recall.Options{})
		_, err := NewServer(service, store, nil, nil)
		require.Error(t, err)
	})

	t.Run("defaults config when nil", func(t *testing.T) {
		server := newTestServer(t, &stubEmbedder{}, &stubGenerator{answer: "ok"})
		assert.Equal(t, "localhost", server.config.Host)
		assert.Equal(t, 4000, server.config.Port)
	})
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(t, &stubEmbedder{}, &stubGenerator{answer: "ok"})

	rec := doJSON(t, server, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Zero(t, resp.Sources)
	assert.Zero(t, resp.Chunks)
}

func TestHandleIngestText(t *testing.T) {
	t.Run("ingests a document", func(t *testing.T) {
		server := newTestServer(t, &stubEmbedder{}, &stubGenerator{answer: "ok"})

		rec := doJSON(t, server, http.MethodPost, "/api/v1/ingest/text",
			IngestRequest{Text: "Alpha beta gamma.", Title: "Doc1"})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp IngestResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.SourceID)
		assert.Equal(t, 1, resp.ChunksAdded)

		health := doJSON(t, server, http.MethodGet, "/health", nil)
		var h HealthResponse
		require.NoError(t, json.Unmarshal(health.Body.Bytes(), &h))
		assert.Equal(t, 1, h.Sources)
		assert.Equal(t, 1, h.Chunks)
	})

	t.Run("rejects blank text", func(t *testing.T) {
		server := newTestServer(t, &stubEmbedder{}, &stubGenerator{answer: "ok"})

		rec := doJSON(t, server, http.MethodPost, "/api/v1/ingest/text", IngestRequest{Text: "   "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed content_time", func(t *testing.T) {
		server := newTestServer(t, &stubEmbedder{}, &stubGenerator{answer: "ok"})

		rec := doJSON(t, server, http.MethodPost, "/api/v1/ingest/text",
			IngestRequest{Text: "data", ContentTime: "yesterday"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("accepts RFC 3339 content_time", func(t *testing.T) {
		server := newTestServer(t, &stubEmbedder{}, &stubGenerator{answer: "ok"})

		rec := doJSON(t, server, http.MethodPost, "/api/v1/ingest/text",
			IngestRequest{Text: "data", ContentTime: "2025-06-01T12:00:00Z"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("embedding failure maps to bad gateway", func(t *testing.T) {
		server := newTestServer(t, &stubEmbedder{err: embeddings.ErrUnavailable}, &stubGenerator{answer: "ok"})

		rec := doJSON(t, server, http.MethodPost, "/api/v1/ingest/text", IngestRequest{Text: "data"})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestHandleQuery(t *testing.T) {
	t.Run("answers from ingested corpus", func(t *testing.T) {
		server := newTestServer(t, &stubEmbedder{}, &stubGenerator{answer: "the answer"})

		rec := doJSON(t, server, http.MethodPost, "/api/v1/ingest/text", IngestRequest{Text: "some notes"})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, server, http.MethodPost, "/api/v1/query", QueryRequest{Question: "what?"})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp QueryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "the answer", resp.Answer)
		assert.Equal(t, 1, resp.ContextUsedCount)
	})

	t.Run("rejects blank question", func(t *testing.T) {
		server := newTestServer(t, &stubEmbedder{}, &stubGenerator{answer: "ok"})

		rec := doJSON(t, server, http.MethodPost, "/api/v1/query", QueryRequest{Question: ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty corpus maps to conflict", func(t *testing.T) {
		server := newTestServer(t, &stubEmbedder{}, &stubGenerator{answer: "ok"})

		rec := doJSON(t, server, http.MethodPost, "/api/v1/query", QueryRequest{Question: "anything?"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "no data ingested yet")
	})

	t.Run("generation failure still returns 200 with fallback", func(t *testing.T) {
		server := newTestServer(t, &stubEmbedder{}, &stubGenerator{err: errors.New("llm down")})

		rec := doJSON(t, server, http.MethodPost, "/api/v1/ingest/text", IngestRequest{Text: "my note"})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, server, http.MethodPost, "/api/v1/query", QueryRequest{Question: "what?"})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp QueryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, strings.HasPrefix(resp.Answer, synthesizer.FallbackPrefix))
		assert.Contains(t, resp.Answer, "my note")
		assert.Equal(t, 1, resp.ContextUsedCount)
	})
}
