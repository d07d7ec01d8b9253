// Package corpus provides the in-memory store for ingested sources and
// their embedded chunks.
//
// The store is append-only for the lifetime of the process: no deletion or
// mutation API is exposed, and the corpus is rebuilt by re-ingestion. State
// is volatile; durability is explicitly out of scope.
package corpus

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDimensionMismatch is returned when a chunk's embedding dimensionality
// differs from the chunks already stored. All embeddings in one store must
// come from the same model.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Store holds sources and chunks in insertion order and assigns their IDs.
//
// Construct one Store per process (or per test case) and inject it; appends
// are serialized by an internal mutex so concurrent ingestions and queries
// may interleave freely.
type Store struct {
	mu           sync.RWMutex
	sources      []Source
	chunks       []Chunk
	nextSourceID int64
	nextChunkID  int64
	dimension    int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		nextSourceID: 1,
		nextChunkID:  1,
	}
}

// AddSource assigns the next source ID, appends the source, and returns
// the assigned ID. It never fails.
func (s *Store) AddSource(src Source) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	src.ID = s.nextSourceID
	s.nextSourceID++
	s.sources = append(s.sources, src)
	return src.ID
}

// AddChunk assigns the next chunk ID, appends the chunk, and returns the
// assigned ID. The first chunk fixes the store's embedding dimension;
// later chunks with a different dimension are rejected with
// ErrDimensionMismatch.
func (s *Store) AddChunk(c Chunk) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension == 0 {
		s.dimension = len(c.Embedding)
	} else if len(c.Embedding) != s.dimension {
		return 0, fmt.Errorf("%w: got %d, store holds %d",
			ErrDimensionMismatch, len(c.Embedding), s.dimension)
	}

	c.ID = s.nextChunkID
	s.nextChunkID++
	s.chunks = append(s.chunks, c)
	return c.ID, nil
}

// ChunksForUser returns a snapshot of all chunks owned by userID, in
// insertion order. The stable order supports deterministic tie-breaking
// in the ranker.
func (s *Store) ChunksForUser(userID int64) []Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Chunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out
}

// CountsForUser returns the number of sources and chunks owned by userID.
func (s *Store) CountsForUser(userID int64) (sources, chunks int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, src := range s.sources {
		if src.UserID == userID {
			sources++
		}
	}
	for _, c := range s.chunks {
		if c.UserID == userID {
			chunks++
		}
	}
	return sources, chunks
}

// Dimension returns the embedding dimension fixed by the first stored
// chunk, or 0 when the store is empty.
func (s *Store) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}
