package corpus

import "time"

// ModalityText is the only modality currently ingested. The field exists
// so the model stays ready for future modalities (images, audio).
const ModalityText = "text"

// DefaultTitle is assigned to sources ingested without a title.
const DefaultTitle = "Untitled"

// Source is a single ingested document. Sources are created once at
// ingestion and are immutable afterwards; there is no retraction path.
type Source struct {
	ID          int64
	UserID      int64
	Title       string
	Modality    string
	ContentTime time.Time
	CreatedAt   time.Time
}

// Chunk is a retrievable unit of a Source's text. UserID duplicates the
// owning Source's tenant so per-tenant filtering needs no join.
type Chunk struct {
	ID          int64
	UserID      int64
	SourceID    int64
	Content     string
	Embedding   []float32
	ContentTime time.Time
	CreatedAt   time.Time
}
