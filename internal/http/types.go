package http

// IngestRequest is the request body for POST /api/v1/ingest/text.
type IngestRequest struct {
	Text string `json:"text"`
	// Title defaults to "Untitled" when absent.
	Title string `json:"title,omitempty"`
	// ContentTime is an optional RFC 3339 timestamp for when the content
	// is "about". Defaults to ingestion time.
	ContentTime string `json:"content_time,omitempty"`
}

// IngestResponse is the response body for POST /api/v1/ingest/text.
type IngestResponse struct {
	SourceID    int64 `json:"source_id"`
	ChunksAdded int   `json:"chunks_added"`
}

// QueryRequest is the request body for POST /api/v1/query.
type QueryRequest struct {
	Question string `json:"question"`
}

// QueryResponse is the response body for POST /api/v1/query.
type QueryResponse struct {
	Answer           string `json:"answer"`
	ContextUsedCount int    `json:"context_used_count"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Sources int    `json:"sources"`
	Chunks  int    `json:"chunks"`
}
