// Package recall orchestrates the retrieval pipeline: ingestion
// (chunk, embed, store) and query (embed, rank, synthesize).
//
// Error policy: validation failures, the empty-corpus precondition, and
// embedding failures propagate to the caller; generation failures never
// do — the synthesizer degrades to raw retrieved context instead.
package recall
