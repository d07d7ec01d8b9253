// Package embeddings adapts the external embedding capability behind a
// small Provider interface.
//
// The production implementation speaks the OpenAI embeddings API through
// langchaingo, which covers OpenAI itself, TEI, and other compatible
// gateways. The adapter is a pure pass-through: no caching and no
// batching beyond what one call requests.
package embeddings
