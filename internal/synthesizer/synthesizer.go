// Package synthesizer turns ranked chunks into a grounded answer.
//
// Retrieval success is independent of generation success: when the
// generation capability fails, the synthesizer degrades to the raw
// grounding block instead of surfacing an error.
package synthesizer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fernwehlabs/recalld/internal/generation"
	"github.com/fernwehlabs/recalld/internal/logging"
	"github.com/fernwehlabs/recalld/internal/ranker"
)

// FallbackPrefix opens every degraded answer. Clients and tests key off
// this exact string.
const FallbackPrefix = "I had an issue calling the AI model, but here are the most relevant notes I found:\n\n"

// chunkSeparator joins rendered chunks in the grounding block.
const chunkSeparator = "\n\n---\n\n"

// systemPrompt constrains the model to the supplied context.
const systemPrompt = `You are a personal AI assistant that acts as a "second brain".
You are given the user's question and some context snippets from their own data.
Answer concisely in natural language using ONLY the provided context.
If the answer is not in the context, say you don't know.`

// Answer is the synthesizer's result. UsedCount equals the number of
// ranked chunks included in the grounding block, regardless of whether
// generation succeeded.
type Answer struct {
	Text      string
	UsedCount int
	Degraded  bool
}

// outcome is the explicit result of the generation step: either a
// generated answer or the reason generation was unavailable.
type outcome struct {
	text        string
	unavailable error
}

// Synthesizer builds grounding prompts and invokes the generation
// capability.
type Synthesizer struct {
	generator generation.Generator
	logger    *logging.Logger
}

// New creates a Synthesizer.
func New(generator generation.Generator, logger *logging.Logger) *Synthesizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Synthesizer{generator: generator, logger: logger}
}

// ContextBlock renders ranked chunks into the deterministic grounding
// block: "Chunk {i} (score={score}):\n{content}" entries joined by a
// fixed separator, in rank order starting at 1.
func ContextBlock(ranked []ranker.ScoredChunk) string {
	rendered := make([]string, len(ranked))
	for i, sc := range ranked {
		rendered[i] = fmt.Sprintf("Chunk %d (score=%.3f):\n%s", i+1, sc.Score, sc.Chunk.Content)
	}
	return strings.Join(rendered, chunkSeparator)
}

// buildPrompt assembles the full prompt from the system instruction, the
// verbatim question, and the grounding block.
func buildPrompt(question, contextBlock string) string {
	return fmt.Sprintf("System instructions:\n%s\n\nUser question: %s\n\nContext:\n%s",
		systemPrompt, question, contextBlock)
}

// render maps a generation outcome and the grounding block to the final
// answer. Pure function; the fallback policy lives here.
func render(o outcome, contextBlock string, usedCount int) Answer {
	if o.unavailable != nil {
		return Answer{
			Text:      FallbackPrefix + contextBlock,
			UsedCount: usedCount,
			Degraded:  true,
		}
	}
	return Answer{Text: o.text, UsedCount: usedCount}
}

// Synthesize answers question from the ranked chunks. Generation
// failures are absorbed into a degraded answer and never returned as
// errors.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, ranked []ranker.ScoredChunk) Answer {
	block := ContextBlock(ranked)
	prompt := buildPrompt(question, block)

	var o outcome
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn(ctx, "generation failed, degrading to raw context", zap.Error(err))
		o = outcome{unavailable: err}
	} else {
		o = outcome{text: text}
	}

	return render(o, block, len(ranked))
}
