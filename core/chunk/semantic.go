package chunk

import (
	"context"
	"log/slog"
	"math"

	"github.com/siherrmann/kgraph/model"
)

// cosineSimilarity calculates the cosine similarity between two embedding
// vectors. A dimension mismatch is a contract violation of the embedding
// provider and yields 0 rather than an error.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float32
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}

// Semantic creates a chunker that groups consecutive sentences while the
// cosine similarity between neighboring sentence embeddings stays at or
// above the configured threshold. A new group starts on a similarity drop
// (once the minimum group size is satisfied) or on reaching the maximum.
// A missing or failed embedding defaults the similarity to 1.0, merging
// conservatively. Without an embedder the strategy falls back to the
// sentence chunker with a logged warning.
func Semantic(opts model.ChunkOptions, embedder EmbedFunc, logger *slog.Logger) ChunkFunc {
	if logger == nil {
		logger = slog.Default()
	}

	if embedder == nil {
		logger.Warn("Semantic chunking requested without an embedding function, falling back to sentence strategy")
		return Sentence(opts)
	}

	minSentences := opts.MinSentencesPerChunk
	if minSentences <= 0 {
		minSentences = 2
	}
	maxSentences := opts.MaxSentencesPerChunk
	if maxSentences <= 0 {
		maxSentences = 10
	}

	return func(ctx context.Context, text string) ([]*model.Chunk, error) {
		text = normalizeWhitespace(text)
		if text == "" {
			return []*model.Chunk{}, nil
		}

		sentences := splitSentences(text)

		// Embed sequentially, order matters for the sliding-window grouping
		embeddings := make([][]float32, len(sentences))
		for i, sentence := range sentences {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			embedding, err := embedder(ctx, sentence)
			if err != nil {
				logger.Warn("Sentence embedding failed, treating as similar",
					slog.Int("sentence", i), slog.String("error", err.Error()))
				continue
			}
			embeddings[i] = embedding
		}

		var chunks []*model.Chunk
		var group []string
		index := 0

		flushGroup := func() {
			chunks = append(chunks, newChunk(joinSentences(group), index, model.ChunkStrategySemantic))
			index++
			group = nil
		}

		for i, sentence := range sentences {
			if len(group) > 0 {
				// Missing embeddings merge conservatively
				similarity := float32(1.0)
				if embeddings[i-1] != nil && embeddings[i] != nil {
					similarity = cosineSimilarity(embeddings[i-1], embeddings[i])
				}

				if len(group) >= maxSentences {
					flushGroup()
				} else if similarity < opts.SemanticSimilarityThreshold && len(group) >= minSentences {
					flushGroup()
				}
			}

			group = append(group, sentence)
		}

		if len(group) > 0 {
			flushGroup()
		}

		annotate(chunks, opts)
		return chunks, nil
	}
}
