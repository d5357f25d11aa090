package chunk

import (
	"context"
	"log/slog"
	"strings"

	"github.com/siherrmann/kgraph/model"
)

// Auto creates a strategy-dispatching chunker. The content is sniffed once
// and the chunker for the best-fitting strategy is applied:
//   - markdown headings on a long document, or fenced code blocks, pick the
//     hierarchical strategy (code blocks must not be split)
//   - an available embedder and more than 20 sentences pick the semantic
//     strategy
//   - more than 10 sentences without embeddings pick the entity-aware
//     strategy
//   - everything else uses the sentence baseline
func Auto(opts model.ChunkOptions, embedder EmbedFunc, logger *slog.Logger) ChunkFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context, text string) ([]*model.Chunk, error) {
		strategy := sniffStrategy(text, embedder != nil)

		logger.Debug("Selected chunking strategy", slog.String("strategy", string(strategy)), slog.Int("length", len(text)))

		switch strategy {
		case model.ChunkStrategyHierarchical:
			return Hierarchical(opts)(ctx, text)
		case model.ChunkStrategySemantic:
			return Semantic(opts, embedder, logger)(ctx, text)
		case model.ChunkStrategyEntityAware:
			return EntityAware(opts)(ctx, text)
		default:
			return Sentence(opts)(ctx, text)
		}
	}
}

func sniffStrategy(text string, hasEmbedder bool) model.ChunkStrategy {
	if headingRe.MatchString(text) && len(text) > 2000 {
		return model.ChunkStrategyHierarchical
	}
	if strings.Contains(text, "```") {
		return model.ChunkStrategyHierarchical
	}

	sentenceCount := len(splitSentences(normalizeWhitespace(text)))
	if hasEmbedder && sentenceCount > 20 {
		return model.ChunkStrategySemantic
	}
	if sentenceCount > 10 {
		return model.ChunkStrategyEntityAware
	}

	return model.ChunkStrategySentence
}
