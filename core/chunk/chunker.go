package chunk

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/siherrmann/kgraph/model"
)

// ChunkFunc is a function that splits text into annotated chunks.
// Each strategy is a pure function; constructors close over their options so
// strategies stay composable and independently testable.
type ChunkFunc func(ctx context.Context, text string) ([]*model.Chunk, error)

// EmbedFunc is a function that generates an embedding for text.
// It is the engine's only suspension point and must respect ctx cancellation.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

var whitespaceRe = regexp.MustCompile(`\s+`)
var sentenceBoundaryRe = regexp.MustCompile(`([.!?])\s+`)

// normalizeWhitespace collapses runs of whitespace into single spaces
func normalizeWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// splitSentences splits text on sentence boundaries (.!? followed by
// whitespace), keeping the terminating punctuation with its sentence
func splitSentences(text string) []string {
	marked := sentenceBoundaryRe.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")

	sentences := make([]string, 0, len(parts))
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func newChunk(content string, index int, strategy model.ChunkStrategy) *model.Chunk {
	return &model.Chunk{
		ID:       fmt.Sprintf("chunk-%d", index),
		Content:  content,
		Index:    index,
		Strategy: strategy,
	}
}

// Fixed creates a chunker that slices text into fixed-size character windows
// with overlap, ignoring sentence boundaries
func Fixed(opts model.ChunkOptions) ChunkFunc {
	return func(ctx context.Context, text string) ([]*model.Chunk, error) {
		text = normalizeWhitespace(text)
		if text == "" {
			return []*model.Chunk{}, nil
		}

		if len(text) <= opts.ChunkSize {
			chunks := []*model.Chunk{newChunk(text, 0, model.ChunkStrategyFixed)}
			annotate(chunks, opts)
			return chunks, nil
		}

		step := opts.ChunkSize - opts.ChunkOverlap
		if step <= 0 {
			return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", opts.ChunkOverlap, opts.ChunkSize)
		}

		var chunks []*model.Chunk
		index := 0
		for start := 0; start < len(text); start += step {
			end := start + opts.ChunkSize
			if end > len(text) {
				end = len(text)
			}

			content := text[start:end]
			if len(content) < opts.MinChunkSize && index > 0 {
				break
			}

			chunks = append(chunks, newChunk(content, index, model.ChunkStrategyFixed))
			index++

			if end == len(text) {
				break
			}
		}

		annotate(chunks, opts)
		return chunks, nil
	}
}

// Sentence creates the baseline sentence-aware chunker. Sentences accumulate
// into a buffer; when the buffer plus the next sentence would exceed the
// chunk size and the buffer already meets the minimum size, the buffer is
// flushed and the next one starts with the trailing overlap characters of
// the flushed content.
func Sentence(opts model.ChunkOptions) ChunkFunc {
	return func(ctx context.Context, text string) ([]*model.Chunk, error) {
		text = normalizeWhitespace(text)
		if text == "" {
			return []*model.Chunk{}, nil
		}

		if len(text) <= opts.ChunkSize {
			chunks := []*model.Chunk{newChunk(text, 0, model.ChunkStrategySentence)}
			annotate(chunks, opts)
			return chunks, nil
		}

		sentences := splitSentences(text)

		var chunks []*model.Chunk
		var buffer string
		index := 0

		flush := func() {
			chunks = append(chunks, newChunk(buffer, index, model.ChunkStrategySentence))
			index++

			// Sliding-window overlap for retrieval context continuity
			if opts.ChunkOverlap > 0 && len(buffer) > opts.ChunkOverlap {
				buffer = buffer[len(buffer)-opts.ChunkOverlap:]
			} else {
				buffer = ""
			}
		}

		for _, sentence := range sentences {
			if buffer != "" && len(buffer)+len(sentence)+1 > opts.ChunkSize && len(buffer) >= opts.MinChunkSize {
				flush()
			}
			if buffer == "" {
				buffer = sentence
			} else {
				buffer += " " + sentence
			}
		}

		if len(buffer) >= opts.MinChunkSize {
			chunks = append(chunks, newChunk(buffer, index, model.ChunkStrategySentence))
		}

		annotate(chunks, opts)
		return chunks, nil
	}
}
