package chunk

import (
	"context"

	"github.com/siherrmann/kgraph/core/extract"
	"github.com/siherrmann/kgraph/model"
)

// EntityAware creates a chunker that keeps entity mentions intact across
// chunk boundaries. When a buffer is flushed, the last sentence is carried
// into the next chunk if it contained an entity — entity continuity takes
// priority over the generic character overlap.
func EntityAware(opts model.ChunkOptions) ChunkFunc {
	return func(ctx context.Context, text string) ([]*model.Chunk, error) {
		text = normalizeWhitespace(text)
		if text == "" {
			return []*model.Chunk{}, nil
		}

		if len(text) <= opts.ChunkSize {
			chunks := []*model.Chunk{newChunk(text, 0, model.ChunkStrategyEntityAware)}
			annotate(chunks, opts)
			return chunks, nil
		}

		sentences := splitSentences(text)

		var chunks []*model.Chunk
		var buffer []string
		bufferLen := 0
		index := 0

		flush := func() {
			content := joinSentences(buffer)
			chunks = append(chunks, newChunk(content, index, model.ChunkStrategyEntityAware))
			index++

			last := buffer[len(buffer)-1]
			buffer = nil
			bufferLen = 0

			if len(extract.Entities(last).Entities) > 0 {
				buffer = []string{last}
				bufferLen = len(last)
			}
		}

		for _, sentence := range sentences {
			if bufferLen > 0 && bufferLen+len(sentence)+1 > opts.ChunkSize {
				flush()
			}
			buffer = append(buffer, sentence)
			bufferLen += len(sentence)
			if len(buffer) > 1 {
				bufferLen++
			}
		}

		if bufferLen >= opts.MinChunkSize {
			chunks = append(chunks, newChunk(joinSentences(buffer), index, model.ChunkStrategyEntityAware))
		}

		annotate(chunks, opts)
		return chunks, nil
	}
}

func joinSentences(sentences []string) string {
	switch len(sentences) {
	case 0:
		return ""
	case 1:
		return sentences[0]
	}

	n := len(sentences) - 1
	for _, s := range sentences {
		n += len(s)
	}

	out := make([]byte, 0, n)
	for i, s := range sentences {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, s...)
	}
	return string(out)
}
