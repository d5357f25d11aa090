package pipeline

import (
	"context"

	"github.com/siherrmann/kgraph/core/chunk"
	"github.com/siherrmann/kgraph/model"
)

// ChunkFunc splits text into annotated chunks
type ChunkFunc = chunk.ChunkFunc

// EmbedFunc generates an embedding for text
type EmbedFunc = chunk.EmbedFunc

// Pipeline combines a chunking strategy with an optional embedder.
// Without an embedder the chunks keep only their symbolic annotations.
type Pipeline struct {
	Chunker  ChunkFunc
	Embedder EmbedFunc
}

// NewPipeline creates a new processing pipeline
func NewPipeline(chunker ChunkFunc, embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Chunker:  chunker,
		Embedder: embedder,
	}
}

// Process splits text into chunks and, when an embedder is set, attaches an
// embedding to each chunk. Embeddings are computed sequentially per chunk;
// cancellation is observed between calls.
func (p *Pipeline) Process(ctx context.Context, text string) ([]*model.Chunk, error) {
	chunks, err := p.Chunker(ctx, text)
	if err != nil {
		return nil, err
	}

	if p.Embedder == nil {
		return chunks, nil
	}

	for _, c := range chunks {
		embedding, err := p.Embedder(ctx, c.Content)
		if err != nil {
			return nil, err
		}
		c.Embedding = embedding
	}

	return chunks, nil
}
