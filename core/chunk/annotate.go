package chunk

import (
	"github.com/siherrmann/kgraph/core/extract"
	"github.com/siherrmann/kgraph/model"
)

// annotate attaches entities and keywords to each chunk from its own content.
// The caps are smaller than whole-document extraction since chunk content is
// smaller.
func annotate(chunks []*model.Chunk, opts model.ChunkOptions) {
	if !opts.ExtractEntities {
		return
	}

	maxEntities := opts.MaxEntitiesPerChunk
	if maxEntities <= 0 {
		maxEntities = 15
	}
	maxKeywords := opts.MaxKeywordsPerChunk
	if maxKeywords <= 0 {
		maxKeywords = 8
	}

	for _, c := range chunks {
		result := extract.Entities(c.Content)

		entities := result.Entities
		if len(entities) > maxEntities {
			entities = entities[:maxEntities]
		}

		c.Entities = make([]model.ChunkEntity, 0, len(entities))
		for _, e := range entities {
			c.Entities = append(c.Entities, model.ChunkEntity{Type: e.Type, Value: e.Value})
		}

		c.Keywords = extract.Keywords(c.Content, maxKeywords)
	}
}
