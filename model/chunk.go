package model

// ChunkStrategy identifies the algorithm that produced a chunk
type ChunkStrategy string

const (
	ChunkStrategyFixed        ChunkStrategy = "fixed"
	ChunkStrategySentence     ChunkStrategy = "sentence"
	ChunkStrategyHierarchical ChunkStrategy = "hierarchical"
	ChunkStrategyEntityAware  ChunkStrategy = "entity_aware"
	ChunkStrategySemantic     ChunkStrategy = "semantic"
)

// ChunkEntity is the lightweight entity annotation carried on a chunk
type ChunkEntity struct {
	Type  EntityType `json:"entity_type"`
	Value string     `json:"value"`
}

// Chunk represents a retrieval-sized slice of a document.
// ID is stable per document ("chunk-<index>"), not globally unique.
type Chunk struct {
	ID             string        `json:"id"`
	Content        string        `json:"content"`
	Index          int           `json:"index"`
	Entities       []ChunkEntity `json:"entities,omitempty"`
	Keywords       []string      `json:"keywords,omitempty"`
	SectionHeading string        `json:"section_heading,omitempty"`
	SectionLevel   int           `json:"section_level,omitempty"`
	Strategy       ChunkStrategy `json:"chunk_strategy,omitempty"`
	Embedding      []float32     `json:"embedding,omitempty"`
}
