package model

import "time"

// RelationType represents the type of relationship between nodes
type RelationType string

const (
	RelationTypeReferences  RelationType = "references"
	RelationTypeSimilarTo   RelationType = "similar_to"
	RelationTypePartOf      RelationType = "part_of"
	RelationTypeFollows     RelationType = "follows"
	RelationTypePrecedes    RelationType = "precedes"
	RelationTypeContradicts RelationType = "contradicts"
	RelationTypeSupports    RelationType = "supports"
	RelationTypeSameTopic   RelationType = "same_topic"
	RelationTypeSameEntity  RelationType = "same_entity"
)

// Relation represents a weighted, typed edge between two nodes.
// Weight is in [0,1]. Relations are value types created once at graph build
// time; the same relation is referenced from the graph's flat list and from
// both endpoint nodes.
type Relation struct {
	SourceID string       `json:"source_id"`
	TargetID string       `json:"target_id"`
	Type     RelationType `json:"relation_type"`
	Weight   float64      `json:"weight"`
	Metadata Metadata     `json:"metadata,omitempty"`
}

// NodeMetadata carries bookkeeping attached to a node at build time
type NodeMetadata struct {
	Source      string    `json:"source,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	CharCount   int       `json:"char_count"`
	EntityCount int       `json:"entity_count"`
}

// Node represents one chunk (or one whole entry) as a vertex in the
// knowledge graph. ID is "<entryID>-<chunkID>" for chunked entries and
// "<entryID>" otherwise. Nodes are owned by the graph that created them and
// must be treated as read-only after construction.
type Node struct {
	ID        string       `json:"id"`
	EntryID   int64        `json:"entry_id"`
	ChunkID   string       `json:"chunk_id,omitempty"`
	Content   string       `json:"content"`
	Title     string       `json:"title"`
	Entities  []Entity     `json:"entities"`
	Keywords  []string     `json:"keywords"`
	Embedding []float32    `json:"embedding,omitempty"`
	Relations []*Relation  `json:"relations,omitempty"`
	Metadata  NodeMetadata `json:"metadata"`
}
