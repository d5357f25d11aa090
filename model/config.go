package model

// ChunkOptions configures the chunking pipeline
type ChunkOptions struct {
	ChunkSize       int  `json:"chunk_size"`
	ChunkOverlap    int  `json:"chunk_overlap"`
	MinChunkSize    int  `json:"min_chunk_size"`
	ExtractEntities bool `json:"extract_entities"`

	// Hierarchical strategy
	PreserveCodeBlocks bool `json:"preserve_code_blocks"`

	// Semantic strategy
	SemanticSimilarityThreshold float32 `json:"semantic_similarity_threshold"`
	MinSentencesPerChunk        int     `json:"min_sentences_per_chunk"`
	MaxSentencesPerChunk        int     `json:"max_sentences_per_chunk"`

	// Per-chunk annotation caps
	MaxEntitiesPerChunk int `json:"max_entities_per_chunk"`
	MaxKeywordsPerChunk int `json:"max_keywords_per_chunk"`
}

// DefaultChunkOptions returns the default chunking configuration
func DefaultChunkOptions() ChunkOptions {
	return ChunkOptions{
		ChunkSize:                   1000,
		ChunkOverlap:                200,
		MinChunkSize:                100,
		ExtractEntities:             true,
		PreserveCodeBlocks:          true,
		SemanticSimilarityThreshold: 0.5,
		MinSentencesPerChunk:        2,
		MaxSentencesPerChunk:        10,
		MaxEntitiesPerChunk:         15,
		MaxKeywordsPerChunk:         8,
	}
}

// QueryConfig represents configuration for a hybrid retrieval query
type QueryConfig struct {
	TopK     int     `json:"top_k"`
	MinScore float64 `json:"min_score"`

	// Component weights, expected to sum to 1.0
	SemanticWeight float64 `json:"semantic_weight"`
	EntityWeight   float64 `json:"entity_weight"`
	KeywordWeight  float64 `json:"keyword_weight"`
	GraphWeight    float64 `json:"graph_weight"`

	// Per-entity-type boost multipliers for entity matches
	EntityBoosts map[EntityType]float64 `json:"entity_boosts,omitempty"`

	// Temporal decay scales scores by node age when enabled
	TemporalDecay bool `json:"temporal_decay"`

	// Graph traversal parameters for the traversal API
	MaxHops             int            `json:"max_hops,omitempty"`
	RelationTypes       []RelationType `json:"relation_types,omitempty"`
	FollowBidirectional bool           `json:"follow_bidirectional"`
}

// DefaultEntityBoosts returns the per-type boost multipliers applied to
// entity matches during scoring
func DefaultEntityBoosts() map[EntityType]float64 {
	return map[EntityType]float64{
		EntityTypeMoney:      2.0,
		EntityTypeCard:       2.0,
		EntityTypeAccount:    2.0,
		EntityTypeEmail:      1.8,
		EntityTypePhone:      1.8,
		EntityTypeDate:       1.5,
		EntityTypeTime:       1.5,
		EntityTypeDateTime:   1.5,
		EntityTypeURL:        1.3,
		EntityTypePercentage: 1.2,
		EntityTypeDuration:   1.2,
		EntityTypeNumber:     1.0,
		EntityTypeOrdinal:    1.0,
	}
}

// DefaultQueryConfig returns a sensible default configuration
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		TopK:                5,
		MinScore:            0.3,
		SemanticWeight:      0.5,
		EntityWeight:        0.25,
		KeywordWeight:       0.15,
		GraphWeight:         0.1,
		EntityBoosts:        DefaultEntityBoosts(),
		TemporalDecay:       true,
		MaxHops:             2,
		FollowBidirectional: true,
	}
}
