package model

// EntityMatch records one query-entity-to-node-entity match in an explanation.
// Comparison is set when the match came from a money threshold operator
// ("greater_than" or "less_than") rather than a literal query entity.
type EntityMatch struct {
	Type       EntityType `json:"entity_type"`
	QueryValue string     `json:"query_value"`
	NodeValue  string     `json:"node_value"`
	Boost      float64    `json:"boost"`
	Comparison string     `json:"comparison,omitempty"`
}

// GraphConnection records a neighbor that voted relevance onto a node
type GraphConnection struct {
	NeighborID   string       `json:"neighbor_id"`
	Type         RelationType `json:"relation_type"`
	Weight       float64      `json:"weight"`
	Contribution float64      `json:"contribution"`
}

// Explanation enumerates why a result ranked where it did.
// It is a first-class output of every search, not a debug artifact.
type Explanation struct {
	SemanticScore     float64           `json:"semantic_score"`
	EntityMatches     []EntityMatch     `json:"entity_matches"`
	KeywordMatches    []string          `json:"keyword_matches"`
	GraphConnections  []GraphConnection `json:"graph_connections"`
	TemporalRelevance *float64          `json:"temporal_relevance,omitempty"`
}

// SearchResult represents one ranked node returned by the hybrid search
type SearchResult struct {
	NodeID      string      `json:"node_id"`
	Content     string      `json:"content"`
	Title       string      `json:"title"`
	Score       float64     `json:"score"`
	Explanation Explanation `json:"explanation"`
}
