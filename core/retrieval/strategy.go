package retrieval

import (
	"context"
	"log/slog"

	"github.com/siherrmann/kgraph/core/chunk"
	"github.com/siherrmann/kgraph/model"
)

// Strategy defines a retrieval strategy
type Strategy interface {
	Retrieve(ctx context.Context, query string, config *model.QueryConfig) ([]*model.SearchResult, error)
}

// HybridStrategy blends semantic similarity with symbolic signals using the
// configured component weights
type HybridStrategy struct {
	engine   *Engine
	embedder chunk.EmbedFunc
}

// NewHybridStrategy creates a new hybrid strategy
func NewHybridStrategy(engine *Engine, embedder chunk.EmbedFunc) *HybridStrategy {
	return &HybridStrategy{engine: engine, embedder: embedder}
}

// Retrieve performs hybrid retrieval
func (s *HybridStrategy) Retrieve(ctx context.Context, query string, config *model.QueryConfig) ([]*model.SearchResult, error) {
	return s.engine.HybridSearch(ctx, query, s.embedder, config)
}

// SymbolicStrategy ranks without embeddings: the semantic weight is
// redistributed proportionally across the entity, keyword and graph
// components. It also serves as the degraded fallback when the query
// embedding cannot be obtained.
type SymbolicStrategy struct {
	engine *Engine
}

// NewSymbolicStrategy creates a new symbolic-only strategy
func NewSymbolicStrategy(engine *Engine) *SymbolicStrategy {
	return &SymbolicStrategy{engine: engine}
}

// Retrieve performs symbolic-only retrieval
func (s *SymbolicStrategy) Retrieve(ctx context.Context, query string, config *model.QueryConfig) ([]*model.SearchResult, error) {
	if config == nil {
		defaults := model.DefaultQueryConfig()
		config = &defaults
	}

	symbolic := redistributeSemanticWeight(*config)
	return s.engine.HybridSearch(ctx, query, nil, &symbolic)
}

// FallbackStrategy tries hybrid retrieval first and falls back to the
// symbolic-only strategy when the query embedding fails
type FallbackStrategy struct {
	hybrid   *HybridStrategy
	symbolic *SymbolicStrategy
	log      *slog.Logger
}

// NewFallbackStrategy creates a hybrid strategy with symbolic fallback
func NewFallbackStrategy(engine *Engine, embedder chunk.EmbedFunc, logger *slog.Logger) *FallbackStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackStrategy{
		hybrid:   NewHybridStrategy(engine, embedder),
		symbolic: NewSymbolicStrategy(engine),
		log:      logger,
	}
}

// Retrieve performs hybrid retrieval, degrading to symbolic-only on
// embedding failure
func (s *FallbackStrategy) Retrieve(ctx context.Context, query string, config *model.QueryConfig) ([]*model.SearchResult, error) {
	results, err := s.hybrid.Retrieve(ctx, query, config)
	if err == nil {
		return results, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	s.log.Warn("Query embedding failed, falling back to symbolic-only retrieval", slog.String("error", err.Error()))
	return s.symbolic.Retrieve(ctx, query, config)
}

// redistributeSemanticWeight zeroes the semantic weight and scales the
// remaining component weights so they still sum to the original total
func redistributeSemanticWeight(config model.QueryConfig) model.QueryConfig {
	remaining := config.EntityWeight + config.KeywordWeight + config.GraphWeight
	if remaining <= 0 || config.SemanticWeight <= 0 {
		config.SemanticWeight = 0
		return config
	}

	scale := (remaining + config.SemanticWeight) / remaining
	config.SemanticWeight = 0
	config.EntityWeight *= scale
	config.KeywordWeight *= scale
	config.GraphWeight *= scale
	return config
}
