package retrieval

import (
	"context"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/siherrmann/kgraph/core/chunk"
	"github.com/siherrmann/kgraph/core/extract"
	"github.com/siherrmann/kgraph/core/graph"
	"github.com/siherrmann/kgraph/helper"
	"github.com/siherrmann/kgraph/model"
)

const (
	// comparisonBoost is the entity boost applied when a node's money entity
	// satisfies a detected threshold operator ("over $500"). This is its own
	// code path: the threshold amount in the query is not required to be
	// extracted as a literal money entity.
	comparisonBoost = 2.5

	// graphVoteFactor scales a neighboring relation's weight into the graph
	// connectivity component
	graphVoteFactor = 0.5

	// defaultEntityBoost applies to entity types without a configured boost
	defaultEntityBoost = 1.0
)

// Engine scores every node of a knowledge graph against a query, blending
// semantic similarity with symbolic entity, keyword and graph signals.
//
// Candidate selection scans all nodes rather than consulting the graph's
// inverted indexes; correct but unindexed, kept for score compatibility.
type Engine struct {
	graph *graph.KnowledgeGraph
	log   *slog.Logger
}

// NewEngine creates a retrieval engine over an immutable graph snapshot
func NewEngine(g *graph.KnowledgeGraph, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{graph: g, log: logger}
}

// Graph returns the graph snapshot this engine searches
func (e *Engine) Graph() *graph.KnowledgeGraph {
	return e.graph
}

// moneyComparison holds thresholds detected from comparison operators in a
// query
type moneyComparison struct {
	greaterThan *float64
	lessThan    *float64
}

var moneyGreaterRe = regexp.MustCompile(`(?i)(?:over|above|greater than|more than|>)\s*\$?\s*(\d[\d,]*(?:\.\d+)?)`)
var moneyLessRe = regexp.MustCompile(`(?i)(?:under|below|less than|<)\s*\$?\s*(\d[\d,]*(?:\.\d+)?)`)

// detectComparisons scans a query for money threshold operators
func detectComparisons(query string) moneyComparison {
	var cmp moneyComparison

	if m := moneyGreaterRe.FindStringSubmatch(query); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			cmp.greaterThan = &v
		}
	}
	if m := moneyLessRe.FindStringSubmatch(query); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			cmp.lessThan = &v
		}
	}

	return cmp
}

// HybridSearch ranks all graph nodes against the query. The embedder may be
// nil, in which case the semantic component contributes zero for every node
// (degraded symbolic-only mode); a failing embedder call is propagated since
// no results can be meaningfully ranked without a query embedding.
func (e *Engine) HybridSearch(ctx context.Context, query string, embedder chunk.EmbedFunc, config *model.QueryConfig) ([]*model.SearchResult, error) {
	if config == nil {
		defaults := model.DefaultQueryConfig()
		config = &defaults
	}

	queryExtraction := extract.Entities(query)
	comparison := detectComparisons(query)

	var queryEmbedding []float32
	if embedder != nil {
		embedding, err := embedder(ctx, query)
		if err != nil {
			return nil, helper.NewError("query embedding", err)
		}
		queryEmbedding = embedding
	}

	e.log.Debug("Hybrid search",
		slog.String("query", query),
		slog.Int("query_entities", len(queryExtraction.Entities)),
		slog.Int("query_keywords", len(queryExtraction.Keywords)),
		slog.Int("nodes", len(e.graph.Nodes)),
	)

	var results []*model.SearchResult

	for _, node := range e.graph.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		explanation := model.Explanation{
			EntityMatches:    []model.EntityMatch{},
			KeywordMatches:   []string{},
			GraphConnections: []model.GraphConnection{},
		}

		semantic := float64(cosineSimilarity(queryEmbedding, node.Embedding))
		explanation.SemanticScore = semantic

		entity := e.entityScore(node, queryExtraction.Entities, comparison, config, &explanation)
		keyword := keywordScore(node.Keywords, queryExtraction.Keywords, &explanation)
		graphScore := e.graphScore(node, queryExtraction.Entities, &explanation)

		score := semantic*config.SemanticWeight +
			entity*config.EntityWeight +
			keyword*config.KeywordWeight +
			graphScore*config.GraphWeight

		// Temporal decay softens but never zeroes the score
		if config.TemporalDecay && !node.Metadata.CreatedAt.IsZero() {
			ageDays := time.Since(node.Metadata.CreatedAt).Hours() / 24
			relevance := math.Exp(-ageDays / 365)
			explanation.TemporalRelevance = &relevance
			score *= 0.5 + 0.5*relevance
		}

		if score < config.MinScore {
			continue
		}

		results = append(results, &model.SearchResult{
			NodeID:      node.ID,
			Content:     node.Content,
			Title:       node.Title,
			Score:       score,
			Explanation: explanation,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].NodeID < results[j].NodeID
	})

	if config.TopK > 0 && len(results) > config.TopK {
		results = results[:config.TopK]
	}

	return results, nil
}

// entityScore sums per-type boosts for query entities matched by node
// entities, plus the money threshold path, normalized by the number of
// query entities (or 1 when only the comparison path fired)
func (e *Engine) entityScore(node *model.Node, queryEntities []model.Entity, comparison moneyComparison, config *model.QueryConfig, explanation *model.Explanation) float64 {
	total := 0.0

	for _, qe := range queryEntities {
		for _, ne := range node.Entities {
			if ne.Type != qe.Type {
				continue
			}
			if !entityValuesMatch(qe, ne) {
				continue
			}

			boost := defaultEntityBoost
			if b, ok := config.EntityBoosts[qe.Type]; ok {
				boost = b
			}
			total += boost

			explanation.EntityMatches = append(explanation.EntityMatches, model.EntityMatch{
				Type:       qe.Type,
				QueryValue: qe.Value,
				NodeValue:  ne.Value,
				Boost:      boost,
			})
			break
		}
	}

	// Threshold operators boost nodes whose money entities satisfy the
	// comparison even when the query itself yielded no money entity
	if comparison.greaterThan != nil || comparison.lessThan != nil {
		for _, ne := range node.Entities {
			if ne.Type != model.EntityTypeMoney {
				continue
			}
			amount, ok := ne.Normalized.(float64)
			if !ok {
				continue
			}

			if comparison.greaterThan != nil && amount > *comparison.greaterThan {
				total += comparisonBoost
				explanation.EntityMatches = append(explanation.EntityMatches, model.EntityMatch{
					Type:       model.EntityTypeMoney,
					QueryValue: strconv.FormatFloat(*comparison.greaterThan, 'f', -1, 64),
					NodeValue:  ne.Value,
					Boost:      comparisonBoost,
					Comparison: "greater_than",
				})
			}
			if comparison.lessThan != nil && amount < *comparison.lessThan {
				total += comparisonBoost
				explanation.EntityMatches = append(explanation.EntityMatches, model.EntityMatch{
					Type:       model.EntityTypeMoney,
					QueryValue: strconv.FormatFloat(*comparison.lessThan, 'f', -1, 64),
					NodeValue:  ne.Value,
					Boost:      comparisonBoost,
					Comparison: "less_than",
				})
			}
		}
	}

	divisor := float64(len(queryEntities))
	if divisor == 0 {
		divisor = 1
	}
	return total / divisor
}

// entityValuesMatch compares a query entity against a node entity by
// normalized equality or case-insensitive substring containment
func entityValuesMatch(qe, ne model.Entity) bool {
	if graph.EntityKey(qe) == graph.EntityKey(ne) {
		return true
	}

	qv := strings.ToLower(qe.Value)
	nv := strings.ToLower(ne.Value)
	return strings.Contains(nv, qv) || strings.Contains(qv, nv)
}

// keywordScore computes the fraction of query keywords present in the node
func keywordScore(nodeKeywords, queryKeywords []string, explanation *model.Explanation) float64 {
	if len(queryKeywords) == 0 {
		return 0
	}

	nodeSet := make(map[string]struct{}, len(nodeKeywords))
	for _, kw := range nodeKeywords {
		nodeSet[kw] = struct{}{}
	}

	matched := 0
	for _, kw := range queryKeywords {
		if _, ok := nodeSet[kw]; ok {
			matched++
			explanation.KeywordMatches = append(explanation.KeywordMatches, kw)
		}
	}

	return float64(matched) / float64(len(queryKeywords))
}

// graphScore lets entity-matching neighbors vote relevance onto a node:
// each relation whose other endpoint holds an entity matching a query
// entity contributes weight*graphVoteFactor, capped at 1.0 total
func (e *Engine) graphScore(node *model.Node, queryEntities []model.Entity, explanation *model.Explanation) float64 {
	if len(queryEntities) == 0 {
		return 0
	}

	total := 0.0
	for _, relation := range node.Relations {
		neighborID := graph.NeighborID(relation, node.ID)
		neighbor := e.graph.Node(neighborID)
		if neighbor == nil {
			continue
		}

		if !neighborMatchesQuery(neighbor, queryEntities) {
			continue
		}

		contribution := relation.Weight * graphVoteFactor
		total += contribution

		explanation.GraphConnections = append(explanation.GraphConnections, model.GraphConnection{
			NeighborID:   neighborID,
			Type:         relation.Type,
			Weight:       relation.Weight,
			Contribution: contribution,
		})
	}

	if total > 1 {
		total = 1
	}
	return total
}

func neighborMatchesQuery(neighbor *model.Node, queryEntities []model.Entity) bool {
	for _, qe := range queryEntities {
		qKey := graph.EntityKey(qe)
		for _, ne := range neighbor.Entities {
			if graph.EntityKey(ne) == qKey {
				return true
			}
		}
	}
	return false
}

// cosineSimilarity calculates the cosine similarity between two embedding
// vectors; mismatched dimensions yield 0 rather than an error
func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float32
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
