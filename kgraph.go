package kgraph

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/siherrmann/kgraph/core/chunk"
	"github.com/siherrmann/kgraph/core/graph"
	"github.com/siherrmann/kgraph/core/pipeline"
	"github.com/siherrmann/kgraph/core/retrieval"
	"github.com/siherrmann/kgraph/database"
	"github.com/siherrmann/kgraph/helper"
	"github.com/siherrmann/kgraph/model"
)

// KGraph provides a unified interface to the chunking pipeline, the
// knowledge graph and the retrieval engine
type KGraph struct {
	Pipeline *pipeline.Pipeline // Optional chunking pipeline
	Graph    *graph.KnowledgeGraph
	Engine   *retrieval.Engine
	Store    *database.Store // Optional postgres persistence
	DB       *helper.Database
	// Processed entries, consumed by BuildGraph
	entries []*model.Entry
	nextID  int64
	// Logging
	log *slog.Logger
}

// New creates a new in-memory KGraph instance
func New() *KGraph {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	g := graph.NewKnowledgeGraph()

	return &KGraph{
		Graph:  g,
		Engine: retrieval.NewEngine(g, logger),
		nextID: 1,
		log:    logger,
	}
}

// NewWithDatabase creates a KGraph instance with a postgres store attached,
// so built graphs can be saved and loaded across runs
func NewWithDatabase(config *helper.DatabaseConfiguration, embeddingDim int) (*KGraph, error) {
	k := New()

	db := helper.NewDatabase("kgraph", config, k.log)
	store, err := database.NewStore(db, embeddingDim)
	if err != nil {
		return nil, helper.NewError("create store", err)
	}

	k.DB = db
	k.Store = store
	return k, nil
}

// Close closes the database connection if one is attached
func (k *KGraph) Close() error {
	if k.DB != nil && k.DB.Instance != nil {
		return k.DB.Instance.Close()
	}
	return nil
}

// SetPipeline sets the chunking pipeline for entry processing
func (k *KGraph) SetPipeline(pipeline *pipeline.Pipeline) {
	k.Pipeline = pipeline
}

// UseDefaultPipeline sets up the default auto-selecting chunker and the
// default embedder (all-MiniLM-L6-v2, 384 dimensions)
func (k *KGraph) UseDefaultPipeline() error {
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	chunker := chunk.Auto(model.DefaultChunkOptions(), embedder, k.log)
	k.Pipeline = pipeline.NewPipeline(chunker, embedder)
	return nil
}

// UseSymbolicPipeline sets up an embedding-free pipeline with entity-aware
// chunking. Search over a graph built this way relies on entity, keyword and
// graph signals only.
func (k *KGraph) UseSymbolicPipeline() {
	chunker := chunk.EntityAware(model.DefaultChunkOptions())
	k.Pipeline = pipeline.NewPipeline(chunker, nil)
}

// AddEntry processes an entry's content into annotated, embedded chunks and
// queues it for graph building. Returns the number of chunks produced.
func (k *KGraph) AddEntry(ctx context.Context, entry *model.Entry) (int, error) {
	if k.Pipeline == nil {
		return 0, helper.NewError("add entry", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}
	if entry.Content == "" {
		return 0, helper.NewError("add entry", fmt.Errorf("entry content is empty"))
	}

	if entry.ID == 0 {
		entry.ID = k.nextID
		k.nextID++
	} else if entry.ID >= k.nextID {
		k.nextID = entry.ID + 1
	}
	if entry.RID == uuid.Nil {
		entry.RID = uuid.New()
	}

	chunks, err := k.Pipeline.Process(ctx, entry.Content)
	if err != nil {
		return 0, helper.NewError("process chunks", err)
	}
	entry.Chunks = chunks
	k.entries = append(k.entries, entry)

	k.log.Info("Processed entry into chunks", slog.Int("num_chunks", len(chunks)), slog.Int64("entry_id", entry.ID), slog.String("title", entry.Title))

	return len(chunks), nil
}

// BuildGraph builds the knowledge graph from all added entries and rebinds
// the retrieval engine to it. Calling it again after adding more entries
// rebuilds the graph from scratch.
func (k *KGraph) BuildGraph() *graph.KnowledgeGraph {
	k.Graph = graph.Build(k.entries)
	k.Engine = retrieval.NewEngine(k.Graph, k.log)

	k.log.Info("Built knowledge graph", slog.Int("num_nodes", len(k.Graph.Nodes)), slog.Int("num_relations", len(k.Graph.Relations)))

	return k.Graph
}

// Search performs hybrid retrieval over the built graph, combining semantic,
// entity, keyword and graph signals
func (k *KGraph) Search(ctx context.Context, query string, config *model.QueryConfig) ([]*model.SearchResult, error) {
	strategy := retrieval.NewHybridStrategy(k.Engine, k.embedder())
	return strategy.Retrieve(ctx, query, config)
}

// SymbolicSearch performs retrieval without embeddings, redistributing the
// semantic weight over the entity, keyword and graph signals
func (k *KGraph) SymbolicSearch(ctx context.Context, query string, config *model.QueryConfig) ([]*model.SearchResult, error) {
	strategy := retrieval.NewSymbolicStrategy(k.Engine)
	return strategy.Retrieve(ctx, query, config)
}

// SearchWithFallback performs hybrid retrieval and degrades to symbolic
// retrieval if the hybrid path fails (e.g. the embedder errors)
func (k *KGraph) SearchWithFallback(ctx context.Context, query string, config *model.QueryConfig) ([]*model.SearchResult, error) {
	strategy := retrieval.NewFallbackStrategy(k.Engine, k.embedder(), k.log)
	return strategy.Retrieve(ctx, query, config)
}

// Reason performs hybrid retrieval and returns both the results and the
// reasoning chain explaining how the answer was derived
func (k *KGraph) Reason(ctx context.Context, query string, config *model.QueryConfig) ([]*model.SearchResult, *model.ReasoningChain, error) {
	results, err := k.Search(ctx, query, config)
	if err != nil {
		return nil, nil, helper.NewError("reason", err)
	}

	chain := retrieval.BuildReasoningChain(query, k.Graph, results)
	return results, chain, nil
}

// BFSTraversal performs breadth-first traversal from a node
func (k *KGraph) BFSTraversal(ctx context.Context, sourceID string, maxHops int, relationTypes []model.RelationType, followBidirectional bool) ([]*graph.TraversalResult, error) {
	return graph.BFS(ctx, k.Graph, sourceID, maxHops, relationTypes, followBidirectional)
}

// DFSTraversal performs depth-first traversal from a node
func (k *KGraph) DFSTraversal(ctx context.Context, sourceID string, maxHops int, relationTypes []model.RelationType, followBidirectional bool) ([]*graph.TraversalResult, error) {
	return graph.DFS(ctx, k.Graph, sourceID, maxHops, relationTypes, followBidirectional)
}

// SaveGraph persists the built graph to the attached store
func (k *KGraph) SaveGraph(ctx context.Context) error {
	if k.Store == nil {
		return helper.NewError("save graph", fmt.Errorf("no store attached, use NewWithDatabase()"))
	}
	return k.Store.SaveGraph(ctx, k.Graph)
}

// LoadGraph loads a persisted graph from the attached store and rebinds the
// retrieval engine to it
func (k *KGraph) LoadGraph(ctx context.Context) error {
	if k.Store == nil {
		return helper.NewError("load graph", fmt.Errorf("no store attached, use NewWithDatabase()"))
	}

	g, err := k.Store.LoadGraph(ctx)
	if err != nil {
		return helper.NewError("load graph", err)
	}

	k.Graph = g
	k.Engine = retrieval.NewEngine(g, k.log)
	return nil
}

func (k *KGraph) embedder() chunk.EmbedFunc {
	if k.Pipeline == nil {
		return nil
	}
	return k.Pipeline.Embedder
}
