package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/kgraph/helper"
	"github.com/siherrmann/kgraph/model"
)

// NodesDBHandlerFunctions defines the interface for node database operations.
type NodesDBHandlerFunctions interface {
	InsertNode(node *model.Node) error
	SelectNode(id string) (*model.Node, error)
	SelectAllNodes() ([]*model.Node, error)
	SelectNodesBySimilarity(embedding []float32, topK int, minSimilarity float64) ([]*NodeWithSimilarity, error)
	DeleteNodesByEntry(entryID int64) error
	DeleteAllNodes() error
}

// NodesDBHandler persists knowledge graph nodes with their embeddings
type NodesDBHandler struct {
	db           *helper.Database
	embeddingDim int
}

// NodeWithSimilarity is a node annotated with its cosine similarity to a
// query embedding
type NodeWithSimilarity struct {
	Node       *model.Node
	Similarity float64
}

// NewNodesDBHandler creates a new nodes database handler and ensures the
// pgvector extension and the nodes table exist
func NewNodesDBHandler(db *helper.Database, embeddingDim int) (*NodesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	h := &NodesDBHandler{
		db:           db,
		embeddingDim: embeddingDim,
	}

	if err := h.CreateTable(); err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized NodesDBHandler")

	return h, nil
}

// CreateTable creates the 'nodes' table and its indexes if they do not exist
func (h *NodesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector;`)
	if err != nil {
		return helper.NewError("create vector extension", err)
	}

	_, err = h.db.Instance.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			entry_id BIGINT NOT NULL,
			chunk_id TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			entities JSONB NOT NULL DEFAULT '[]',
			keywords TEXT[] NOT NULL DEFAULT '{}',
			embedding vector(%d),
			source TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ,
			char_count INTEGER NOT NULL DEFAULT 0,
			entity_count INTEGER NOT NULL DEFAULT 0
		);`, h.embeddingDim))
	if err != nil {
		return helper.NewError("create nodes table", err)
	}

	_, err = h.db.Instance.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_nodes_entry ON nodes (entry_id);`)
	if err != nil {
		return helper.NewError("create entry index", err)
	}

	_, err = h.db.Instance.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_nodes_embedding ON nodes USING hnsw (embedding vector_cosine_ops);`)
	if err != nil {
		return helper.NewError("create embedding index", err)
	}

	h.db.Logger.Info("Checked/created table nodes")

	return nil
}

// InsertNode inserts a node (or updates it if the id exists)
func (h *NodesDBHandler) InsertNode(node *model.Node) error {
	entities, err := json.Marshal(node.Entities)
	if err != nil {
		return helper.NewError("marshal entities", err)
	}

	keywords := node.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	var embedding interface{}
	if len(node.Embedding) > 0 {
		embedding = pgvector.NewVector(node.Embedding)
	}

	var createdAt interface{}
	if !node.Metadata.CreatedAt.IsZero() {
		createdAt = node.Metadata.CreatedAt
	}

	_, err = h.db.Instance.Exec(
		`INSERT INTO nodes (id, entry_id, chunk_id, content, title, entities, keywords, embedding, source, created_at, char_count, entity_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			entry_id = EXCLUDED.entry_id,
			chunk_id = EXCLUDED.chunk_id,
			content = EXCLUDED.content,
			title = EXCLUDED.title,
			entities = EXCLUDED.entities,
			keywords = EXCLUDED.keywords,
			embedding = EXCLUDED.embedding,
			source = EXCLUDED.source,
			created_at = EXCLUDED.created_at,
			char_count = EXCLUDED.char_count,
			entity_count = EXCLUDED.entity_count;`,
		node.ID,
		node.EntryID,
		node.ChunkID,
		node.Content,
		node.Title,
		entities,
		pq.Array(keywords),
		embedding,
		node.Metadata.Source,
		createdAt,
		node.Metadata.CharCount,
		node.Metadata.EntityCount,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}

	return nil
}

// SelectNode retrieves a node by id
func (h *NodesDBHandler) SelectNode(id string) (*model.Node, error) {
	row := h.db.Instance.QueryRow(
		`SELECT id, entry_id, chunk_id, content, title, entities, keywords, embedding, source, created_at, char_count, entity_count
		FROM nodes WHERE id = $1;`,
		id,
	)

	node, err := scanNode(row)
	if err != nil {
		return nil, err
	}

	return node, nil
}

// SelectAllNodes retrieves all nodes
func (h *NodesDBHandler) SelectAllNodes() ([]*model.Node, error) {
	rows, err := h.db.Instance.Query(
		`SELECT id, entry_id, chunk_id, content, title, entities, keywords, embedding, source, created_at, char_count, entity_count
		FROM nodes ORDER BY entry_id, id;`,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var nodes []*model.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return nodes, nil
}

// SelectNodesBySimilarity retrieves the topK nodes by cosine similarity to
// the given embedding, excluding nodes below minSimilarity
func (h *NodesDBHandler) SelectNodesBySimilarity(embedding []float32, topK int, minSimilarity float64) ([]*NodeWithSimilarity, error) {
	rows, err := h.db.Instance.Query(
		`SELECT id, entry_id, chunk_id, content, title, entities, keywords, embedding, source, created_at, char_count, entity_count,
			1 - (embedding <=> $1) AS similarity
		FROM nodes
		WHERE embedding IS NOT NULL AND 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1
		LIMIT $3;`,
		pgvector.NewVector(embedding),
		minSimilarity,
		topK,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var results []*NodeWithSimilarity
	for rows.Next() {
		result, err := scanNodeWithSimilarity(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}

// DeleteNodesByEntry deletes all nodes belonging to an entry
func (h *NodesDBHandler) DeleteNodesByEntry(entryID int64) error {
	_, err := h.db.Instance.Exec(`DELETE FROM nodes WHERE entry_id = $1;`, entryID)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteAllNodes clears the nodes table
func (h *NodesDBHandler) DeleteAllNodes() error {
	_, err := h.db.Instance.Exec(`DELETE FROM nodes;`)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat.
// indexType: "hnsw" or "ivfflat"
// params: optional parameters for index creation
//   - For HNSW: "m" (int, default 16), "ef_construction" (int, default 64)
//   - For IVFFlat: "lists" (int, default 100)
func (h *NodesDBHandler) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	// Drop existing index
	_, err := h.db.Instance.ExecContext(ctx, `DROP INDEX IF EXISTS idx_nodes_embedding;`)
	if err != nil {
		return helper.NewError("drop index", err)
	}

	h.db.Logger.Info("Dropped existing vector index")

	var createIndexSQL string

	switch indexType {
	case "hnsw":
		m := 16
		efConstruction := 64

		if mVal, ok := params["m"].(int); ok {
			m = mVal
		}
		if efVal, ok := params["ef_construction"].(int); ok {
			efConstruction = efVal
		}

		createIndexSQL = fmt.Sprintf(
			`CREATE INDEX idx_nodes_embedding ON nodes USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d);`,
			m, efConstruction,
		)

	case "ivfflat":
		lists := 100
		if listsVal, ok := params["lists"].(int); ok {
			lists = listsVal
		}

		createIndexSQL = fmt.Sprintf(
			`CREATE INDEX idx_nodes_embedding ON nodes USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d);`,
			lists,
		)

	default:
		return helper.NewError("change index type", fmt.Errorf("unsupported index type: %s (use 'hnsw' or 'ivfflat')", indexType))
	}

	_, err = h.db.Instance.ExecContext(ctx, createIndexSQL)
	if err != nil {
		return helper.NewError("create index", err)
	}

	h.db.Logger.Info(fmt.Sprintf("Created %s index with params: %v", indexType, params))

	return nil
}

// rowScanner abstracts sql.Row and sql.Rows for node scanning
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNode(row rowScanner) (*model.Node, error) {
	node := &model.Node{}
	var entities []byte
	var keywords pq.StringArray
	var embedding *pgvector.Vector
	var createdAt sql.NullTime

	err := row.Scan(
		&node.ID,
		&node.EntryID,
		&node.ChunkID,
		&node.Content,
		&node.Title,
		&entities,
		&keywords,
		&embedding,
		&node.Metadata.Source,
		&createdAt,
		&node.Metadata.CharCount,
		&node.Metadata.EntityCount,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	if err := json.Unmarshal(entities, &node.Entities); err != nil {
		return nil, helper.NewError("unmarshal entities", err)
	}
	node.Keywords = keywords
	if embedding != nil {
		node.Embedding = embedding.Slice()
	}
	if createdAt.Valid {
		node.Metadata.CreatedAt = createdAt.Time
	}

	return node, nil
}

func scanNodeWithSimilarity(rows *sql.Rows) (*NodeWithSimilarity, error) {
	node := &model.Node{}
	var entities []byte
	var keywords pq.StringArray
	var embedding *pgvector.Vector
	var createdAt sql.NullTime
	var similarity float64

	err := rows.Scan(
		&node.ID,
		&node.EntryID,
		&node.ChunkID,
		&node.Content,
		&node.Title,
		&entities,
		&keywords,
		&embedding,
		&node.Metadata.Source,
		&createdAt,
		&node.Metadata.CharCount,
		&node.Metadata.EntityCount,
		&similarity,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	if err := json.Unmarshal(entities, &node.Entities); err != nil {
		return nil, helper.NewError("unmarshal entities", err)
	}
	node.Keywords = keywords
	if embedding != nil {
		node.Embedding = embedding.Slice()
	}
	if createdAt.Valid {
		node.Metadata.CreatedAt = createdAt.Time
	}

	return &NodeWithSimilarity{Node: node, Similarity: similarity}, nil
}
