package database

import (
	"context"
	"testing"
	"time"

	"github.com/siherrmann/kgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNode(id string, embedding []float32) *model.Node {
	return &model.Node{
		ID:      id,
		EntryID: 1,
		ChunkID: "chunk-0",
		Content: "Transaction of $750.00 processed on 2024-02-01.",
		Title:   "February payment",
		Entities: []model.Entity{
			{Type: model.EntityTypeMoney, Value: "$750.00", Normalized: 750.0, Confidence: 0.9, Start: 15, End: 22},
		},
		Keywords:  []string{"transaction", "processed"},
		Embedding: embedding,
		Metadata: model.NodeMetadata{
			Source:      "mail",
			CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
			CharCount:   47,
			EntityCount: 1,
		},
	}
}

func TestNewNodesDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewNodesDBHandler", func(t *testing.T) {
		nodesDbHandler, err := NewNodesDBHandler(database, testEmbeddingDim)
		assert.NoError(t, err, "Expected NewNodesDBHandler to not return an error")
		require.NotNil(t, nodesDbHandler, "Expected NewNodesDBHandler to return a non-nil instance")
		require.NotNil(t, nodesDbHandler.db, "Expected NewNodesDBHandler to have a non-nil database instance")
		require.NotNil(t, nodesDbHandler.db.Instance, "Expected NewNodesDBHandler to have a non-nil database connection instance")
	})

	t.Run("Invalid call NewNodesDBHandler with nil database", func(t *testing.T) {
		_, err := NewNodesDBHandler(nil, testEmbeddingDim)
		assert.Error(t, err, "Expected error when creating NodesDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestNodesInsertAndSelect(t *testing.T) {
	nodesDbHandler, err := NewNodesDBHandler(initDB(t), testEmbeddingDim)
	require.NoError(t, err, "Expected NewNodesDBHandler to not return an error")
	require.NoError(t, nodesDbHandler.DeleteAllNodes())

	t.Run("Insert node with embedding and select it back", func(t *testing.T) {
		node := testNode("1-chunk-0", []float32{1, 0, 0})

		err := nodesDbHandler.InsertNode(node)
		require.NoError(t, err, "Expected Insert to not return an error")

		selected, err := nodesDbHandler.SelectNode("1-chunk-0")
		require.NoError(t, err, "Expected Select to not return an error")
		assert.Equal(t, node.ID, selected.ID)
		assert.Equal(t, node.EntryID, selected.EntryID)
		assert.Equal(t, node.ChunkID, selected.ChunkID)
		assert.Equal(t, node.Content, selected.Content)
		assert.Equal(t, node.Title, selected.Title)
		assert.Equal(t, node.Keywords, selected.Keywords)
		assert.Equal(t, []float32{1, 0, 0}, selected.Embedding)
		assert.Equal(t, "mail", selected.Metadata.Source)
		assert.Equal(t, 47, selected.Metadata.CharCount)
		assert.Equal(t, 1, selected.Metadata.EntityCount)
		assert.WithinDuration(t, node.Metadata.CreatedAt, selected.Metadata.CreatedAt, time.Second)

		require.Len(t, selected.Entities, 1)
		assert.Equal(t, model.EntityTypeMoney, selected.Entities[0].Type)
		assert.Equal(t, "$750.00", selected.Entities[0].Value)
		assert.Equal(t, 750.0, selected.Entities[0].Normalized, "Expected the normalized value to survive the JSONB round trip")
	})

	t.Run("Insert node without embedding", func(t *testing.T) {
		node := testNode("2", nil)
		node.EntryID = 2
		node.ChunkID = ""
		node.Keywords = nil
		node.Metadata.CreatedAt = time.Time{}

		err := nodesDbHandler.InsertNode(node)
		require.NoError(t, err, "Expected Insert to not return an error")

		selected, err := nodesDbHandler.SelectNode("2")
		require.NoError(t, err)
		assert.Nil(t, selected.Embedding, "Expected no embedding for a symbolic-only node")
		assert.Empty(t, selected.Keywords)
		assert.True(t, selected.Metadata.CreatedAt.IsZero(), "Expected a NULL created_at to stay zero")
	})

	t.Run("Insert with existing id updates the node", func(t *testing.T) {
		node := testNode("1-chunk-0", []float32{0, 1, 0})
		node.Content = "Updated content"

		err := nodesDbHandler.InsertNode(node)
		require.NoError(t, err)

		selected, err := nodesDbHandler.SelectNode("1-chunk-0")
		require.NoError(t, err)
		assert.Equal(t, "Updated content", selected.Content)
		assert.Equal(t, []float32{0, 1, 0}, selected.Embedding)

		all, err := nodesDbHandler.SelectAllNodes()
		require.NoError(t, err)
		assert.Len(t, all, 2, "Expected the upsert to not create a second row")
	})

	t.Run("Select non-existent node", func(t *testing.T) {
		_, err := nodesDbHandler.SelectNode("does-not-exist")
		assert.Error(t, err, "Expected Select of a missing node to return an error")
	})

	t.Run("SelectAllNodes orders by entry and id", func(t *testing.T) {
		all, err := nodesDbHandler.SelectAllNodes()
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "1-chunk-0", all[0].ID)
		assert.Equal(t, "2", all[1].ID)
	})
}

func TestNodesSelectBySimilarity(t *testing.T) {
	nodesDbHandler, err := NewNodesDBHandler(initDB(t), testEmbeddingDim)
	require.NoError(t, err, "Expected NewNodesDBHandler to not return an error")
	require.NoError(t, nodesDbHandler.DeleteAllNodes())

	a := testNode("a", []float32{1, 0, 0})
	b := testNode("b", []float32{0, 1, 0})
	c := testNode("c", nil)
	for _, node := range []*model.Node{a, b, c} {
		require.NoError(t, nodesDbHandler.InsertNode(node))
	}

	t.Run("Orders results by cosine similarity", func(t *testing.T) {
		results, err := nodesDbHandler.SelectNodesBySimilarity([]float32{1, 0, 0}, 10, 0)

		require.NoError(t, err)
		require.Len(t, results, 2, "Expected nodes without embedding to be excluded")
		assert.Equal(t, "a", results[0].Node.ID)
		assert.InDelta(t, 1.0, results[0].Similarity, 0.0001)
		assert.Equal(t, "b", results[1].Node.ID)
		assert.InDelta(t, 0.0, results[1].Similarity, 0.0001)
	})

	t.Run("Minimum similarity filters orthogonal nodes", func(t *testing.T) {
		results, err := nodesDbHandler.SelectNodesBySimilarity([]float32{1, 0, 0}, 10, 0.9)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "a", results[0].Node.ID)
	})

	t.Run("TopK limits the result count", func(t *testing.T) {
		results, err := nodesDbHandler.SelectNodesBySimilarity([]float32{1, 0, 0}, 1, 0)

		require.NoError(t, err)
		assert.Len(t, results, 1)
	})
}

func TestNodesDelete(t *testing.T) {
	nodesDbHandler, err := NewNodesDBHandler(initDB(t), testEmbeddingDim)
	require.NoError(t, err, "Expected NewNodesDBHandler to not return an error")
	require.NoError(t, nodesDbHandler.DeleteAllNodes())

	first := testNode("1-chunk-0", nil)
	second := testNode("1-chunk-1", nil)
	other := testNode("2", nil)
	other.EntryID = 2
	for _, node := range []*model.Node{first, second, other} {
		require.NoError(t, nodesDbHandler.InsertNode(node))
	}

	t.Run("DeleteNodesByEntry removes only that entry's nodes", func(t *testing.T) {
		err := nodesDbHandler.DeleteNodesByEntry(1)
		require.NoError(t, err)

		all, err := nodesDbHandler.SelectAllNodes()
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "2", all[0].ID)
	})

	t.Run("DeleteAllNodes clears the table", func(t *testing.T) {
		err := nodesDbHandler.DeleteAllNodes()
		require.NoError(t, err)

		all, err := nodesDbHandler.SelectAllNodes()
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestNodesChangeIndexType(t *testing.T) {
	nodesDbHandler, err := NewNodesDBHandler(initDB(t), testEmbeddingDim)
	require.NoError(t, err, "Expected NewNodesDBHandler to not return an error")
	ctx := context.Background()

	t.Run("Change to ivfflat", func(t *testing.T) {
		err := nodesDbHandler.ChangeIndexType(ctx, "ivfflat", map[string]interface{}{"lists": 50})
		assert.NoError(t, err, "Expected ChangeIndexType to not return an error")
	})

	t.Run("Change back to hnsw with params", func(t *testing.T) {
		err := nodesDbHandler.ChangeIndexType(ctx, "hnsw", map[string]interface{}{"m": 8, "ef_construction": 32})
		assert.NoError(t, err, "Expected ChangeIndexType to not return an error")
	})

	t.Run("Unsupported index type", func(t *testing.T) {
		err := nodesDbHandler.ChangeIndexType(ctx, "btree", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported index type")
	})
}
