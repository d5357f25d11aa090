package graph

import (
	"context"
	"testing"

	"github.com/siherrmann/kgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chainGraph builds a -> b -> c -> d with typed relations
func chainGraph() *KnowledgeGraph {
	g := NewKnowledgeGraph()
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddNode(&model.Node{ID: id, Content: "node " + id})
	}
	g.AddRelation(&model.Relation{SourceID: "a", TargetID: "b", Type: model.RelationTypeFollows, Weight: 1.0})
	g.AddRelation(&model.Relation{SourceID: "b", TargetID: "c", Type: model.RelationTypeSameTopic, Weight: 0.5})
	g.AddRelation(&model.Relation{SourceID: "c", TargetID: "d", Type: model.RelationTypeSameEntity, Weight: 0.3})
	return g
}

func resultIDs(results []*TraversalResult) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.Node.ID)
	}
	return ids
}

func TestBFS(t *testing.T) {
	ctx := context.Background()

	t.Run("Visits nodes within the hop limit", func(t *testing.T) {
		g := chainGraph()

		results, err := BFS(ctx, g, "a", 2, nil, true)

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, resultIDs(results), "Expected breadth-first order up to two hops")
	})

	t.Run("Distances and paths track the route", func(t *testing.T) {
		g := chainGraph()

		results, err := BFS(ctx, g, "a", 3, nil, true)

		require.NoError(t, err)
		require.Len(t, results, 4)
		assert.Equal(t, 0, results[0].Distance)
		assert.Equal(t, []string{"a"}, results[0].Path)
		assert.Equal(t, 2, results[2].Distance)
		assert.Equal(t, []string{"a", "b", "c"}, results[2].Path)
		assert.Equal(t, []string{"a", "b", "c", "d"}, results[3].Path)
	})

	t.Run("Relation type filter prunes the frontier", func(t *testing.T) {
		g := chainGraph()

		results, err := BFS(ctx, g, "a", 3, []model.RelationType{model.RelationTypeFollows}, true)

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, resultIDs(results), "Expected only the follows edge traversed")
	})

	t.Run("Directed traversal ignores incoming relations", func(t *testing.T) {
		g := chainGraph()

		results, err := BFS(ctx, g, "b", 3, nil, false)

		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c", "d"}, resultIDs(results), "Expected no backwards traversal to a")
	})

	t.Run("Bidirectional traversal reaches both sides", func(t *testing.T) {
		g := chainGraph()

		results, err := BFS(ctx, g, "b", 3, nil, true)

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, resultIDs(results))
	})

	t.Run("Unknown source is an error", func(t *testing.T) {
		g := chainGraph()

		_, err := BFS(ctx, g, "ghost", 2, nil, true)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "ghost")
	})

	t.Run("Cancelled context aborts traversal", func(t *testing.T) {
		g := chainGraph()
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := BFS(cancelled, g, "a", 2, nil, true)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDFS(t *testing.T) {
	ctx := context.Background()

	t.Run("Visits all reachable nodes depth-first", func(t *testing.T) {
		g := chainGraph()

		results, err := DFS(ctx, g, "a", 3, nil, true)

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "d"}, resultIDs(results))
		assert.Equal(t, []string{"a", "b", "c", "d"}, results[3].Path)
		assert.Equal(t, 3, results[3].Distance)
	})

	t.Run("Hop limit bounds the depth", func(t *testing.T) {
		g := chainGraph()

		results, err := DFS(ctx, g, "a", 1, nil, true)

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, resultIDs(results))
	})

	t.Run("Relation type filter applies", func(t *testing.T) {
		g := chainGraph()

		results, err := DFS(ctx, g, "a", 3, []model.RelationType{model.RelationTypeFollows, model.RelationTypeSameTopic}, true)

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, resultIDs(results), "Expected the same_entity edge pruned")
	})

	t.Run("Unknown source is an error", func(t *testing.T) {
		g := chainGraph()

		_, err := DFS(ctx, g, "ghost", 2, nil, true)

		assert.Error(t, err)
	})
}
