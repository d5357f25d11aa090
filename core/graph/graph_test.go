package graph

import (
	"testing"
	"time"

	"github.com/siherrmann/kgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityKey(t *testing.T) {
	t.Run("Float normalized value", func(t *testing.T) {
		e := model.Entity{Type: model.EntityTypeMoney, Value: "$1,234.56", Normalized: 1234.56}

		assert.Equal(t, "money:1234.56", EntityKey(e))
	})

	t.Run("String normalized value is lowercased", func(t *testing.T) {
		e := model.Entity{Type: model.EntityTypeEmail, Value: "Billing@Acme.com", Normalized: "Billing@Acme.com"}

		assert.Equal(t, "email:billing@acme.com", EntityKey(e))
	})

	t.Run("Nil normalized falls back to the lowercased raw value", func(t *testing.T) {
		e := model.Entity{Type: model.EntityTypeCard, Value: "4111-1111-1111-1111"}

		assert.Equal(t, "card:4111-1111-1111-1111", EntityKey(e))
	})

	t.Run("Time normalized value uses RFC3339", func(t *testing.T) {
		e := model.Entity{
			Type:       model.EntityTypeDate,
			Value:      "2024-03-15",
			Normalized: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		}

		assert.Equal(t, "date:2024-03-15T00:00:00Z", EntityKey(e))
	})

	t.Run("Same entity in different raw spellings shares a key", func(t *testing.T) {
		a := model.Entity{Type: model.EntityTypeMoney, Value: "$500.00", Normalized: 500.0}
		b := model.Entity{Type: model.EntityTypeMoney, Value: "500 USD", Normalized: 500.0}

		assert.Equal(t, EntityKey(a), EntityKey(b), "Expected normalization to unify spellings")
	})
}

func TestKnowledgeGraph(t *testing.T) {
	t.Run("AddNode indexes entities and keywords", func(t *testing.T) {
		g := NewKnowledgeGraph()
		node := &model.Node{
			ID:       "1",
			EntryID:  1,
			Content:  "Invoice $500.00",
			Entities: []model.Entity{{Type: model.EntityTypeMoney, Value: "$500.00", Normalized: 500.0}},
			Keywords: []string{"invoice"},
		}

		g.AddNode(node)

		assert.Same(t, node, g.Node("1"), "Expected node lookup by id")
		assert.Contains(t, g.EntityIndex, "money:500", "Expected entity index entry")
		assert.Contains(t, g.EntityIndex["money:500"], "1", "Expected node id under entity key")
		assert.Contains(t, g.KeywordIndex, "invoice", "Expected keyword index entry")
		assert.Contains(t, g.KeywordIndex["invoice"], "1", "Expected node id under keyword")
	})

	t.Run("AddRelation shares one value across all references", func(t *testing.T) {
		g := NewKnowledgeGraph()
		g.AddNode(&model.Node{ID: "a"})
		g.AddNode(&model.Node{ID: "b"})

		relation := &model.Relation{SourceID: "a", TargetID: "b", Type: model.RelationTypeFollows, Weight: 1.0}
		g.AddRelation(relation)

		require.Len(t, g.Relations, 1)
		require.Len(t, g.Node("a").Relations, 1)
		require.Len(t, g.Node("b").Relations, 1)
		assert.Same(t, relation, g.Relations[0])
		assert.Same(t, relation, g.Node("a").Relations[0], "Expected the same relation pointer on the source")
		assert.Same(t, relation, g.Node("b").Relations[0], "Expected the same relation pointer on the target")
	})

	t.Run("NeighborID returns the other endpoint", func(t *testing.T) {
		relation := &model.Relation{SourceID: "a", TargetID: "b"}

		assert.Equal(t, "b", NeighborID(relation, "a"))
		assert.Equal(t, "a", NeighborID(relation, "b"))
	})

	t.Run("Node returns nil for unknown ids", func(t *testing.T) {
		g := NewKnowledgeGraph()

		assert.Nil(t, g.Node("missing"))
	})
}

func TestValidate(t *testing.T) {
	t.Run("Valid graph passes", func(t *testing.T) {
		g := NewKnowledgeGraph()
		g.AddNode(&model.Node{ID: "a", Keywords: []string{"alpha"}})
		g.AddNode(&model.Node{ID: "b"})
		g.AddRelation(&model.Relation{SourceID: "a", TargetID: "b", Type: model.RelationTypeSameTopic, Weight: 0.5})

		assert.NoError(t, g.Validate())
	})

	t.Run("Dangling relation endpoint fails", func(t *testing.T) {
		g := NewKnowledgeGraph()
		g.AddNode(&model.Node{ID: "a"})
		g.AddRelation(&model.Relation{SourceID: "a", TargetID: "ghost", Type: model.RelationTypeSameTopic, Weight: 0.5})

		err := g.Validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "ghost", "Expected the dangling id in the error")
	})
}
