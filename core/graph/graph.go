package graph

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/siherrmann/kgraph/model"
)

// KnowledgeGraph holds all nodes and relations built from a set of entries.
// The graph owns its nodes exclusively and is immutable after construction:
// concurrent searches against the same graph are safe, mutation is not.
type KnowledgeGraph struct {
	Nodes        map[string]*model.Node
	Relations    []*model.Relation
	EntityIndex  map[string]map[string]struct{}
	KeywordIndex map[string]map[string]struct{}
	LastUpdated  time.Time
}

// NewKnowledgeGraph creates an empty graph
func NewKnowledgeGraph() *KnowledgeGraph {
	return &KnowledgeGraph{
		Nodes:        make(map[string]*model.Node),
		Relations:    []*model.Relation{},
		EntityIndex:  make(map[string]map[string]struct{}),
		KeywordIndex: make(map[string]map[string]struct{}),
		LastUpdated:  time.Now(),
	}
}

// Node returns the node with the given id, or nil
func (g *KnowledgeGraph) Node(id string) *model.Node {
	return g.Nodes[id]
}

// EntityKey builds the entity index key "type:value" using the lowercased
// normalized value when available, the raw value otherwise
func EntityKey(e model.Entity) string {
	return fmt.Sprintf("%s:%s", e.Type, normalizedValue(e))
}

// normalizedValue renders an entity's normalized form (or raw value) as the
// lowercased string used for index keys and entity equality
func normalizedValue(e model.Entity) string {
	switch v := e.Normalized.(type) {
	case nil:
		return strings.ToLower(e.Value)
	case string:
		return strings.ToLower(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return strings.ToLower(fmt.Sprintf("%v", v))
	}
}

// AddNode inserts a node and indexes its entities and keywords. It is a
// construction-time operation: callers must not add nodes to a graph that is
// already being searched.
func (g *KnowledgeGraph) AddNode(node *model.Node) {
	g.Nodes[node.ID] = node

	for _, e := range node.Entities {
		key := EntityKey(e)
		if g.EntityIndex[key] == nil {
			g.EntityIndex[key] = make(map[string]struct{})
		}
		g.EntityIndex[key][node.ID] = struct{}{}
	}

	for _, kw := range node.Keywords {
		if g.KeywordIndex[kw] == nil {
			g.KeywordIndex[kw] = make(map[string]struct{})
		}
		g.KeywordIndex[kw][node.ID] = struct{}{}
	}
}

// AddRelation appends a relation to the flat list and to both endpoint
// nodes. The same relation value is shared by all three references so the
// copies cannot diverge.
func (g *KnowledgeGraph) AddRelation(relation *model.Relation) {
	g.Relations = append(g.Relations, relation)

	if source := g.Nodes[relation.SourceID]; source != nil {
		source.Relations = append(source.Relations, relation)
	}
	if target := g.Nodes[relation.TargetID]; target != nil {
		target.Relations = append(target.Relations, relation)
	}
}

// NeighborID returns the other endpoint of a relation relative to nodeID
func NeighborID(relation *model.Relation, nodeID string) string {
	if relation.SourceID == nodeID {
		return relation.TargetID
	}
	return relation.SourceID
}

// Validate checks the graph's structural invariants: every relation endpoint
// and every indexed node id must exist in Nodes
func (g *KnowledgeGraph) Validate() error {
	for _, r := range g.Relations {
		if _, ok := g.Nodes[r.SourceID]; !ok {
			return fmt.Errorf("relation source %q not in graph", r.SourceID)
		}
		if _, ok := g.Nodes[r.TargetID]; !ok {
			return fmt.Errorf("relation target %q not in graph", r.TargetID)
		}
	}

	for key, ids := range g.EntityIndex {
		for id := range ids {
			if _, ok := g.Nodes[id]; !ok {
				return fmt.Errorf("entity index %q references unknown node %q", key, id)
			}
		}
	}

	for kw, ids := range g.KeywordIndex {
		for id := range ids {
			if _, ok := g.Nodes[id]; !ok {
				return fmt.Errorf("keyword index %q references unknown node %q", kw, id)
			}
		}
	}

	return nil
}
