package database

import (
	"context"
	"time"

	"github.com/siherrmann/kgraph/core/graph"
	"github.com/siherrmann/kgraph/helper"
)

// Store persists a knowledge graph to postgres and loads it back. It is an
// optional layer: the graph itself is fully functional in memory.
type Store struct {
	Nodes     NodesDBHandlerFunctions
	Relations RelationsDBHandlerFunctions
}

// NewStore creates a Store with handlers bound to the given database
func NewStore(db *helper.Database, embeddingDim int) (*Store, error) {
	nodes, err := NewNodesDBHandler(db, embeddingDim)
	if err != nil {
		return nil, helper.NewError("new nodes handler", err)
	}

	relations, err := NewRelationsDBHandler(db)
	if err != nil {
		return nil, helper.NewError("new relations handler", err)
	}

	return &Store{Nodes: nodes, Relations: relations}, nil
}

// SaveGraph replaces the persisted graph with the given one
func (s *Store) SaveGraph(ctx context.Context, g *graph.KnowledgeGraph) error {
	if err := s.Relations.DeleteAllRelations(); err != nil {
		return helper.NewError("delete relations", err)
	}
	if err := s.Nodes.DeleteAllNodes(); err != nil {
		return helper.NewError("delete nodes", err)
	}

	for _, node := range g.Nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Nodes.InsertNode(node); err != nil {
			return helper.NewError("insert node", err)
		}
	}

	for _, relation := range g.Relations {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Relations.InsertRelation(relation); err != nil {
			return helper.NewError("insert relation", err)
		}
	}

	return nil
}

// LoadGraph reads all persisted nodes and relations and rebuilds the
// in-memory graph, including its entity and keyword indexes
func (s *Store) LoadGraph(ctx context.Context) (*graph.KnowledgeGraph, error) {
	g := graph.NewKnowledgeGraph()

	nodes, err := s.Nodes.SelectAllNodes()
	if err != nil {
		return nil, helper.NewError("select nodes", err)
	}
	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// Relations are re-attached below; persisted node rows carry none.
		node.Relations = nil
		g.AddNode(node)
	}

	relations, err := s.Relations.SelectAllRelations()
	if err != nil {
		return nil, helper.NewError("select relations", err)
	}
	for _, relation := range relations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g.AddRelation(relation)
	}

	g.LastUpdated = time.Now()

	return g, nil
}
