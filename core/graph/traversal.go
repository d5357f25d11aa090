package graph

import (
	"context"
	"fmt"

	"github.com/siherrmann/kgraph/model"
)

// TraversalResult contains a node and its distance from the source
type TraversalResult struct {
	Node     *model.Node
	Distance int
	Path     []string // Node ids from source to this node
}

// BFS performs breadth-first search from a source node. Relations are
// followed in both directions when followBidirectional is set; otherwise
// only source-to-target. An empty relationTypes slice follows all types.
func BFS(ctx context.Context, g *KnowledgeGraph, sourceID string, maxHops int, relationTypes []model.RelationType, followBidirectional bool) ([]*TraversalResult, error) {
	source := g.Node(sourceID)
	if source == nil {
		return nil, fmt.Errorf("node %q not in graph", sourceID)
	}

	visited := map[string]bool{sourceID: true}
	queue := []TraversalResult{{
		Node:     source,
		Distance: 0,
		Path:     []string{sourceID},
	}}

	var results []*TraversalResult

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current := queue[0]
		queue = queue[1:]

		results = append(results, &current)

		if current.Distance >= maxHops {
			continue
		}

		for _, relation := range current.Node.Relations {
			targetID, ok := followRelation(relation, current.Node.ID, relationTypes, followBidirectional)
			if !ok || visited[targetID] {
				continue
			}

			target := g.Node(targetID)
			if target == nil {
				continue
			}
			visited[targetID] = true

			newPath := make([]string, len(current.Path), len(current.Path)+1)
			copy(newPath, current.Path)
			newPath = append(newPath, targetID)

			queue = append(queue, TraversalResult{
				Node:     target,
				Distance: current.Distance + 1,
				Path:     newPath,
			})
		}
	}

	return results, nil
}

// DFS performs depth-first search from a source node
func DFS(ctx context.Context, g *KnowledgeGraph, sourceID string, maxHops int, relationTypes []model.RelationType, followBidirectional bool) ([]*TraversalResult, error) {
	source := g.Node(sourceID)
	if source == nil {
		return nil, fmt.Errorf("node %q not in graph", sourceID)
	}

	visited := make(map[string]bool)
	var results []*TraversalResult

	dfsRecursive(ctx, g, source, 0, maxHops, []string{sourceID}, relationTypes, followBidirectional, visited, &results)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func dfsRecursive(
	ctx context.Context,
	g *KnowledgeGraph,
	current *model.Node,
	distance int,
	maxHops int,
	path []string,
	relationTypes []model.RelationType,
	followBidirectional bool,
	visited map[string]bool,
	results *[]*TraversalResult,
) {
	if ctx.Err() != nil {
		return
	}

	visited[current.ID] = true

	pathCopy := make([]string, len(path))
	copy(pathCopy, path)
	*results = append(*results, &TraversalResult{
		Node:     current,
		Distance: distance,
		Path:     pathCopy,
	})

	if distance >= maxHops {
		return
	}

	for _, relation := range current.Relations {
		targetID, ok := followRelation(relation, current.ID, relationTypes, followBidirectional)
		if !ok || visited[targetID] {
			continue
		}

		target := g.Node(targetID)
		if target == nil {
			continue
		}

		newPath := make([]string, len(path), len(path)+1)
		copy(newPath, path)
		newPath = append(newPath, targetID)

		dfsRecursive(ctx, g, target, distance+1, maxHops, newPath, relationTypes, followBidirectional, visited, results)
	}
}

// followRelation determines the reachable endpoint of a relation from
// nodeID, honoring the type filter and direction setting
func followRelation(relation *model.Relation, nodeID string, relationTypes []model.RelationType, followBidirectional bool) (string, bool) {
	if len(relationTypes) > 0 {
		found := false
		for _, rt := range relationTypes {
			if relation.Type == rt {
				found = true
				break
			}
		}
		if !found {
			return "", false
		}
	}

	if relation.SourceID == nodeID {
		return relation.TargetID, true
	}
	if followBidirectional && relation.TargetID == nodeID {
		return relation.SourceID, true
	}
	return "", false
}
