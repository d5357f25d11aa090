package graph

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/siherrmann/kgraph/core/extract"
	"github.com/siherrmann/kgraph/model"
)

const (
	// sameEntityWeightStep is the weight contributed per shared entity,
	// capped at 1.0
	sameEntityWeightStep = 0.3

	// sameTopicThreshold is the minimum keyword Jaccard similarity for a
	// same_topic relation
	sameTopicThreshold = 0.2
)

// Build constructs a knowledge graph from a collection of entries. Entries
// with pre-computed chunks become one node per chunk; entries without chunks
// become a single whole-entry node. Construction is idempotent given
// identical input entries.
//
// Relation building compares all node pairs, so edge count is bounded by
// O(nodes²). That is acceptable for document/personal-scale knowledge bases;
// corpora beyond a few thousand nodes would need the entity/keyword indexes
// to prune candidate pairs first (the weight formulas must stay unchanged).
func Build(entries []*model.Entry) *KnowledgeGraph {
	g := NewKnowledgeGraph()

	// Ordered node ids, map iteration order is not deterministic
	var order []string

	for _, entry := range entries {
		if len(entry.Chunks) > 0 {
			for _, c := range entry.Chunks {
				node := buildNode(entry, c)
				g.AddNode(node)
				order = append(order, node.ID)
			}
		} else {
			node := buildNode(entry, nil)
			g.AddNode(node)
			order = append(order, node.ID)
		}
	}

	buildRelations(g, order)

	g.LastUpdated = time.Now()
	return g
}

func buildNode(entry *model.Entry, c *model.Chunk) *model.Node {
	content := entry.Content
	chunkID := ""
	id := strconv.FormatInt(entry.ID, 10)
	var embedding []float32

	if c != nil {
		content = c.Content
		chunkID = c.ID
		id = fmt.Sprintf("%d-%s", entry.ID, c.ID)
		embedding = c.Embedding
	}

	result := extract.Entities(content)

	return &model.Node{
		ID:        id,
		EntryID:   entry.ID,
		ChunkID:   chunkID,
		Content:   content,
		Title:     entry.Title,
		Entities:  result.Entities,
		Keywords:  result.Keywords,
		Embedding: embedding,
		Metadata: model.NodeMetadata{
			Source:      entry.Source,
			CreatedAt:   entry.CreatedAt,
			CharCount:   len(content),
			EntityCount: len(result.Entities),
		},
	}
}

func buildRelations(g *KnowledgeGraph, order []string) {
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			a := g.Nodes[order[i]]
			b := g.Nodes[order[j]]

			if a.EntryID == b.EntryID {
				// Same-entry chunk pairs are only checked for sequence order
				if diff, ok := chunkIndexDiff(a.ChunkID, b.ChunkID); ok && diff == 1 {
					g.AddRelation(&model.Relation{
						SourceID: a.ID,
						TargetID: b.ID,
						Type:     model.RelationTypeFollows,
						Weight:   1.0,
					})
				}
				continue
			}

			// Both relation types may coexist between the same pair
			if shared := sharedEntityCount(a, b); shared > 0 {
				weight := float64(shared) * sameEntityWeightStep
				if weight > 1 {
					weight = 1
				}
				g.AddRelation(&model.Relation{
					SourceID: a.ID,
					TargetID: b.ID,
					Type:     model.RelationTypeSameEntity,
					Weight:   weight,
					Metadata: model.Metadata{"shared_entities": shared},
				})
			}

			if similarity := keywordJaccard(a.Keywords, b.Keywords); similarity > sameTopicThreshold {
				g.AddRelation(&model.Relation{
					SourceID: a.ID,
					TargetID: b.ID,
					Type:     model.RelationTypeSameTopic,
					Weight:   similarity,
				})
			}
		}
	}
}

// chunkIndexDiff extracts the numeric suffixes of two chunk ids
// ("chunk-<n>") and returns their absolute difference
func chunkIndexDiff(a, b string) (int, bool) {
	ai, aok := chunkIndex(a)
	bi, bok := chunkIndex(b)
	if !aok || !bok {
		return 0, false
	}
	diff := ai - bi
	if diff < 0 {
		diff = -diff
	}
	return diff, true
}

func chunkIndex(chunkID string) (int, bool) {
	idx := strings.LastIndex(chunkID, "-")
	if idx < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(chunkID[idx+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// sharedEntityCount counts entities present in both nodes with the same type
// and the same normalized (or lowercased raw) value
func sharedEntityCount(a, b *model.Node) int {
	seen := make(map[string]struct{}, len(a.Entities))
	for _, e := range a.Entities {
		seen[EntityKey(e)] = struct{}{}
	}

	counted := make(map[string]struct{})
	for _, e := range b.Entities {
		key := EntityKey(e)
		if _, ok := seen[key]; ok {
			counted[key] = struct{}{}
		}
	}
	return len(counted)
}

// keywordJaccard computes |A ∩ B| / |A ∪ B| over keyword sets
func keywordJaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, kw := range a {
		setA[kw] = struct{}{}
	}

	union := len(setA)
	intersection := 0
	seenB := make(map[string]struct{}, len(b))
	for _, kw := range b {
		if _, dup := seenB[kw]; dup {
			continue
		}
		seenB[kw] = struct{}{}
		if _, ok := setA[kw]; ok {
			intersection++
		} else {
			union++
		}
	}

	return float64(intersection) / float64(union)
}
