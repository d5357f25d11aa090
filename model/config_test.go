package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultChunkOptions(t *testing.T) {
	opts := DefaultChunkOptions()

	assert.Equal(t, 1000, opts.ChunkSize)
	assert.Equal(t, 200, opts.ChunkOverlap)
	assert.Equal(t, 100, opts.MinChunkSize)
	assert.True(t, opts.ExtractEntities, "Expected entity annotation to be on by default")
	assert.True(t, opts.PreserveCodeBlocks)
	assert.Equal(t, float32(0.5), opts.SemanticSimilarityThreshold)
	assert.Equal(t, 2, opts.MinSentencesPerChunk)
	assert.Equal(t, 10, opts.MaxSentencesPerChunk)
	assert.Equal(t, 15, opts.MaxEntitiesPerChunk)
	assert.Equal(t, 8, opts.MaxKeywordsPerChunk)
	assert.Less(t, opts.ChunkOverlap, opts.ChunkSize, "Expected the overlap to be smaller than the chunk size")
}

func TestDefaultQueryConfig(t *testing.T) {
	config := DefaultQueryConfig()

	assert.Equal(t, 5, config.TopK)
	assert.Equal(t, 0.3, config.MinScore)
	assert.InDelta(t, 1.0, config.SemanticWeight+config.EntityWeight+config.KeywordWeight+config.GraphWeight, 0.0001,
		"Expected the component weights to sum to one")
	assert.True(t, config.TemporalDecay)
	assert.Equal(t, 2, config.MaxHops)
	assert.True(t, config.FollowBidirectional)
	assert.NotEmpty(t, config.EntityBoosts)
}

func TestDefaultEntityBoosts(t *testing.T) {
	boosts := DefaultEntityBoosts()

	assert.Equal(t, 2.0, boosts[EntityTypeMoney], "Expected financial types to carry the highest boost")
	assert.Equal(t, 1.5, boosts[EntityTypeDate])
	assert.Equal(t, 1.0, boosts[EntityTypeNumber])
	for entityType, boost := range boosts {
		assert.GreaterOrEqual(t, boost, 1.0, "Expected no boost below neutral for %s", entityType)
	}
}
