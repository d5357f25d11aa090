package chunk

import (
	"context"
	"strings"
	"testing"

	"github.com/siherrmann/kgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityAware(t *testing.T) {
	ctx := context.Background()

	s1 := "Alpha beta gamma delta epsilon zeta eta theta."
	s2 := "The payment of $250.00 arrived on 2024-01-05."
	s3 := "Iota kappa lambda mu nu xi omicron pi rho sigma."
	s4 := "Tau upsilon phi chi psi omega alpha beta gamma."

	t.Run("Entity sentences carry over into the next chunk", func(t *testing.T) {
		text := strings.Join([]string{s1, s2, s3, s4}, " ")

		chunks, err := EntityAware(testOptions())(ctx, text)

		require.NoError(t, err)
		require.Len(t, chunks, 3, "Expected three chunks for four sentences at this size")

		assert.Equal(t, s1+" "+s2, chunks[0].Content)
		assert.True(t, strings.HasPrefix(chunks[1].Content, s2),
			"Expected the entity-bearing sentence carried into the next chunk")
		assert.Equal(t, s4, chunks[2].Content,
			"Expected no carry-over after a sentence without entities")
		assert.Equal(t, model.ChunkStrategyEntityAware, chunks[0].Strategy)
	})

	t.Run("Entity annotations land on the carrying chunks", func(t *testing.T) {
		text := strings.Join([]string{s1, s2, s3, s4}, " ")

		chunks, err := EntityAware(testOptions())(ctx, text)

		require.NoError(t, err)
		require.Len(t, chunks, 3)

		hasMoney := func(c *model.Chunk) bool {
			for _, e := range c.Entities {
				if e.Type == model.EntityTypeMoney {
					return true
				}
			}
			return false
		}
		assert.True(t, hasMoney(chunks[0]), "Expected money annotation on the first chunk")
		assert.True(t, hasMoney(chunks[1]), "Expected money annotation on the carried chunk")
		assert.False(t, hasMoney(chunks[2]), "Expected no money annotation on the last chunk")
	})

	t.Run("Short text is a single chunk", func(t *testing.T) {
		chunks, err := EntityAware(testOptions())(ctx, s2)

		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, s2, chunks[0].Content)
	})

	t.Run("Empty text yields no chunks", func(t *testing.T) {
		chunks, err := EntityAware(testOptions())(ctx, "")

		require.NoError(t, err)
		assert.Empty(t, chunks)
	})
}
