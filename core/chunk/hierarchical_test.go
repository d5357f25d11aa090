package chunk

import (
	"context"
	"strings"
	"testing"

	"github.com/siherrmann/kgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHierarchical(t *testing.T) {
	ctx := context.Background()

	t.Run("Sections become heading-tagged chunks", func(t *testing.T) {
		text := "# Title\n\nIntro text here.\n\n## Section A\n\nBody of section A.\n"

		chunks, err := Hierarchical(testOptions())(ctx, text)

		require.NoError(t, err)
		require.Len(t, chunks, 2, "Expected one chunk per section")

		assert.Equal(t, "Title", chunks[0].SectionHeading)
		assert.Equal(t, 1, chunks[0].SectionLevel)
		assert.Equal(t, "Title\nIntro text here.", chunks[0].Content, "Expected heading-prefixed content")

		assert.Equal(t, "Section A", chunks[1].SectionHeading)
		assert.Equal(t, 2, chunks[1].SectionLevel)
		assert.Equal(t, "Section A\nBody of section A.", chunks[1].Content)

		assert.Equal(t, model.ChunkStrategyHierarchical, chunks[0].Strategy)
	})

	t.Run("Preamble before the first heading has no heading", func(t *testing.T) {
		text := "Leading paragraph.\n\n# Heading\n\nSection body.\n"

		chunks, err := Hierarchical(testOptions())(ctx, text)

		require.NoError(t, err)
		require.Len(t, chunks, 2)

		assert.Equal(t, "", chunks[0].SectionHeading, "Expected preamble without heading")
		assert.Equal(t, 0, chunks[0].SectionLevel)
		assert.Equal(t, "Leading paragraph.", chunks[0].Content)
	})

	t.Run("Fenced code blocks stay intact", func(t *testing.T) {
		text := "# Usage\n\nRun the snippet. It prints a greeting.\n\n```go\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n```\n\nDone now.\n"

		opts := testOptions()
		opts.PreserveCodeBlocks = true

		chunks, err := Hierarchical(opts)(ctx, text)

		require.NoError(t, err)
		require.NotEmpty(t, chunks)

		var joined strings.Builder
		for _, c := range chunks {
			joined.WriteString(c.Content)
		}
		assert.Contains(t, joined.String(), "func main() {\n\tfmt.Println(\"hi\")\n}",
			"Expected code block restored with original newlines")
	})

	t.Run("Oversized sections recurse into sentence chunks sharing the heading", func(t *testing.T) {
		body := strings.Repeat("Alpha beta gamma delta epsilon zeta. ", 10)
		text := "# Large\n\n" + body

		chunks, err := Hierarchical(testOptions())(ctx, text)

		require.NoError(t, err)
		assert.Greater(t, len(chunks), 1, "Expected the oversized section to split")
		for _, c := range chunks {
			assert.Equal(t, "Large", c.SectionHeading, "Expected every part to keep the section heading")
			assert.Equal(t, 1, c.SectionLevel)
			assert.True(t, strings.HasPrefix(c.Content, "Large\n"), "Expected heading prefix on every part")
		}
	})

	t.Run("Text without headings is a single unheaded section", func(t *testing.T) {
		chunks, err := Hierarchical(testOptions())(ctx, "Plain paragraph without any markdown.")

		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "", chunks[0].SectionHeading)
		assert.Equal(t, "Plain paragraph without any markdown.", chunks[0].Content)
	})
}
