package textsplitter_test

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/lltranslate/schema"
	"github.com/sevigo/lltranslate/textsplitter"
)

func paragraph(ch string, n int) string {
	return strings.Repeat(ch, n)
}

func TestParagraph_SplitText(t *testing.T) {
	ctx := context.Background()

	t.Run("two paragraphs that do not fit together", func(t *testing.T) {
		p1 := paragraph("a", 1500)
		p2 := paragraph("b", 1200)
		splitter := textsplitter.NewParagraph(textsplitter.WithChunkSize(2000))

		chunks, err := splitter.SplitText(ctx, p1+"\n\n"+p2)
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, p1, chunks[0])
		assert.Equal(t, p2, chunks[1])
	})

	t.Run("empty document", func(t *testing.T) {
		splitter := textsplitter.NewParagraph(textsplitter.WithChunkSize(2000))

		chunks, err := splitter.SplitText(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("whitespace only document", func(t *testing.T) {
		splitter := textsplitter.NewParagraph()

		chunks, err := splitter.SplitText(ctx, "\n\n   \n\n\t\n\n")
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("small paragraphs are merged", func(t *testing.T) {
		splitter := textsplitter.NewParagraph(textsplitter.WithChunkSize(100))

		chunks, err := splitter.SplitText(ctx, "First.\n\nSecond.\n\nThird.")
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "First.\n\nSecond.\n\nThird.", chunks[0])
	})

	t.Run("oversized paragraph is kept whole", func(t *testing.T) {
		big := paragraph("x", 50)
		splitter := textsplitter.NewParagraph(textsplitter.WithChunkSize(20))

		chunks, err := splitter.SplitText(ctx, "short\n\n"+big+"\n\ntail")
		require.NoError(t, err)
		require.Len(t, chunks, 3)
		assert.Equal(t, "short", chunks[0])
		assert.Equal(t, big, chunks[1], "oversized chunk must be exactly the one paragraph")
		assert.Equal(t, "tail", chunks[2])
	})

	t.Run("consecutive blank paragraphs collapse", func(t *testing.T) {
		splitter := textsplitter.NewParagraph(textsplitter.WithChunkSize(1000))

		chunks, err := splitter.SplitText(ctx, "one\n\n\n\n\n\ntwo")
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "one\n\ntwo", chunks[0])
	})

	t.Run("length is counted in characters", func(t *testing.T) {
		thai := paragraph("ก", 15)
		splitter := textsplitter.NewParagraph(textsplitter.WithChunkSize(20))

		chunks, err := splitter.SplitText(ctx, thai+"\n\n"+thai)
		require.NoError(t, err)
		require.Len(t, chunks, 2, "45 bytes per paragraph must not count as 45 characters")
		assert.Equal(t, thai, chunks[0])
	})

	t.Run("invalid chunk size", func(t *testing.T) {
		for _, size := range []int{0, -5} {
			splitter := textsplitter.NewParagraph(textsplitter.WithChunkSize(size))
			_, err := splitter.SplitText(ctx, "text")
			assert.ErrorIs(t, err, textsplitter.ErrInvalidChunkSize)
		}
	})
}

func TestParagraph_SplitTextProperties(t *testing.T) {
	ctx := context.Background()

	paragraphs := []string{
		"The young cultivator sat in meditation.",
		paragraph("q", 120),
		"Elder Zhang stroked his beard thoughtfully.",
		paragraph("w", 35),
		"The sect master looked at his disciple with approval.",
		paragraph("e", 80),
		"End of chapter.",
	}
	doc := strings.Join(paragraphs, "\n\n")

	for _, size := range []int{10, 40, 64, 100, 200, 1000} {
		splitter := textsplitter.NewParagraph(textsplitter.WithChunkSize(size))
		chunks, err := splitter.SplitText(ctx, doc)
		require.NoError(t, err)

		var rebuilt []string
		for _, chunk := range chunks {
			assert.NotEmpty(t, chunk)
			parts := strings.Split(chunk, "\n\n")
			if utf8.RuneCountInString(chunk) > size {
				require.Len(t, parts, 1, "only a single paragraph may exceed the chunk size (size %d)", size)
			}
			rebuilt = append(rebuilt, parts...)
		}
		assert.Equal(t, paragraphs, rebuilt, "chunk order must reproduce paragraph order (size %d)", size)
	}
}

func TestParagraph_SplitDocument(t *testing.T) {
	splitter := textsplitter.NewParagraph(textsplitter.WithChunkSize(12))
	doc := schema.NewDocument("novel.txt", "alpha beta\n\ngamma delta\n\nepsilon", nil)

	chunks, err := splitter.SplitDocument(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, "novel.txt", chunk.Source)
		assert.Equal(t, utf8.RuneCountInString(chunk.Text), chunk.Length)
	}
	assert.Equal(t, "epsilon", chunks[2].Text)
	assert.Equal(t, 12, splitter.ChunkSize())
}
