package chains_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/lltranslate/chains"
	"github.com/sevigo/lltranslate/llms/fake"
)

func TestBatch_TranslateDirectory(t *testing.T) {
	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "thai")
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "B.MD"), []byte("bravo"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "c.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "d.txt"), []byte{0xff, 0xfe}, 0o644))

	tr := newTranslation(t, fake.NewWithHandler(echoHandler), &sleepRecorder{},
		chains.WithEncodings("utf-8"),
	)
	batch := chains.NewBatch(tr, chains.WithExtensions(".txt", ".md"))

	report, err := batch.TranslateDirectory(context.Background(), inDir, outDir)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Files, 3)
	assert.Equal(t, 1, report.Failed())

	data, err := os.ReadFile(filepath.Join(outDir, "translated_B.MD"))
	require.NoError(t, err)
	assert.Equal(t, "BRAVO", string(data))

	data, err = os.ReadFile(filepath.Join(outDir, "translated_a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "ALPHA", string(data))

	_, err = os.Stat(filepath.Join(outDir, "translated_c.png"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(outDir, "translated_d.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestBatch_MissingInputDir(t *testing.T) {
	tr := newTranslation(t, fake.NewWithHandler(echoHandler), &sleepRecorder{})

	_, err := chains.NewBatch(tr).TranslateDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"), t.TempDir())
	assert.Error(t, err)
}

func TestBatch_OutputDirUncreatable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	tr := newTranslation(t, fake.NewWithHandler(echoHandler), &sleepRecorder{})

	_, err := chains.NewBatch(tr).TranslateDirectory(context.Background(), t.TempDir(), filepath.Join(blocker, "out"))
	assert.Error(t, err)
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "translated_ch1.txt", chains.OutputName("translated_", "/in/ch1.txt"))
	assert.Equal(t, "translated_book.txt", chains.OutputName("translated_", "book.PDF"))
	assert.Equal(t, "x-notes.md", chains.OutputName("x-", "notes.md"))
}
