package documentloaders_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/lltranslate/documentloaders"
	"github.com/sevigo/lltranslate/testutil"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestFileLoader_UTF8(t *testing.T) {
	path := writeFile(t, t.TempDir(), "chapter.txt", []byte("\xef\xbb\xbfFirst line\r\n\r\nSecond ไทย\r\n"))

	doc, err := documentloaders.NewFileLoader(path).LoadDocument(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "First line\n\nSecond ไทย\n", doc.PageContent)
	assert.Equal(t, path, doc.Source)
	assert.Equal(t, "utf-8", doc.Metadata["encoding"])
	assert.Equal(t, path, doc.Metadata["source"])
	assert.NotEmpty(t, doc.ID)
}

func TestFileLoader_FallbackEncoding(t *testing.T) {
	path := writeFile(t, t.TempDir(), "legacy.txt", []byte("caf\xe9 \x93quoted\x94"))

	logger, logs := testutil.NewTestLogger(t)
	docs, err := documentloaders.NewFileLoader(path, documentloaders.WithLogger(logger)).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "café “quoted”", docs[0].PageContent)
	assert.Equal(t, "windows-1252", docs[0].Metadata["encoding"])
	assert.Contains(t, logs.String(), "fallback encoding")
}

func TestFileLoader_Latin1(t *testing.T) {
	path := writeFile(t, t.TempDir(), "latin.txt", []byte("na\xefve"))

	doc, err := documentloaders.NewFileLoader(path,
		documentloaders.WithEncodings("utf-8", "iso-8859-1"),
	).LoadDocument(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "naïve", doc.PageContent)
	assert.Equal(t, "iso-8859-1", doc.Metadata["encoding"])
}

func TestFileLoader_Undecodable(t *testing.T) {
	path := writeFile(t, t.TempDir(), "binary.txt", []byte{0xff, 0xfe, 0x00, 0xc3})

	_, err := documentloaders.NewFileLoader(path,
		documentloaders.WithEncodings("utf-8", "no-such-encoding"),
	).LoadDocument(context.Background())
	assert.ErrorIs(t, err, documentloaders.ErrUndecodable)
}

func TestFileLoader_NotFound(t *testing.T) {
	_, err := documentloaders.NewFileLoader(filepath.Join(t.TempDir(), "missing.txt")).Load(context.Background())
	assert.ErrorIs(t, err, documentloaders.ErrFileNotFound)
}

func TestFileLoader_CanceledContext(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.txt", []byte("text"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := documentloaders.NewFileLoader(path).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileLoader_InvalidPDF(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.PDF", []byte("not a pdf"))

	_, err := documentloaders.NewFileLoader(path).Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, documentloaders.ErrFileNotFound)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.TXT", []byte("b"))
	writeFile(t, dir, "a.txt", []byte("a"))
	writeFile(t, dir, "notes.md", []byte("m"))
	writeFile(t, dir, "image.png", []byte("p"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.txt"), 0o755))

	files, err := documentloaders.Discover(dir, []string{".txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.TXT")}, files)

	files, err = documentloaders.Discover(dir, nil)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestDiscover_MissingDir(t *testing.T) {
	_, err := documentloaders.Discover(filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)
}
