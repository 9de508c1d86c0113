// Package documentloaders reads source documents from disk. Text files are
// decoded through an ordered list of character encodings; PDF files are
// reduced to their plain text.
package documentloaders

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sevigo/lltranslate/schema"
)

var (
	ErrFileNotFound = errors.New("documentloaders: file not found")
	ErrUndecodable  = errors.New("documentloaders: no configured encoding could decode the file")
)

// DefaultEncodings is the decode order used when none is configured.
var DefaultEncodings = []string{"utf-8", "windows-1252", "iso-8859-1"}

// Loader defines the interface for loading documents from a source.
type Loader interface {
	Load(ctx context.Context) ([]schema.Document, error)
}

// FileLoader loads a single file as one document.
type FileLoader struct {
	path      string
	encodings []string
	logger    *slog.Logger
}

type Option func(*FileLoader)

// WithEncodings sets the decode order. An empty list keeps DefaultEncodings.
func WithEncodings(encodings ...string) Option {
	return func(l *FileLoader) {
		if len(encodings) > 0 {
			l.encodings = encodings
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *FileLoader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func NewFileLoader(path string, opts ...Option) *FileLoader {
	l := &FileLoader{
		path:      path,
		encodings: DefaultEncodings,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("component", "file_loader")
	return l
}

var _ Loader = (*FileLoader)(nil)

func (l *FileLoader) Load(ctx context.Context) ([]schema.Document, error) {
	doc, err := l.LoadDocument(ctx)
	if err != nil {
		return nil, err
	}
	return []schema.Document{doc}, nil
}

// LoadDocument reads the whole file. Line endings are normalized to "\n"
// and a leading byte order mark is dropped.
func (l *FileLoader) LoadDocument(ctx context.Context) (schema.Document, error) {
	if err := ctx.Err(); err != nil {
		return schema.Document{}, err
	}

	if strings.EqualFold(filepath.Ext(l.path), ".pdf") {
		text, pages, err := readPDF(l.path)
		if err != nil {
			return schema.Document{}, wrapNotFound(l.path, err)
		}
		l.logger.DebugContext(ctx, "pdf loaded", "path", l.path, "pages", pages, "chars", len([]rune(text)))
		return schema.NewDocument(l.path, text, map[string]any{
			"format": "pdf",
			"pages":  pages,
		}), nil
	}

	raw, err := os.ReadFile(l.path)
	if err != nil {
		return schema.Document{}, wrapNotFound(l.path, err)
	}

	text, used, err := decode(raw, l.encodings)
	if err != nil {
		return schema.Document{}, fmt.Errorf("%s: %w", l.path, err)
	}
	if used != l.encodings[0] {
		l.logger.WarnContext(ctx, "file decoded with fallback encoding", "path", l.path, "encoding", used)
	}

	text = normalizeNewlines(text)
	return schema.NewDocument(l.path, text, map[string]any{
		"format":   "text",
		"encoding": used,
		"size":     len(raw),
	}), nil
}

func wrapNotFound(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	return fmt.Errorf("read %s: %w", path, err)
}

func normalizeNewlines(text string) string {
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
