package chains

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sevigo/lltranslate/documentloaders"
)

// DefaultOutputPrefix is prepended to every output file name.
const DefaultOutputPrefix = "translated_"

// Batch translates every matching file of a directory.
type Batch struct {
	translation *Translation
	extensions  []string
	prefix      string
	logger      *slog.Logger
}

type BatchOption func(*Batch)

// WithExtensions sets the file suffixes to translate.
func WithExtensions(exts ...string) BatchOption {
	return func(b *Batch) {
		if len(exts) > 0 {
			b.extensions = exts
		}
	}
}

func WithOutputPrefix(prefix string) BatchOption {
	return func(b *Batch) {
		b.prefix = prefix
	}
}

func NewBatch(t *Translation, opts ...BatchOption) *Batch {
	b := &Batch{
		translation: t,
		extensions:  documentloaders.DefaultExtensions,
		prefix:      DefaultOutputPrefix,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = t.opts.logger.With("component", "batch")
	return b
}

// FileOutcome records what happened to one input file.
type FileOutcome struct {
	Input     string
	Output    string
	Chunks    int
	Fallbacks int
	Quality   float64
	Duration  time.Duration
	Err       error
}

type BatchReport struct {
	RunID     string
	InputDir  string
	OutputDir string
	Files     []FileOutcome
	Duration  time.Duration
}

// Failed counts the files that could not be translated.
func (r *BatchReport) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// OutputName returns the output file name for input. PDF inputs are
// written as plain text.
func OutputName(prefix, input string) string {
	name := filepath.Base(input)
	if ext := filepath.Ext(name); strings.EqualFold(ext, ".pdf") {
		name = strings.TrimSuffix(name, ext) + ".txt"
	}
	return prefix + name
}

// TranslateDirectory translates the files directly inside inDir into
// outDir. Failing to create outDir or to list inDir aborts the run; a
// failure on a single file is recorded and the run continues.
func (b *Batch) TranslateDirectory(ctx context.Context, inDir, outDir string) (*BatchReport, error) {
	start := time.Now()
	report := &BatchReport{
		RunID:     uuid.NewString(),
		InputDir:  inDir,
		OutputDir: outDir,
	}
	logger := b.logger.With("run_id", report.RunID)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	files, err := documentloaders.Discover(inDir, b.extensions)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "batch started", "input_dir", inDir, "output_dir", outDir, "files", len(files))

	for i, in := range files {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}

		out := filepath.Join(outDir, OutputName(b.prefix, in))
		logger.InfoContext(ctx, "translating file", "file", fmt.Sprintf("%d/%d", i+1, len(files)), "input", in)

		outcome := FileOutcome{Input: in, Output: out}
		res, err := b.translation.TranslateFile(ctx, in, out)
		if res != nil {
			outcome.Chunks = len(res.Chunks)
			outcome.Fallbacks = res.Fallbacks()
			outcome.Quality = res.AverageQuality()
			outcome.Duration = res.Duration
		}
		if err != nil {
			outcome.Err = err
			logger.ErrorContext(ctx, "file failed", "input", in, "error", err)
		}
		report.Files = append(report.Files, outcome)
	}

	report.Duration = time.Since(start)
	logger.InfoContext(ctx, "batch finished",
		"files", len(report.Files),
		"failed", report.Failed(),
		"duration", report.Duration,
	)
	return report, nil
}
