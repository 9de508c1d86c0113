package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sevigo/lltranslate/budget"
	"github.com/sevigo/lltranslate/documentloaders"
	"github.com/sevigo/lltranslate/textsplitter"
)

func newTokensCmd(a *app) *cobra.Command {
	var perChunk bool

	cmd := &cobra.Command{
		Use:   "tokens <file|->",
		Short: "Estimate the token budget of a text",
		Long: `Estimate how many tokens translating the text would take and whether it
fits the context window. Use - to read from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			text, err := a.readInput(ctx, cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			_, est, err := a.budgetTools(ctx, a.optionalLLM(ctx))
			if err != nil {
				return err
			}

			report, err := est.Evaluate(ctx, text)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, renderReport("Token analysis", report))
			if !report.Fits() {
				plan := budget.SplitPlan(report.Estimate.TotalTokens, report.Chars, report.Limits.ContextLimit)
				fmt.Fprintln(a.out, renderPlan(plan))
			}

			if !perChunk {
				return nil
			}
			reports, err := a.chunkReports(ctx, est, text)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, renderChunkTable(reports))
			return nil
		},
	}
	cmd.Flags().BoolVar(&perChunk, "chunks", false, "also analyze every chunk the text is split into")
	return cmd
}

func (a *app) readInput(ctx context.Context, stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read standard input: %w", err)
		}
		return string(data), nil
	}

	doc, err := documentloaders.NewFileLoader(path,
		documentloaders.WithEncodings(a.cfg.Encodings...),
		documentloaders.WithLogger(a.logger),
	).LoadDocument(ctx)
	if err != nil {
		return "", err
	}
	return doc.PageContent, nil
}

func (a *app) chunkReports(ctx context.Context, est *budget.Estimator, text string) ([]budget.Report, error) {
	splitter := textsplitter.NewParagraph(
		textsplitter.WithChunkSize(a.cfg.ChunkSize),
		textsplitter.WithLogger(a.logger),
	)
	chunks, err := splitter.SplitText(ctx, text)
	if err != nil {
		return nil, err
	}

	reports := make([]budget.Report, 0, len(chunks))
	for _, chunk := range chunks {
		r, err := est.Evaluate(ctx, chunk)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}
