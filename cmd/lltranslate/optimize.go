package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevigo/lltranslate/budget"
	"github.com/sevigo/lltranslate/config"
)

func newOptimizeCmd(a *app) *cobra.Command {
	var save string

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Recommend settings for a chunk size",
		Long: `Estimate a chunk of --chunk-size characters under the current decoding
settings and recommend chunk_size, max_tokens and num_ctx values. With
--save the recommendations are applied and written to a config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, est, err := a.budgetTools(ctx, a.optionalLLM(ctx))
			if err != nil {
				return err
			}

			advice, err := est.Advise(ctx, a.cfg.ChunkSize, a.cfg.Decoding())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, renderAdvice(advice))

			if save == "" {
				return nil
			}
			applyAdvice(a.cfg, advice)
			if err := a.cfg.SaveFile(save); err != nil {
				return err
			}
			fmt.Fprintln(a.out, okStyle.Render("Saved recommended settings to "+save))
			return nil
		},
	}
	cmd.Flags().StringVar(&save, "save", "", "write the recommended settings to this config file")
	return cmd
}

// applyAdvice copies the non-zero recommendations onto cfg.
func applyAdvice(cfg *config.Config, advice budget.Advice) {
	rec := advice.Recommended
	if rec.ChunkSize > 0 {
		cfg.ChunkSize = rec.ChunkSize
	}
	if rec.MaxTokens > 0 {
		cfg.MaxTokens = rec.MaxTokens
	}
	if rec.NumCtx > 0 {
		cfg.NumCtx = rec.NumCtx
	}
	if rec.Temperature > 0 {
		cfg.Temperature = rec.Temperature
	}
	if rec.TopP > 0 {
		cfg.TopP = rec.TopP
	}
}
