package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevigo/lltranslate/bench"
	"github.com/sevigo/lltranslate/prompts"
)

func newBenchCmd(a *app) *cobra.Command {
	var pause time.Duration

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare decoding profiles on sample passages",
		Long: `Translate the built-in Wuxia sample passages under each decoding profile
and compare response time, output length and translation quality.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			llm, err := a.newLLM(ctx)
			if err != nil {
				return err
			}
			counter, err := a.newCounter(llm)
			if err != nil {
				return err
			}

			runner := bench.NewRunner(llm, prompts.DefaultTranslationPrompt, counter,
				bench.WithPause(pause),
				bench.WithLogger(a.logger),
			)
			results, err := runner.Run(ctx, bench.DefaultCases, bench.DefaultProfiles)
			fmt.Fprintln(a.out, renderBench(bench.Summarize(results, bench.DefaultProfiles)))
			return err
		},
	}
	cmd.Flags().DurationVar(&pause, "pause", bench.DefaultPause, "pause between requests")
	return cmd
}
