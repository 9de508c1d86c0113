package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sevigo/lltranslate/llms/ollama"
)

type modelChecker interface {
	ModelExists(ctx context.Context) (bool, error)
	ListModels(ctx context.Context) ([]string, error)
}

func newModelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "model",
		Short: "Show details of the configured model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			llm, err := a.newLLM(ctx)
			if err != nil {
				return err
			}

			if checker, ok := llm.(modelChecker); ok {
				exists, err := checker.ModelExists(ctx)
				if err != nil {
					return err
				}
				if !exists {
					if installed, err := checker.ListModels(ctx); err == nil && len(installed) > 0 {
						fmt.Fprintf(a.out, "Installed models: %s\n", strings.Join(installed, ", "))
					}
					return fmt.Errorf("%w: %s (pull it with: ollama pull %s)", ollama.ErrModelNotFound, a.cfg.ModelName, a.cfg.ModelName)
				}
			}

			inspector, ok := llm.(modelInspector)
			if !ok {
				fmt.Fprintf(a.out, "Model details are not available for provider %s\n", a.cfg.Provider)
				return nil
			}
			details, err := inspector.GetModelDetails(ctx)
			if err != nil {
				if errors.Is(err, ollama.ErrModelNotFound) {
					return fmt.Errorf("%w: %s", err, a.cfg.ModelName)
				}
				return err
			}
			fmt.Fprintln(a.out, renderModel(details))
			return nil
		},
	}
}
