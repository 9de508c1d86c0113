package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sevigo/lltranslate/chains"
)

func newTranslateCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "translate <file>",
		Short: "Translate a single file",
		Long: `Translate one .txt, .md or .pdf file. The output is written next to the
input as <name>_translated.txt unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := a.newTranslation(ctx)
			if err != nil {
				return err
			}

			in := args[0]
			out := output
			if out == "" {
				out = defaultOutputPath(in)
			}

			res, err := t.TranslateFile(ctx, in, out)
			if res != nil {
				fmt.Fprintln(a.out, renderDocument(res, out))
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	return cmd
}

func defaultOutputPath(in string) string {
	return strings.TrimSuffix(in, filepath.Ext(in)) + "_translated.txt"
}

func newBatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <input-dir> <output-dir>",
		Short: "Translate every matching file in a directory",
		Long: `Translate the files directly inside input-dir whose extension matches
file_extensions. Each output is named <output_prefix><file name>. A file
that fails is reported and the run continues.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := a.newTranslation(ctx)
			if err != nil {
				return err
			}

			b := chains.NewBatch(t,
				chains.WithExtensions(a.cfg.FileExtensions...),
				chains.WithOutputPrefix(a.cfg.OutputPrefix),
			)
			report, err := b.TranslateDirectory(ctx, args[0], args[1])
			if report != nil {
				fmt.Fprintln(a.out, renderBatch(report))
			}
			if err != nil {
				return err
			}
			if failed := report.Failed(); failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(report.Files))
			}
			return nil
		},
	}
	cmd.Flags().StringSlice("ext", nil, "file extensions to translate (default .txt,.md)")
	cmd.Flags().String("prefix", "", "output file name prefix (default translated_)")
	cobra.CheckErr(a.v.BindPFlag("file_extensions", cmd.Flags().Lookup("ext")))
	cobra.CheckErr(a.v.BindPFlag("output_prefix", cmd.Flags().Lookup("prefix")))
	return cmd
}
