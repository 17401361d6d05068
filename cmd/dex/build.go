package main

import (
	"log/slog"
	"os"

	"github.com/dexsearch/dex"
	"github.com/spf13/cobra"
)

// buildCmd wraps dex.BuildIndex: reads the term-stream format on stdin,
// writes the four index files into --dir.
func buildCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "build an index from a term-stream on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := dex.BuildIndex(os.Stdin, dir)
			if err != nil {
				return err
			}

			slog.Info("build complete",
				slog.Int("documents", result.Documents),
				slog.Int("terms", result.Terms),
				slog.Float64("avg_dl", float64(result.AvgDL)))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "directory to write the index files into")
	return cmd
}
