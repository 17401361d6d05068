package main

import (
	"bufio"
	"io"
	"os"

	"github.com/dexsearch/dex"
	"github.com/spf13/cobra"
)

// tokenizeCmd wraps dex.Tokenize: reads an SGML-tagged corpus on stdin,
// writes the builder's plain term-stream format to stdout. This is the
// out-of-scope document tokenizer spec.md describes as an external
// collaborator — bundled here as a CLI convenience, never imported by the
// build or query path.
func tokenizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokenize",
		Short: "convert a tagged corpus on stdin into the term-stream build format",
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}

			out := bufio.NewWriter(os.Stdout)
			if err := dex.Tokenize(buf, out); err != nil {
				return err
			}
			return out.Flush()
		},
	}
}
