package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/dexsearch/dex"
	"github.com/spf13/cobra"
)

// runTag identifies this engine's results in TREC run-file output.
const runTag = "dex"

// queryCmd wraps dex.RankBM25: one query per non-empty stdin line, ranked
// results to stdout, flushed after each query.
func queryCmd() *cobra.Command {
	var dir string
	var trec bool
	var limit int

	cmd := &cobra.Command{
		Use:   "query",
		Short: "answer free-text queries against a built index",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := dex.OpenDiskIndex(dir)
			if err != nil {
				return err
			}
			defer idx.Close()

			out := bufio.NewWriter(os.Stdout)
			in := bufio.NewScanner(os.Stdin)
			in.Buffer(make([]byte, 0, 64*1024), 1024*1024)

			for in.Scan() {
				line := in.Text()
				if line == "" {
					continue
				}

				qid, text := "", line
				if trec {
					qid, text = splitQID(line)
				}

				results, err := dex.RankBM25(idx, text)
				if err != nil {
					return err
				}
				if limit > 0 && len(results) > limit {
					results = results[:limit]
				}

				for _, r := range results {
					name := idx.Document(r.DocID).Name
					if trec {
						fmt.Fprintf(out, "%s Q0 %s 0 %g %s\n", qid, name, r.Score, runTag)
					} else {
						fmt.Fprintf(out, "%s %g\n", name, r.Score)
					}
				}
				if err := out.Flush(); err != nil {
					return err
				}
			}
			return in.Err()
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "directory holding the index files")
	cmd.Flags().BoolVar(&trec, "trec", false, "emit TREC run-file format")
	cmd.Flags().IntVar(&limit, "limit", 0, "limit results per query (0 = unlimited)")
	return cmd
}

// splitQID splits a TREC-mode query line into its leading qid token and
// the remaining query text.
func splitQID(line string) (qid, text string) {
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimLeft(line[i+1:], " \t")
}
