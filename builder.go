package dex

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// ═══════════════════════════════════════════════════════════════════════════════
// INDEX BUILDER
// ═══════════════════════════════════════════════════════════════════════════════
// Single pass over a pre-tokenized document stream, producing the four
// on-disk index files. The builder never re-tokenizes: each non-empty
// input line is already one term, exactly as the Terms iterator (terms.go)
// would have produced it. Input shape:
//
//	line 1:        first document's name
//	line 2..k:     one term occurrence per line, belonging to the current doc
//	empty line:    document boundary — the next line (if any) is the next name
//
// Trailing empty input (EOF right after a document name, with no term
// lines) is a legal document with term_count = 0.
// ═══════════════════════════════════════════════════════════════════════════════

// rootBlockSize is the maximum number of entries in one leaf block, and the
// stride at which root entries are recorded.
const rootBlockSize = 1000

// BuildResult summarizes a completed build.
type BuildResult struct {
	Documents int
	Terms     int
	AvgDL     float32
}

// BuildIndex reads the term-stream format from r and writes documents.bin,
// postings.bin, blocks.bin and index.bin into dir.
func BuildIndex(r io.Reader, dir string) (BuildResult, error) {
	docs, dict, totalTerms, err := scanDocuments(r)
	if err != nil {
		return BuildResult{}, fmt.Errorf("dex: scanning input: %w", err)
	}

	var avgDL float32
	if len(docs) > 0 {
		avgDL = float32(totalTerms) / float32(len(docs))
	}

	slog.Info("build: scanned documents",
		slog.Int("documents", len(docs)),
		slog.Int("terms", dict.Len()),
		slog.Uint64("total_term_occurrences", totalTerms))

	if err := writeIndexFiles(dir, docs, dict, avgDL); err != nil {
		return BuildResult{}, fmt.Errorf("dex: writing index files: %w", err)
	}

	slog.Info("build: wrote index files", slog.String("dir", dir), slog.Float64("avg_dl", float64(avgDL)))

	return BuildResult{Documents: len(docs), Terms: dict.Len(), AvgDL: avgDL}, nil
}

// scanDocuments consumes the term-stream format and returns the document
// table, the populated dictionary, and the sum of all term counts.
func scanDocuments(r io.Reader) ([]Document, *Dictionary, uint64, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	dict := NewDictionary()
	var docs []Document
	var totalTerms uint64

	var docID uint64
	var curName string
	var curCount uint64
	haveDoc := false
	expectName := true

	flush := func() {
		if !haveDoc {
			return
		}
		docs = append(docs, Document{Name: curName, TermCount: curCount})
		totalTerms += curCount
		docID++
		curCount = 0
		haveDoc = false
	}

	for sc.Scan() {
		line := sc.Text()

		if expectName {
			curName = line
			haveDoc = true
			curCount = 0
			expectName = false
			continue
		}

		if line == "" {
			flush()
			expectName = true
			continue
		}

		dict.AddOccurrence(line, docID)
		curCount++
	}
	flush()

	if err := sc.Err(); err != nil {
		return nil, nil, 0, err
	}

	return docs, dict, totalTerms, nil
}

// writeIndexFiles flushes docs and dict to the four on-disk files in dir.
func writeIndexFiles(dir string, docs []Document, dict *Dictionary, avgDL float32) error {
	docsW, err := createBuffered(filepath.Join(dir, "documents.bin"))
	if err != nil {
		return err
	}
	defer docsW.Close()

	if err := writeDocumentsFile(docsW, docs, avgDL); err != nil {
		return fmt.Errorf("documents.bin: %w", err)
	}
	if err := docsW.Flush(); err != nil {
		return fmt.Errorf("documents.bin: %w", err)
	}

	postingsW, err := createBuffered(filepath.Join(dir, "postings.bin"))
	if err != nil {
		return err
	}
	defer postingsW.Close()

	blocksW, err := createBuffered(filepath.Join(dir, "blocks.bin"))
	if err != nil {
		return err
	}
	defer blocksW.Close()

	rootW, err := createBuffered(filepath.Join(dir, "index.bin"))
	if err != nil {
		return err
	}
	defer rootW.Close()

	entries := dict.All()

	numRootEntries := 0
	for i := range entries {
		if i%rootBlockSize == 0 {
			numRootEntries++
		}
	}

	if _, err := writeVarint(rootW, uint64(numRootEntries)); err != nil {
		return fmt.Errorf("index.bin header: %w", err)
	}

	blocksOffset, err := writeVarint(blocksW, uint64(len(entries)))
	if err != nil {
		return fmt.Errorf("blocks.bin header: %w", err)
	}

	postingsOffset := 0
	for i, entry := range entries {
		postPtr := postingsOffset
		n, err := writePostingsRecord(postingsW, entry.Postings)
		if err != nil {
			return fmt.Errorf("postings.bin: term %q: %w", entry.Term, err)
		}
		postingsOffset += n

		blockPtr := blocksOffset
		n, err = writeTermPointer(blocksW, entry.Term, uint64(postPtr))
		if err != nil {
			return fmt.Errorf("blocks.bin: term %q: %w", entry.Term, err)
		}
		blocksOffset += n

		if i%rootBlockSize == 0 {
			if _, err := writeTermPointer(rootW, entry.Term, uint64(blockPtr)); err != nil {
				return fmt.Errorf("index.bin: term %q: %w", entry.Term, err)
			}
		}
	}

	if err := postingsW.Flush(); err != nil {
		return fmt.Errorf("postings.bin: %w", err)
	}
	if err := blocksW.Flush(); err != nil {
		return fmt.Errorf("blocks.bin: %w", err)
	}
	if err := rootW.Flush(); err != nil {
		return fmt.Errorf("index.bin: %w", err)
	}

	return nil
}

// bufferedFile pairs a *bufio.Writer with the *os.File backing it so callers
// can Flush and Close without tracking both handles separately.
type bufferedFile struct {
	*bufio.Writer
	f *os.File
}

func (b *bufferedFile) Close() error {
	return b.f.Close()
}

func createBuffered(path string) (*bufferedFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &bufferedFile{Writer: bufio.NewWriter(f), f: f}, nil
}
