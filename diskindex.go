package dex

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// ═══════════════════════════════════════════════════════════════════════════════
// DISK INDEX: the query-time reader
// ═══════════════════════════════════════════════════════════════════════════════
// DiskIndex opens the four index files at construction. It reads the
// documents file and the root file fully into memory and closes those two
// handles again, keeping only the postings and blocks files open (owned
// exclusively until Close). It also seeds a
// leaf-block cache with an Unloaded entry per root pointer. Leaf blocks are
// fetched lazily, on first lookup, and stay resident for the life of the
// index — there is no eviction, because the target corpora keep the
// dictionary well inside available memory.
//
// Not safe for concurrent use: Postings seeks shared file handles, so two
// goroutines calling it at once would race on the seek cursor. A mutex
// would only serialize the corruption, not prevent it (seek-then-read is
// two syscalls, not one), so none is added here — callers needing
// concurrent queries should open independent DiskIndex values instead.
// ═══════════════════════════════════════════════════════════════════════════════

var (
	// ErrIndexFilesMissing marks a failure to open one of the four index
	// files at construction time.
	ErrIndexFilesMissing = errors.New("dex: could not open index files")
)

// block is the tagged-variant lazy cache entry for one leaf block. The
// Loaded flag distinguishes "not yet fetched" from "fetched and empty" —
// an explicit zero value would conflate the two.
type block struct {
	Loaded  bool
	Entries []termPointer
}

// DiskIndex is the query-time view of a built index directory.
type DiskIndex struct {
	postingsFile *os.File
	blocksFile   *os.File

	docs  []Document
	avgDL float32
	root  []termPointer

	// blocks is keyed by block pointer (byte offset into blocks.bin), one
	// entry per root record, populated as Unloaded at construction.
	blocks map[uint64]*block
}

// OpenDiskIndex opens the four index files in dir and eagerly loads the
// documents table and the root index.
func OpenDiskIndex(dir string) (*DiskIndex, error) {
	docsFile, err := os.Open(filepath.Join(dir, "documents.bin"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexFilesMissing, err)
	}
	defer docsFile.Close()

	rootFile, err := os.Open(filepath.Join(dir, "index.bin"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexFilesMissing, err)
	}
	defer rootFile.Close()

	postingsFile, err := os.Open(filepath.Join(dir, "postings.bin"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexFilesMissing, err)
	}

	blocksFile, err := os.Open(filepath.Join(dir, "blocks.bin"))
	if err != nil {
		postingsFile.Close()
		return nil, fmt.Errorf("%w: %v", ErrIndexFilesMissing, err)
	}

	docs, avgDL, err := readDocumentsFile(docsFile)
	if err != nil {
		postingsFile.Close()
		blocksFile.Close()
		return nil, fmt.Errorf("documents.bin: %w", err)
	}

	root, err := readTermPointerList(rootFile)
	if err != nil {
		postingsFile.Close()
		blocksFile.Close()
		return nil, fmt.Errorf("index.bin: %w", err)
	}

	blocks := make(map[uint64]*block, len(root))
	for _, r := range root {
		blocks[r.Ptr] = &block{}
	}

	slog.Info("disk index opened",
		slog.Int("documents", len(docs)),
		slog.Int("root_entries", len(root)))

	return &DiskIndex{
		postingsFile: postingsFile,
		blocksFile:   blocksFile,
		docs:         docs,
		avgDL:        avgDL,
		root:         root,
		blocks:       blocks,
	}, nil
}

// Close releases the postings and blocks file handles.
func (idx *DiskIndex) Close() error {
	err1 := idx.postingsFile.Close()
	err2 := idx.blocksFile.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// NumDocs returns the number of documents in the index.
func (idx *DiskIndex) NumDocs() int {
	return len(idx.docs)
}

// AvgDL returns the average document length used for BM25 scoring.
func (idx *DiskIndex) AvgDL() float32 {
	return idx.avgDL
}

// Document returns the document record for docID.
func (idx *DiskIndex) Document(docID uint64) Document {
	return idx.docs[docID]
}

// rootEntryFor finds the root entry governing term: the largest root entry
// whose term is <= term, clamped to index 0 when term precedes every root
// term.
func (idx *DiskIndex) rootEntryFor(term string) termPointer {
	k := sort.Search(len(idx.root), func(i int) bool {
		return idx.root[i].Term >= term
	})

	if k < len(idx.root) && idx.root[k].Term == term {
		return idx.root[k]
	}
	if k > 0 {
		return idx.root[k-1]
	}
	return idx.root[0]
}

// ensureBlockLoaded fetches the leaf block at ptr if it isn't already
// resident. It reads up to rootBlockSize term+pointer records, stopping at
// the first read failure — the expected, non-error signal for the tail of
// the final, possibly-short block.
func (idx *DiskIndex) ensureBlockLoaded(ptr uint64) error {
	b, ok := idx.blocks[ptr]
	if !ok {
		b = &block{}
		idx.blocks[ptr] = b
	}
	if b.Loaded {
		return nil
	}

	if _, err := idx.blocksFile.Seek(int64(ptr), io.SeekStart); err != nil {
		return fmt.Errorf("seek blocks.bin: %w", err)
	}

	br := bufferedByteReader(idx.blocksFile)
	entries := make([]termPointer, 0, rootBlockSize)
	for i := 0; i < rootBlockSize; i++ {
		tp, err := readTermPointer(br)
		if err != nil {
			break
		}
		entries = append(entries, tp)
	}

	b.Entries = entries
	b.Loaded = true
	return nil
}

// Postings returns the postings list for term, or an empty list if term is
// absent from the dictionary — absence is a normal outcome, not an error.
func (idx *DiskIndex) Postings(term string) ([]Posting, error) {
	if len(idx.root) == 0 {
		return nil, nil
	}

	r := idx.rootEntryFor(term)

	if err := idx.ensureBlockLoaded(r.Ptr); err != nil {
		return nil, err
	}

	b := idx.blocks[r.Ptr]
	k := sort.Search(len(b.Entries), func(i int) bool {
		return b.Entries[i].Term >= term
	})
	if k >= len(b.Entries) || b.Entries[k].Term != term {
		return nil, nil
	}
	postPtr := b.Entries[k].Ptr

	if _, err := idx.postingsFile.Seek(int64(postPtr), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek postings.bin: %w", err)
	}

	postings, err := readPostingsRecord(bufferedByteReader(idx.postingsFile))
	if err != nil {
		return nil, fmt.Errorf("postings.bin: %w", err)
	}
	return postings, nil
}
