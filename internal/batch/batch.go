// Package batch implements the in-memory per-file buffer layer
// (SPEC_FULL.md §5's "batch mutations"): a sequence of commands runs
// against mutating in-memory buffers, per-command failures are recorded
// without halting the sequence, and a final write-back flushes every
// buffer that differs from its file on disk.
package batch

import (
	"fmt"
	"os"
)

// Op is one queued mutation: Apply receives the current buffer contents
// for Path and returns the new contents.
type Op struct {
	Path  string
	Apply func(content string) (string, error)
	Label string // human-readable description, for Result.Failures
}

// Failure records one command's error without halting the sequence.
type Failure struct {
	Index int
	Label string
	Path  string
	Err   error
}

// Result is the outcome of running a batch.
type Result struct {
	Failures []Failure
	Written  []string
}

// Batch buffers file contents in memory across a sequence of operations,
// flushing only the files that actually changed.
type Batch struct {
	buffers  map[string]string
	original map[string]string
	loaded   map[string]bool
}

// New creates an empty Batch.
func New() *Batch {
	return &Batch{
		buffers:  make(map[string]string),
		original: make(map[string]string),
		loaded:   make(map[string]bool),
	}
}

// Load seeds the buffer for path with contents already known to the
// caller (e.g. read once up front), so Run doesn't re-read it from disk.
func (b *Batch) Load(path, contents string) {
	b.buffers[path] = contents
	b.original[path] = contents
	b.loaded[path] = true
}

func (b *Batch) ensureLoaded(path string) error {
	if b.loaded[path] {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("batch: read %s: %w", path, err)
	}
	b.buffers[path] = string(raw)
	b.original[path] = string(raw)
	b.loaded[path] = true
	return nil
}

// Get returns the current in-memory contents of path, loading it from
// disk on first access.
func (b *Batch) Get(path string) (string, error) {
	if err := b.ensureLoaded(path); err != nil {
		return "", err
	}
	return b.buffers[path], nil
}

// Run applies each op in order against the in-memory buffers. A failing
// op is recorded in the result and does not affect other ops, including
// later ops against the same file (which continue from the last
// successfully applied buffer state).
func (b *Batch) Run(ops []Op) Result {
	var res Result
	for i, op := range ops {
		current, err := b.Get(op.Path)
		if err != nil {
			res.Failures = append(res.Failures, Failure{Index: i, Label: op.Label, Path: op.Path, Err: err})
			continue
		}
		updated, err := op.Apply(current)
		if err != nil {
			res.Failures = append(res.Failures, Failure{Index: i, Label: op.Label, Path: op.Path, Err: err})
			continue
		}
		b.buffers[op.Path] = updated
	}
	return res
}

// Flush writes every buffer whose contents differ from what was loaded
// (SPEC_FULL.md's "flushes every file whose buffer differs from the file
// on disk"), returning the paths actually written.
func (b *Batch) Flush() ([]string, error) {
	var written []string
	for path, contents := range b.buffers {
		if contents == b.original[path] {
			continue
		}
		if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
			return written, fmt.Errorf("batch: write %s: %w", path, err)
		}
		written = append(written, path)
		b.original[path] = contents
	}
	return written, nil
}
