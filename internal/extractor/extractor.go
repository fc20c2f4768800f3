// Package extractor orchestrates the adjacency pipeline: parse map
// documents, accumulate observations, and merge the deltas into a store in
// a fixed order.
package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/imyousuf/TileSage/internal/adjacency"
	"github.com/imyousuf/TileSage/internal/mapdoc"
)

// Config holds configuration for the Extractor.
type Config struct {
	Registry     *mapdoc.Registry
	BackgroundID uint32 // filler identity excluded from statistics
	Strict       bool   // abort the batch on the first document failure
	Workers      int    // parallel document scans; <=1 means sequential
	Verbose      bool
	Logger       func(format string, args ...any) // defaults to stderr
}

// RunStats summarizes one pipeline run.
type RunStats struct {
	DocumentsMerged int
	DocumentsFailed int
	PairsAdded      int
	Errors          []string
}

// Extractor scans map documents and merges their observations into an
// adjacency store.
type Extractor struct {
	registry *mapdoc.Registry
	acc      adjacency.Accumulator
	strict   bool
	workers  int
	verbose  bool
	log      func(format string, args ...any)
}

// New creates an Extractor with the given configuration.
func New(cfg Config) *Extractor {
	logFn := cfg.Logger
	if logFn == nil {
		logFn = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Extractor{
		registry: cfg.Registry,
		acc:      adjacency.Accumulator{BackgroundID: cfg.BackgroundID},
		strict:   cfg.Strict,
		workers:  workers,
		verbose:  cfg.Verbose,
		log:      logFn,
	}
}

// docResult is the outcome of scanning one document. Deltas are complete
// or nil; a document never contributes partially.
type docResult struct {
	name   string
	deltas adjacency.Deltas
	err    error
}

// Run parses every path, accumulates each document in isolation, and
// merges the resulting deltas into store strictly in input order, so the
// persisted output is byte-identical across runs regardless of the worker
// count. A document that fails to parse merges nothing; in strict mode the
// first failure aborts before any later document is merged.
func (e *Extractor) Run(store *adjacency.Store, paths []string) (*RunStats, error) {
	results := make([]docResult, len(paths))

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.workers)
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = e.scan(path)
		}(i, path)
	}
	wg.Wait()

	stats := &RunStats{}
	for _, res := range results {
		if res.err != nil {
			stats.DocumentsFailed++
			stats.Errors = append(stats.Errors, res.err.Error())
			if e.strict {
				return stats, res.err
			}
			e.log("skipping %s: %v", res.name, res.err)
			continue
		}
		pairs := res.deltas.Total()
		store.Merge(res.deltas)
		store.AddSourceMap(res.name)
		stats.DocumentsMerged++
		stats.PairsAdded += pairs
		if e.verbose {
			e.log("  %s: %d adjacency pairs", res.name, pairs)
		}
	}
	return stats, nil
}

// scan reads, parses and accumulates a single document. The file handle is
// released before any accumulation happens, on every path including parse
// failure.
func (e *Extractor) scan(path string) docResult {
	name := filepath.Base(path)
	content, err := os.ReadFile(path)
	if err != nil {
		return docResult{name: name, err: fmt.Errorf("read %s: %w", path, err)}
	}
	ext := filepath.Ext(path)
	p, ok := e.registry.GetByExtension(ext)
	if !ok {
		return docResult{name: name, err: fmt.Errorf("%s: no parser registered for %q", path, ext)}
	}
	doc, err := p.Parse(name, content)
	if err != nil {
		return docResult{name: name, err: err}
	}
	return docResult{name: name, deltas: e.acc.Accumulate(doc, nil)}
}
