// Package importer runs the county loader pipelines.
//
// Every pipeline has the same shape: resolve each source file inside the
// latest data drop, stream it line by line, map each line to a typed record,
// batch the records and hand every full batch to the store. A Spec supplies
// the per-pipeline parts (file names, destination table, conflict policy,
// mapping) and Run does the rest.
//
// Processing is sequential: one file at a time, one line at a time, one
// batch write at a time. The only concurrency is the start-of-file probe,
// where the line count and the existing-key pre-load run side by side.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"countyloader/internal/config"
	"countyloader/internal/datadrop"
	"countyloader/internal/mapping"
	"countyloader/internal/metrics"
	"countyloader/internal/progress"
	"countyloader/internal/resume"
	"countyloader/internal/skiplog"
	"countyloader/internal/store"
	"countyloader/internal/tsv"
)

// ErrBatchAborted is returned when a batch write fails in a pipeline that
// does not continue past batch errors.
var ErrBatchAborted = errors.New("batch write failed")

// reasonMissingKey labels rows dropped because the mapper found no business key.
const reasonMissingKey = "missing_key"

// Spec describes one pipeline.
type Spec[T any] struct {
	Name     string
	Files    []string // file names inside the latest data drop, processed in order
	Table    *store.Table
	Conflict store.Conflict

	// Preload loads every existing key of Table before the first file and
	// skips incoming records whose key is already present.
	Preload bool
	// Resumable records fully ingested files in the processed-files log and
	// skips them on later runs.
	Resumable bool
	// ContinueOnBatchError is the pipeline's default batch failure policy.
	// When false, a failed batch fails the file and stops the run.
	ContinueOnBatchError bool

	// Map turns one data line into a record; ok=false means the business key
	// is missing and the line is dropped.
	Map func(h *mapping.HeaderIndex, fields []string) (rec T, ok bool)
	// Key returns the business key of rec, ordered as Table.Key.
	Key func(rec T) []string
	// Values returns rec's column values, ordered as Table.Columns.
	Values func(rec T) []any
}

// Options are the run-time knobs shared by all pipelines.
type Options struct {
	DataDir       string
	LatestBy      datadrop.Order
	Encoding      string
	BatchSize     int
	ProgressEvery int
	PreloadKeys   bool
	CreateTables  bool
	ProcessedLog  string
	SkippedDir    string
	RunID         string

	// ContinueOnBatchError overrides a pipeline's default batch failure
	// policy. Nil keeps the default.
	ContinueOnBatchError func(def bool) bool

	Observer progress.Observer
}

// OptionsFromConfig maps process configuration onto Options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	by, err := datadrop.ParseOrder(cfg.LatestBy)
	if err != nil {
		return Options{}, err
	}
	return Options{
		DataDir:              cfg.DataDir,
		LatestBy:             by,
		Encoding:             cfg.Encoding,
		BatchSize:            cfg.BatchSize,
		ProgressEvery:        cfg.ProgressEvery,
		PreloadKeys:          cfg.PreloadKeys,
		CreateTables:         cfg.CreateTables,
		ProcessedLog:         cfg.ProcessedLog,
		SkippedDir:           cfg.SkippedDir,
		ContinueOnBatchError: cfg.ContinueOnBatchError,
	}, nil
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 1000
	}
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = 100
	}
	if o.Observer == nil {
		o.Observer = progress.Nop{}
	}
	return o
}

// FileResult is the outcome of one source file.
type FileResult struct {
	Path string
	progress.Counters
	Batches  int
	Written  int64 // rows the store reports as written; conflicts absorbed by the store are excluded
	Skipped  bool  // already in the processed-files log; not opened
	Duration time.Duration
	Err      error
}

// Result is the outcome of one pipeline run.
type Result struct {
	Pipeline string
	Files    []FileResult
	Totals   progress.Counters
	Duration time.Duration
}

// Run executes spec against st. It stops at the first file that fails; the
// returned Result still holds every file attempted so far.
func Run[T any](ctx context.Context, st store.Store, spec Spec[T], opts Options) (res Result, err error) {
	opts = opts.withDefaults()
	start := time.Now()
	res.Pipeline = spec.Name

	defer func() {
		res.Duration = time.Since(start)
		metrics.RecordStep(spec.Name, "pipeline", err, res.Duration)
	}()

	cont := spec.ContinueOnBatchError
	if opts.ContinueOnBatchError != nil {
		cont = opts.ContinueOnBatchError(cont)
	}
	log.Printf("%s: start run_id=%s table=%s conflict=%s preload=%t resumable=%t continue_on_batch_error=%t batch_size=%d",
		spec.Name, opts.RunID, spec.Table.Name, spec.Conflict, spec.Preload && opts.PreloadKeys, spec.Resumable, cont, opts.BatchSize)

	if opts.CreateTables {
		if err := st.EnsureTable(ctx, spec.Table); err != nil {
			return res, fmt.Errorf("%s: %w", spec.Name, err)
		}
	}

	var done *resume.Log
	if spec.Resumable {
		done = resume.Load(opts.ProcessedLog)
		log.Printf("%s: %d file(s) already processed according to %s", spec.Name, done.Len(), done.Path())
	}

	var (
		keys           keySet
		preloadPending = spec.Preload && opts.PreloadKeys
	)

	for _, name := range spec.Files {
		path, err := datadrop.Resolve(opts.DataDir, name, opts.LatestBy)
		if err != nil {
			return res, fmt.Errorf("%s: %w", spec.Name, err)
		}

		if done != nil && done.Has(path) {
			log.Printf("%s: skipping %s (already processed)", spec.Name, path)
			res.Files = append(res.Files, FileResult{Path: path, Skipped: true})
			continue
		}

		total := int64(-1)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			n, err := tsv.CountLines(path)
			if err != nil {
				log.Printf("⚠️ %s: line count unavailable, progress without ETA: %v", spec.Name, err)
				return nil
			}
			total = n
			return nil
		})
		if preloadPending {
			g.Go(func() error {
				k, err := preload(gctx, st, spec.Name, spec.Table)
				if err != nil {
					return err
				}
				keys = k
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return res, fmt.Errorf("%s: %w", spec.Name, err)
		}
		preloadPending = false

		fr := runFile(ctx, st, spec, opts, cont, path, total, keys)
		res.Files = append(res.Files, fr)
		res.Totals = res.Totals.Add(fr.Counters)
		if fr.Err != nil {
			return res, fr.Err
		}

		switch {
		case done == nil:
		case fr.Errors > 0:
			log.Printf("⚠️ %s: %s had %d failed row(s), leaving it unmarked so the next run retries it", spec.Name, path, fr.Errors)
		default:
			if err := done.MarkProcessed(path); err != nil {
				log.Printf("⚠️ %s: could not persist processed-files log: %v", spec.Name, err)
			}
		}
	}

	log.Printf("%s: done run_id=%s files=%d processed=%d inserted=%d skipped_existing=%d dropped=%d failed=%d duration=%s",
		spec.Name, opts.RunID, len(res.Files), res.Totals.Count, res.Totals.Success, res.Totals.SkippedExisting,
		res.Totals.Dropped, res.Totals.Errors, time.Since(start).Round(time.Millisecond))
	return res, nil
}

// runFile streams one source file into the store.
func runFile[T any](ctx context.Context, st store.Store, spec Spec[T], opts Options, cont bool, path string, total int64, keys keySet) (fr FileResult) {
	start := time.Now()
	fr.Path = path
	defer func() {
		fr.Duration = time.Since(start)
		metrics.RecordStep(spec.Name, "file", fr.Err, fr.Duration)
		metrics.RecordBatches(spec.Name, int64(fr.Batches))
	}()

	r, err := tsv.Open(path, tsv.Options{Encoding: opts.Encoding})
	if err != nil {
		fr.Err = fmt.Errorf("%s: %w", spec.Name, err)
		return fr
	}
	defer r.Close()

	h := mapping.NewHeaderIndex(r.Header())
	log.Printf("%s: reading %s (%d columns)", spec.Name, path, h.Len())

	var skipped *skiplog.Log
	if opts.SkippedDir != "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		skipped, err = skiplog.Create(filepath.Join(opts.SkippedDir, fmt.Sprintf("skipped_%s_%s.csv", spec.Name, base)))
		if err != nil {
			log.Printf("⚠️ %s: skipped-rows log disabled: %v", spec.Name, err)
			skipped = nil
		}
	}
	defer func() {
		if err := skipped.Close(); err != nil {
			log.Printf("⚠️ %s: %v", spec.Name, err)
		}
	}()

	snapshot := func(flush bool) progress.Snapshot {
		return progress.Snapshot{
			Pipeline: spec.Name,
			File:     path,
			Counters: fr.Counters,
			Total:    total,
			Elapsed:  time.Since(start),
			Flush:    flush,
		}
	}

	// An aborted file still gets a final snapshot so observers can close
	// their progress line and report the rows that failed.
	defer func() {
		if fr.Err != nil {
			s := snapshot(true)
			s.Err = fr.Err
			opts.Observer.OnFileDone(s)
		}
	}()

	batch := make([][]any, 0, opts.BatchSize)
	lastLine := 0

	// flush writes the pending batch. The batch is cleared whatever the
	// outcome; a failed write counts every row in it as an error.
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n := int64(len(batch))
		written, err := st.InsertBatch(ctx, spec.Table, batch, spec.Conflict)
		batch = make([][]any, 0, opts.BatchSize)
		fr.Batches++
		if err != nil {
			fr.Errors += n
			log.Printf("⚠️ %s: batch %d (%d rows, through line %d of %s) failed: %v",
				spec.Name, fr.Batches, n, lastLine, filepath.Base(path), err)
			opts.Observer.OnProgress(snapshot(true))
			if !cont {
				return fmt.Errorf("%s: %s: %w: %w", spec.Name, path, ErrBatchAborted, err)
			}
			return nil
		}
		fr.Success += n
		fr.Written += written
		opts.Observer.OnProgress(snapshot(true))
		return nil
	}

	for {
		row, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fr.Err = fmt.Errorf("%s: read %s: %w", spec.Name, path, err)
			return fr
		}
		fr.Count++
		lastLine = row.Line

		rec, ok := spec.Map(h, row.Fields)
		switch {
		case !ok:
			fr.Dropped++
			log.Printf("⚠️ %s: line %d of %s has no business key, skipped", spec.Name, row.Line, filepath.Base(path))
			skipped.Add(reasonMissingKey, row.Line, acctOf(h, row.Fields), row.Raw)
		case keys != nil && keys.Has(spec.Key(rec)):
			fr.SkippedExisting++
		default:
			batch = append(batch, spec.Values(rec))
			if len(batch) >= opts.BatchSize {
				if err := flush(); err != nil {
					fr.Err = err
					return fr
				}
			}
		}

		if fr.Count%int64(opts.ProgressEvery) == 0 {
			if err := ctx.Err(); err != nil {
				fr.Err = fmt.Errorf("%s: %w", spec.Name, err)
				return fr
			}
			opts.Observer.OnProgress(snapshot(false))
		}
	}

	if err := flush(); err != nil {
		fr.Err = err
		return fr
	}

	if n := fr.Pending(); n != 0 {
		log.Printf("⚠️ %s: %s counters off by %d row(s)", spec.Name, filepath.Base(path), n)
	}
	opts.Observer.OnFileDone(snapshot(false))
	elapsed := time.Since(start)
	log.Printf("%s: file=%s processed=%d inserted=%d written=%d skipped_existing=%d dropped=%d failed=%d batches=%d duration=%s rate_per_second=%.0f",
		spec.Name, filepath.Base(path), fr.Count, fr.Success, fr.Written, fr.SkippedExisting, fr.Dropped, fr.Errors,
		fr.Batches, elapsed.Round(time.Millisecond), float64(fr.Count)/elapsed.Seconds())
	return fr
}

// acctOf extracts the account column for the skipped-rows log, falling back
// to the first field for files without an acct header.
func acctOf(h *mapping.HeaderIndex, fields []string) string {
	if h.Has("acct") {
		return h.Get(fields, "acct")
	}
	return mapping.Field(fields, 0)
}

// preload reads every existing key of t into a keySet.
func preload(ctx context.Context, st store.Store, pipeline string, t *store.Table) (keySet, error) {
	start := time.Now()
	keys := keySet{}
	err := st.ExistingKeys(ctx, t, func(key []string) { keys.Add(key) })
	metrics.RecordStep(pipeline, "preload", err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("preload keys of %s: %w", t.Name, err)
	}
	log.Printf("%s: pre-loaded %d existing key(s) from %s in %s", pipeline, len(keys), t.Name, time.Since(start).Round(time.Millisecond))
	return keys, nil
}
