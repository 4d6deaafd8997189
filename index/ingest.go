package index

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chanfle/docrecon/layout"
	"github.com/chanfle/docrecon/model"
)

// Source is one document to ingest: its canonical source path, the
// reconstruction mode tag, and the decoder's per-page output.
type Source struct {
	Path  string
	Mode  string
	Pages []model.PageInput
}

// Result is the per-item outcome of a batch ingestion. Err is nil on
// success; a failed item never aborts the batch.
type Result struct {
	Path      string
	Key       string
	PageCount int
	Err       error
}

// IngesterConfig configures a batch ingester.
type IngesterConfig struct {
	// Workers bounds the reconstruction worker pool (default: 4).
	Workers int

	// EdgeLines is the header/footer slice depth (default: 3).
	EdgeLines int

	// LineConfig and LayoutConfig tune reconstruction.
	LineConfig   layout.LineConfig
	LayoutConfig layout.LayoutConfig

	// Logger receives batch progress; nil means slog.Default().
	Logger *slog.Logger
}

// DefaultIngesterConfig returns sensible default configuration
func DefaultIngesterConfig() IngesterConfig {
	return IngesterConfig{
		Workers:      4,
		EdgeLines:    DefaultEdgeLines,
		LineConfig:   layout.DefaultLineConfig(),
		LayoutConfig: layout.DefaultLayoutConfig(),
	}
}

// Ingester fans document reconstruction out across a bounded worker
// pool and serializes the resulting index writes through the injected
// Store. Reconstruction runs outside any lock; only the index mutation
// itself is serialized.
type Ingester struct {
	store  *Store
	config IngesterConfig
	logger *slog.Logger
}

// NewIngester creates an ingester writing to store.
func NewIngester(store *Store, config IngesterConfig) *Ingester {
	if config.Workers <= 0 {
		config.Workers = DefaultIngesterConfig().Workers
	}
	if config.EdgeLines <= 0 {
		config.EdgeLines = DefaultEdgeLines
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{
		store:  store,
		config: config,
		logger: logger,
	}
}

// Run ingests every source and returns one Result per source, in input
// order. Failures are isolated per document: the batch always runs to
// completion (or until ctx is cancelled, which skips the documents not
// yet started; a document under way is finished, there is no mid-page
// cancellation).
func (ing *Ingester) Run(ctx context.Context, sources []Source) []Result {
	batch := uuid.NewString()[:8]
	logger := ing.logger.With("batch", batch)
	logger.Info("starting ingestion batch", "documents", len(sources), "workers", ing.config.Workers)
	start := time.Now()

	jobs := make(chan int)
	results := make([]Result, len(sources))

	var wg sync.WaitGroup
	for w := 0; w < ing.config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = ing.ingestOne(sources[i])
				if results[i].Err != nil {
					logger.Warn("document failed", "source", sources[i].Path, "error", results[i].Err)
				}
			}
		}()
	}

feed:
	for i := range sources {
		select {
		case <-ctx.Done():
			for j := i; j < len(sources); j++ {
				results[j] = Result{Path: sources[j].Path, Err: ctx.Err()}
			}
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	logger.Info("ingestion batch done",
		"documents", len(sources), "failed", failed, "elapsed", time.Since(start))

	return results
}

// ingestOne reconstructs one document and upserts it. This is the
// expensive, lock-free part; only the final Upsert enters the store's
// critical section.
func (ing *Ingester) ingestOne(src Source) Result {
	result := Result{Path: src.Path, Key: Key(src.Path, src.Mode)}

	recon := layout.NewReconstructorWithConfig(ing.config.LineConfig, ing.config.LayoutConfig)
	pages := make([]PageRecord, 0, len(src.Pages))
	for _, input := range src.Pages {
		text := recon.Page(input)
		pages = append(pages, BuildPageRecord(result.Key, input, text, ing.config.EdgeLines))
	}

	doc := DocumentRecord{
		Key:       result.Key,
		Source:    src.Path,
		Mode:      src.Mode,
		CreatedAt: time.Now().UTC(),
		PageCount: len(pages),
	}

	if err := ing.store.Upsert(doc, pages); err != nil {
		result.Err = fmt.Errorf("index %s: %w", src.Path, err)
		return result
	}

	result.PageCount = len(pages)
	return result
}
