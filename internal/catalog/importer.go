package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tourbook/internal/model"

	"github.com/rs/zerolog"
)

// ImporterConfig lists the feed files to import, in precedence order.
type ImporterConfig struct {
	// Files are loader paths. When two files price the same component the later
	// file wins.
	Files []string

	// DefaultCurrency is used for entries without a currency.
	DefaultCurrency model.Currency
}

// Report summarises one import run.
type Report struct {
	Files     int `json:"files"`
	Entries   int `json:"entries"`
	Rejected  int `json:"rejected"`
	Changed   int `json:"changed"`
	Unchanged int `json:"unchanged"`
	Missing   int `json:"missing"`
	Failed    int `json:"failed"`
	// ToursRecomputed counts tour recomputes across all applied prices.
	ToursRecomputed int `json:"toursRecomputed"`
}

// Importer loads price feeds and applies their prices to the catalogue.
type Importer struct {
	config  ImporterConfig
	loader  Loader
	applier PriceApplier
	logger  zerolog.Logger
}

// NewImporter creates a new price feed importer.
func NewImporter(config ImporterConfig, loader Loader, applier PriceApplier, logger zerolog.Logger) *Importer {
	config.DefaultCurrency = config.DefaultCurrency.OrDefault()
	return &Importer{
		config:  config,
		loader:  loader,
		applier: applier,
		logger:  logger.With().Str("component", "pricefeed-importer").Logger(),
	}
}

// Run loads every configured file concurrently, merges them, and applies each
// resulting price one at a time. A file that fails to load aborts the run before
// any price is applied. A price that fails to apply is logged and counted.
func (im *Importer) Run(ctx context.Context) (*Report, error) {
	feeds, err := im.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{Files: len(feeds)}
	for _, feed := range feeds {
		report.Entries += len(feed.Entries)
		report.Rejected += feed.Rejected
	}

	for _, entry := range Merge(feeds) {
		if err := ctx.Err(); err != nil {
			im.logger.Warn().Err(err).Msg("price feed import cancelled")
			return report, err
		}
		im.apply(ctx, entry, report)
	}

	im.logger.Info().
		Int("files", report.Files).
		Int("entries", report.Entries).
		Int("rejected", report.Rejected).
		Int("changed", report.Changed).
		Int("unchanged", report.Unchanged).
		Int("missing", report.Missing).
		Int("failed", report.Failed).
		Int("tours_recomputed", report.ToursRecomputed).
		Msg("price feed import finished")

	return report, nil
}

func (im *Importer) apply(ctx context.Context, entry Entry, report *Report) {
	currency := entry.Currency
	if currency == "" {
		currency = im.config.DefaultCurrency
	}

	update, err := im.applier.UpdatePrice(ctx, entry.Category, entry.ID, model.Money{Amount: entry.Price, Currency: currency})
	switch {
	case errors.Is(err, model.ErrComponentNotFound):
		im.logger.Warn().
			Str("category", string(entry.Category)).
			Int64("component_id", entry.ID).
			Msg("price feed references unknown component")
		report.Missing++
	case err != nil:
		im.logger.Error().
			Err(err).
			Str("category", string(entry.Category)).
			Int64("component_id", entry.ID).
			Msg("failed to apply feed price")
		report.Failed++
	case update.Changed:
		report.Changed++
		report.ToursRecomputed += len(update.Recomputed.Tours)
	default:
		report.Unchanged++
	}
}

func (im *Importer) loadAll(ctx context.Context) ([]*Feed, error) {
	im.logger.Info().Int("file_count", len(im.config.Files)).Msg("loading price feed files")

	type loadResult struct {
		index int
		feed  *Feed
		err   error
	}

	resultChan := make(chan loadResult, len(im.config.Files))
	var wg sync.WaitGroup

	for i, path := range im.config.Files {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			feed, err := im.loader.Load(ctx, path)
			resultChan <- loadResult{index: index, feed: feed, err: err}
		}(i, path)
	}

	wg.Wait()
	close(resultChan)

	// Collect results in configured order
	results := make([]loadResult, len(im.config.Files))
	for result := range resultChan {
		results[result.index] = result
	}

	feeds := make([]*Feed, 0, len(results))
	for i, result := range results {
		if result.err != nil {
			im.logger.Error().
				Err(result.err).
				Str("file", im.config.Files[i]).
				Msg("failed to load price feed file")
			return nil, fmt.Errorf("failed to load price feed file %s: %w", im.config.Files[i], result.err)
		}
		feeds = append(feeds, result.feed)
	}

	return feeds, nil
}

// Merge flattens feeds into one entry per component. The last entry for a
// component wins; output keeps the order in which components first appear.
func Merge(feeds []*Feed) []Entry {
	index := make(map[Key]int)
	var out []Entry

	for _, feed := range feeds {
		for _, entry := range feed.Entries {
			if i, ok := index[entry.Key()]; ok {
				out[i] = entry
				continue
			}
			index[entry.Key()] = len(out)
			out = append(out, entry)
		}
	}

	return out
}
