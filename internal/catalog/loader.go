package catalog

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for feed files on local disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based feed loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "pricefeed-loader").Logger(),
	}
}

// Load reads a gzipped feed file from disk.
func (l *fileLoader) Load(ctx context.Context, path string) (*Feed, error) {
	l.logger.Info().Str("file", path).Msg("loading price feed file")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open price feed file")
		return nil, fmt.Errorf("failed to open price feed file %s: %w", path, err)
	}
	defer file.Close()

	feed, err := decodeFeed(ctx, file, path, l.logger)
	if err != nil {
		return nil, err
	}

	l.logger.Info().
		Str("file", path).
		Int("entries", len(feed.Entries)).
		Int("rejected", feed.Rejected).
		Msg("price feed file loaded successfully")

	return feed, nil
}

// decodeFeed reads gzip-compressed JSON lines from r. Blank lines are ignored;
// lines that fail to decode or validate are counted as rejected and skipped.
func decodeFeed(ctx context.Context, r io.Reader, source string, logger zerolog.Logger) (*Feed, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		logger.Error().Err(err).Str("source", source).Msg("failed to create gzip reader")
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	feed := &Feed{Source: source}

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		// Check context cancellation periodically
		if lineNo%10_000 == 0 {
			select {
			case <-ctx.Done():
				logger.Warn().Str("source", source).Msg("price feed loading cancelled")
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			logger.Warn().Err(err).Str("source", source).Int("line", lineNo).Msg("malformed price feed line")
			feed.Rejected++
			continue
		}
		if reason := entry.invalid(); reason != "" {
			logger.Warn().Str("source", source).Int("line", lineNo).Str("reason", reason).Msg("invalid price feed line")
			feed.Rejected++
			continue
		}

		feed.Entries = append(feed.Entries, entry)
	}

	if err := scanner.Err(); err != nil {
		logger.Error().Err(err).Str("source", source).Msg("error reading price feed")
		return nil, fmt.Errorf("error reading price feed %s: %w", source, err)
	}

	return feed, nil
}

func (e Entry) invalid() string {
	switch {
	case !e.Category.Valid():
		return "unknown category"
	case e.ID <= 0:
		return "missing component id"
	case e.Price.IsNegative():
		return "negative price"
	case e.Currency != "" && !e.Currency.Valid():
		return "unknown currency"
	}
	return ""
}
