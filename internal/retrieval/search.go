package retrieval

import (
	"context"
	"log/slog"
	"time"
)

// Searcher is the external semantic index.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]string, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, query string, k int) ([]string, error)

func (f SearcherFunc) Search(ctx context.Context, query string, k int) ([]string, error) {
	return f(ctx, query, k)
}

// Index wraps a Searcher with a per-call timeout. Every failure (error,
// timeout, panic in the backend, missing backend) becomes an empty result.
type Index struct {
	searcher Searcher
	timeout  time.Duration
	logger   *slog.Logger
}

func NewIndex(s Searcher, timeout time.Duration, logger *slog.Logger) *Index {
	return &Index{searcher: s, timeout: timeout, logger: logger}
}

// Search returns at most k non-empty texts from the index.
func (ix *Index) Search(ctx context.Context, query string, k int) (results []string) {
	if ix == nil || ix.searcher == nil || k <= 0 {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			ix.logger.Warn("semantic search panicked", "panic", r)
			results = nil
		}
	}()

	if ix.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ix.timeout)
		defer cancel()
	}

	raw, err := ix.searcher.Search(ctx, query, k)
	if err != nil {
		ix.logger.Warn("semantic search failed", "error", err)
		return nil
	}

	for _, r := range raw {
		if r == "" {
			continue
		}
		results = append(results, r)
		if len(results) == k {
			break
		}
	}
	return results
}
