package patterns

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/MikeSquared-Agency/mimic/internal/quality"
	"github.com/MikeSquared-Agency/mimic/internal/style"
)

// ErrNoTemplates is returned when the requested categories hold no eligible
// template at all.
var ErrNoTemplates = errors.New("no eligible templates")

// Library selects and fills templates, avoiding repeats within a thread.
type Library struct {
	catalogue Catalogue
	ledger    Ledger
	locks     *keyedMutex
	logger    *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

type Option func(*Library)

// WithRand makes selection and filling reproducible.
func WithRand(r *rand.Rand) Option {
	return func(l *Library) { l.rng = r }
}

// WithCatalogue replaces the embedded catalogue.
func WithCatalogue(c Catalogue) Option {
	return func(l *Library) { l.catalogue = c }
}

func NewLibrary(ledger Ledger, logger *slog.Logger, opts ...Option) *Library {
	l := &Library{
		catalogue: DefaultCatalogue(),
		ledger:    ledger,
		locks:     newKeyedMutex(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.ledger == nil {
		l.ledger = NewMemoryLedger()
	}
	return l
}

func (l *Library) intn(n int) int {
	if l.rng == nil {
		return rand.IntN(n)
	}
	l.rngMu.Lock()
	defer l.rngMu.Unlock()
	return l.rng.IntN(n)
}

// eligible returns the templates of categories, dropping specific-point
// templates unless allowed.
func (l *Library) eligible(categories []Category, allowSpecificPoint bool) []Template {
	seen := make(map[Category]bool, len(categories))
	var pool []Template
	for _, c := range categories {
		if seen[c] {
			continue
		}
		seen[c] = true
		for _, t := range l.catalogue[c] {
			if t.NeedsSpecificPoint() && !allowSpecificPoint {
				continue
			}
			pool = append(pool, t)
		}
	}
	return pool
}

// Select picks a template uniformly from categories, skipping bodies already
// used in threadID. When every eligible body was used the thread's ledger is
// reset and the full pool is eligible again. The chosen body is recorded
// before return. Ledger failures are logged and treated as an empty ledger.
func (l *Library) Select(ctx context.Context, categories []Category, threadID string, allowSpecificPoint bool) (Template, error) {
	pool := l.eligible(categories, allowSpecificPoint)
	if len(pool) == 0 {
		return Template{}, ErrNoTemplates
	}

	unlock := l.locks.lock(threadID)
	defer unlock()

	used, err := l.ledger.Used(ctx, threadID)
	if err != nil {
		l.logger.Warn("ledger read failed", "thread_id", threadID, "error", err)
		used = nil
	}

	available := make([]Template, 0, len(pool))
	for _, t := range pool {
		if !used[t.Body] {
			available = append(available, t)
		}
	}
	if len(available) == 0 {
		l.logger.Debug("template pool exhausted, resetting ledger", "thread_id", threadID, "pool", len(pool))
		if err := l.ledger.Reset(ctx, threadID); err != nil {
			l.logger.Warn("ledger reset failed", "thread_id", threadID, "error", err)
		}
		available = pool
	}

	chosen := available[l.intn(len(available))]
	if err := l.ledger.Record(ctx, threadID, chosen.Body); err != nil {
		l.logger.Warn("ledger record failed", "thread_id", threadID, "error", err)
	}
	return chosen, nil
}

// Compose produces a template reply for post: route by theme and sentiment,
// select, fill and humanize. A filled reply that echoes more than two post
// keywords or hits the denylist is swapped for a short agreement.
func (l *Library) Compose(ctx context.Context, threadID, post string, theme style.Theme, sentiment style.Sentiment) (string, error) {
	hasPoint := len(SpecificPoints(post)) > 0
	categories := Route(theme, sentiment, hasPoint)

	t, err := l.Select(ctx, categories, threadID, hasPoint)
	if err != nil {
		return "", err
	}
	reply := l.Fill(t, post)

	if KeywordOverlap(reply, post) > 2 || quality.ViolatesDenylist(reply) {
		short, err := l.Select(ctx, []Category{AgreementShort}, threadID, false)
		if err != nil {
			return "", err
		}
		reply = short.Body
	}

	return quality.Clean(Humanize(reply)), nil
}

// keyedMutex is a set of per-key mutexes, released when unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
