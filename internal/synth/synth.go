// Package synth turns a post and a set of approved reference comments into
// one reply. It profiles the references, asks the generation backend for a
// bounded number of candidates, keeps the best and falls back to templates,
// retrieved text or a canned reply when generation cannot deliver.
package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/MikeSquared-Agency/mimic/internal/patterns"
	"github.com/MikeSquared-Agency/mimic/internal/quality"
	"github.com/MikeSquared-Agency/mimic/internal/retrieval"
	"github.com/MikeSquared-Agency/mimic/internal/style"
)

// Source tags where a reply came from.
type Source string

const (
	SourceGenerated         Source = "generated"
	SourceTemplate          Source = "template"
	SourceRetrievalFallback Source = "retrieval_fallback"
	SourceStaticFallback    Source = "static_fallback"
)

const (
	// StaticReply is the last link of the degradation chain.
	StaticReply = "Thanks for sharing!"

	// WarningFallback accompanies the static reply after an internal fault.
	WarningFallback = "AI error, fallback used."

	// sparseReferences is the reference count below which semantic exemplars
	// are fetched.
	sparseReferences = 2
	exemplarCount    = 2
)

var errEmptyResponse = errors.New("empty response")

// Generator is the text-generation backend.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Recorder appends an exchange to the caller's session history.
type Recorder interface {
	RecordExchange(ctx context.Context, userID, sessionID, query, reply string) error
}

// Request is one synthesis call. ThreadID scopes template repetition and is
// the session the exchange is recorded under.
type Request struct {
	Post       string
	ThreadID   string
	UserID     string
	References []string
}

// Outcome is the result of Synthesize. Advisory is set on every reply that
// is not genuine model output.
type Outcome struct {
	Text     string  `json:"text"`
	Source   Source  `json:"source"`
	Score    float64 `json:"score"`
	Attempts int     `json:"attempts"`
	Advisory bool    `json:"advisory"`
	Warning  string  `json:"warning,omitempty"`
}

// Attempt is the result of one generation call.
type Attempt struct {
	Text    string
	Err     error
	Points  int
	Quality float64
}

func (a Attempt) clean() bool {
	return !quality.ViolatesDenylist(a.Text)
}

// better reports whether a has more gate points than b. Ties keep the
// earlier attempt.
func (a Attempt) better(b Attempt) bool {
	return a.Points > b.Points
}

type Config struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
}

type Synthesizer struct {
	generator      Generator
	index          *retrieval.Index
	library        *patterns.Library
	recorder       Recorder
	maxAttempts    int
	attemptTimeout time.Duration
	logger         *slog.Logger
}

// New builds a Synthesizer. gen, index and rec may be nil: without a
// generator replies come from the template library.
func New(gen Generator, index *retrieval.Index, lib *patterns.Library, rec Recorder, cfg Config, logger *slog.Logger) *Synthesizer {
	if lib == nil {
		lib = patterns.NewLibrary(patterns.NewMemoryLedger(), logger)
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Synthesizer{
		generator:      gen,
		index:          index,
		library:        lib,
		recorder:       rec,
		maxAttempts:    cfg.MaxAttempts,
		attemptTimeout: cfg.AttemptTimeout,
		logger:         logger,
	}
}

// styleContext holds the signals derived before generation.
type styleContext struct {
	references []string
	exemplars  []string
	aggregate  *style.Signature
	bestMatch  *style.Signature
	exemplar   *style.Signature
}

// gateStyle is the signature candidates must conform to: best match, then
// aggregate, then exemplars.
func (c styleContext) gateStyle() *style.Signature {
	switch {
	case c.bestMatch != nil:
		return c.bestMatch
	case c.aggregate != nil:
		return c.aggregate
	default:
		return c.exemplar
	}
}

func (c styleContext) target() *int {
	if c.aggregate == nil {
		return nil
	}
	n := c.aggregate.AvgLength
	return &n
}

// Synthesize always returns a non-empty reply. Any panic below it becomes
// the static reply with a warning.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("synthesis failed", "thread_id", req.ThreadID, "panic", r)
			out = Outcome{
				Text:     StaticReply,
				Source:   SourceStaticFallback,
				Score:    quality.Score(StaticReply, req.Post, nil, nil),
				Advisory: true,
				Warning:  WarningFallback,
			}
		}
	}()

	sc := s.buildContext(ctx, req.Post, req.References)

	if s.generator == nil {
		out = s.fromTemplates(ctx, req, sc)
	} else {
		out = s.generate(ctx, req.Post, sc)
	}
	out.Score = quality.Score(out.Text, req.Post, sc.target(), sc.gateStyle())
	out.Advisory = out.Source != SourceGenerated

	s.logger.Info("reply synthesized",
		"thread_id", req.ThreadID,
		"source", out.Source,
		"attempts", out.Attempts,
		"score", out.Score,
	)
	s.record(ctx, req, out)
	return out
}

func (s *Synthesizer) buildContext(ctx context.Context, post string, references []string) styleContext {
	sc := styleContext{references: normalize(references)}
	sc.aggregate = style.Profile(sc.references)
	if best, ok := retrieval.BestMatch(post, sc.references); ok {
		sc.bestMatch = style.Profile([]string{best})
	}
	if len(sc.references) < sparseReferences {
		sc.exemplars = normalize(s.index.Search(ctx, post, exemplarCount))
		sc.exemplar = style.Profile(sc.exemplars)
	}
	return sc
}

func (s *Synthesizer) generate(ctx context.Context, post string, sc styleContext) Outcome {
	prompt := buildPrompt(post, sc.references, sc.exemplars, sc.target())
	target, sig := sc.target(), sc.gateStyle()

	var (
		best, bestClean *Attempt
		calls           int
	)
	for i := 1; i <= s.maxAttempts; i++ {
		calls++
		a := s.attempt(ctx, prompt)
		if a.Err != nil {
			s.logger.Warn("generation attempt failed", "attempt", i, "error", a.Err)
			continue
		}
		a.Points = quality.Gate(a.Text, target, sig)
		a.Quality = quality.Score(a.Text, post, target, sig)
		s.logger.Debug("generation attempt scored", "attempt", i, "points", a.Points, "quality", a.Quality)

		if best == nil || a.better(*best) {
			best = &a
		}
		if a.clean() && (bestClean == nil || a.better(*bestClean)) {
			bestClean = &a
		}
		if a.Points == quality.MaxPoints {
			break
		}
	}

	if best == nil {
		out := s.degrade(post, sc)
		out.Attempts = calls
		return out
	}

	text := best.Text
	if !best.clean() {
		// A denylisted winner is cleaned; if cleaning leaves nothing usable
		// the best clean attempt stands in.
		cleaned := quality.Clean(text)
		switch {
		case hasWords(cleaned) && !quality.ViolatesDenylist(cleaned):
			text = cleaned
		case bestClean != nil:
			text = bestClean.Text
		case hasWords(cleaned):
			text = cleaned
		}
	}
	return Outcome{Text: text, Source: SourceGenerated, Attempts: calls}
}

// attempt calls the generator under the per-attempt budget. The budget holds
// even if the generator ignores its context.
func (s *Synthesizer) attempt(ctx context.Context, prompt string) Attempt {
	if s.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.attemptTimeout)
		defer cancel()
	}

	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("generator panic: %v", r)}
			}
		}()
		text, err := s.generator.Generate(ctx, prompt)
		ch <- result{text: text, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return Attempt{Err: r.err}
		}
		text := strings.TrimSpace(r.text)
		if text == "" {
			return Attempt{Err: errEmptyResponse}
		}
		return Attempt{Text: text}
	case <-ctx.Done():
		return Attempt{Err: fmt.Errorf("generate: %w", ctx.Err())}
	}
}

func (s *Synthesizer) fromTemplates(ctx context.Context, req Request, sc styleContext) Outcome {
	theme, sentiment := style.DetectTheme(req.Post), style.DetectSentiment(req.Post)
	if sc.aggregate != nil {
		theme, sentiment = sc.aggregate.Theme, sc.aggregate.Sentiment
	}

	text, err := s.library.Compose(ctx, req.ThreadID, req.Post, theme, sentiment)
	if err != nil || strings.TrimSpace(text) == "" {
		s.logger.Warn("template compose failed", "thread_id", req.ThreadID, "error", err)
		return s.degrade(req.Post, sc)
	}
	return Outcome{Text: text, Source: SourceTemplate}
}

// degrade returns the first clean reference or exemplar adapted to post,
// else the static reply.
func (s *Synthesizer) degrade(post string, sc styleContext) Outcome {
	candidates := append(append([]string(nil), sc.references...), sc.exemplars...)
	for _, c := range candidates {
		if quality.ViolatesDenylist(c) {
			continue
		}
		if text := patterns.Rewrite(c, post); text != "" {
			return Outcome{Text: text, Source: SourceRetrievalFallback}
		}
	}
	return Outcome{Text: StaticReply, Source: SourceStaticFallback}
}

func (s *Synthesizer) record(ctx context.Context, req Request, out Outcome) {
	if s.recorder == nil || req.UserID == "" || req.ThreadID == "" {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("recorder panicked", "thread_id", req.ThreadID, "panic", r)
		}
	}()
	if err := s.recorder.RecordExchange(ctx, req.UserID, req.ThreadID, req.Post, out.Text); err != nil {
		s.logger.Warn("failed to record exchange", "user_id", req.UserID, "thread_id", req.ThreadID, "error", err)
	}
}

func hasWords(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

// normalize trims texts and drops blanks.
func normalize(texts []string) []string {
	var out []string
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
