package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/observer/trivia/internal/store"
)

// Config controls how many questions the pool draws per refill from each
// catalog hash, and how aggressively it keeps itself topped up.
type Config struct {
	// PerRefill maps a catalog hash key (e.g. NormalQuestionsKey) to the
	// number of distinct questions drawn from it on each refill.
	PerRefill map[string]int
	// MinQueueLen triggers an asynchronous refill once the queue drops
	// below this length.
	MinQueueLen int
	// RefillLimit bounds the number of refills performed in one game.
	RefillLimit int
}

// DefaultConfig mirrors the catalog split used by the reference question set.
func DefaultConfig() Config {
	return Config{
		PerRefill:   map[string]int{NormalQuestionsKey: 10, FinalQuestionsKey: 5},
		MinQueueLen: 5,
		RefillLimit: 10,
	}
}

// Pool is one game's lazy question queue. Not safe for use after the owning
// game ends; construct a fresh Pool per game.
type Pool struct {
	store  store.Store
	cfg    Config
	logger *slog.Logger

	mu          sync.Mutex
	queue       []PlayableQuestion
	seen        map[string]map[string]struct{} // catalog key -> seen source indices
	refillCount int

	ready     chan struct{}
	readyOnce sync.Once
}

// New constructs a Pool and kicks off its initial refill in the background.
func New(ctx context.Context, s store.Store, cfg Config, logger *slog.Logger) *Pool {
	seen := make(map[string]map[string]struct{}, len(cfg.PerRefill))
	for key := range cfg.PerRefill {
		seen[key] = make(map[string]struct{})
	}
	p := &Pool{
		store:  s,
		cfg:    cfg,
		logger: logger.With("component", "question-pool"),
		seen:   seen,
		ready:  make(chan struct{}),
	}
	go p.initialRefill(ctx)
	return p
}

func (p *Pool) initialRefill(ctx context.Context) {
	defer p.readyOnce.Do(func() { close(p.ready) })
	if err := p.Refill(ctx); err != nil {
		p.logger.Error("initial refill failed", "error", err)
	}
}

// Refill samples fresh questions from every configured catalog and appends
// the not-yet-seen ones to the queue. It refuses once RefillLimit is spent.
func (p *Pool) Refill(ctx context.Context) error {
	p.mu.Lock()
	if p.refillCount >= p.cfg.RefillLimit {
		p.mu.Unlock()
		return ErrRefillLimitExceeded
	}
	p.refillCount++
	p.mu.Unlock()

	for catalogKey, count := range p.cfg.PerRefill {
		drawn, err := p.drawFrom(ctx, catalogKey, count)
		if err != nil {
			p.logger.Error("failed to draw questions", "catalog", catalogKey, "error", err)
			continue
		}

		p.mu.Lock()
		for _, q := range drawn {
			if _, dup := p.seen[catalogKey][q.SourceIndex]; dup {
				continue
			}
			p.seen[catalogKey][q.SourceIndex] = struct{}{}
			p.queue = append(p.queue, q)
		}
		p.mu.Unlock()
	}
	return nil
}

func (p *Pool) drawFrom(ctx context.Context, catalogKey string, count int) ([]PlayableQuestion, error) {
	total, err := p.store.HashLen(ctx, catalogKey)
	if err != nil {
		return nil, fmt.Errorf("hlen %s: %w", catalogKey, err)
	}
	if total == 0 {
		return nil, fmt.Errorf("catalog %s is empty", catalogKey)
	}

	indices := distinctIndices(count, int(total))
	fields := make([]string, len(indices))
	for i, idx := range indices {
		fields[i] = strconv.Itoa(idx)
	}

	values, ok, err := p.store.HashMultiGet(ctx, catalogKey, fields...)
	if err != nil {
		return nil, fmt.Errorf("hmget %s: %w", catalogKey, err)
	}

	out := make([]PlayableQuestion, 0, len(fields))
	for i, field := range fields {
		if !ok[i] {
			continue
		}
		var q Question
		if err := json.Unmarshal([]byte(values[i]), &q); err != nil {
			p.logger.Warn("dropping malformed catalog entry", "catalog", catalogKey, "field", field, "error", err)
			continue
		}
		out = append(out, toPlayable(q, catalogKey, field))
	}
	return out, nil
}

func toPlayable(q Question, catalogKey, sourceIndex string) PlayableQuestion {
	answer := q.CanonicalAnswer
	if len(q.AlternateSpellings) > 0 && rollCoin() {
		answer = q.AlternateSpellings[rollIndex(len(q.AlternateSpellings))]
	}

	options := sampleDistinct(q.Distractors, 2)
	options = append(options, answer)
	shuffle(options)

	return PlayableQuestion{
		Prompt:      q.Prompt,
		Answer:      answer,
		Options:     options,
		SourceKey:   catalogKey,
		SourceIndex: sourceIndex,
	}
}

// Pop returns the head of the queue, waiting on the initial refill if it has
// not completed yet. It triggers an asynchronous refill once the remaining
// length drops below MinQueueLen.
func (p *Pool) Pop(ctx context.Context) (PlayableQuestion, error) {
	select {
	case <-p.ready:
	case <-ctx.Done():
		return PlayableQuestion{}, ctx.Err()
	}

	p.mu.Lock()
	if len(p.queue) == 0 {
		p.mu.Unlock()
		return PlayableQuestion{}, ErrPoolExhausted
	}
	q := p.queue[0]
	p.queue = p.queue[1:]
	remaining := len(p.queue)
	p.mu.Unlock()

	if remaining < p.cfg.MinQueueLen {
		go func() {
			if err := p.Refill(context.Background()); err != nil {
				p.logger.Warn("background refill declined", "error", err)
			}
		}()
	}
	return q, nil
}

// Len reports the current queue length.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}
