// Package variation derives prompt variants by mixing lexical substitution
// with remote paraphrasing.
package variation

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type Strategy int

const (
	StrategyLexical Strategy = iota
	StrategyParaphrase
	StrategyCombined
)

func (s Strategy) String() string {
	switch s {
	case StrategyLexical:
		return "lexical"
	case StrategyParaphrase:
		return "paraphrase"
	case StrategyCombined:
		return "combined"
	default:
		return "unknown"
	}
}

type Paraphraser interface {
	Paraphrase(ctx context.Context, prompt string) (string, error)
}

type Rewriter interface {
	Transform(prompt string) string
}

type Options struct {
	Paraphraser Paraphraser
	Lexicon     Rewriter
	Logger      *slog.Logger

	// Rand drives strategy selection when Pick is nil.
	Rand *rand.Rand
	// Pick overrides the uniform strategy choice.
	Pick func() Strategy

	// SlotOrder keeps every variant at the position its strategy was drawn.
	// When false, paraphrase-only variants are appended after all the others.
	SlotOrder bool
}

type Expander struct {
	para      Paraphraser
	lex       Rewriter
	logger    *slog.Logger
	pick      func() Strategy
	slotOrder bool
}

func New(opts Options) *Expander {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	pick := opts.Pick
	if pick == nil {
		rng := opts.Rand
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		var mu sync.Mutex
		pick = func() Strategy {
			mu.Lock()
			defer mu.Unlock()
			return Strategy(rng.Intn(3))
		}
	}

	return &Expander{
		para:      opts.Paraphraser,
		lex:       opts.Lexicon,
		logger:    logger,
		pick:      pick,
		slotOrder: opts.SlotOrder,
	}
}

// Expand returns exactly n variants of prompt (none when n <= 0).
//
// Lexical and combined variants are produced while strategies are drawn;
// combined ones wait for their paraphrase inline. Paraphrase-only calls are
// started together after the draw loop and their results follow the others
// in call order, unless the Expander was built with SlotOrder.
func (e *Expander) Expand(ctx context.Context, prompt string, n int) []string {
	if n <= 0 {
		return []string{}
	}
	if e.slotOrder {
		return e.expandSlots(ctx, prompt, n)
	}

	variations := make([]string, 0, n)
	deferred := 0
	for i := 0; i < n; i++ {
		switch s := e.pick(); s {
		case StrategyParaphrase:
			deferred++
		case StrategyCombined:
			variations = append(variations, e.transform(e.paraphrase(ctx, prompt)))
		default:
			variations = append(variations, e.transform(prompt))
		}
	}

	paraphrased := make([]string, deferred)
	var eg errgroup.Group
	for i := range paraphrased {
		i := i
		eg.Go(func() error {
			paraphrased[i] = e.paraphrase(ctx, prompt)
			return nil
		})
	}
	_ = eg.Wait()

	variations = append(variations, paraphrased...)
	if len(variations) > n {
		variations = variations[:n]
	}

	e.logger.Debug("prompt variations ready", "requested", n, "deferred", deferred)
	return variations
}

func (e *Expander) expandSlots(ctx context.Context, prompt string, n int) []string {
	variations := make([]string, n)
	var eg errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		switch s := e.pick(); s {
		case StrategyParaphrase:
			eg.Go(func() error {
				variations[i] = e.paraphrase(ctx, prompt)
				return nil
			})
		case StrategyCombined:
			eg.Go(func() error {
				variations[i] = e.transform(e.paraphrase(ctx, prompt))
				return nil
			})
		default:
			variations[i] = e.transform(prompt)
		}
	}
	_ = eg.Wait()
	return variations
}

// paraphrase never fails: any error yields the original prompt.
func (e *Expander) paraphrase(ctx context.Context, prompt string) string {
	if e.para == nil {
		return prompt
	}
	out, err := e.para.Paraphrase(ctx, prompt)
	if err != nil {
		e.logger.Warn("paraphrase failed, keeping original prompt", "err", err)
		return prompt
	}
	return out
}

func (e *Expander) transform(prompt string) string {
	if e.lex == nil {
		return prompt
	}
	return e.lex.Transform(prompt)
}
