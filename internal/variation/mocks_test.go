package variation

import (
	"context"
	"sync"
	"sync/atomic"
)

// fakeParaphraser prefixes the prompt with "para:" unless err is set.
type fakeParaphraser struct {
	err   error
	calls atomic.Int32

	// gate, when set, blocks every call until it is closed.
	gate    chan struct{}
	arrived sync.WaitGroup
}

func (f *fakeParaphraser) Paraphrase(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	if f.gate != nil {
		f.arrived.Done()
		select {
		case <-f.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return "para:" + prompt, nil
}

type fakeRewriter struct{}

func (fakeRewriter) Transform(prompt string) string { return "lex:" + prompt }

// sequence returns a Pick func that replays strategies in order.
func sequence(strategies ...Strategy) func() Strategy {
	var mu sync.Mutex
	i := 0
	return func() Strategy {
		mu.Lock()
		defer mu.Unlock()
		s := strategies[i%len(strategies)]
		i++
		return s
	}
}
