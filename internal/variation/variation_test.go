package variation

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"variant-studio/internal/hfinference"
	"variant-studio/internal/lexicon"
)

const prompt = "a red fox in snow"

func TestExpand_Count(t *testing.T) {
	e := New(Options{
		Paraphraser: &fakeParaphraser{},
		Lexicon:     fakeRewriter{},
		Rand:        rand.New(rand.NewSource(99)),
	})

	for _, n := range []int{0, 1, 2, 5, 17} {
		got := e.Expand(context.Background(), prompt, n)
		assert.Len(t, got, n, "n=%d", n)
	}

	assert.Empty(t, e.Expand(context.Background(), prompt, -3))
}

func TestExpand_DeferredParaphrasesFollowOthers(t *testing.T) {
	para := &fakeParaphraser{}
	e := New(Options{
		Paraphraser: para,
		Lexicon:     fakeRewriter{},
		Pick:        sequence(StrategyParaphrase, StrategyLexical, StrategyCombined, StrategyParaphrase),
	})

	got := e.Expand(context.Background(), prompt, 4)

	assert.Equal(t, []string{
		"lex:" + prompt,
		"lex:para:" + prompt,
		"para:" + prompt,
		"para:" + prompt,
	}, got)
	assert.Equal(t, int32(3), para.calls.Load())
}

func TestExpand_SlotOrder(t *testing.T) {
	e := New(Options{
		Paraphraser: &fakeParaphraser{},
		Lexicon:     fakeRewriter{},
		Pick:        sequence(StrategyParaphrase, StrategyLexical, StrategyCombined),
		SlotOrder:   true,
	})

	got := e.Expand(context.Background(), prompt, 3)

	assert.Equal(t, []string{
		"para:" + prompt,
		"lex:" + prompt,
		"lex:para:" + prompt,
	}, got)
}

func TestExpand_ParaphraseFallback(t *testing.T) {
	e := New(Options{
		Paraphraser: &fakeParaphraser{err: errors.New("boom")},
		Lexicon:     fakeRewriter{},
		Pick:        sequence(StrategyParaphrase, StrategyCombined),
	})

	got := e.Expand(context.Background(), prompt, 2)

	assert.Equal(t, []string{"lex:" + prompt, prompt}, got)
}

func TestExpand_ParaphraseOnlyCallsRunConcurrently(t *testing.T) {
	para := &fakeParaphraser{gate: make(chan struct{})}
	para.arrived.Add(3)

	e := New(Options{
		Paraphraser: para,
		Lexicon:     fakeRewriter{},
		Pick:        sequence(StrategyParaphrase),
	})

	done := make(chan []string, 1)
	go func() {
		done <- e.Expand(context.Background(), prompt, 3)
	}()

	// All three calls must be in flight at once before any is released.
	arrived := make(chan struct{})
	go func() {
		para.arrived.Wait()
		close(arrived)
	}()

	select {
	case <-arrived:
	case <-time.After(2 * time.Second):
		t.Fatal("paraphrase calls were not dispatched concurrently")
	}
	close(para.gate)

	select {
	case got := <-done:
		assert.Equal(t, []string{"para:" + prompt, "para:" + prompt, "para:" + prompt}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("expand did not finish")
	}
}

func TestExpand_WithRemoteClient(t *testing.T) {
	var mu sync.Mutex
	status := http.StatusOK
	body := `[{"generated_text":"a fox resting in the snow"}]`
	respond := func(code int, text string) {
		mu.Lock()
		defer mu.Unlock()
		status, body = code, text
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		code, text := status, body
		mu.Unlock()
		w.WriteHeader(code)
		_, _ = w.Write([]byte(text))
	}))
	defer srv.Close()

	client := hfinference.New(hfinference.Options{
		APIKey:             "hf_test",
		ParaphraseModelURL: srv.URL,
		HTTPClient:         srv.Client(),
	})

	noSynonyms, err := lexicon.ParseThesaurus(strings.NewReader(""))
	require.NoError(t, err)

	e := New(Options{
		Paraphraser: client,
		Lexicon:     lexicon.New(lexicon.Options{Dictionary: noSynonyms}),
		Pick:        sequence(StrategyParaphrase),
	})

	t.Run("remote text is used", func(t *testing.T) {
		assert.Equal(t, []string{"a fox resting in the snow"}, e.Expand(context.Background(), prompt, 1))
	})

	t.Run("500 falls back to the original prompt", func(t *testing.T) {
		respond(http.StatusInternalServerError, `internal error`)
		assert.Equal(t, []string{prompt}, e.Expand(context.Background(), prompt, 1))
	})

	t.Run("unknown shape falls back to the original prompt", func(t *testing.T) {
		respond(http.StatusOK, `{"error":"loading"}`)
		assert.Equal(t, []string{prompt}, e.Expand(context.Background(), prompt, 1))
	})
}

func TestStrategy_String(t *testing.T) {
	assert.Equal(t, "lexical", StrategyLexical.String())
	assert.Equal(t, "paraphrase", StrategyParaphrase.String())
	assert.Equal(t, "combined", StrategyCombined.String())
	assert.Equal(t, "unknown", Strategy(9).String())
}
