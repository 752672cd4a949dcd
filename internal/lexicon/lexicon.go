// Package lexicon rewrites prompts by swapping words for dictionary synonyms.
package lexicon

import (
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"
)

// DefaultProbability is the per-token replacement chance.
const DefaultProbability = 0.3

type Options struct {
	Dictionary  Dictionary
	Probability float64
	Rand        *rand.Rand
}

// Transformer is safe for concurrent use.
type Transformer struct {
	dict Dictionary
	prob float64

	mu  sync.Mutex
	rng *rand.Rand
}

func New(opts Options) *Transformer {
	dict := opts.Dictionary
	if dict == nil {
		dict = DefaultThesaurus()
	}

	prob := opts.Probability
	if prob <= 0 || prob > 1 {
		prob = DefaultProbability
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Transformer{
		dict: dict,
		prob: prob,
		rng:  rng,
	}
}

// Synonym returns the first synonym of word, or word itself when there is none.
// Leading and trailing punctuation is kept around the replacement.
func (t *Transformer) Synonym(word string) string {
	return Synonym(t.dict, word)
}

// Transform splits prompt on whitespace and replaces each token with its
// synonym with the configured probability. The token count never changes.
func (t *Transformer) Transform(prompt string) string {
	words := strings.Fields(prompt)
	if len(words) == 0 {
		return ""
	}

	t.mu.Lock()
	for i, w := range words {
		if t.rng.Float64() > 1-t.prob {
			words[i] = Synonym(t.dict, w)
		}
	}
	t.mu.Unlock()

	return strings.Join(words, " ")
}

func Synonym(dict Dictionary, word string) string {
	if dict == nil || word == "" {
		return word
	}

	prefix, core, suffix := splitPunct(word)
	if core == "" {
		return word
	}

	syns, ok := dict.Lookup(strings.ToLower(core))
	if !ok || len(syns) == 0 {
		return word
	}

	return prefix + matchCase(core, syns[0]) + suffix
}

func splitPunct(word string) (prefix, core, suffix string) {
	runes := []rune(word)
	start, end := 0, len(runes)
	for start < end && isTrim(runes[start]) {
		start++
	}
	for end > start && isTrim(runes[end-1]) {
		end--
	}
	return string(runes[:start]), string(runes[start:end]), string(runes[end:])
}

func isTrim(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// matchCase capitalises syn when the original word started with an upper-case letter.
func matchCase(orig, syn string) string {
	first := []rune(orig)[0]
	if !unicode.IsUpper(first) || syn == "" {
		return syn
	}
	r := []rune(syn)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
