package lexicon

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed thesaurus.txt
var defaultThesaurus string

// Dictionary maps a lower-case word to its near-synonyms, best first.
type Dictionary interface {
	Lookup(word string) ([]string, bool)
}

// Thesaurus is an in-memory Dictionary.
type Thesaurus struct {
	entries map[string][]string
}

// DefaultThesaurus returns the thesaurus embedded in the binary.
func DefaultThesaurus() *Thesaurus {
	t, err := ParseThesaurus(strings.NewReader(defaultThesaurus))
	if err != nil {
		panic(fmt.Sprintf("embedded thesaurus: %v", err))
	}
	return t
}

// LoadThesaurus reads a thesaurus file. An empty path yields the embedded default.
func LoadThesaurus(path string) (*Thesaurus, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultThesaurus(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open thesaurus: %w", err)
	}
	defer f.Close()

	return ParseThesaurus(f)
}

// ParseThesaurus reads lines of the form "word: syn1, syn2". Blank lines and
// lines starting with '#' are skipped. Repeated keys append.
func ParseThesaurus(r io.Reader) (*Thesaurus, error) {
	t := &Thesaurus{entries: make(map[string][]string)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, rest, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("thesaurus line %d: missing ':'", lineNo)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" || strings.ContainsAny(key, " \t") {
			return nil, fmt.Errorf("thesaurus line %d: invalid headword %q", lineNo, key)
		}

		for _, syn := range strings.Split(rest, ",") {
			syn = strings.Join(strings.Fields(syn), "_")
			if syn == "" || strings.EqualFold(syn, key) {
				continue
			}
			t.entries[key] = append(t.entries[key], syn)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read thesaurus: %w", err)
	}

	return t, nil
}

func (t *Thesaurus) Lookup(word string) ([]string, bool) {
	if t == nil {
		return nil, false
	}
	syns, ok := t.entries[strings.ToLower(word)]
	if !ok || len(syns) == 0 {
		return nil, false
	}
	out := make([]string, len(syns))
	copy(out, syns)
	return out, true
}

func (t *Thesaurus) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
