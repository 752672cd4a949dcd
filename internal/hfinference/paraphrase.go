package hfinference

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnexpectedShape reports a paraphrase body outside the known response shapes.
var ErrUnexpectedShape = errors.New("unexpected paraphrase response shape")

type candidateKind int

const (
	candidateObject candidateKind = iota + 1 // [{"generated_text": "..."}]
	candidateString                          // ["..."]
)

func (k candidateKind) String() string {
	switch k {
	case candidateObject:
		return "object"
	case candidateString:
		return "string"
	default:
		return "unknown"
	}
}

type paraphraseCandidate struct {
	kind candidateKind
	text string
}

type generatedText struct {
	GeneratedText *string `json:"generated_text"`
}

// decodeParaphrase accepts a JSON list whose first element is either an
// object carrying "generated_text" or a bare string.
func decodeParaphrase(body []byte) (paraphraseCandidate, error) {
	var list []json.RawMessage
	if err := json.Unmarshal(body, &list); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return paraphraseCandidate{}, fmt.Errorf("decode response: %w", err)
		}
		return paraphraseCandidate{}, fmt.Errorf("%w: not a list", ErrUnexpectedShape)
	}
	if len(list) == 0 {
		return paraphraseCandidate{}, fmt.Errorf("%w: empty list", ErrUnexpectedShape)
	}

	first := bytes.TrimSpace(list[0])
	if len(first) == 0 {
		return paraphraseCandidate{}, fmt.Errorf("%w: empty element", ErrUnexpectedShape)
	}

	switch first[0] {
	case '"':
		var s string
		if err := json.Unmarshal(first, &s); err != nil {
			return paraphraseCandidate{}, fmt.Errorf("decode response: %w", err)
		}
		return paraphraseCandidate{kind: candidateString, text: s}, nil
	case '{':
		var obj generatedText
		if err := json.Unmarshal(first, &obj); err != nil {
			return paraphraseCandidate{}, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		if obj.GeneratedText == nil {
			return paraphraseCandidate{}, fmt.Errorf("%w: object without generated_text", ErrUnexpectedShape)
		}
		return paraphraseCandidate{kind: candidateObject, text: *obj.GeneratedText}, nil
	default:
		return paraphraseCandidate{}, fmt.Errorf("%w: element is %s", ErrUnexpectedShape, string(first))
	}
}
