package nlp

import (
	"context"
	"fmt"
	"strings"
)

var salient = map[PartOfSpeech]bool{
	Noun:       true,
	ProperNoun: true,
	Adjective:  true,
	Verb:       true,
	Numeral:    true,
}

// Extractor reduces text to the lemmas used for category resolution.
type Extractor struct {
	annotator Annotator
}

func NewExtractor(annotator Annotator) *Extractor {
	return &Extractor{annotator: annotator}
}

// Extract returns the lowercase lemmas of nouns, proper nouns, adjectives,
// verbs and numerals in the order they appear. Duplicates are kept.
func (e *Extractor) Extract(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	tokens, err := e.annotator.Annotate(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("annotate text: %w", err)
	}

	lemmas := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if salient[tok.POS] {
			lemmas = append(lemmas, strings.ToLower(tok.Lemma))
		}
	}

	return lemmas, nil
}
