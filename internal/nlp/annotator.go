// Package nlp turns raw message text into lemmas. The linguistic work is
// delegated to an Annotator; the package only decides which tokens matter.
package nlp

import "context"

// PartOfSpeech is a universal part-of-speech tag.
type PartOfSpeech string

const (
	Noun       PartOfSpeech = "NOUN"
	ProperNoun PartOfSpeech = "PROPN"
	Adjective  PartOfSpeech = "ADJ"
	Verb       PartOfSpeech = "VERB"
	Numeral    PartOfSpeech = "NUM"
	Other      PartOfSpeech = "X"
)

// Token is an annotated word.
type Token struct {
	Lemma string
	POS   PartOfSpeech
}

// Annotator tokenizes, tags and lemmatizes text. Tokens come back in input order.
type Annotator interface {
	Annotate(ctx context.Context, text string) ([]Token, error)
}

// ParsePOS maps a tag name to a PartOfSpeech, falling back to Other.
func ParsePOS(tag string) PartOfSpeech {
	switch PartOfSpeech(tag) {
	case Noun, ProperNoun, Adjective, Verb, Numeral:
		return PartOfSpeech(tag)
	default:
		return Other
	}
}
