package nlp

import (
	"fmt"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// Lemmatizer maps English word forms to dictionary lemmas.
// It is safe for concurrent use.
type Lemmatizer struct {
	dict *golem.Lemmatizer
}

// NewLemmatizer loads the English dictionary.
func NewLemmatizer() (*Lemmatizer, error) {
	dict, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load english lemma dictionary: %w", err)
	}
	return &Lemmatizer{dict: dict}, nil
}

// Lemma returns the lowercase base form of word given its Penn Treebank tag.
// Proper nouns are kept as written, only lowercased.
func (l *Lemmatizer) Lemma(word, tag string) string {
	w := strings.ToLower(word)

	switch tag {
	case "NNP", "NNPS":
		return w
	}
	return l.dict.Lemma(w)
}
