// Package testhelpers provides deterministic collaborators for tests.
package testhelpers

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/xaenox/chat-profiler/internal/nlp"
)

// Annotator tags words from a fixed lexicon. Words missing from the lexicon
// are tagged nlp.Other. Texts containing FailOn make Annotate return Err.
type Annotator struct {
	Lexicon map[string]nlp.Token
	FailOn  string
	Err     error

	mu    sync.Mutex
	calls []string
}

// NewAnnotator returns an Annotator with a small shopping vocabulary.
func NewAnnotator() *Annotator {
	return &Annotator{Lexicon: map[string]nlp.Token{
		"bag":        {Lemma: "bag", POS: nlp.Noun},
		"bags":       {Lemma: "bag", POS: nlp.Noun},
		"shoe":       {Lemma: "shoe", POS: nlp.Noun},
		"shoes":      {Lemma: "shoe", POS: nlp.Noun},
		"phone":      {Lemma: "phone", POS: nlp.Noun},
		"laptop":     {Lemma: "laptop", POS: nlp.Noun},
		"camera":     {Lemma: "camera", POS: nlp.Noun},
		"football":   {Lemma: "football", POS: nlp.Noun},
		"golf":       {Lemma: "golf", POS: nlp.Noun},
		"blender":    {Lemma: "blender", POS: nlp.Noun},
		"gift":       {Lemma: "gift", POS: nlp.Noun},
		"weather":    {Lemma: "weather", POS: nlp.Noun},
		"apple":      {Lemma: "apple", POS: nlp.ProperNoun},
		"iphone":     {Lemma: "iphone", POS: nlp.ProperNoun},
		"nike":       {Lemma: "nike", POS: nlp.ProperNoun},
		"new":        {Lemma: "new", POS: nlp.Adjective},
		"nice":       {Lemma: "nice", POS: nlp.Adjective},
		"two":        {Lemma: "two", POS: nlp.Numeral},
		"love":       {Lemma: "love", POS: nlp.Verb},
		"looking":    {Lemma: "look", POS: nlp.Verb},
		"need":       {Lemma: "need", POS: nlp.Verb},
		"want":       {Lemma: "want", POS: nlp.Verb},
		"i":          {Lemma: "i", POS: nlp.Other},
		"a":          {Lemma: "a", POS: nlp.Other},
		"for":        {Lemma: "for", POS: nlp.Other},
		"my":         {Lemma: "my", POS: nlp.Other},
		"hello":      {Lemma: "hello", POS: nlp.Other},
		"thanks":     {Lemma: "thanks", POS: nlp.Other},
		"basketball": {Lemma: "basketball", POS: nlp.Noun},
	}}
}

func (a *Annotator) Annotate(_ context.Context, text string) ([]nlp.Token, error) {
	a.mu.Lock()
	a.calls = append(a.calls, text)
	a.mu.Unlock()

	if a.FailOn != "" && strings.Contains(text, a.FailOn) {
		return nil, a.Err
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]nlp.Token, 0, len(words))
	for _, w := range words {
		tok, ok := a.Lexicon[w]
		if !ok {
			tok = nlp.Token{Lemma: w, POS: nlp.Other}
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// Calls returns the texts annotated so far.
func (a *Annotator) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.calls))
	copy(out, a.calls)
	return out
}
