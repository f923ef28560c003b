package nlp

import (
	"context"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

// segmentBreaks splits the "/" used to join messages so it never glues two words into one token.
var segmentBreaks = strings.NewReplacer("/", " / ")

// ProseAnnotator tags English text with prose and lemmatizes with a
// dictionary Lemmatizer.
type ProseAnnotator struct {
	lemmatizer *Lemmatizer
}

func NewProseAnnotator() (*ProseAnnotator, error) {
	lemmatizer, err := NewLemmatizer()
	if err != nil {
		return nil, err
	}
	return &ProseAnnotator{lemmatizer: lemmatizer}, nil
}

func (a *ProseAnnotator) Annotate(ctx context.Context, text string) ([]Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := prose.NewDocument(
		segmentBreaks.Replace(text),
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, err
	}

	tokens := make([]Token, 0, len(doc.Tokens()))
	for _, tok := range doc.Tokens() {
		// punctuation and separators are never keywords, whatever the tagger says
		if !hasWordRune(tok.Text) {
			tokens = append(tokens, Token{Lemma: tok.Text, POS: Other})
			continue
		}
		tokens = append(tokens, Token{
			Lemma: a.lemmatizer.Lemma(tok.Text, tok.Tag),
			POS:   posFromPennTag(tok.Tag),
		})
	}

	return tokens, nil
}

func hasWordRune(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

// posFromPennTag maps Penn Treebank tags to universal tags.
func posFromPennTag(tag string) PartOfSpeech {
	switch tag {
	case "NN", "NNS":
		return Noun
	case "NNP", "NNPS":
		return ProperNoun
	case "JJ", "JJR", "JJS":
		return Adjective
	case "VB", "VBD", "VBG", "VBN", "VBP", "VBZ":
		return Verb
	case "CD":
		return Numeral
	default:
		return Other
	}
}
