package classifier

import (
	"context"
	"sort"

	"github.com/xaenox/chat-profiler/internal/models"
	"github.com/xaenox/chat-profiler/internal/taxonomy"
)

// Classifier derives a client profile from a conversation. A nil profile
// with a nil error means the conversation holds nothing to classify.
type Classifier interface {
	Classify(ctx context.Context, conv *models.Conversation) (*models.ClientProfile, error)
}

// Resolution is the outcome of resolving one set of lemmas.
type Resolution struct {
	Category string
	Found    bool
	Items    []string
}

// Empty reports whether neither a category nor any item was found.
func (r Resolution) Empty() bool {
	return !r.Found && len(r.Items) == 0
}

// Resolver maps lemmas onto the taxonomy's categories.
type Resolver struct {
	categories []taxonomy.Category
	itemSets   []map[string]struct{}
}

func NewResolver(tax *taxonomy.Taxonomy) *Resolver {
	r := &Resolver{
		categories: tax.Categories,
		itemSets:   make([]map[string]struct{}, len(tax.Categories)),
	}
	for i, c := range tax.Categories {
		set := make(map[string]struct{}, len(c.Items))
		for _, item := range c.Items {
			set[item] = struct{}{}
		}
		r.itemSets[i] = set
	}
	return r
}

// FindCategory returns the first category, in taxonomy order, that lists
// any of the lemmas.
func (r *Resolver) FindCategory(lemmas []string) (string, bool) {
	for i, c := range r.categories {
		for _, lemma := range lemmas {
			if _, ok := r.itemSets[i][lemma]; ok {
				return c.Name, true
			}
		}
	}
	return "", false
}

// FindItems returns every lemma listed by any category, not only the one
// FindCategory picks. The result is sorted and free of duplicates.
func (r *Resolver) FindItems(lemmas []string) []string {
	found := make(map[string]struct{})
	for _, set := range r.itemSets {
		for _, lemma := range lemmas {
			if _, ok := set[lemma]; ok {
				found[lemma] = struct{}{}
			}
		}
	}
	return sortedKeys(found)
}

func (r *Resolver) Resolve(lemmas []string) Resolution {
	category, found := r.FindCategory(lemmas)
	return Resolution{
		Category: category,
		Found:    found,
		Items:    r.FindItems(lemmas),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
