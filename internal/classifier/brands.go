package classifier

import (
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/xaenox/chat-profiler/internal/models"
	"github.com/xaenox/chat-profiler/internal/taxonomy"
)

// BrandDetector finds canonical brand keys inside raw message text. Only the
// key itself is matched: "iphone" alone does not count as "apple".
type BrandDetector struct {
	// mu guards matcher and lower, which both keep per-call state.
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
	brands  []string
	lower   cases.Caser
}

func NewBrandDetector(tax *taxonomy.Taxonomy) *BrandDetector {
	d := &BrandDetector{
		brands: tax.BrandNames(),
		lower:  cases.Lower(language.Und),
	}
	if len(d.brands) > 0 {
		d.matcher = ahocorasick.NewStringMatcher(d.brands)
	}
	return d
}

// Detect returns the sorted set of brands mentioned anywhere in messages.
func (d *BrandDetector) Detect(messages []models.Message) []string {
	found := make(map[string]struct{})
	if d.matcher == nil {
		return sortedKeys(found)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, msg := range messages {
		text := d.lower.String(norm.NFC.String(msg.Text))
		for _, idx := range d.matcher.Match([]byte(text)) {
			found[d.brands[idx]] = struct{}{}
		}
	}
	return sortedKeys(found)
}
