package index

import (
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"
)

const (
	// AnalyzerName is the analyzer applied to every indexed field and to
	// query text.
	AnalyzerName = "post_text"

	// TrimmerName is the token filter stripping non-word characters from
	// token edges.
	TrimmerName = "post_trimmer"
)

func init() {
	_ = registry.RegisterTokenFilter(TrimmerName, trimmerConstructor)
}

// trimmerConstructor creates the trimmer filter for Bleve.
func trimmerConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.TokenFilter, error) {
	return &trimmerFilter{}, nil
}

// trimmerFilter removes leading and trailing characters that are neither
// letters nor digits, and drops tokens left empty.
type trimmerFilter struct{}

// Filter implements analysis.TokenFilter.
func (f *trimmerFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	result := make(analysis.TokenStream, 0, len(input))
	for _, token := range input {
		term := trimNonWord(string(token.Term))
		if term == "" {
			continue
		}
		token.Term = []byte(term)
		result = append(result, token)
	}
	return result
}

func trimNonWord(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
