package memory

import (
	"slices"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/papercomputeco/marcus/pkg/llm"
)

// Terms splits s into lower-cased words.
func Terms(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Score is the fraction of distinct query terms that appear in text.
func Score(query, text string) float64 {
	queryTerms := Terms(query)
	slices.Sort(queryTerms)
	queryTerms = slices.Compact(queryTerms)
	if len(queryTerms) == 0 {
		return 0
	}

	docTerms := make(map[string]struct{})
	for _, t := range Terms(text) {
		docTerms[t] = struct{}{}
	}

	hits := 0
	for _, t := range queryTerms {
		if _, ok := docTerms[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTerms))
}

// Rank scores docs against query and returns the best k with a non-zero
// score. Ties are broken by ID so the order is stable.
func Rank(query string, docs []llm.Document, k int) []llm.ScoredDocument {
	if k <= 0 {
		k = DefaultSearchK
	}

	results := make([]llm.ScoredDocument, 0, len(docs))
	for _, doc := range docs {
		score := Score(query, doc.Text)
		if score == 0 {
			continue
		}
		results = append(results, llm.ScoredDocument{Document: doc, Score: score})
	}

	slices.SortFunc(results, func(a, b llm.ScoredDocument) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return strings.Compare(a.Document.ID, b.Document.ID)
		}
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// AssignIDs returns a copy of docs where every document without an ID has
// been given a random one.
func AssignIDs(docs []llm.Document) []llm.Document {
	out := make([]llm.Document, len(docs))
	for i, doc := range docs {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		out[i] = doc
	}
	return out
}
