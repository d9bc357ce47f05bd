// Package retrieval ranks reference texts against a query. BestMatch is a
// local TF-IDF ranking; Search guards the external semantic index so that an
// unavailable index only ever yields an empty result.
package retrieval

import (
	"math"
	"regexp"
	"strings"
)

// tokenPattern keeps words of two or more characters.
var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

type vector map[string]float64

// BestMatch returns the candidate most similar to query by TF-IDF cosine
// similarity over [query] + candidates. Ties go to the earliest candidate.
// ok is false when candidates is empty.
func BestMatch(query string, candidates []string) (best string, ok bool) {
	idx, _ := Rank(query, candidates)
	if idx < 0 {
		return "", false
	}
	return candidates[idx], true
}

// Rank returns the index of the best candidate and the similarity of every
// candidate to query. The index is -1 when candidates is empty.
func Rank(query string, candidates []string) (int, []float64) {
	if len(candidates) == 0 {
		return -1, nil
	}

	docs := make([][]string, 0, len(candidates)+1)
	docs = append(docs, tokenize(query))
	for _, c := range candidates {
		docs = append(docs, tokenize(c))
	}

	idf := inverseDocumentFrequency(docs)
	q := weigh(docs[0], idf)

	sims := make([]float64, len(candidates))
	best := 0
	for i := range candidates {
		sims[i] = cosine(q, weigh(docs[i+1], idf))
		if sims[i] > sims[best] {
			best = i
		}
	}
	return best, sims
}

// inverseDocumentFrequency uses the smoothed form ln((1+n)/(1+df)) + 1.
func inverseDocumentFrequency(docs [][]string) map[string]float64 {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool, len(doc))
		for _, term := range doc {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}
	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for term, count := range df {
		idf[term] = math.Log((1+n)/(1+float64(count))) + 1
	}
	return idf
}

// weigh builds an L2-normalised tf-idf vector.
func weigh(doc []string, idf map[string]float64) vector {
	v := make(vector, len(doc))
	for _, term := range doc {
		v[term]++
	}
	var norm float64
	for term, tf := range v {
		w := tf * idf[term]
		v[term] = w
		norm += w * w
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for term := range v {
		v[term] /= norm
	}
	return v
}

func cosine(a, b vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for term, w := range a {
		dot += w * b[term]
	}
	return dot
}
