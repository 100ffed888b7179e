// Package rag holds the stateless text-processing primitives of the
// retrieval pipeline: splitting document text into bounded chunks and
// scoring candidates against a query.
package rag

import (
	"regexp"
	"strings"
)

// DefaultChunkSize is the character budget used at ingest time.
const DefaultChunkSize = 1000

// Relevance levels produced by Score. Keyword matching stands in for a
// future embedding-based similarity score; the stored chunk embeddings
// are reserved for that switch.
const (
	ScoreNameMatch = 0.8
	ScoreDefault   = 0.5
)

var sentenceBoundary = regexp.MustCompile(`[.!?]+\s+`)

// Chunk splits text into ordered chunks of at most maxChunkSize
// characters. The splitting unit is a sentence; sentences accumulate
// into a chunk until the next one would exceed the budget. A single
// sentence longer than the budget becomes its own oversized chunk and
// is not split further. Empty input yields no chunks.
func Chunk(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultChunkSize
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	sentences := sentenceBoundary.Split(text, -1)

	var chunks []string
	var current strings.Builder
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if current.Len()+len(sentence) <= maxChunkSize {
			current.WriteString(sentence)
			current.WriteString(". ")
			continue
		}
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(sentence)
		current.WriteString(". ")
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}

// Score rates a document's relevance to a free-text query. The query is
// lower-cased and split on whitespace; any token appearing as a literal
// substring of the lower-cased document name scores ScoreNameMatch,
// everything else ScoreDefault.
func Score(query, documentName string) float64 {
	if NameMatches(query, documentName) {
		return ScoreNameMatch
	}
	return ScoreDefault
}

// NameMatches reports whether any query token is a substring of the
// document name, case-insensitively.
func NameMatches(query, documentName string) bool {
	name := strings.ToLower(documentName)
	for _, token := range strings.Fields(strings.ToLower(query)) {
		if strings.Contains(name, token) {
			return true
		}
	}
	return false
}
