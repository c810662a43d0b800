// Package textanalysis computes word statistics over detected paragraphs.
package textanalysis

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Analyzer computes word statistics. The zero value is ready to use and it is
// safe for concurrent use.
type Analyzer struct{}

// NewAnalyzer constructs an Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze aggregates the paragraphs into a Result.
//
// TotalWords is the sum of each paragraph's declared WordCount; the text is
// only tokenized for frequencies, so a paragraph whose declared count
// disagrees with its text still contributes its declared count.
//
// Tokens are split on whitespace, stripped of leading and trailing runes that
// are not letters, digits or marks, NFC-normalized and case-folded. Interior
// punctuation is kept. Tokens left empty are ignored.
func (a *Analyzer) Analyze(paragraphs []Paragraph, topN int) (Result, error) {
	if len(paragraphs) == 0 {
		return Result{}, fmt.Errorf("%w: no paragraphs to analyze", ErrInvalidInput)
	}
	if topN < 0 {
		return Result{}, fmt.Errorf("%w: topN must be non-negative, got %d", ErrInvalidInput, topN)
	}

	// Casers carry state, so each call gets its own.
	folder := cases.Fold()

	total := 0
	freq := make(map[string]int)
	var order []string
	for _, p := range paragraphs {
		total += p.WordCount
		for _, raw := range strings.Fields(p.Text) {
			word := normalizeToken(raw, folder)
			if word == "" {
				continue
			}
			if _, seen := freq[word]; !seen {
				order = append(order, word)
			}
			freq[word]++
		}
	}

	return Result{
		TotalWords:      total,
		UniqueWords:     len(freq),
		WordFrequencies: freq,
		TopWords:        topWords(freq, order, topN),
	}, nil
}

// NormalizeToken returns the comparison key for a single whitespace-delimited
// token, or "" when nothing countable remains.
func NormalizeToken(token string) string {
	return normalizeToken(token, cases.Fold())
}

func normalizeToken(token string, folder cases.Caser) string {
	trimmed := strings.TrimFunc(norm.NFC.String(token), isBoundary)
	if trimmed == "" {
		return ""
	}
	return folder.String(trimmed)
}

func isBoundary(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
}

// topWords orders words by count descending. order lists words by first
// occurrence, and the stable sort keeps that order among equal counts.
func topWords(freq map[string]int, order []string, n int) []WordCount {
	entries := make([]WordCount, 0, len(order))
	for _, word := range order {
		entries = append(entries, WordCount{Word: word, Count: freq[word]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if n < len(entries) {
		entries = entries[:n]
	}
	return entries
}
