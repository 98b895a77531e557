// Package wordfreq computes word-frequency summaries of uploaded text.
package wordfreq

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	// ErrEmptyInput is returned when the content has zero bytes.
	ErrEmptyInput = errors.New("empty input")
	// ErrNoWordsFound is returned when the content contains no alphabetic runs.
	ErrNoWordsFound = errors.New("no words found")
	// ErrInvalidEncoding is returned when the content is not valid UTF-8.
	ErrInvalidEncoding = errors.New("invalid encoding")
)

const singleWordMessage = "Only one word found in the file"

// wordPattern is applied to lowercased text. Go's \b is ASCII-only, so a run
// touching a digit or underscore is not a word, and non-ASCII letters split runs.
var wordPattern = regexp.MustCompile(`\b[a-z]+\b`)

// Result is the summary produced for a single piece of content.
type Result struct {
	Filename          string   `json:"filename" yaml:"filename"`
	TotalWords        int      `json:"total_words" yaml:"total_words"`
	HighestFrequency  int      `json:"highest_frequency" yaml:"highest_frequency"`
	MostFrequentWords []string `json:"most_frequent_words,omitempty" yaml:"most_frequent_words,omitempty"`
	Message           string   `json:"message,omitempty" yaml:"message,omitempty"`
}

// Tokenize lowercases text and returns its words in order of appearance.
func Tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// Count returns the number of occurrences of each distinct token.
func Count(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}

// Analyze tokenizes content and summarizes its word frequencies.
// The filename is echoed back unchanged.
func Analyze(content []byte, filename string) (*Result, error) {
	if len(content) == 0 {
		return nil, ErrEmptyInput
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidEncoding
	}

	tokens := Tokenize(string(content))
	if len(tokens) == 0 {
		return nil, ErrNoWordsFound
	}

	counts := Count(tokens)
	highest := 0
	distinct := make(map[int]struct{})
	for _, c := range counts {
		distinct[c] = struct{}{}
		if c > highest {
			highest = c
		}
	}

	result := &Result{
		Filename:         filename,
		TotalWords:       len(tokens),
		HighestFrequency: highest,
	}

	if len(distinct) == 1 {
		result.Message = fmt.Sprintf("All words have the same frequency of %d", highest)
	} else {
		for word, c := range counts {
			if c == highest {
				result.MostFrequentWords = append(result.MostFrequentWords, word)
			}
		}
		sort.Strings(result.MostFrequentWords)
	}

	if result.TotalWords == 1 {
		result.Message = singleWordMessage
	}

	return result, nil
}

// WordCount pairs a word with its number of occurrences.
type WordCount struct {
	Word  string `json:"word" yaml:"word"`
	Count int    `json:"count" yaml:"count"`
}

// Top returns up to n words ordered by descending count, ties broken alphabetically.
// A non-positive n returns every word.
func Top(counts map[string]int, n int) []WordCount {
	out := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, WordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
