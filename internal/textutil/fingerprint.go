package textutil

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fingerprint is a sparse weighted term vector. A nil *Fingerprint stands for
// text that produced no terms and compares as 0 against everything.
type Fingerprint struct {
	weights map[string]float64
	norm    float64
}

// fromWeights drops zero weights and returns nil when nothing remains.
func fromWeights(weights map[string]float64) *Fingerprint {
	var sum float64
	for term, w := range weights {
		if w == 0 {
			delete(weights, term)
			continue
		}
		sum += w * w
	}
	if len(weights) == 0 {
		return nil
	}
	return &Fingerprint{weights: weights, norm: math.Sqrt(sum)}
}

// NewFingerprint tokenizes text and counts term frequencies.
func NewFingerprint(text string) *Fingerprint {
	return NewFingerprintFromTokens(Tokenize(text))
}

func NewFingerprintFromTokens(tokens []string) *Fingerprint {
	tf := make(map[string]float64, len(tokens))
	for _, tok := range tokens {
		if tok != "" {
			tf[tok]++
		}
	}
	return fromWeights(tf)
}

// TokenCount returns the number of distinct terms.
func (f *Fingerprint) TokenCount() int {
	if f == nil {
		return 0
	}
	return len(f.weights)
}

// WithIDF scales each term by its IDF weight. Terms missing from idf keep
// their raw frequency.
func (f *Fingerprint) WithIDF(idf map[string]float64) *Fingerprint {
	if f == nil || len(idf) == 0 {
		return f
	}
	scaled := make(map[string]float64, len(f.weights))
	for term, tf := range f.weights {
		if w, ok := idf[term]; ok {
			tf *= w
		}
		scaled[term] = tf
	}
	return fromWeights(scaled)
}

// Tokenize folds text with NFKC and lowercasing, then splits it into terms.
//
// Letter and digit runs outside CJK scripts become word terms of two or more
// runes. Kanji and kana have no spaces between words, so a CJK run becomes
// overlapping bigrams; a run of one rune is kept as is.
func Tokenize(text string) []string {
	folded := strings.ToLower(norm.NFKC.String(text))
	var (
		terms []string
		run   []rune
		inCJK bool
	)
	emit := func() {
		switch {
		case inCJK && len(run) == 1:
			terms = append(terms, string(run))
		case inCJK:
			for i := 1; i < len(run); i++ {
				terms = append(terms, string(run[i-1:i+1]))
			}
		case len(run) >= 2:
			terms = append(terms, string(run))
		}
		run = run[:0]
	}
	for _, r := range folded {
		cjk := isCJK(r)
		if !cjk && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			emit()
			continue
		}
		if len(run) > 0 && cjk != inCJK {
			emit()
		}
		inCJK = cjk
		run = append(run, r)
	}
	emit()
	if terms == nil {
		terms = []string{}
	}
	return terms
}

// isCJK covers kanji, both kana scripts, and the long vowel mark used inside
// katakana words.
func isCJK(r rune) bool {
	return r == 'ー' || unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana)
}

// Corpus tracks how many documents contain each term.
type Corpus struct {
	docs int
	df   map[string]int
}

func NewCorpus() *Corpus {
	return &Corpus{df: map[string]int{}}
}

// Add counts each distinct term of fp once. Nil fingerprints are ignored.
func (c *Corpus) Add(fp *Fingerprint) {
	if c == nil || fp == nil {
		return
	}
	c.docs++
	for term := range fp.weights {
		c.df[term]++
	}
}

// IDF returns log((N+1)/(1+df)) + 1 per term, so a term found in every
// document still carries weight 1.
func (c *Corpus) IDF() map[string]float64 {
	if c == nil || c.docs == 0 {
		return nil
	}
	n := float64(c.docs + 1)
	out := make(map[string]float64, len(c.df))
	for term, df := range c.df {
		out[term] = math.Log(n/float64(df+1)) + 1
	}
	return out
}
