// Package lexical provides the tokenizer, token-overlap scoring, and
// keyword intent detection used by the retrieval pipeline.
package lexical

import (
	"regexp"
	"strings"
	"unicode"
)

// minTokenLen drops short function words before stop-word filtering.
const minTokenLen = 3

// stopWords is a fixed, domain-generic list of legal and system words that
// carry no signal for token overlap. It is static configuration, never
// derived from the corpus.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "any": {}, "can": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "has": {}, "have": {}, "this": {},
	"that": {}, "with": {}, "from": {}, "they": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "their": {}, "will": {}, "would": {},
	"there": {}, "about": {}, "shall": {}, "such": {}, "under": {},
	"upon": {}, "into": {}, "does": {}, "statute": {}, "statutes": {},
	"case": {}, "cases": {}, "virginia": {}, "law": {}, "laws": {},
	"legal": {}, "code": {}, "section": {}, "sections": {},
}

// Intent term sets. A query is flagged with an intent when any of its
// tokens exactly matches a term.
var (
	manualTerms = map[string]struct{}{
		"manual": {}, "handbook": {}, "form": {}, "forms": {},
		"procedure": {}, "procedures": {}, "instructions": {},
		"guide": {}, "checklist": {},
	}
	authorityTerms = map[string]struct{}{
		"authority": {}, "authorities": {}, "agency": {}, "agencies": {},
		"department": {}, "board": {}, "commission": {},
	}
	repealTerms = map[string]struct{}{
		"repeal": {}, "repealed": {}, "repealing": {},
	}
)

var repealedPattern = regexp.MustCompile(`(?i)\brepealed\b`)

// Tokenize lowercases the text, splits on non-alphanumeric runs, and drops
// tokens shorter than three characters or present in the stop-word list.
// Duplicates are removed; first-occurrence order is preserved.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, tok := range fields {
		if len(tok) < minTokenLen {
			continue
		}
		if _, ok := stopWords[tok]; ok {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// OverlapScore returns the fraction of query tokens present in the
// candidate text's token set, in [0, 1]. A query with no tokens scores 0.
func OverlapScore(queryTokens []string, candidateText string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	candidateSet := make(map[string]struct{})
	for _, tok := range Tokenize(candidateText) {
		candidateSet[tok] = struct{}{}
	}

	matched := 0
	for _, tok := range queryTokens {
		if _, ok := candidateSet[tok]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}

// Intents are query-level flags derived from keyword matching, used to
// override default scoring priors.
type Intents struct {
	Manual    bool
	Authority bool
	Repeal    bool
}

// DetectIntents flags a tokenized query by exact term matching.
func DetectIntents(queryTokens []string) Intents {
	var in Intents
	for _, tok := range queryTokens {
		if _, ok := manualTerms[tok]; ok {
			in.Manual = true
		}
		if _, ok := authorityTerms[tok]; ok {
			in.Authority = true
		}
		if _, ok := repealTerms[tok]; ok {
			in.Repeal = true
		}
	}
	return in
}

// MentionsRepealed reports whether the text contains the whole word
// "repealed", case-insensitive.
func MentionsRepealed(text string) bool {
	return repealedPattern.MatchString(text)
}
