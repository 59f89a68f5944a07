// Package anchor maps quoted text excerpts back to character-offset ranges in
// the source document. Models are asked to quote student text verbatim but
// frequently alter whitespace, truncate, or lightly paraphrase; the resolver
// recovers a usable range whenever plausibly possible and otherwise reports no
// match so the caller can drop the highlight.
package anchor

import (
	"strings"
	"unicode"
)

// Range is a half-open character span within a document.
// Invariant for resolved ranges: 0 <= Start < End <= len(document).
type Range struct {
	Start int
	End   int
}

const (
	// prefixProbeLength is how much of a long quote is searched verbatim
	// when the full quote does not appear in the document.
	prefixProbeLength = 30
	// sentenceLookahead bounds how far past the probe the end boundary may
	// extend hunting for a sentence terminator.
	sentenceLookahead = 150
	// keyPhraseWords is the window width for the mid-quote phrase search.
	keyPhraseWords = 4
	// keyPhraseMinWords is the minimum quote length for that strategy.
	keyPhraseMinWords = 5
	// keyPhraseFallbackSpan extends the end when no terminator follows the phrase.
	keyPhraseFallbackSpan = 50
)

// Resolve locates the best-matching range for quoted within document, trying
// a cascade of strategies from exact to increasingly fuzzy. The first strategy
// that matches wins. Matching is case-sensitive throughout. An empty quote
// never matches.
func Resolve(document, quoted string) (Range, bool) {
	if quoted == "" || document == "" {
		return Range{}, false
	}

	if r, ok := exactMatch(document, quoted); ok {
		return r, true
	}
	if r, ok := normalizedMatch(document, quoted); ok {
		return r, true
	}
	if r, ok := prefixMatch(document, quoted); ok {
		return r, true
	}
	if r, ok := keyPhraseMatch(document, quoted); ok {
		return r, true
	}

	return Range{}, false
}

func exactMatch(document, quoted string) (Range, bool) {
	idx := strings.Index(document, quoted)
	if idx < 0 {
		return Range{}, false
	}
	return Range{Start: idx, End: idx + len(quoted)}, true
}

// normalizedMatch collapses whitespace runs in both strings, checks for a
// normalized containment, then maps back to original offsets by locating the
// quote's first word and then its last word after it.
func normalizedMatch(document, quoted string) (Range, bool) {
	words := strings.Fields(quoted)
	if len(words) == 0 {
		return Range{}, false
	}

	if !strings.Contains(normalizeWhitespace(document), normalizeWhitespace(quoted)) {
		return Range{}, false
	}

	first := words[0]
	start := strings.Index(document, first)
	if start < 0 {
		return Range{}, false
	}

	if len(words) == 1 {
		return Range{Start: start, End: start + len(first)}, true
	}

	last := words[len(words)-1]
	rest := document[start+len(first):]
	offset := strings.Index(rest, last)
	if offset < 0 {
		return Range{}, false
	}

	end := start + len(first) + offset + len(last)
	return Range{Start: start, End: end}, true
}

// prefixMatch anchors a long quote by its first 30 characters and closes the
// range at the next sentence terminator, bounded by the quote's own length.
func prefixMatch(document, quoted string) (Range, bool) {
	if len(quoted) <= prefixProbeLength {
		return Range{}, false
	}

	probe := quoted[:prefixProbeLength]
	start := strings.Index(document, probe)
	if start < 0 {
		return Range{}, false
	}

	probeEnd := start + len(probe)
	limit := probeEnd + sentenceLookahead
	if limit > len(document) {
		limit = len(document)
	}

	end := start + len(quoted)
	if term := indexSentenceTerminator(document[probeEnd:limit]); term >= 0 {
		candidate := probeEnd + term + 1
		if candidate < end {
			end = candidate
		}
	}
	if end > len(document) {
		end = len(document)
	}
	if end <= start {
		return Range{}, false
	}

	return Range{Start: start, End: end}, true
}

// keyPhraseMatch searches for a 4-word window taken one-third of the way into
// the quote, then widens the hit to the preceding word boundary and the next
// sentence terminator.
func keyPhraseMatch(document, quoted string) (Range, bool) {
	words := strings.Fields(quoted)
	if len(words) < keyPhraseMinWords {
		return Range{}, false
	}

	offset := len(words) / 3
	if offset+keyPhraseWords > len(words) {
		offset = len(words) - keyPhraseWords
	}
	phrase := strings.Join(words[offset:offset+keyPhraseWords], " ")

	idx := strings.Index(document, phrase)
	if idx < 0 {
		return Range{}, false
	}

	start := idx
	for start > 0 && !unicode.IsSpace(rune(document[start-1])) {
		start--
	}

	phraseEnd := idx + len(phrase)
	var end int
	if term := indexSentenceTerminator(document[phraseEnd:]); term >= 0 {
		end = phraseEnd + term + 1
	} else {
		end = phraseEnd + keyPhraseFallbackSpan
	}
	if end > len(document) {
		end = len(document)
	}
	if end <= start {
		return Range{}, false
	}

	return Range{Start: start, End: end}, true
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func indexSentenceTerminator(s string) int {
	return strings.IndexAny(s, ".!?")
}
