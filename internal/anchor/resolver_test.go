package anchor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const essay = "The cat sat on the mat. It was happy. The thesis of this essay argues " +
	"that urban green spaces improve both physical and mental health outcomes " +
	"for city residents. Several studies support this claim! Finally, parks " +
	"provide a sense of community that apartment living otherwise lacks."

func TestResolveExactSubstring(t *testing.T) {
	quote := "urban green spaces improve"
	r, ok := Resolve(essay, quote)
	require.True(t, ok)
	require.Equal(t, quote, essay[r.Start:r.End])
}

func TestResolveExactReturnsOriginalBounds(t *testing.T) {
	// Every verbatim substring must resolve to its own bounds.
	for _, quote := range []string{"The cat", "was happy", "community"} {
		r, ok := Resolve(essay, quote)
		require.True(t, ok, quote)
		require.Equal(t, strings.Index(essay, quote), r.Start, quote)
		require.Equal(t, strings.Index(essay, quote)+len(quote), r.End, quote)
	}
}

func TestResolveWhitespaceNormalized(t *testing.T) {
	// The model returned irregular spacing; the resolver must recover the
	// clean original range.
	r, ok := Resolve(essay, "cat  sat on the   mat")
	require.True(t, ok)
	require.Equal(t, "cat sat on the mat", essay[r.Start:r.End])
}

func TestResolveWhitespaceNormalizedAcrossNewlines(t *testing.T) {
	doc := "First paragraph ends here.\n\nSecond paragraph makes a bold claim about history."
	r, ok := Resolve(doc, "Second paragraph  makes a\nbold claim")
	require.True(t, ok)
	normalized := strings.Join(strings.Fields(doc[r.Start:r.End]), " ")
	require.Equal(t, "Second paragraph makes a bold claim", normalized)
}

func TestResolveEmptyQuoteNeverMatches(t *testing.T) {
	_, ok := Resolve(essay, "")
	require.False(t, ok)

	_, ok = Resolve("", "anything")
	require.False(t, ok)
}

func TestResolvePrefixMatchTruncatesAtSentenceEnd(t *testing.T) {
	// The model quoted the opening faithfully but then paraphrased the rest,
	// so only the 30-char prefix appears verbatim.
	quote := "The thesis of this essay argues something entirely different from what was actually written down"
	r, ok := Resolve(essay, quote)
	require.True(t, ok)
	require.Equal(t, strings.Index(essay, quote[:30]), r.Start)
	require.Greater(t, r.End, r.Start)
	require.LessOrEqual(t, r.End, r.Start+len(quote))
	require.True(t, strings.HasPrefix(essay[r.Start:r.End], "The thesis of this essay argue"))
}

func TestResolveKeyPhraseMatch(t *testing.T) {
	// Prefix differs, but a 4-word window a third of the way in survives:
	// words[3:7] of the quote is "sense of community that".
	quote := "giving everyone a sense of community that no apartment block can"
	r, ok := Resolve(essay, quote)
	require.True(t, ok)
	got := essay[r.Start:r.End]
	require.Contains(t, got, "sense of community that")
	require.True(t, strings.HasSuffix(got, "."), "end expands to the sentence terminator, got %q", got)
}

func TestResolveKeyPhraseExpandsToWordBoundary(t *testing.T) {
	doc := "He said thebest result we have seen yet. More text follows."
	// words[3:7] of the quote is "best result we have", which lands inside
	// the fused token; the start must widen back to the word boundary.
	quote := "arguably the greatest best result we have ever witnessed"
	r, ok := Resolve(doc, quote)
	require.True(t, ok)
	require.Equal(t, strings.Index(doc, "thebest"), r.Start)
	require.Equal(t, byte('.'), doc[r.End-1])
}

func TestResolveNotFound(t *testing.T) {
	// Shares no 30-char prefix and no 4-word window with the document.
	quote := "Completely unrelated musings about quantum chromodynamics and lattice gauge theory simulations"
	_, ok := Resolve(essay, quote)
	require.False(t, ok)
}

func TestResolveShortUnmatchedQuote(t *testing.T) {
	_, ok := Resolve(essay, "zebra xylophone")
	require.False(t, ok)
}

func TestResolveIsCaseSensitive(t *testing.T) {
	_, ok := Resolve(essay, "THE CAT SAT")
	require.False(t, ok)
}

func TestResolveRangeInvariant(t *testing.T) {
	quotes := []string{
		"The cat sat on the mat.",
		"cat  sat on the   mat",
		"The thesis of this essay argues a broadly similar point in spirit",
		"offering parks provide a sense of belonging to all",
	}
	for _, quote := range quotes {
		r, ok := Resolve(essay, quote)
		if !ok {
			continue
		}
		require.GreaterOrEqual(t, r.Start, 0, quote)
		require.Less(t, r.Start, r.End, quote)
		require.LessOrEqual(t, r.End, len(essay), quote)
	}
}
