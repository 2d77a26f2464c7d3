package highlight

import (
	"unicode"
	"unicode/utf8"
)

// MatchSpan is the position of a match inside a text node's data.
// Start and Length are byte offsets into the string that was searched; a
// span is only meaningful until that node is mutated.
type MatchSpan struct {
	Start  int
	Length int
}

// End returns the byte offset just past the match.
func (s MatchSpan) End() int {
	return s.Start + s.Length
}

// Locate finds the first case-insensitive occurrence of phrase in nodeText.
// It reports false when phrase is empty or does not occur.
//
// Matching lowercases rune by rune with unicode.ToLower: there is no case
// folding, normalization or locale handling, so "STRASSE" does not match
// "straße". The comparison walks nodeText itself rather than a lowercased
// copy, which keeps the returned offsets valid for nodeText even when
// lowercasing would change a rune's encoded width.
func Locate(nodeText, phrase string) (MatchSpan, bool) {
	if phrase == "" {
		return MatchSpan{}, false
	}

	needle := make([]rune, 0, utf8.RuneCountInString(phrase))
	for _, r := range phrase {
		needle = append(needle, unicode.ToLower(r))
	}

	for start := range nodeText {
		if end, ok := matchAt(nodeText, start, needle); ok {
			return MatchSpan{Start: start, Length: end - start}, true
		}
	}

	return MatchSpan{}, false
}

// matchAt reports whether needle matches text at byte offset start and
// returns the byte offset where the match ends.
func matchAt(text string, start int, needle []rune) (int, bool) {
	pos := start
	for _, want := range needle {
		if pos >= len(text) {
			return 0, false
		}
		r, size := utf8.DecodeRuneInString(text[pos:])
		if unicode.ToLower(r) != want {
			return 0, false
		}
		pos += size
	}
	return pos, true
}
