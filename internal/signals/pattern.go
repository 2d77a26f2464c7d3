package signals

import (
	"regexp"
	"sort"

	"github.com/nao1215/jobguard/internal/model"
)

// pattern is one regular expression a detector looks for.
type pattern struct {
	re     *regexp.Regexp
	level  model.RiskLevel
	reason string
}

type match struct {
	start, end int
	phrase     model.Phrase
}

func newMatch(text string, loc []int, p pattern) match {
	return match{
		start: loc[0],
		end:   loc[1],
		phrase: model.Phrase{
			Text:      text[loc[0]:loc[1]],
			RiskLevel: p.level,
			Reason:    p.reason,
		},
	}
}

// findAll returns the matches of patterns in order of appearance. Where
// matches overlap, the earliest and then longest one is kept.
func findAll(text string, patterns []pattern) []model.Phrase {
	matches := make([]match, 0)
	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			matches = append(matches, newMatch(text, loc, p))
		}
	}
	return resolveOverlaps(matches)
}

// resolveOverlaps orders matches by position and drops any match that
// starts inside the previous one kept.
func resolveOverlaps(matches []match) []model.Phrase {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].start != matches[j].start {
			return matches[i].start < matches[j].start
		}
		return matches[i].end > matches[j].end
	})

	phrases := make([]model.Phrase, 0, len(matches))
	end := -1
	for _, m := range matches {
		if m.start < end {
			continue
		}
		phrases = append(phrases, m.phrase)
		end = m.end
	}
	return phrases
}
