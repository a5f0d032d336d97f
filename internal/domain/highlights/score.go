package highlights

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	densityWeight = 10.0
	exclaimBonus  = 3.0
	questionBonus = 2.0
)

// Score rates how clip-worthy text spoken over duration seconds is.
// Word density dominates; '!' adds 3, '?' adds 2 and every shouted token adds 1.
func Score(text string, duration float64) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	tokens := strings.Fields(text)

	density := float64(len(tokens)) / math.Max(duration, 1.0)
	punct := exclaimBonus*float64(strings.Count(text, "!")) +
		questionBonus*float64(strings.Count(text, "?"))

	emphasis := 0
	for _, tok := range tokens {
		// Single letters are usually initials, not emphasis.
		if utf8.RuneCountInString(tok) > 1 && isShouted(tok) {
			emphasis++
		}
	}
	return density*densityWeight + punct + float64(emphasis)
}

// isShouted reports whether tok has at least one upper-case letter and no lower-case or
// title-case ones. Upper and lower follow the Unicode Uppercase/Lowercase properties, so
// letters such as 'Ⓐ' count as upper and 'ª' as lower.
func isShouted(tok string) bool {
	cased := false
	for _, r := range tok {
		switch {
		case unicode.IsLower(r), unicode.Is(unicode.Other_Lowercase, r), unicode.IsTitle(r):
			return false
		case unicode.IsUpper(r), unicode.Is(unicode.Other_Uppercase, r):
			cased = true
		}
	}
	return cased
}
