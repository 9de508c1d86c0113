// Package quality scores translations with cheap heuristics. The scores
// flag obviously broken output; they say nothing about fidelity.
package quality

import (
	"math"
	"unicode/utf8"
)

const (
	MinLengthRatio = 0.8
	MaxLengthRatio = 1.2
)

// IsThai reports whether r is in the Thai block U+0E00..U+0E7F.
func IsThai(r rune) bool {
	return r >= 0x0E00 && r <= 0x0E7F
}

// ThaiRatio is the share of runes in text that are Thai.
func ThaiRatio(text string) float64 {
	total, thai := 0, 0
	for _, r := range text {
		total++
		if IsThai(r) {
			thai++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(thai) / float64(total)
}

// LengthScore is 1 when the translation is 0.8 to 1.2 times the length of
// the original and falls off linearly outside that range.
func LengthScore(translation, original string) float64 {
	origLen := utf8.RuneCountInString(original)
	if origLen == 0 {
		return 0
	}
	ratio := float64(utf8.RuneCountInString(translation)) / float64(origLen)
	if ratio >= MinLengthRatio && ratio <= MaxLengthRatio {
		return 1
	}
	return math.Max(0, 1-math.Abs(ratio-1))
}

// ThaiScore expects at least half of the translation to be Thai.
func ThaiScore(translation string) float64 {
	return math.Min(1, ThaiRatio(translation)*2)
}

// Score averages LengthScore and ThaiScore. An empty translation scores 0.
func Score(translation, original string) float64 {
	if translation == "" {
		return 0
	}
	return (LengthScore(translation, original) + ThaiScore(translation)) / 2
}
