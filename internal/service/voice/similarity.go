// Package voice turns noisy ASR transcripts into structured trading
// commands: intent classification, token catalog matching, spoken-number
// parsing, and the confirm/cancel/modify response protocol.
package voice

import "strings"

// Similarity computes the Sørensen–Dice coefficient over character
// bigrams of the two strings. Returns a value between 0.0 (no shared
// bigrams) and 1.0 (identical). Whitespace is ignored so "baby doge"
// and "babydoge" compare as equal.
func Similarity(s1, s2 string) float64 {
	s1 = collapse(s1)
	s2 = collapse(s2)

	if s1 == s2 {
		return 1.0
	}
	if len(s1) < 2 || len(s2) < 2 {
		return 0.0
	}

	bigrams := make(map[string]int)
	for i := 0; i < len(s1)-1; i++ {
		bigrams[s1[i:i+2]]++
	}

	matches := 0
	for i := 0; i < len(s2)-1; i++ {
		b := s2[i : i+2]
		if bigrams[b] > 0 {
			bigrams[b]--
			matches++
		}
	}

	return 2.0 * float64(matches) / float64(len(s1)+len(s2)-2)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "")
}
