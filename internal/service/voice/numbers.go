package voice

import (
	"regexp"
	"strconv"
	"strings"
)

// AmountUnit says whether an extracted amount is a dollar value or a
// token quantity.
type AmountUnit string

const (
	UnitDollars AmountUnit = "dollars"
	UnitTokens  AmountUnit = "tokens"
)

// Amount is a parsed trade amount. Transient per parse call.
type Amount struct {
	Unit  AmountUnit
	Value float64
}

// literalNumber matches digit numerals with an optional currency
// marker, thousands separators, and a decimal fraction ("$1,500.50").
var literalNumber = regexp.MustCompile(`\$?\d+(?:,\d{3})*(?:\.\d+)?`)

// dollarIndicator classifies an amount as dollars rather than tokens.
var dollarIndicator = regexp.MustCompile(`(?i)\$|dollars?|worth|usd|bucks?`)

var numberWords = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13,
	"fourteen": 14, "fifteen": 15, "sixteen": 16, "seventeen": 17,
	"eighteen": 18, "nineteen": 19, "twenty": 20, "thirty": 30,
	"forty": 40, "fifty": 50, "sixty": 60, "seventy": 70,
	"eighty": 80, "ninety": 90, "hundred": 100, "thousand": 1000,
	"million": 1000000,
}

var magnitudes = map[string]float64{
	"hundred":  100,
	"thousand": 1000,
	"k":        1000,
	"million":  1000000,
	"m":        1000000,
}

var nonAlpha = regexp.MustCompile(`[^a-z]`)

// ParseSpokenNumber extracts a numeric value from free text. Literal
// numerals always win over spoken-word numbers. The second return is
// false when no number was found; a spoken "zero" is indistinguishable
// from absence and is treated as not found (zero is not a legal trade
// amount anywhere downstream).
func ParseSpokenNumber(text string) (float64, bool) {
	if m := literalNumber.FindString(text); m != "" {
		m = strings.NewReplacer("$", "", ",", "").Replace(m)
		v, err := strconv.ParseFloat(m, 64)
		if err == nil {
			return v, true
		}
	}

	words := strings.Fields(strings.ToLower(text))
	var total float64
	matched := false

	for i := 0; i < len(words); i++ {
		word := nonAlpha.ReplaceAllString(words[i], "")

		value, isNumber := numberWords[word]
		if !isNumber {
			if mag, ok := magnitudes[word]; ok {
				// magnitude with no preceding value scales the running total
				total *= mag
				matched = true
			}
			continue
		}
		matched = true

		// "five hundred", "twelve thousand": the magnitude multiplies
		// the accumulated sub-total
		if i+1 < len(words) {
			next := nonAlpha.ReplaceAllString(words[i+1], "")
			if mag, ok := magnitudes[next]; ok {
				total = (total + value) * mag
				i++
				continue
			}
		}

		if mag, ok := magnitudes[word]; ok {
			total *= mag
		} else {
			total += value
		}
	}

	if !matched || total <= 0 {
		return 0, false
	}
	return total, true
}

// ExtractAmount parses a number from text and classifies it as dollars
// or tokens. The unit scan runs over the whole raw text, independent of
// how the number itself was parsed. Never errors: the second return is
// false when no amount is present and callers treat that as "amount
// not specified".
func ExtractAmount(text string) (Amount, bool) {
	value, ok := ParseSpokenNumber(text)
	if !ok {
		return Amount{}, false
	}

	unit := UnitTokens
	if dollarIndicator.MatchString(text) {
		unit = UnitDollars
	}
	return Amount{Unit: unit, Value: value}, true
}
