package voice

import (
	"regexp"
	"strings"

	"WhaleWhisperer/internal/domain/models"
)

// TokenMatch is the best catalog hit for an utterance.
type TokenMatch struct {
	Token      models.Token
	Confidence float64
}

// defaultAliases maps symbols to phonetic misspellings ASR produces
// for the custom meme tokens. Catalog entries can extend this via
// their Aliases field.
var defaultAliases = map[string][]string{
	"BLP":      {"blop", "blob", "bloop", "blopp", "blorp"},
	"ZGA":      {"zuga", "zooga", "zoo ga", "suga"},
	"FLP":      {"floop", "flute", "floops", "flu p"},
	"TKU":      {"toku", "toe koo", "tokyo", "tocu"},
	"RMB":      {"rambo", "ram bo", "rainbow", "rambeau"},
	"MIK":      {"mika", "meeka", "me ka", "micah"},
	"PEPE":     {"peppy", "pepper", "pep e", "pepay"},
	"BONK":     {"bonk", "bonked", "bonque", "bonc"},
	"DOGE":     {"dough", "dodge", "dogey", "dogue"},
	"SHIB":     {"sheeb", "shib", "shibe"},
	"FLOKI":    {"flokey", "flokie", "floaty"},
	"BABYDOGE": {"baby dough", "baby dodge"},
	"ELON":     {"eelon", "elan"},
	"KISHU":    {"key shoe", "keeshu"},
	"HOGE":     {"hoagie", "hogue"},
	"AKITA":    {"akeeta", "a kita"},
}

const (
	// fuzzyAccept is the single acceptance threshold for fuzzy-only
	// matches; fuzzyTrack is the lower bar a candidate must clear to
	// be tracked at all.
	fuzzyAccept = 0.7
	fuzzyTrack  = 0.65
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9\s]`)

// FindToken resolves a free-text mention to the single best-matching
// catalog entry. Matching order: alias table, exact substring of the
// display name or symbol, spelled-out ticker letters, then fuzzy
// bigram similarity across every word. The second return is false
// when nothing clears the acceptance threshold; callers degrade the
// whole command to unknown.
func FindToken(text string, catalog []models.Token) (TokenMatch, bool) {
	lower := nonAlnum.ReplaceAllString(strings.ToLower(text), " ")
	compact := strings.Join(strings.Fields(lower), "")
	words := strings.Fields(lower)

	var best TokenMatch
	for _, tok := range catalog {
		symbol := strings.ToLower(tok.Symbol)
		display := strings.ToLower(tok.DisplayName)
		name := strings.ToLower(tok.Name)

		// Alias table: known phonetic misspellings are exact hits.
		for _, alias := range tokenAliases(tok) {
			if strings.Contains(lower, strings.ToLower(alias)) {
				return TokenMatch{Token: tok, Confidence: 1.0}, true
			}
		}

		// Exact containment of display name or symbol, against both
		// the raw text and the whitespace-collapsed form ("baby doge").
		if display != "" && (strings.Contains(lower, display) || strings.Contains(compact, collapse(display))) {
			return TokenMatch{Token: tok, Confidence: 1.0}, true
		}
		if strings.Contains(lower, symbol) || strings.Contains(compact, symbol) {
			return TokenMatch{Token: tok, Confidence: 1.0}, true
		}
		if name != "" && strings.Contains(lower, name) {
			if best.Confidence < 0.95 {
				best = TokenMatch{Token: tok, Confidence: 0.95}
			}
			continue
		}

		// Spelled-out ticker: "p e p e", "p.e.p.e."
		if spelledOutPattern(symbol).MatchString(lower) {
			if best.Confidence < 0.95 {
				best = TokenMatch{Token: tok, Confidence: 0.95}
			}
			continue
		}

		// Fuzzy fallback over individual words and the compact text.
		for _, w := range words {
			if len(w) < 2 {
				continue
			}
			score := maxSimilarity(w, display, symbol, name)
			if score > fuzzyTrack && score > best.Confidence {
				best = TokenMatch{Token: tok, Confidence: score}
			}
		}
		if score := maxSimilarity(compact, display, symbol); score > fuzzyTrack && score > best.Confidence {
			best = TokenMatch{Token: tok, Confidence: score}
		}
	}

	if best.Confidence >= 0.95 {
		return best, true
	}
	if best.Confidence > fuzzyAccept {
		return best, true
	}
	return TokenMatch{}, false
}

func tokenAliases(tok models.Token) []string {
	if len(tok.Aliases) > 0 {
		return tok.Aliases
	}
	return defaultAliases[strings.ToUpper(tok.Symbol)]
}

func maxSimilarity(s string, targets ...string) float64 {
	var best float64
	for _, t := range targets {
		if t == "" {
			continue
		}
		if sc := Similarity(s, t); sc > best {
			best = sc
		}
	}
	return best
}

// spelledOutPattern matches the ticker's letters in order separated by
// arbitrary whitespace or punctuation.
func spelledOutPattern(symbol string) *regexp.Regexp {
	letters := make([]string, 0, len(symbol))
	for _, r := range symbol {
		letters = append(letters, regexp.QuoteMeta(string(r)))
	}
	return regexp.MustCompile(`\b` + strings.Join(letters, `[\s.\-]+`) + `\b`)
}
