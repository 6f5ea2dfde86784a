package voice

import "strings"

// Intent is the coarse action category of an utterance.
type Intent string

const (
	IntentBuy     Intent = "buy"
	IntentSell    Intent = "sell"
	IntentCheck   Intent = "check"
	IntentReset   Intent = "reset"
	IntentHelp    Intent = "help"
	IntentUnknown Intent = "unknown"
)

// intentKeywords is scanned in order; buy before sell, so text that
// somehow contains both resolves to buy.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentBuy, []string{"buy", "bye", "purchase", "acquire", "get", "grab", "cop", "buying"}},
	{IntentSell, []string{"sell", "cell", "liquidate", "dump", "exit", "selling", "sale"}},
	{IntentCheck, []string{"check", "show", "view", "display", "portfolio", "balance", "holdings", "what"}},
	{IntentReset, []string{"reset", "restart", "clear", "refresh", "start over"}},
	{IntentHelp, []string{"help", "guide", "tutorial", "commands", "how"}},
}

// DetectIntent classifies text into one of the fixed intents.
// Case-insensitive substring containment of any keyword wins at
// confidence 1.0; otherwise the best per-word fuzzy score above the
// acceptance threshold wins, else unknown at 0.
func DetectIntent(text string) (Intent, float64) {
	lower := strings.ToLower(text)

	for _, entry := range intentKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.intent, 1.0
			}
		}
	}

	// Fuzzy fallback tolerates ASR mangling the verb itself.
	words := strings.Fields(lower)
	best := IntentUnknown
	var bestScore float64
	for _, entry := range intentKeywords {
		for _, kw := range entry.keywords {
			for _, w := range words {
				if sc := Similarity(w, kw); sc > fuzzyAccept && sc > bestScore {
					bestScore = sc
					best = entry.intent
				}
			}
		}
	}

	if best == IntentUnknown {
		return IntentUnknown, 0
	}
	return best, bestScore
}
