package voice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"WhaleWhisperer/internal/domain/models"
)

// InterpretedCommand is the structured result of one utterance.
// Money-moving intents carry a matched token plus either an Amount or
// the sell-all flag, and must be confirmed before execution.
type InterpretedCommand struct {
	Intent            Intent  `json:"intent"`
	Token             string  `json:"token,omitempty"`       // display name
	TokenSymbol       string  `json:"tokenSymbol,omitempty"` // ticker
	Amount            *Amount `json:"amount,omitempty"`
	SellAll           bool    `json:"sellAll,omitempty"`
	Confidence        float64 `json:"confidence"`
	RawText           string  `json:"rawText"`
	NeedsConfirmation bool    `json:"needsConfirmation"`
}

var allIndicator = regexp.MustCompile(`\ball\b|\bevery\b|\beverything\b|\bentire\b|\bwhole\b`)

// Interpret produces exactly one command for the utterance against a
// read-only catalog snapshot. Parse failures never error: a missing
// token degrades the result to unknown, a missing amount halves the
// confidence and leaves the amount to be requested during
// confirmation. Overall confidence is the minimum of the intent and
// token sub-confidences.
func Interpret(text string, catalog []models.Token) InterpretedCommand {
	intent, intentConf := DetectIntent(text)

	// Informational intents need no token or amount and run unconfirmed.
	switch intent {
	case IntentCheck, IntentReset, IntentHelp:
		return InterpretedCommand{
			Intent:     intent,
			Confidence: intentConf,
			RawText:    text,
		}
	}

	if intent == IntentBuy || intent == IntentSell {
		match, ok := FindToken(text, catalog)
		if !ok {
			// a confident verb cannot rescue a missing token
			return InterpretedCommand{Intent: IntentUnknown, Confidence: 0, RawText: text}
		}

		if intent == IntentSell && allIndicator.MatchString(strings.ToLower(text)) {
			return InterpretedCommand{
				Intent:            IntentSell,
				Token:             match.Token.DisplayName,
				TokenSymbol:       match.Token.Symbol,
				SellAll:           true,
				Confidence:        min64(intentConf, match.Confidence),
				RawText:           text,
				NeedsConfirmation: true,
			}
		}

		if amount, found := ExtractAmount(text); found {
			return InterpretedCommand{
				Intent:            intent,
				Token:             match.Token.DisplayName,
				TokenSymbol:       match.Token.Symbol,
				Amount:            &amount,
				Confidence:        min64(intentConf, match.Confidence),
				RawText:           text,
				NeedsConfirmation: true,
			}
		}

		// Token matched but no amount: emit anyway at half confidence so
		// the confirmation dialogue can ask for the amount.
		return InterpretedCommand{
			Intent:            intent,
			Token:             match.Token.DisplayName,
			TokenSymbol:       match.Token.Symbol,
			Confidence:        min64(intentConf, match.Confidence) * 0.5,
			RawText:           text,
			NeedsConfirmation: true,
		}
	}

	return InterpretedCommand{Intent: IntentUnknown, Confidence: 0, RawText: text}
}

// WithAmount returns a copy with the amount replaced, for modify
// responses during confirmation.
func (c InterpretedCommand) WithAmount(a Amount) InterpretedCommand {
	c.Amount = &a
	c.SellAll = false
	return c
}

// Action converts a confirmed command to the executor's record.
// Buy dollars map to Amount, buy tokens to Quantity; sell-all uses
// the quantity sentinel.
func (c InterpretedCommand) Action() models.TradeAction {
	switch c.Intent {
	case IntentBuy:
		act := models.TradeAction{Action: models.ActionBuy, Symbol: c.TokenSymbol}
		if c.Amount != nil {
			if c.Amount.Unit == UnitDollars {
				act.Amount = c.Amount.Value
			} else {
				act.Quantity = c.Amount.Value
			}
		}
		return act
	case IntentSell:
		act := models.TradeAction{Action: models.ActionSell, Symbol: c.TokenSymbol}
		if c.SellAll {
			act.Quantity = models.SellAllQuantity
		} else if c.Amount != nil {
			if c.Amount.Unit == UnitDollars {
				act.Amount = c.Amount.Value
			} else {
				act.Quantity = c.Amount.Value
			}
		}
		return act
	case IntentCheck:
		return models.TradeAction{Action: models.ActionCheck}
	default:
		return models.TradeAction{Action: models.ActionReset}
	}
}

// ConfirmationText renders the deterministic prompt for a pending
// command. Regenerating it from the same command always yields the
// same text, so it can be re-announced after a modify.
func ConfirmationText(c InterpretedCommand) string {
	switch c.Intent {
	case IntentBuy:
		switch {
		case c.Amount != nil && c.Amount.Unit == UnitDollars:
			return fmt.Sprintf("Buy $%s worth of %s?", fmtAmount(c.Amount.Value), c.TokenSymbol)
		case c.Amount != nil:
			return fmt.Sprintf("Buy %s tokens of %s?", fmtAmount(c.Amount.Value), c.TokenSymbol)
		default:
			return fmt.Sprintf("Buy %s? (Please specify an amount)", c.TokenSymbol)
		}
	case IntentSell:
		switch {
		case c.SellAll:
			return fmt.Sprintf("Sell all your %s?", c.TokenSymbol)
		case c.Amount != nil && c.Amount.Unit == UnitDollars:
			return fmt.Sprintf("Sell $%s worth of %s?", fmtAmount(c.Amount.Value), c.TokenSymbol)
		case c.Amount != nil:
			return fmt.Sprintf("Sell %s %s?", fmtAmount(c.Amount.Value), c.TokenSymbol)
		default:
			return fmt.Sprintf("Sell %s? (Please specify an amount)", c.TokenSymbol)
		}
	}
	return "I didn't understand that command. Please try again."
}

func fmtAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
