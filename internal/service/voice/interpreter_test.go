package voice

import (
	"testing"

	"WhaleWhisperer/internal/domain/models"
)

func TestInterpretBuyDollars(t *testing.T) {
	cmd := Interpret("Buy 100 dollars of PEPE", testCatalog())
	if cmd.Intent != IntentBuy {
		t.Fatalf("intent %s", cmd.Intent)
	}
	if cmd.TokenSymbol != "PEPE" {
		t.Fatalf("symbol %s", cmd.TokenSymbol)
	}
	if cmd.Amount == nil || cmd.Amount.Value != 100 || cmd.Amount.Unit != UnitDollars {
		t.Fatalf("amount %+v", cmd.Amount)
	}
	if !cmd.NeedsConfirmation {
		t.Fatalf("buy must need confirmation")
	}
	if cmd.Confidence != 1.0 {
		t.Fatalf("confidence %v", cmd.Confidence)
	}
	if cmd.RawText != "Buy 100 dollars of PEPE" {
		t.Fatalf("raw text %q", cmd.RawText)
	}
}

func TestInterpretSellAll(t *testing.T) {
	cmd := Interpret("Sell all my BONK", testCatalog())
	if cmd.Intent != IntentSell || cmd.TokenSymbol != "BONK" {
		t.Fatalf("got %+v", cmd)
	}
	if !cmd.SellAll {
		t.Fatalf("expected sell-all")
	}
	if cmd.Amount != nil {
		t.Fatalf("sell-all skips amount extraction")
	}
	if !cmd.NeedsConfirmation {
		t.Fatalf("sell must need confirmation")
	}
}

func TestInterpretInformational(t *testing.T) {
	for _, text := range []string{"check my portfolio", "reset my wallet", "help"} {
		cmd := Interpret(text, testCatalog())
		if cmd.NeedsConfirmation {
			t.Fatalf("%q: informational intents execute unconfirmed", text)
		}
		if cmd.Intent == IntentUnknown {
			t.Fatalf("%q: got unknown", text)
		}
	}
}

func TestInterpretUnknownToken(t *testing.T) {
	cmd := Interpret("buy 100 zzqx", testCatalog())
	if cmd.Intent != IntentUnknown {
		t.Fatalf("intent %s", cmd.Intent)
	}
	if cmd.Confidence != 0 {
		t.Fatalf("confidence %v", cmd.Confidence)
	}
}

func TestInterpretMissingAmountHalvesConfidence(t *testing.T) {
	cmd := Interpret("buy some PEPE", testCatalog())
	if cmd.Intent != IntentBuy || cmd.Amount != nil {
		t.Fatalf("got %+v", cmd)
	}
	if cmd.Confidence != 0.5 {
		t.Fatalf("confidence %v, want 0.5", cmd.Confidence)
	}
	if !cmd.NeedsConfirmation {
		t.Fatalf("incomplete buy still needs confirmation")
	}
}

func TestConfidenceIsMinimum(t *testing.T) {
	// alias hit is 1.0, intent hit is 1.0; fuzzy-only token drops the overall score
	cmd := Interpret("sell everything dogecoin", testCatalog())
	if cmd.Confidence > 1.0 || cmd.Confidence <= 0 {
		t.Fatalf("confidence %v", cmd.Confidence)
	}
}

func TestConfirmationTextTemplates(t *testing.T) {
	cases := []struct {
		cmd  InterpretedCommand
		want string
	}{
		{
			InterpretedCommand{Intent: IntentBuy, TokenSymbol: "PEPE", Amount: &Amount{Unit: UnitDollars, Value: 100}},
			"Buy $100 worth of PEPE?",
		},
		{
			InterpretedCommand{Intent: IntentBuy, TokenSymbol: "BONK", Amount: &Amount{Unit: UnitTokens, Value: 50}},
			"Buy 50 tokens of BONK?",
		},
		{
			InterpretedCommand{Intent: IntentBuy, TokenSymbol: "DOGE"},
			"Buy DOGE? (Please specify an amount)",
		},
		{
			InterpretedCommand{Intent: IntentSell, TokenSymbol: "PEPE", SellAll: true},
			"Sell all your PEPE?",
		},
		{
			InterpretedCommand{Intent: IntentSell, TokenSymbol: "BONK", Amount: &Amount{Unit: UnitTokens, Value: 25}},
			"Sell 25 BONK?",
		},
	}
	for _, c := range cases {
		got := ConfirmationText(c.cmd)
		if got != c.want {
			t.Fatalf("got %q want %q", got, c.want)
		}
		// idempotence: same command, same text
		if again := ConfirmationText(c.cmd); again != got {
			t.Fatalf("not idempotent: %q vs %q", got, again)
		}
	}
}

func TestModifyRegeneratesConfirmationText(t *testing.T) {
	cmd := Interpret("Buy 100 dollars of PEPE", testCatalog())
	mod := cmd.WithAmount(Amount{Unit: UnitDollars, Value: 50})
	if got := ConfirmationText(mod); got != "Buy $50 worth of PEPE?" {
		t.Fatalf("got %q", got)
	}
	if mod.TokenSymbol != cmd.TokenSymbol {
		t.Fatalf("modify must keep the token")
	}
}

func TestActionConversion(t *testing.T) {
	buy := InterpretedCommand{Intent: IntentBuy, TokenSymbol: "PEPE", Amount: &Amount{Unit: UnitDollars, Value: 100}}
	act := buy.Action()
	if act.Action != models.ActionBuy || act.Amount != 100 || act.Quantity != 0 {
		t.Fatalf("got %+v", act)
	}

	buyQty := InterpretedCommand{Intent: IntentBuy, TokenSymbol: "PEPE", Amount: &Amount{Unit: UnitTokens, Value: 100}}
	act = buyQty.Action()
	if act.Amount != 0 || act.Quantity != 100 {
		t.Fatalf("got %+v", act)
	}

	sellAll := InterpretedCommand{Intent: IntentSell, TokenSymbol: "BONK", SellAll: true}
	act = sellAll.Action()
	if act.Quantity != models.SellAllQuantity {
		t.Fatalf("got %+v", act)
	}
}
