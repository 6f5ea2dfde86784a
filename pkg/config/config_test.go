package config

import "testing"

func TestDefaultCatalogIncludesCustomVoiceCoins(t *testing.T) {
	bySymbol := make(map[string]bool)
	for _, tok := range DefaultCatalog() {
		bySymbol[tok.Symbol] = true
	}
	for _, want := range []string{"BLP", "ZGA", "FLP", "TKU", "RMB", "MIK"} {
		if !bySymbol[want] {
			t.Fatalf("catalog is missing custom coin %s", want)
		}
	}
}

func TestDefaultCatalogHasPositivePrices(t *testing.T) {
	for _, tok := range DefaultCatalog() {
		if tok.Price <= 0 {
			t.Fatalf("%s price %v", tok.Symbol, tok.Price)
		}
		if tok.Volatility <= 0 {
			t.Fatalf("%s volatility %v", tok.Symbol, tok.Volatility)
		}
	}
}
