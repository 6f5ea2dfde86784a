package voice

import "testing"

func TestParseLiteralNumbers(t *testing.T) {
	cases := []struct {
		text string
		want float64
	}{
		{"$1,500.50", 1500.50},
		{"Buy 100 BONK", 100},
		{"buy $50 of PEPE", 50},
		{"grab 0.5 DOGE", 0.5},
		// literal numerals beat co-occurring spoken words
		{"buy 100 not two hundred", 100},
	}
	for _, c := range cases {
		got, ok := ParseSpokenNumber(c.text)
		if !ok {
			t.Fatalf("%q: expected a number", c.text)
		}
		if got != c.want {
			t.Fatalf("%q: got %v want %v", c.text, got, c.want)
		}
	}
}

func TestParseSpokenNumbers(t *testing.T) {
	cases := []struct {
		text string
		want float64
	}{
		{"twelve thousand", 12000},
		{"five hundred", 500},
		{"twenty three", 23},
		{"buy fifty PEPE", 50},
		{"two hundred fifty", 250},
		{"one million", 1000000},
	}
	for _, c := range cases {
		got, ok := ParseSpokenNumber(c.text)
		if !ok {
			t.Fatalf("%q: expected a number", c.text)
		}
		if got != c.want {
			t.Fatalf("%q: got %v want %v", c.text, got, c.want)
		}
	}
}

func TestParseSpokenNumberNotFound(t *testing.T) {
	for _, text := range []string{"", "sell all my tokens", "zero"} {
		if v, ok := ParseSpokenNumber(text); ok {
			t.Fatalf("%q: expected not found, got %v", text, v)
		}
	}
}

func TestExtractAmountUnits(t *testing.T) {
	a, ok := ExtractAmount("buy 50 dollars of PEPE")
	if !ok {
		t.Fatalf("expected amount")
	}
	if a.Unit != UnitDollars || a.Value != 50 {
		t.Fatalf("got %+v", a)
	}

	a, ok = ExtractAmount("buy 50 PEPE")
	if !ok {
		t.Fatalf("expected amount")
	}
	if a.Unit != UnitTokens || a.Value != 50 {
		t.Fatalf("got %+v", a)
	}

	// unit scan is over the raw text, not the numeral substring
	a, _ = ExtractAmount("get me five hundred worth of BONK")
	if a.Unit != UnitDollars || a.Value != 500 {
		t.Fatalf("got %+v", a)
	}
}
