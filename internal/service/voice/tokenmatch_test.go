package voice

import (
	"testing"

	"WhaleWhisperer/internal/domain/models"
)

func testCatalog() []models.Token {
	return []models.Token{
		{ID: "1", Name: "Pepe", Symbol: "PEPE", DisplayName: "Pepe", Price: 0.000012},
		{ID: "2", Name: "Dogecoin", Symbol: "DOGE", DisplayName: "Doge", Price: 0.082},
		{ID: "3", Name: "Bonk", Symbol: "BONK", DisplayName: "Bonk", Price: 0.000021},
		{ID: "4", Name: "Blop", Symbol: "BLP", DisplayName: "Blop", Price: 0.0031},
		{ID: "5", Name: "Baby Doge", Symbol: "BABYDOGE", DisplayName: "Baby Doge", Price: 0.0000000018},
	}
}

func TestFindTokenExact(t *testing.T) {
	m, ok := FindToken("buy 100 PEPE", testCatalog())
	if !ok {
		t.Fatalf("expected match")
	}
	if m.Token.Symbol != "PEPE" || m.Confidence != 1.0 {
		t.Fatalf("got %s conf %v", m.Token.Symbol, m.Confidence)
	}
}

func TestFindTokenCaseInsensitive(t *testing.T) {
	for _, text := range []string{"sell my pepe", "sell my PEPE", "sell my Pepe"} {
		m, ok := FindToken(text, testCatalog())
		if !ok || m.Token.Symbol != "PEPE" {
			t.Fatalf("%q: got %+v ok=%v", text, m, ok)
		}
	}
}

func TestFindTokenAliases(t *testing.T) {
	for _, text := range []string{"buy 100 blop", "buy 100 BLOP", "buy 100 blob"} {
		m, ok := FindToken(text, testCatalog())
		if !ok {
			t.Fatalf("%q: expected match", text)
		}
		if m.Token.Symbol != "BLP" {
			t.Fatalf("%q: got %s", text, m.Token.Symbol)
		}
		if m.Confidence < 0.65 {
			t.Fatalf("%q: confidence %v", text, m.Confidence)
		}
	}
}

func TestFindTokenSpelledOut(t *testing.T) {
	m, ok := FindToken("buy 50 of p e p e", testCatalog())
	if !ok || m.Token.Symbol != "PEPE" {
		t.Fatalf("got %+v ok=%v", m, ok)
	}
	if m.Confidence < 0.95 {
		t.Fatalf("confidence %v", m.Confidence)
	}
}

func TestFindTokenCompactForm(t *testing.T) {
	// "baby doge" with the space collapsed still hits BABYDOGE
	m, ok := FindToken("buy ten baby doge", testCatalog())
	if !ok || m.Token.Symbol != "BABYDOGE" {
		t.Fatalf("got %+v ok=%v", m, ok)
	}
}

func TestFindTokenFuzzy(t *testing.T) {
	m, ok := FindToken("sell my dogecoins", testCatalog())
	if !ok || m.Token.Symbol != "DOGE" {
		t.Fatalf("got %+v ok=%v", m, ok)
	}
}

func TestFindTokenNoMatch(t *testing.T) {
	if m, ok := FindToken("buy 100 zzqx", testCatalog()); ok {
		t.Fatalf("expected no match, got %s at %v", m.Token.Symbol, m.Confidence)
	}
}

func TestSimilarityRange(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"pepe", "pepe", 1.0},
		{"baby doge", "babydoge", 1.0},
		{"a", "b", 0.0},
	}
	for _, c := range cases {
		if got := Similarity(c.a, c.b); got != c.want {
			t.Fatalf("Similarity(%q,%q) = %v want %v", c.a, c.b, got, c.want)
		}
	}
	if s := Similarity("blop", "blob"); s <= 0.3 || s >= 1.0 {
		t.Fatalf("blop/blob similarity out of range: %v", s)
	}
}

func TestFindTokenCustomVoiceCoins(t *testing.T) {
	catalog := []models.Token{
		{ID: "12", Name: "Blop", Symbol: "BLP", DisplayName: "Blop", Price: 0.10},
		{ID: "13", Name: "Zuga", Symbol: "ZGA", DisplayName: "Zuga", Price: 1.50},
		{ID: "14", Name: "Floop", Symbol: "FLP", DisplayName: "Floop", Price: 0.005},
		{ID: "15", Name: "Toku", Symbol: "TKU", DisplayName: "Toku", Price: 0.70},
		{ID: "16", Name: "Rambo", Symbol: "RMB", DisplayName: "Rambo", Price: 2.30},
		{ID: "17", Name: "Mika", Symbol: "MIK", DisplayName: "Mika", Price: 0.25},
	}
	cases := []struct {
		text string
		want string
	}{
		{"buy 10 zuga", "ZGA"},
		{"grab some zooga", "ZGA"},
		{"sell my floop", "FLP"},
		{"buy 50 toku", "TKU"},
		{"get 5 rambo", "RMB"},
		{"purchase meeka", "MIK"},
		{"buy micah", "MIK"},
	}
	for _, tc := range cases {
		m, ok := FindToken(tc.text, catalog)
		if !ok {
			t.Fatalf("%q: no match", tc.text)
		}
		if m.Token.Symbol != tc.want {
			t.Fatalf("%q: got %s, want %s", tc.text, m.Token.Symbol, tc.want)
		}
	}
}
