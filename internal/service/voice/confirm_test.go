package voice

import "testing"

func TestParseConfirmationAffirmative(t *testing.T) {
	for _, text := range []string{"yes", "yeah do it", "yep", "sure", "okay", "confirm", "go ahead"} {
		if r := ParseConfirmation(text); r.Kind != ResponseConfirm {
			t.Fatalf("%q: got %s", text, r.Kind)
		}
	}
}

func TestParseConfirmationNegative(t *testing.T) {
	for _, text := range []string{"no", "cancel", "nope", "never mind", "don't", "stop that"} {
		if r := ParseConfirmation(text); r.Kind != ResponseCancel {
			t.Fatalf("%q: got %s", text, r.Kind)
		}
	}
}

func TestParseConfirmationModify(t *testing.T) {
	r := ParseConfirmation("make it 200")
	if r.Kind != ResponseModify {
		t.Fatalf("got %s", r.Kind)
	}
	if r.Amount.Value != 200 || r.Amount.Unit != UnitTokens {
		t.Fatalf("amount %+v", r.Amount)
	}

	r = ParseConfirmation("actually make it 50 dollars")
	if r.Kind != ResponseModify || r.Amount.Unit != UnitDollars || r.Amount.Value != 50 {
		t.Fatalf("got %+v", r)
	}
}

func TestParseConfirmationImplicitModify(t *testing.T) {
	// bare number with no cue word
	r := ParseConfirmation("150")
	if r.Kind != ResponseModify || r.Amount.Value != 150 {
		t.Fatalf("got %+v", r)
	}
}

func TestParseConfirmationDefaultsToCancel(t *testing.T) {
	for _, text := range []string{"", "the weather is nice", "hmm maybe"} {
		if r := ParseConfirmation(text); r.Kind != ResponseCancel {
			t.Fatalf("%q: got %s", text, r.Kind)
		}
	}
}

func TestParseConfirmationCueWithoutNumber(t *testing.T) {
	// a modify cue with no extractable amount cannot modify; falls
	// through to the conservative default
	if r := ParseConfirmation("change it please"); r.Kind != ResponseCancel {
		t.Fatalf("got %s", r.Kind)
	}
}
