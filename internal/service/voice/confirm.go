package voice

import "regexp"

// ResponseKind classifies a follow-up utterance during confirmation.
type ResponseKind string

const (
	ResponseConfirm ResponseKind = "confirm"
	ResponseCancel  ResponseKind = "cancel"
	ResponseModify  ResponseKind = "modify"
)

// ConfirmationResponse is the outcome of parsing one confirmation
// utterance. Modify carries the replacement amount.
type ConfirmationResponse struct {
	Kind   ResponseKind
	Amount Amount
}

var (
	affirmative = regexp.MustCompile(`(?i)\b(yes|yeah|yep|yup|sure|okay|ok|confirm|correct|right|do it|go ahead|proceed)\b`)
	negative    = regexp.MustCompile(`(?i)\b(no|nope|nah|cancel|stop|abort|nevermind|never mind|don'?t)\b`)
	modifyCue   = regexp.MustCompile(`(?i)\b(change|modify|make it|instead|actually)\b`)
)

// ParseConfirmation classifies a follow-up utterance relative to a
// pending command. Anything unrecognized is a cancel: the bias is
// always against executing an ambiguous confirmation.
func ParseConfirmation(text string) ConfirmationResponse {
	if affirmative.MatchString(text) {
		return ConfirmationResponse{Kind: ResponseConfirm}
	}
	if negative.MatchString(text) {
		return ConfirmationResponse{Kind: ResponseCancel}
	}

	if modifyCue.MatchString(text) {
		if amount, ok := ExtractAmount(text); ok {
			return ConfirmationResponse{Kind: ResponseModify, Amount: amount}
		}
	}

	// A bare number with no cue word is still an implicit modify.
	if amount, ok := ExtractAmount(text); ok {
		return ConfirmationResponse{Kind: ResponseModify, Amount: amount}
	}

	return ConfirmationResponse{Kind: ResponseCancel}
}
