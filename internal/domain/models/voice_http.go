package models

// Requests for the voice and trading HTTP endpoints. Defined in domain for consistency and reuse.

type UtteranceRequest struct {
	User  string `json:"user" validate:"required"`
	Text  string `json:"text" validate:"required_without=Audio"`
	Audio string `json:"audio,omitempty"` // base64 audio; transcribed when Text is empty
}

type ConfirmRequest struct {
	User  string `json:"user" validate:"required"`
	Text  string `json:"text" validate:"required_without=Audio"`
	Audio string `json:"audio,omitempty"`
}

type ResetRequest struct {
	User string `param:"user" json:"user" validate:"required"`
}

type HistoryRequest struct {
	User  string `param:"user" json:"user" validate:"required"`
	Limit int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}

type LeaderboardRequest struct {
	N int `query:"n" json:"n" default:"10" validate:"gte=1,lte=100"`
}

// UtteranceResponse is what the browser speaks/displays after an utterance.
type UtteranceResponse struct {
	Intent           string  `json:"intent"`
	TokenSymbol      string  `json:"tokenSymbol,omitempty"`
	Confidence       float64 `json:"confidence"`
	AwaitingConfirm  bool    `json:"awaitingConfirm"`
	Response         string  `json:"response"`
	ConfirmationText string  `json:"confirmationText,omitempty"`
	Transcript       string  `json:"transcript"`
}
