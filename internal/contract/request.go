package contract

import "time"

// PreferencesRequest updates any subset of the shared preferences.
type PreferencesRequest struct {
	Minutes           *int  `json:"minutes,omitempty"`
	DeepBreathEnabled *bool `json:"deep_breath_enabled,omitempty"`
}

func (r PreferencesRequest) Empty() bool {
	return r.Minutes == nil && r.DeepBreathEnabled == nil
}

type CommandRequest struct {
	Action string `json:"action"`
}

type CommandResponse struct {
	ID       string    `json:"id"`
	Action   string    `json:"action"`
	IssuedAt time.Time `json:"issued_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
