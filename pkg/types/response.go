// Package types holds the JSON envelopes shared by every API response.
package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError carries the request id so admins can quote it when reporting a failure.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
