package model

// ExecuteRequest is a message: an object with exactly one key naming the
// action, whose value holds the action parameters.
type ExecuteRequest map[string]map[string]any

type ExecuteResponse struct {
	MessageIndex uint64 `json:"message_index"`
	Action       string `json:"action"`
	Result       any    `json:"result,omitempty"`
}

type GetActionsRequest struct{}

type GetActionsResponse struct {
	Actions []string `json:"actions"`
}
