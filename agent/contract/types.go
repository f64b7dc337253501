package contract

import "encoding/json"

// ToolRequest is one tool invocation asked for by the model. Args is the
// decoded argument object after the caller's user id has been injected.
type ToolRequest struct {
	CallID string         `json:"call_id"`
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args,omitempty"`
}

// ToolResult is the payload placed into a tool turn. Domain failures such
// as an unknown plate are Success=false results, not errors.
type ToolResult struct {
	Tool    string `json:"tool"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Failure(tool, message string, err error) ToolResult {
	res := ToolResult{
		Tool:    tool,
		Success: false,
		Message: message,
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

// Encode serializes the result for a tool turn.
func (r ToolResult) Encode() string {
	raw, err := json.Marshal(r)
	if err != nil {
		fallback, _ := json.Marshal(Failure(r.Tool, "tool result could not be encoded", err))
		return string(fallback)
	}
	return string(raw)
}
