package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Client executes a query document against an index and returns the decoded engine response.
type Client interface {
	Search(ctx context.Context, index string, body any) (*Response, error)
}

// Pinger reports whether the engine is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Error is a non-2xx answer from the engine.
type Error struct {
	Status int
	Type   string
	Reason string
}

func (e *Error) Error() string {
	switch {
	case e.Type != "" && e.Reason != "":
		return fmt.Sprintf("search: [%d] %s: %s", e.Status, e.Type, e.Reason)
	case e.Reason != "":
		return fmt.Sprintf("search: [%d] %s", e.Status, e.Reason)
	default:
		return fmt.Sprintf("search: unexpected status %d", e.Status)
	}
}

// decodeError builds an Error from an engine error body. The body is either
// {"error": {"type": ..., "reason": ...}, "status": N} or {"error": "text"}.
func decodeError(status int, body []byte) *Error {
	out := &Error{Status: status}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		out.Reason = strings.TrimSpace(string(body))
		return out
	}

	var detailed struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(envelope.Error, &detailed); err == nil {
		out.Type = detailed.Type
		out.Reason = detailed.Reason
		return out
	}

	var text string
	if err := json.Unmarshal(envelope.Error, &text); err == nil {
		out.Reason = text
	}
	return out
}
