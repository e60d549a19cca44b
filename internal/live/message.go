package live

import (
	"github.com/roach88/ebb/internal/trace"
)

// Message types exchanged with clients.
const (
	TypeSample = "sample"
	TypeReload = "reload"
	TypeError  = "error"
	TypeReset  = "reset"
)

// ClientMessage is a command sent by a websocket client.
type ClientMessage struct {
	Type string `json:"type"`
}

// encodeSample returns the canonical JSON for one sample.
func encodeSample(scenario string, s trace.Sample) ([]byte, error) {
	return trace.MarshalCanonical(map[string]any{
		"type":     TypeSample,
		"scenario": scenario,
		"tick":     s.Tick,
		"values":   s.Values,
	})
}

func encodeReload(scenario string) ([]byte, error) {
	return trace.MarshalCanonical(map[string]any{
		"type":     TypeReload,
		"scenario": scenario,
	})
}

func encodeError(msg string) ([]byte, error) {
	return trace.MarshalCanonical(map[string]any{
		"type":    TypeError,
		"message": msg,
	})
}
