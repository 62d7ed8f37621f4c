package peer

import (
	"encoding/json"
	"fmt"
)

// Signal payload types inside the opaque relay envelope. The server never
// sees these; both negotiation sides agree on them.
const (
	SignalOffer     = "offer"
	SignalAnswer    = "answer"
	SignalCandidate = "candidate"
)

// SignalPayload is one negotiation message between a pair: an SDP description
// or an ICE candidate.
type SignalPayload struct {
	Type      string          `json:"type"`
	SDP       string          `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// EncodeSignal marshals a payload for the relay.
func EncodeSignal(p SignalPayload) json.RawMessage {
	b, _ := json.Marshal(p)
	return b
}

// DecodeSignal parses a relayed payload.
func DecodeSignal(raw json.RawMessage) (SignalPayload, error) {
	var p SignalPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return SignalPayload{}, fmt.Errorf("decode signal: %w", err)
	}
	return p, nil
}
