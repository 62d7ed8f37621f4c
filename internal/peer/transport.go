package peer

import (
	"context"
	"encoding/json"

	"github.com/pion/webrtc/v4"
)

// Transport is the narrow surface the negotiation state machine needs from a
// media connection. The production implementation wraps a pion
// PeerConnection; tests substitute a fake so state transitions can be
// exercised without ICE or a network.
type Transport interface {
	// CreateOffer builds an offer and applies it as the local description.
	CreateOffer(ctx context.Context) (sdp string, err error)

	// AcceptOffer applies a remote offer, builds an answer, applies it
	// locally and returns it.
	AcceptOffer(ctx context.Context, sdp string) (answer string, err error)

	// AcceptAnswer applies a remote answer description.
	AcceptAnswer(sdp string) error

	// AddCandidate applies a remote ICE candidate. Only valid once a
	// remote description is set; the pair's queue guarantees that.
	AddCandidate(candidate json.RawMessage) error

	// OnCandidate registers the callback for locally gathered candidates.
	OnCandidate(fn func(candidate json.RawMessage))

	// SetTracks replaces the outbound senders with the given snapshot.
	// The caller follows up with a fresh offer/answer cycle to propagate
	// the new track set.
	SetTracks(tracks []webrtc.TrackLocal) error

	// OpenChannel opens an ordered data channel with the given label.
	OpenChannel(label string) (Channel, error)

	// OnChannel registers the callback for remotely opened channels.
	OnChannel(fn func(label string, ch Channel))

	Close() error
}

// Channel is a bidirectional message pipe carried by the transport.
type Channel interface {
	Send(b []byte) error
	OnMessage(fn func(b []byte))
	Close() error
}

// NewTransportFunc constructs a fresh transport for one pair.
type NewTransportFunc func() (Transport, error)

// SendFunc delivers an opaque payload to a remote peer over the relay.
type SendFunc func(remoteID string, payload json.RawMessage)
