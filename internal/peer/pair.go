package peer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/pion/webrtc/v4"
)

// State is the negotiation state of one pair. Transitions are driven by
// StartOffer and HandleSignal; Closed is terminal.
type State int

const (
	// StateIdle: no description applied yet.
	StateIdle State = iota
	// StateOffering: a local offer or answer is being created and applied.
	StateOffering
	// StateAwaitingAnswer: the offer went out; waiting on the answer.
	StateAwaitingAnswer
	// StateStable: both descriptions applied.
	StateStable
	// StateClosed: torn down after peer departure or room exit.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOffering:
		return "offering"
	case StateAwaitingAnswer:
		return "awaiting-answer"
	case StateStable:
		return "stable"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Pair is the local endpoint of one peer-to-peer connection: the transport,
// the negotiation state and the ICE candidate queue for candidates that race
// ahead of the remote description.
//
// The joining side calls StartOffer; the pre-existing side only ever reacts
// to an incoming offer. That asymmetry is the whole glare story: both sides
// derive their role from the same membership event, so exactly one offer
// exists per pair.
//
// Creating or applying descriptions suspends for an unbounded (typically
// sub-second) time; the pair drops its lock across those calls so candidates
// and even a teardown can land mid-flight.
type Pair struct {
	RemoteID string

	mu        sync.Mutex
	state     State
	tr        Transport
	remoteSet bool
	pending   []json.RawMessage
	lastErr   error
	send      SendFunc
}

// NewPair wires a pair around an existing transport. Local candidates go out
// through send as they are gathered, so they can overtake the SDP answer on
// the relay; the remote side's queue absorbs that.
func NewPair(remoteID string, tr Transport, send SendFunc) *Pair {
	p := &Pair{RemoteID: remoteID, state: StateIdle, tr: tr, send: send}
	tr.OnCandidate(func(candidate json.RawMessage) {
		send(remoteID, EncodeSignal(SignalPayload{Type: SignalCandidate, Candidate: candidate}))
	})
	return p
}

// State returns the current negotiation state.
func (p *Pair) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Err returns the error that kept the pair from reaching stable, if any.
func (p *Pair) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// StartOffer runs the offering side: create and apply a local offer, send it,
// and await the answer. Valid from idle (initial pairing, joiner side) and
// from stable (track-swap renegotiation on the existing connection).
func (p *Pair) StartOffer(ctx context.Context) error {
	p.mu.Lock()
	switch p.state {
	case StateIdle, StateStable:
	case StateClosed:
		p.mu.Unlock()
		return pairErr("offer", p.RemoteID, ErrPairClosed)
	default:
		// Already negotiating; a second offer would manufacture glare.
		p.mu.Unlock()
		slog.Debug("offer suppressed", "peer", p.RemoteID, "state", p.state.String())
		return nil
	}
	p.state = StateOffering
	tr := p.tr
	p.mu.Unlock()

	sdp, err := tr.CreateOffer(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateClosed {
		// Torn down while the offer was in flight.
		return pairErr("offer", p.RemoteID, ErrPairClosed)
	}
	if err != nil {
		p.fail("create offer", err)
		return p.lastErr
	}

	p.send(p.RemoteID, EncodeSignal(SignalPayload{Type: SignalOffer, SDP: sdp}))
	p.state = StateAwaitingAnswer
	return nil
}

// HandleSignal feeds one relayed payload into the state machine.
func (p *Pair) HandleSignal(ctx context.Context, payload SignalPayload) error {
	switch payload.Type {
	case SignalOffer:
		return p.handleOffer(ctx, payload.SDP)
	case SignalAnswer:
		return p.handleAnswer(payload.SDP)
	case SignalCandidate:
		return p.handleCandidate(payload.Candidate)
	default:
		return pairErr("signal", p.RemoteID, ErrUnexpectedSignal)
	}
}

// handleOffer runs the answering side. Valid from idle (initial pairing) and
// from stable (the remote swapped tracks and is renegotiating).
func (p *Pair) handleOffer(ctx context.Context, sdp string) error {
	p.mu.Lock()
	switch p.state {
	case StateIdle, StateStable:
	case StateClosed:
		p.mu.Unlock()
		return nil
	default:
		p.mu.Unlock()
		slog.Warn("offer in unexpected state, dropped", "peer", p.RemoteID, "state", p.state.String())
		return nil
	}
	p.state = StateOffering
	tr := p.tr
	p.mu.Unlock()

	answer, err := tr.AcceptOffer(ctx, sdp)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateClosed {
		return nil
	}
	if err != nil {
		p.fail("accept offer", err)
		return p.lastErr
	}

	p.afterRemoteSet()
	p.send(p.RemoteID, EncodeSignal(SignalPayload{Type: SignalAnswer, SDP: answer}))
	p.state = StateStable
	return nil
}

func (p *Pair) handleAnswer(sdp string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateClosed {
		return nil
	}
	if p.state != StateAwaitingAnswer {
		slog.Warn("answer in unexpected state, dropped", "peer", p.RemoteID, "state", p.state.String())
		return nil
	}
	if err := p.tr.AcceptAnswer(sdp); err != nil {
		p.fail("accept answer", err)
		return p.lastErr
	}
	p.afterRemoteSet()
	p.state = StateStable
	return nil
}

// handleCandidate applies a remote candidate, or queues it if the remote
// description has not landed yet. Candidates routinely race ahead of the
// answer over independent relay messages; the queue flushes the instant the
// description is set.
func (p *Pair) handleCandidate(candidate json.RawMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateClosed {
		return nil
	}
	if !p.remoteSet {
		p.pending = append(p.pending, candidate)
		return nil
	}
	if err := p.tr.AddCandidate(candidate); err != nil {
		return pairErr("add candidate", p.RemoteID, err)
	}
	return nil
}

// afterRemoteSet flushes the queued candidates. Called with the lock held.
// Individual candidate failures are logged, not fatal: ICE succeeds on any
// one working pair.
func (p *Pair) afterRemoteSet() {
	p.remoteSet = true
	for _, candidate := range p.pending {
		if err := p.tr.AddCandidate(candidate); err != nil {
			slog.Warn("queued candidate rejected", "peer", p.RemoteID, "err", err)
		}
	}
	p.pending = nil
}

// SwapTracks replaces the outbound track set and renegotiates on the existing
// connection, re-entering offering from stable. Pairs still negotiating keep
// their initial track set; their offer already carries whatever the track set
// held when it was built.
//
// Known limitation: join-time ordering breaks glare only for the initial
// pairing. If both ends of a stable pair renegotiate at the same instant,
// each drops the other's offer in awaiting-answer and the pair stays there;
// the connection and its current tracks keep flowing, but later swaps on
// that pair are lost.
func (p *Pair) SwapTracks(ctx context.Context, tracks []webrtc.TrackLocal) error {
	p.mu.Lock()
	if p.state != StateStable {
		p.mu.Unlock()
		return nil
	}
	if err := p.tr.SetTracks(tracks); err != nil {
		p.mu.Unlock()
		return pairErr("swap tracks", p.RemoteID, err)
	}
	p.mu.Unlock()

	return p.StartOffer(ctx)
}

// OpenChannel opens a data channel on the pair's transport.
func (p *Pair) OpenChannel(label string) (Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateClosed {
		return nil, pairErr("open channel", p.RemoteID, ErrPairClosed)
	}
	return p.tr.OpenChannel(label)
}

// Close tears down the transport and discards queued candidates. Terminal;
// safe to call at any point, including mid-negotiation.
func (p *Pair) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateClosed {
		return
	}
	p.state = StateClosed
	p.pending = nil
	if err := p.tr.Close(); err != nil {
		slog.Debug("transport close", "peer", p.RemoteID, "err", err)
	}
}

// fail records a negotiation error with the lock held. The pair simply never
// reaches stable; the user-visible effect is a missing media tile, not a dead
// room.
func (p *Pair) fail(op string, err error) {
	p.lastErr = pairErr(op, p.RemoteID, err)
	p.state = StateIdle
	slog.Warn("negotiation failed", "peer", p.RemoteID, "op", op, "err", err)
}
