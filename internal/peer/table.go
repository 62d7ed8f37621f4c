package peer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/Shreyanshu20/HireSafe-sub000/internal/media"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/signaling"
)

// Table is the client-local peer connection table: one Pair per other member
// of the room. It owns the decision of who offers (the tie-break rule) and
// fans membership/relay events out to the right pair.
type Table struct {
	mu    sync.Mutex
	self  string
	pairs map[string]*Pair

	tracks       *media.TrackSet
	newTransport NewTransportFunc
	send         SendFunc

	outboundPair   func(*Pair)
	inboundChannel func(peerID, label string, ch Channel)
}

// NewTable creates an empty table.
func NewTable(tracks *media.TrackSet, newTransport NewTransportFunc, send SendFunc) *Table {
	return &Table{
		pairs:        make(map[string]*Pair),
		tracks:       tracks,
		newTransport: newTransport,
		send:         send,
	}
}

// SetSelf records our server-assigned connection id from the join ack.
func (t *Table) SetSelf(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.self = id
}

// OnOutboundPair registers a callback run on every pair this client
// initiates, between transport setup and the first offer. Data channels
// opened here ride the initial negotiation instead of forcing a second one.
func (t *Table) OnOutboundPair(fn func(*Pair)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outboundPair = fn
}

// OnInboundChannel registers the callback for data channels opened by the
// remote side of any pair.
func (t *Table) OnInboundChannel(fn func(peerID, label string, ch Channel)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inboundChannel = fn
}

// HandleJoined runs the joiner side of the tie-break: we just entered a
// populated room, so we pair with every pre-existing member and initiate all
// the offers. Each pair's failure is contained; one bad peer costs one tile.
func (t *Table) HandleJoined(ctx context.Context, members []signaling.Member) {
	for _, m := range members {
		t.mu.Lock()
		self := t.self
		t.mu.Unlock()
		if m.ID == self {
			continue
		}
		pair, err := t.ensurePair(m.ID)
		if err != nil {
			slog.Error("pair setup failed", "peer", m.ID, "err", err)
			continue
		}
		t.mu.Lock()
		hook := t.outboundPair
		t.mu.Unlock()
		if hook != nil {
			hook(pair)
		}
		if err := pair.StartOffer(ctx); err != nil {
			slog.Warn("initial offer failed", "peer", m.ID, "err", err)
		}
	}
}

// HandleUserJoined runs the pre-existing side: a newcomer appeared, so we
// create the pair passively and wait for their offer. Initiating here would
// produce the simultaneous-offer collision the tie-break exists to avoid.
func (t *Table) HandleUserJoined(id string) {
	if _, err := t.ensurePair(id); err != nil {
		slog.Error("pair setup failed", "peer", id, "err", err)
	}
}

// HandleSignal routes a relayed payload to the pair for its sender, creating
// the pair if the offer beat the membership delta here.
func (t *Table) HandleSignal(ctx context.Context, from string, raw json.RawMessage) {
	payload, err := DecodeSignal(raw)
	if err != nil {
		slog.Warn("bad signal payload", "peer", from, "err", err)
		return
	}
	pair, err := t.ensurePair(from)
	if err != nil {
		slog.Error("pair setup failed", "peer", from, "err", err)
		return
	}
	if err := pair.HandleSignal(ctx, payload); err != nil {
		slog.Warn("signal handling failed", "peer", from, "err", err)
	}
}

// HandlePeerLeft tears down the pair for a departed peer and removes it.
func (t *Table) HandlePeerLeft(id string) {
	t.mu.Lock()
	pair, ok := t.pairs[id]
	delete(t.pairs, id)
	t.mu.Unlock()
	if ok {
		pair.Close()
	}
}

// Renegotiate pushes the current outbound track set to every established
// pair. Called after a toggle or screen-share change mutated the track set.
func (t *Table) Renegotiate(ctx context.Context) {
	tracks := t.tracks.Outbound()
	for _, pair := range t.snapshot() {
		if err := pair.SwapTracks(ctx, tracks); err != nil {
			slog.Warn("renegotiation failed", "peer", pair.RemoteID, "err", err)
		}
	}
}

// Pair returns the pair for a remote id, if present.
func (t *Table) Pair(id string) (*Pair, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	pair, ok := t.pairs[id]
	return pair, ok
}

// Len reports the number of live pairs.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pairs)
}

// CloseAll synchronously tears down every pair and stops the local tracks.
// Run before disconnecting from the relay so no capture handle stays open
// from the OS's point of view.
func (t *Table) CloseAll() {
	t.mu.Lock()
	pairs := t.pairs
	t.pairs = make(map[string]*Pair)
	t.mu.Unlock()

	for _, pair := range pairs {
		pair.Close()
	}
	t.tracks.StopAll()
}

func (t *Table) ensurePair(id string) (*Pair, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if pair, ok := t.pairs[id]; ok {
		return pair, nil
	}
	tr, err := t.newTransport()
	if err != nil {
		return nil, pairErr("new transport", id, err)
	}
	if err := tr.SetTracks(t.tracks.Outbound()); err != nil {
		tr.Close()
		return nil, pairErr("attach tracks", id, err)
	}
	if fn := t.inboundChannel; fn != nil {
		tr.OnChannel(func(label string, ch Channel) {
			fn(id, label, ch)
		})
	}
	pair := NewPair(id, tr, t.send)
	t.pairs[id] = pair
	return pair, nil
}

func (t *Table) snapshot() []*Pair {
	t.mu.Lock()
	defer t.mu.Unlock()
	pairs := make([]*Pair, 0, len(t.pairs))
	for _, p := range t.pairs {
		pairs = append(pairs, p)
	}
	return pairs
}
