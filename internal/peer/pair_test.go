package peer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
)

// fakeTransport records transport calls so state transitions can be asserted
// without ICE or a network.
type fakeTransport struct {
	mu          sync.Mutex
	offers      int
	answers     int
	remoteSDP   []string
	candidates  []string
	trackCounts []int
	closed      bool

	failOffer  error
	failAccept error
	failAnswer error

	// blockOffer, when non-nil, makes CreateOffer wait until it closes.
	blockOffer chan struct{}

	onCandidate func(json.RawMessage)
	onChannel   func(string, Channel)
}

func (f *fakeTransport) CreateOffer(ctx context.Context) (string, error) {
	if f.blockOffer != nil {
		<-f.blockOffer
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOffer != nil {
		return "", f.failOffer
	}
	f.offers++
	return fmt.Sprintf("offer-%d", f.offers), nil
}

func (f *fakeTransport) AcceptOffer(ctx context.Context, sdp string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAccept != nil {
		return "", f.failAccept
	}
	f.remoteSDP = append(f.remoteSDP, sdp)
	f.answers++
	return fmt.Sprintf("answer-%d", f.answers), nil
}

func (f *fakeTransport) AcceptAnswer(sdp string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAnswer != nil {
		return f.failAnswer
	}
	f.remoteSDP = append(f.remoteSDP, sdp)
	return nil
}

func (f *fakeTransport) AddCandidate(candidate json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.candidates = append(f.candidates, string(candidate))
	return nil
}

func (f *fakeTransport) OnCandidate(fn func(json.RawMessage)) { f.onCandidate = fn }

func (f *fakeTransport) SetTracks(tracks []webrtc.TrackLocal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trackCounts = append(f.trackCounts, len(tracks))
	return nil
}

func (f *fakeTransport) OpenChannel(label string) (Channel, error) { return nil, nil }

func (f *fakeTransport) OnChannel(fn func(string, Channel)) { f.onChannel = fn }

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) appliedCandidates() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.candidates...)
}

// sendRecorder captures relay sends.
type sendRecorder struct {
	mu   sync.Mutex
	sent []SignalPayload
	to   []string
}

func (r *sendRecorder) fn() SendFunc {
	return func(remoteID string, payload json.RawMessage) {
		p, _ := DecodeSignal(payload)
		r.mu.Lock()
		defer r.mu.Unlock()
		r.to = append(r.to, remoteID)
		r.sent = append(r.sent, p)
	}
}

func (r *sendRecorder) byType(kind string) []SignalPayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []SignalPayload
	for _, p := range r.sent {
		if p.Type == kind {
			out = append(out, p)
		}
	}
	return out
}

func TestPair_OffererReachesStable(t *testing.T) {
	tr := &fakeTransport{}
	rec := &sendRecorder{}
	p := NewPair("remote", tr, rec.fn())

	if err := p.StartOffer(t.Context()); err != nil {
		t.Fatalf("StartOffer() error = %v", err)
	}
	if got := p.State(); got != StateAwaitingAnswer {
		t.Fatalf("state = %v, want awaiting-answer", got)
	}
	if offers := rec.byType(SignalOffer); len(offers) != 1 {
		t.Fatalf("offers sent = %d, want 1", len(offers))
	}

	if err := p.HandleSignal(t.Context(), SignalPayload{Type: SignalAnswer, SDP: "answer-1"}); err != nil {
		t.Fatalf("answer error = %v", err)
	}
	if got := p.State(); got != StateStable {
		t.Errorf("state = %v, want stable", got)
	}
}

func TestPair_AnswererReachesStable(t *testing.T) {
	tr := &fakeTransport{}
	rec := &sendRecorder{}
	p := NewPair("remote", tr, rec.fn())

	if err := p.HandleSignal(t.Context(), SignalPayload{Type: SignalOffer, SDP: "offer-1"}); err != nil {
		t.Fatalf("offer error = %v", err)
	}
	if got := p.State(); got != StateStable {
		t.Errorf("state = %v, want stable", got)
	}
	if answers := rec.byType(SignalAnswer); len(answers) != 1 {
		t.Errorf("answers sent = %d, want 1", len(answers))
	}
	// The answering side never initiates.
	if offers := rec.byType(SignalOffer); len(offers) != 0 {
		t.Errorf("answerer sent %d offers, want 0", len(offers))
	}
}

func TestPair_GlareSingleOffer(t *testing.T) {
	// Model both sides of one pairing: Y joins a room where X already is.
	// Exactly one offer must exist for the pair, regardless of who is
	// asked to act first.
	joinerTr, existingTr := &fakeTransport{}, &fakeTransport{}
	joinerRec, existingRec := &sendRecorder{}, &sendRecorder{}

	joiner := NewPair("x", joinerTr, joinerRec.fn())
	existing := NewPair("y", existingTr, existingRec.fn())

	// The joiner initiates; the pre-existing side merely creates the pair
	// and waits, which is what the table does on a user-joined delta.
	if err := joiner.StartOffer(t.Context()); err != nil {
		t.Fatalf("joiner StartOffer() error = %v", err)
	}

	offers := joinerRec.byType(SignalOffer)
	if len(offers) != 1 {
		t.Fatalf("joiner offers = %d, want exactly 1", len(offers))
	}
	if got := existingRec.byType(SignalOffer); len(got) != 0 {
		t.Fatalf("existing side offers = %d, want 0", len(got))
	}

	// Deliver the single offer, then its answer.
	if err := existing.HandleSignal(t.Context(), offers[0]); err != nil {
		t.Fatalf("existing HandleSignal() error = %v", err)
	}
	answers := existingRec.byType(SignalAnswer)
	if len(answers) != 1 {
		t.Fatalf("answers = %d, want 1", len(answers))
	}
	if err := joiner.HandleSignal(t.Context(), answers[0]); err != nil {
		t.Fatalf("joiner HandleSignal() error = %v", err)
	}

	if joiner.State() != StateStable || existing.State() != StateStable {
		t.Errorf("states = %v/%v, want stable/stable", joiner.State(), existing.State())
	}
}

func TestPair_CandidateQueue(t *testing.T) {
	t.Run("candidates before remote description are queued", func(t *testing.T) {
		tr := &fakeTransport{}
		rec := &sendRecorder{}
		p := NewPair("remote", tr, rec.fn())

		if err := p.StartOffer(t.Context()); err != nil {
			t.Fatalf("StartOffer() error = %v", err)
		}

		// Candidates race ahead of the answer.
		for i := range 3 {
			cand := json.RawMessage(fmt.Sprintf(`{"candidate":"c%d"}`, i))
			if err := p.HandleSignal(t.Context(), SignalPayload{Type: SignalCandidate, Candidate: cand}); err != nil {
				t.Fatalf("candidate error = %v", err)
			}
		}
		if got := tr.appliedCandidates(); len(got) != 0 {
			t.Fatalf("candidates applied before remote description: %v", got)
		}

		if err := p.HandleSignal(t.Context(), SignalPayload{Type: SignalAnswer, SDP: "a"}); err != nil {
			t.Fatalf("answer error = %v", err)
		}

		got := tr.appliedCandidates()
		if len(got) != 3 {
			t.Fatalf("flushed candidates = %d, want 3", len(got))
		}
		// Queue preserves arrival order.
		for i, c := range got {
			want := fmt.Sprintf(`{"candidate":"c%d"}`, i)
			if c != want {
				t.Errorf("candidate[%d] = %s, want %s", i, c, want)
			}
		}
		if p.State() != StateStable {
			t.Errorf("state = %v, want stable", p.State())
		}
	})

	t.Run("late candidates apply immediately", func(t *testing.T) {
		tr := &fakeTransport{}
		p := NewPair("remote", tr, (&sendRecorder{}).fn())

		p.StartOffer(t.Context())
		p.HandleSignal(t.Context(), SignalPayload{Type: SignalAnswer, SDP: "a"})
		p.HandleSignal(t.Context(), SignalPayload{Type: SignalCandidate, Candidate: json.RawMessage(`{"candidate":"late"}`)})

		if got := tr.appliedCandidates(); len(got) != 1 {
			t.Errorf("applied = %d, want 1", len(got))
		}
		if p.State() != StateStable {
			t.Errorf("state = %v, want stable (same as queued path)", p.State())
		}
	})
}

func TestPair_TeardownMidNegotiation(t *testing.T) {
	release := make(chan struct{})
	tr := &fakeTransport{blockOffer: release}
	rec := &sendRecorder{}
	p := NewPair("remote", tr, rec.fn())

	done := make(chan error, 1)
	go func() { done <- p.StartOffer(context.Background()) }()

	// Wait for the offer to be in flight, then tear down.
	for p.State() != StateOffering {
		time.Sleep(time.Millisecond)
	}
	p.Close()
	close(release)

	select {
	case err := <-done:
		if !errors.Is(err, ErrPairClosed) {
			t.Errorf("StartOffer() error = %v, want ErrPairClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("StartOffer did not return")
	}

	if offers := rec.byType(SignalOffer); len(offers) != 0 {
		t.Errorf("offer escaped after teardown: %d", len(offers))
	}
	if !tr.closed {
		t.Error("transport not closed")
	}
	// Terminal: later signals are dropped without error.
	if err := p.HandleSignal(t.Context(), SignalPayload{Type: SignalOffer, SDP: "x"}); err != nil {
		t.Errorf("post-close signal error = %v, want nil", err)
	}
	if p.State() != StateClosed {
		t.Errorf("state = %v, want closed", p.State())
	}
}

func TestPair_TrackSwapRenegotiation(t *testing.T) {
	tr := &fakeTransport{}
	rec := &sendRecorder{}
	p := NewPair("remote", tr, rec.fn())

	p.StartOffer(t.Context())
	p.HandleSignal(t.Context(), SignalPayload{Type: SignalAnswer, SDP: "a1"})
	if p.State() != StateStable {
		t.Fatalf("precondition: state = %v", p.State())
	}

	if err := p.SwapTracks(t.Context(), nil); err != nil {
		t.Fatalf("SwapTracks() error = %v", err)
	}
	// Swap re-enters offering from stable: a second offer on the same
	// connection, not a new pairing.
	if offers := rec.byType(SignalOffer); len(offers) != 2 {
		t.Fatalf("offers = %d, want 2", len(offers))
	}
	if p.State() != StateAwaitingAnswer {
		t.Fatalf("state = %v, want awaiting-answer", p.State())
	}
	p.HandleSignal(t.Context(), SignalPayload{Type: SignalAnswer, SDP: "a2"})
	if p.State() != StateStable {
		t.Errorf("state = %v, want stable", p.State())
	}

	// Swap before stable is a no-op.
	q := NewPair("other", &fakeTransport{}, (&sendRecorder{}).fn())
	if err := q.SwapTracks(t.Context(), nil); err != nil {
		t.Errorf("idle SwapTracks() error = %v", err)
	}
	if q.State() != StateIdle {
		t.Errorf("idle pair state = %v after swap, want idle", q.State())
	}
}

func TestPair_SimultaneousRenegotiation(t *testing.T) {
	// Bring both ends of one pair to stable.
	xTr, yTr := &fakeTransport{}, &fakeTransport{}
	xRec, yRec := &sendRecorder{}, &sendRecorder{}
	x := NewPair("y", xTr, xRec.fn())
	y := NewPair("x", yTr, yRec.fn())

	x.StartOffer(t.Context())
	y.HandleSignal(t.Context(), xRec.byType(SignalOffer)[0])
	x.HandleSignal(t.Context(), yRec.byType(SignalAnswer)[0])
	if x.State() != StateStable || y.State() != StateStable {
		t.Fatalf("precondition: states = %v/%v", x.State(), y.State())
	}

	// Both ends swap tracks before either offer is delivered. Each side
	// drops the crossing offer and stays in awaiting-answer; the stable
	// connection itself is untouched. This is the documented limit of the
	// join-time tie-break.
	if err := x.SwapTracks(t.Context(), nil); err != nil {
		t.Fatalf("x SwapTracks() error = %v", err)
	}
	if err := y.SwapTracks(t.Context(), nil); err != nil {
		t.Fatalf("y SwapTracks() error = %v", err)
	}

	if err := y.HandleSignal(t.Context(), xRec.byType(SignalOffer)[1]); err != nil {
		t.Fatalf("y HandleSignal() error = %v", err)
	}
	if err := x.HandleSignal(t.Context(), yRec.byType(SignalOffer)[0]); err != nil {
		t.Fatalf("x HandleSignal() error = %v", err)
	}

	if got := x.State(); got != StateAwaitingAnswer {
		t.Errorf("x state = %v, want awaiting-answer", got)
	}
	if got := y.State(); got != StateAwaitingAnswer {
		t.Errorf("y state = %v, want awaiting-answer", got)
	}
	// Neither side answered the crossing offer, and neither closed.
	if got := xRec.byType(SignalAnswer); len(got) != 0 {
		t.Errorf("x answers = %d, want 0", len(got))
	}
	if got := yRec.byType(SignalAnswer); len(got) != 1 {
		t.Errorf("y answers = %d, want 1 (initial pairing only)", len(got))
	}
	if xTr.closed || yTr.closed {
		t.Error("transport closed by crossed renegotiation")
	}
}

func TestPair_NegotiationFailureContained(t *testing.T) {
	tr := &fakeTransport{failAccept: errors.New("malformed sdp")}
	p := NewPair("remote", tr, (&sendRecorder{}).fn())

	err := p.HandleSignal(t.Context(), SignalPayload{Type: SignalOffer, SDP: "garbage"})
	if err == nil {
		t.Fatal("expected error for bad offer")
	}
	if p.State() == StateStable {
		t.Error("pair reached stable despite failure")
	}
	if p.Err() == nil {
		t.Error("Err() not recorded")
	}
}
