package peer

import (
	"encoding/json"
	"testing"

	"github.com/Shreyanshu20/HireSafe-sub000/internal/media"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/signaling"
)

func newTestTable(rec *sendRecorder) (*Table, *[]*fakeTransport) {
	transports := &[]*fakeTransport{}
	table := NewTable(
		media.NewTrackSet(media.SampleCapture{}),
		func() (Transport, error) {
			tr := &fakeTransport{}
			*transports = append(*transports, tr)
			return tr, nil
		},
		rec.fn(),
	)
	return table, transports
}

func TestTable_JoinerInitiatesToAllExisting(t *testing.T) {
	rec := &sendRecorder{}
	table, transports := newTestTable(rec)
	table.SetSelf("me")

	// Snapshot from the join ack: us plus two pre-existing members.
	table.HandleJoined(t.Context(), []signaling.Member{
		{ID: "me"}, {ID: "a"}, {ID: "b"},
	})

	if table.Len() != 2 {
		t.Fatalf("pairs = %d, want 2 (never one for self)", table.Len())
	}
	if offers := rec.byType(SignalOffer); len(offers) != 2 {
		t.Errorf("offers = %d, want one per existing member", len(offers))
	}
	// Every transport got the initial track set attached.
	for i, tr := range *transports {
		if len(tr.trackCounts) == 0 {
			t.Errorf("transport %d never received tracks", i)
		}
	}
}

func TestTable_ExistingSideWaitsForOffer(t *testing.T) {
	rec := &sendRecorder{}
	table, _ := newTestTable(rec)
	table.SetSelf("me")

	table.HandleUserJoined("newcomer")

	if table.Len() != 1 {
		t.Fatalf("pairs = %d, want 1", table.Len())
	}
	pair, _ := table.Pair("newcomer")
	if pair.State() != StateIdle {
		t.Errorf("state = %v, want idle (pre-existing side never initiates)", pair.State())
	}
	if got := rec.byType(SignalOffer); len(got) != 0 {
		t.Errorf("offers = %d, want 0", len(got))
	}

	// The newcomer's offer arrives and the pair answers.
	table.HandleSignal(t.Context(), "newcomer", EncodeSignal(SignalPayload{Type: SignalOffer, SDP: "o"}))
	if pair.State() != StateStable {
		t.Errorf("state = %v, want stable", pair.State())
	}
	if got := rec.byType(SignalAnswer); len(got) != 1 {
		t.Errorf("answers = %d, want 1", len(got))
	}
}

func TestTable_SignalBeforeMembershipDelta(t *testing.T) {
	// Cross-sender ordering is not guaranteed: an offer can beat the
	// user-joined event. The table must create the pair on demand.
	rec := &sendRecorder{}
	table, _ := newTestTable(rec)
	table.SetSelf("me")

	table.HandleSignal(t.Context(), "early", EncodeSignal(SignalPayload{Type: SignalOffer, SDP: "o"}))

	pair, ok := table.Pair("early")
	if !ok {
		t.Fatal("pair not created for early offer")
	}
	if pair.State() != StateStable {
		t.Errorf("state = %v, want stable", pair.State())
	}
}

func TestTable_PeerLeftTearsDownPair(t *testing.T) {
	rec := &sendRecorder{}
	table, transports := newTestTable(rec)
	table.SetSelf("me")
	table.HandleJoined(t.Context(), []signaling.Member{{ID: "me"}, {ID: "a"}})

	table.HandlePeerLeft("a")

	if table.Len() != 0 {
		t.Errorf("pairs = %d, want 0", table.Len())
	}
	if !(*transports)[0].closed {
		t.Error("transport not closed on peer departure")
	}
	// Unknown departures are ignored.
	table.HandlePeerLeft("ghost")
}

func TestTable_BadSignalIsolated(t *testing.T) {
	rec := &sendRecorder{}
	table, _ := newTestTable(rec)
	table.SetSelf("me")
	table.HandleJoined(t.Context(), []signaling.Member{{ID: "me"}, {ID: "a"}})

	table.HandleSignal(t.Context(), "a", json.RawMessage(`not json`))

	// The pair survives a malformed payload.
	pair, _ := table.Pair("a")
	if pair.State() != StateAwaitingAnswer {
		t.Errorf("state = %v, want awaiting-answer", pair.State())
	}
}

func TestTable_CloseAll(t *testing.T) {
	rec := &sendRecorder{}
	table, transports := newTestTable(rec)
	table.SetSelf("me")
	table.HandleJoined(t.Context(), []signaling.Member{{ID: "me"}, {ID: "a"}, {ID: "b"}})

	table.CloseAll()

	if table.Len() != 0 {
		t.Errorf("pairs = %d, want 0", table.Len())
	}
	for i, tr := range *transports {
		if !tr.closed {
			t.Errorf("transport %d not closed", i)
		}
	}
}
