// Package session runs one client's room membership end to end: it drives
// the signaling connection, feeds membership and relay events into the peer
// table, tracks per-member display state, and surfaces everything the UI
// needs as a single event stream.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Shreyanshu20/HireSafe-sub000/internal/editor"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/media"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/peer"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/proctor"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/signaling"
)

// ErrRoomFull is returned from Join when an interview room is at capacity.
// The client must not retry automatically.
var ErrRoomFull = errors.New("room is full")

// Signaler abstracts the signaling connection so tests can run sessions
// against an in-process hub.
type Signaler interface {
	Send(msg *signaling.Message)
	Incoming() <-chan *signaling.Message
	Close()
}

// MemberState is the display state of one other room member.
type MemberState struct {
	ID     string
	Name   string
	Role   string
	Camera bool
	Mic    bool
	Screen bool
}

// Session is one client's participation in a room.
type Session struct {
	sig    Signaler
	table  *peer.Table
	tracks *media.TrackSet
	doc    *editor.Document
	kind   signaling.RoomKind

	mu        sync.Mutex
	selfID    string
	selfName  string
	room      string
	members   map[string]*MemberState
	syncs     map[string]*editor.Sync
	anomalies int
	started   time.Time
	left      bool

	joinResult chan error
	events     chan Event
}

// New builds a session over an established signaling connection. The
// transport factory is called once per remote peer.
func New(sig Signaler, tracks *media.TrackSet, newTransport peer.NewTransportFunc, kind signaling.RoomKind) *Session {
	s := &Session{
		sig:        sig,
		tracks:     tracks,
		doc:        editor.NewDocument(),
		kind:       kind,
		members:    make(map[string]*MemberState),
		syncs:      make(map[string]*editor.Sync),
		joinResult: make(chan error, 1),
		events:     make(chan Event, 64),
	}
	s.table = peer.NewTable(tracks, newTransport, s.sendSignal)

	if kind == signaling.RoomInterview {
		// The initiating side opens the editor channel before its first
		// offer so the channel rides the initial negotiation; the other
		// side picks it up on arrival and seeds it with a snapshot.
		s.table.OnOutboundPair(func(p *peer.Pair) {
			ch, err := p.OpenChannel(editor.ChannelLabel)
			if err != nil {
				slog.Warn("editor channel open failed", "peer", p.RemoteID, "err", err)
				return
			}
			s.addSync(p.RemoteID, ch, false)
		})
		s.table.OnInboundChannel(func(peerID, label string, ch peer.Channel) {
			if label == editor.ChannelLabel {
				s.addSync(peerID, ch, true)
			}
		})
	}

	go s.run()
	return s
}

// Join enters the room and blocks until the server acks, rejects, or ctx
// expires. On success the pairing with every pre-existing member has been
// initiated.
func (s *Session) Join(ctx context.Context, code, name string) error {
	kind := signaling.KindJoinMeeting
	if s.kind == signaling.RoomInterview {
		kind = signaling.KindJoinInterview
	}
	s.sig.Send(&signaling.Message{Kind: kind, Room: code, Name: name})

	select {
	case err := <-s.joinResult:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events returns the UI event stream. It closes when the session ends.
func (s *Session) Events() <-chan Event {
	return s.events
}

// SelfID returns the server-assigned connection id, empty before Join acks.
func (s *Session) SelfID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selfID
}

// SelfName returns the display name in effect (possibly server-assigned).
func (s *Session) SelfName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selfName
}

// Room returns the normalized room code.
func (s *Session) Room() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

// Members returns a snapshot of the other members' display state.
func (s *Session) Members() []MemberState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MemberState, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, *m)
	}
	return out
}

// Document returns the shared editor document.
func (s *Session) Document() *editor.Document {
	return s.doc
}

// Tracks returns the outbound track set.
func (s *Session) Tracks() *media.TrackSet {
	return s.tracks
}

// Stats reports session duration and anomaly count, for the history log.
func (s *Session) Stats() (time.Duration, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started.IsZero() {
		return 0, s.anomalies
	}
	return time.Since(s.started), s.anomalies
}

// SendChat broadcasts a chat line to the room.
func (s *Session) SendChat(text string) {
	s.mu.Lock()
	name := s.selfName
	s.mu.Unlock()
	s.sig.Send(&signaling.Message{
		Kind:    signaling.KindChat,
		Payload: signaling.EncodePayload(signaling.ChatPayload{Text: text, SenderName: name}),
	})
}

// ToggleCamera flips the camera and renegotiates the new track set.
func (s *Session) ToggleCamera(ctx context.Context, on bool) error {
	if _, err := s.tracks.SetCamera(on); err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	s.sig.Send(&signaling.Message{Kind: signaling.KindToggleCamera, Enabled: &on})
	s.table.Renegotiate(ctx)
	return nil
}

// ToggleMic flips the microphone and renegotiates the new track set.
func (s *Session) ToggleMic(ctx context.Context, on bool) error {
	if _, err := s.tracks.SetMic(on); err != nil {
		return fmt.Errorf("microphone: %w", err)
	}
	s.sig.Send(&signaling.Message{Kind: signaling.KindToggleMic, Enabled: &on})
	s.table.Renegotiate(ctx)
	return nil
}

// StartScreenShare acquires display capture and renegotiates.
func (s *Session) StartScreenShare(ctx context.Context) error {
	if err := s.tracks.StartScreen(); err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	s.sig.Send(&signaling.Message{Kind: signaling.KindScreenStart})
	s.table.Renegotiate(ctx)
	return nil
}

// StopScreenShare drops the display track and renegotiates.
func (s *Session) StopScreenShare(ctx context.Context) {
	s.tracks.StopScreen()
	s.sig.Send(&signaling.Message{Kind: signaling.KindScreenStop})
	s.table.Renegotiate(ctx)
}

// Edit applies a local editor change and broadcasts it, preferring the peer
// channel where one exists.
func (s *Session) Edit(content string) {
	ch := s.doc.Edit(content)
	s.sig.Send(&signaling.Message{
		Kind:    signaling.KindCodeChange,
		Payload: signaling.EncodePayload(ch),
	})
	for _, sync := range s.syncSnapshot() {
		if err := sync.PushEdit(ch); err != nil {
			slog.Debug("editor channel push failed", "err", err)
		}
	}
}

// SetLanguage switches the editor language and broadcasts it.
func (s *Session) SetLanguage(lang string) {
	s.doc.SetLanguage(lang)
	s.sig.Send(&signaling.Message{
		Kind:    signaling.KindLangChange,
		Payload: signaling.EncodePayload(editor.LanguageChange{Language: lang}),
	})
	for _, sync := range s.syncSnapshot() {
		if err := sync.PushLanguage(lang); err != nil {
			slog.Debug("editor channel push failed", "err", err)
		}
	}
}

// Report broadcasts a proctoring anomaly to the room.
func (s *Session) Report(a proctor.Anomaly) {
	s.sig.Send(&signaling.Message{
		Kind: signaling.KindMalpractice,
		Payload: signaling.EncodePayload(signaling.MalpracticePayload{
			Type:       a.Type,
			Confidence: a.Confidence,
			Message:    a.Message,
		}),
	})
}

// Leave ends the call: every pair is torn down and local capture stopped
// synchronously before the relay connection goes away, so no camera handle
// outlives the room.
func (s *Session) Leave() {
	s.mu.Lock()
	if s.left {
		s.mu.Unlock()
		return
	}
	s.left = true
	s.mu.Unlock()

	s.table.CloseAll()
	s.sig.Send(&signaling.Message{Kind: signaling.KindLeave})
	s.sig.Close()
}

func (s *Session) sendSignal(remoteID string, payload json.RawMessage) {
	s.sig.Send(&signaling.Message{Kind: signaling.KindSignal, To: remoteID, Payload: payload})
}

func (s *Session) addSync(peerID string, ch peer.Channel, seed bool) {
	sync := editor.NewSync(s.doc, ch)
	s.mu.Lock()
	s.syncs[peerID] = sync
	s.mu.Unlock()
	if seed {
		if err := sync.PushSnapshot(); err != nil {
			slog.Debug("editor snapshot push failed", "peer", peerID, "err", err)
		}
	}
}

func (s *Session) syncSnapshot() []*editor.Sync {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*editor.Sync, 0, len(s.syncs))
	for _, sync := range s.syncs {
		out = append(out, sync)
	}
	return out
}
