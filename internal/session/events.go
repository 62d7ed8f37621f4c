package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shreyanshu20/HireSafe-sub000/internal/editor"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/signaling"
)

// EventKind discriminates UI events.
type EventKind int

const (
	EventJoined EventKind = iota
	EventPeerJoined
	EventPeerLeft
	EventChat
	EventToggle
	EventAnomaly
	EventCodeChanged
	EventLanguageChanged
	EventDisconnected
	EventError
)

// Toggle names used in EventToggle.
const (
	ToggleCamera = "camera"
	ToggleMic    = "mic"
	ToggleScreen = "screen"
)

// Event is one UI-visible session occurrence. Only the fields relevant to
// its Kind are set.
type Event struct {
	Kind EventKind

	PeerID   string
	PeerName string

	Text    string // chat line or error text
	Toggle  string // camera/mic/screen
	Enabled bool

	AnomalyType string
	Confidence  float64

	Language string
	Content  string
}

func (s *Session) run() {
	defer close(s.events)
	for msg := range s.sig.Incoming() {
		s.handle(msg)
	}
	s.mu.Lock()
	left := s.left
	s.mu.Unlock()
	if !left {
		// The relay went away under us. Tear the mesh down the same way an
		// explicit leave would.
		s.table.CloseAll()
		s.resolveJoin(fmt.Errorf("connection to server lost"))
		s.emit(Event{Kind: EventDisconnected})
	}
}

func (s *Session) handle(msg *signaling.Message) {
	// Negotiation can take a moment (SDP generation, ICE); a background
	// context is fine here because Leave closes the transports out from
	// under any in-flight exchange.
	ctx := context.Background()

	switch msg.Kind {
	case signaling.KindJoined:
		s.mu.Lock()
		s.selfID = msg.From
		s.selfName = msg.Name
		s.room = msg.Room
		s.started = time.Now()
		for _, m := range msg.Members {
			if m.ID == msg.From {
				continue
			}
			s.members[m.ID] = &MemberState{ID: m.ID, Name: m.Name, Role: m.Role, Camera: true, Mic: true}
		}
		members := msg.Members
		s.mu.Unlock()

		s.table.SetSelf(msg.From)
		s.table.HandleJoined(ctx, members)
		s.resolveJoin(nil)
		s.emit(Event{Kind: EventJoined})

	case signaling.KindRoomFull:
		s.resolveJoin(ErrRoomFull)

	case signaling.KindError:
		reason := "join rejected"
		var p signaling.ErrorPayload
		if err := decodeInto(msg.Payload, &p); err == nil && p.Error != "" {
			reason = p.Error
		}
		if !s.resolveJoin(fmt.Errorf("%s", reason)) {
			s.emit(Event{Kind: EventError, Text: reason})
		}

	case signaling.KindUserJoined:
		role := ""
		for _, m := range msg.Members {
			if m.ID == msg.From {
				role = m.Role
			}
		}
		s.mu.Lock()
		s.members[msg.From] = &MemberState{ID: msg.From, Name: msg.Name, Role: role, Camera: true, Mic: true}
		s.mu.Unlock()
		s.table.HandleUserJoined(msg.From)
		s.emit(Event{Kind: EventPeerJoined, PeerID: msg.From, PeerName: msg.Name})

	case signaling.KindUserLeft:
		s.mu.Lock()
		name := ""
		if m, ok := s.members[msg.From]; ok {
			name = m.Name
		}
		delete(s.members, msg.From)
		delete(s.syncs, msg.From)
		s.mu.Unlock()
		s.table.HandlePeerLeft(msg.From)
		s.emit(Event{Kind: EventPeerLeft, PeerID: msg.From, PeerName: name})

	case signaling.KindSignal:
		s.table.HandleSignal(ctx, msg.From, msg.Payload)

	case signaling.KindChat:
		var p signaling.ChatPayload
		if err := decodeInto(msg.Payload, &p); err != nil {
			slog.Debug("bad chat payload", "err", err)
			return
		}
		s.emit(Event{Kind: EventChat, PeerID: msg.From, PeerName: p.SenderName, Text: p.Text})

	case signaling.KindToggleCamera:
		s.setFlag(msg.From, ToggleCamera, msg.Enabled)
	case signaling.KindToggleMic:
		s.setFlag(msg.From, ToggleMic, msg.Enabled)
	case signaling.KindScreenStart:
		on := true
		s.setFlag(msg.From, ToggleScreen, &on)
	case signaling.KindScreenStop:
		off := false
		s.setFlag(msg.From, ToggleScreen, &off)

	case signaling.KindCodeChange:
		ch, err := editor.DecodeChange(msg.Payload)
		if err != nil {
			slog.Debug("bad code change payload", "err", err)
			return
		}
		if s.doc.Apply(ch) {
			s.emit(Event{Kind: EventCodeChanged, PeerID: msg.From, Content: ch.Content})
		}

	case signaling.KindLangChange:
		lc, err := editor.DecodeLanguage(msg.Payload)
		if err != nil {
			slog.Debug("bad language payload", "err", err)
			return
		}
		s.doc.SetLanguage(lc.Language)
		s.emit(Event{Kind: EventLanguageChanged, PeerID: msg.From, Language: lc.Language})

	case signaling.KindMalpractice:
		var p signaling.MalpracticePayload
		if err := decodeInto(msg.Payload, &p); err != nil {
			slog.Debug("bad malpractice payload", "err", err)
			return
		}
		s.mu.Lock()
		s.anomalies++
		s.mu.Unlock()
		s.emit(Event{Kind: EventAnomaly, PeerID: msg.From, AnomalyType: p.Type, Confidence: p.Confidence, Text: p.Message})

	default:
		slog.Debug("unhandled message kind", "kind", msg.Kind)
	}
}

func decodeInto(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("empty payload")
	}
	return json.Unmarshal(raw, v)
}

func (s *Session) setFlag(peerID, which string, enabled *bool) {
	if enabled == nil {
		return
	}
	s.mu.Lock()
	if m, ok := s.members[peerID]; ok {
		switch which {
		case ToggleCamera:
			m.Camera = *enabled
		case ToggleMic:
			m.Mic = *enabled
		case ToggleScreen:
			m.Screen = *enabled
		}
	}
	s.mu.Unlock()
	s.emit(Event{Kind: EventToggle, PeerID: peerID, Toggle: which, Enabled: *enabled})
}

// resolveJoin delivers the join outcome once; later calls report false.
func (s *Session) resolveJoin(err error) bool {
	select {
	case s.joinResult <- err:
		return true
	default:
		return false
	}
}

func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		// The UI fell behind. Dropping a display hint is preferable to
		// stalling signaling.
		slog.Debug("event dropped", "kind", ev.Kind)
	}
}
