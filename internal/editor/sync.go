package editor

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Shreyanshu20/HireSafe-sub000/internal/peer"
)

// ChannelLabel names the data channel interview pairs open for editor sync.
const ChannelLabel = "code-editor"

// Frame types on the editor channel.
const (
	FrameEdit     = "edit"
	FrameLanguage = "language"
	FrameSnapshot = "snapshot"
)

// Frame is one msgpack-encoded editor message on the data channel.
type Frame struct {
	Type     string `msgpack:"type"`
	Language string `msgpack:"language,omitempty"`
	Content  string `msgpack:"content,omitempty"`
	Version  uint64 `msgpack:"version,omitempty"`
}

// EncodeFrame marshals a frame for the channel.
func EncodeFrame(f Frame) ([]byte, error) {
	return msgpack.Marshal(f)
}

// DecodeFrame parses a channel message.
func DecodeFrame(b []byte) (Frame, error) {
	var f Frame
	err := msgpack.Unmarshal(b, &f)
	return f, err
}

// Sync mirrors a document over a peer data channel. The relay broadcast
// remains the authoritative path; the channel just shaves the server
// round-trip off keystrokes between an interview pair. Channel loss is
// silent: edits keep flowing via the relay.
type Sync struct {
	doc *Document
	ch  peer.Channel
}

// NewSync attaches a document to a channel and starts applying inbound
// frames.
func NewSync(doc *Document, ch peer.Channel) *Sync {
	s := &Sync{doc: doc, ch: ch}
	ch.OnMessage(func(b []byte) {
		frame, err := DecodeFrame(b)
		if err != nil {
			return
		}
		s.apply(frame)
	})
	return s
}

func (s *Sync) apply(f Frame) {
	switch f.Type {
	case FrameEdit, FrameSnapshot:
		s.doc.Apply(Change{Content: f.Content, Version: f.Version})
		if f.Type == FrameSnapshot && f.Language != "" {
			s.doc.SetLanguage(f.Language)
		}
	case FrameLanguage:
		s.doc.SetLanguage(f.Language)
	}
}

// PushEdit sends a local change over the channel.
func (s *Sync) PushEdit(ch Change) error {
	b, err := EncodeFrame(Frame{Type: FrameEdit, Content: ch.Content, Version: ch.Version})
	if err != nil {
		return err
	}
	return s.ch.Send(b)
}

// PushLanguage sends a language switch over the channel.
func (s *Sync) PushLanguage(lang string) error {
	b, err := EncodeFrame(Frame{Type: FrameLanguage, Language: lang})
	if err != nil {
		return err
	}
	return s.ch.Send(b)
}

// PushSnapshot sends the full document, for a peer that just connected.
func (s *Sync) PushSnapshot() error {
	language, content, version := s.doc.Snapshot()
	b, err := EncodeFrame(Frame{Type: FrameSnapshot, Language: language, Content: content, Version: version})
	if err != nil {
		return err
	}
	return s.ch.Send(b)
}
