package peer

import (
	"context"
	"encoding/json"
	"sync"

	pion "github.com/pion/webrtc/v4"

	"github.com/Shreyanshu20/HireSafe-sub000/internal/config"
)

// PionTransport implements Transport over a pion PeerConnection.
type PionTransport struct {
	pc *pion.PeerConnection

	mu      sync.Mutex
	senders []*pion.RTPSender
}

// NewPionTransport builds a peer connection from the client configuration's
// ICE servers and relay policy.
func NewPionTransport(cfg *config.Config) (*PionTransport, error) {
	iceServers := []pion.ICEServer{{URLs: cfg.GetSTUNServers()}}

	turnServers := cfg.GetTURNServers()
	if turnServers != nil {
		username, password := cfg.GetTURNCredentials()
		iceServers = append(iceServers, pion.ICEServer{
			URLs:       turnServers,
			Username:   username,
			Credential: password,
		})
	}

	policy := pion.ICETransportPolicyAll
	if turnServers != nil && cfg.ForceRelay {
		policy = pion.ICETransportPolicyRelay
	}

	pc, err := pion.NewPeerConnection(pion.Configuration{
		ICEServers:         iceServers,
		ICETransportPolicy: policy,
	})
	if err != nil {
		return nil, err
	}
	return &PionTransport{pc: pc}, nil
}

// NewTransportFactory returns a NewTransportFunc bound to cfg, for the table.
func NewTransportFactory(cfg *config.Config) NewTransportFunc {
	return func() (Transport, error) {
		return NewPionTransport(cfg)
	}
}

func (t *PionTransport) CreateOffer(ctx context.Context) (string, error) {
	offer, err := t.pc.CreateOffer(nil)
	if err != nil {
		return "", err
	}
	if err := t.pc.SetLocalDescription(offer); err != nil {
		return "", err
	}
	return t.pc.LocalDescription().SDP, nil
}

func (t *PionTransport) AcceptOffer(ctx context.Context, sdp string) (string, error) {
	desc := pion.SessionDescription{Type: pion.SDPTypeOffer, SDP: sdp}
	if err := t.pc.SetRemoteDescription(desc); err != nil {
		return "", err
	}
	answer, err := t.pc.CreateAnswer(nil)
	if err != nil {
		return "", err
	}
	if err := t.pc.SetLocalDescription(answer); err != nil {
		return "", err
	}
	return t.pc.LocalDescription().SDP, nil
}

func (t *PionTransport) AcceptAnswer(sdp string) error {
	desc := pion.SessionDescription{Type: pion.SDPTypeAnswer, SDP: sdp}
	return t.pc.SetRemoteDescription(desc)
}

func (t *PionTransport) AddCandidate(candidate json.RawMessage) error {
	var ice pion.ICECandidateInit
	if err := json.Unmarshal(candidate, &ice); err != nil {
		return err
	}
	return t.pc.AddICECandidate(ice)
}

func (t *PionTransport) OnCandidate(fn func(candidate json.RawMessage)) {
	t.pc.OnICECandidate(func(c *pion.ICECandidate) {
		if c == nil {
			return
		}
		b, err := json.Marshal(c.ToJSON())
		if err != nil {
			return
		}
		fn(b)
	})
}

// SetTracks removes the current senders and attaches the given snapshot.
func (t *PionTransport) SetTracks(tracks []pion.TrackLocal) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, sender := range t.senders {
		if err := t.pc.RemoveTrack(sender); err != nil {
			return err
		}
	}
	t.senders = t.senders[:0]

	for _, track := range tracks {
		sender, err := t.pc.AddTrack(track)
		if err != nil {
			return err
		}
		t.senders = append(t.senders, sender)
	}
	return nil
}

func (t *PionTransport) OpenChannel(label string) (Channel, error) {
	ordered := true
	dc, err := t.pc.CreateDataChannel(label, &pion.DataChannelInit{Ordered: &ordered})
	if err != nil {
		return nil, err
	}
	return &pionChannel{dc: dc}, nil
}

func (t *PionTransport) OnChannel(fn func(label string, ch Channel)) {
	t.pc.OnDataChannel(func(dc *pion.DataChannel) {
		fn(dc.Label(), &pionChannel{dc: dc})
	})
}

func (t *PionTransport) Close() error {
	return t.pc.Close()
}

type pionChannel struct {
	dc *pion.DataChannel
}

func (c *pionChannel) Send(b []byte) error {
	return c.dc.Send(b)
}

func (c *pionChannel) OnMessage(fn func(b []byte)) {
	c.dc.OnMessage(func(msg pion.DataChannelMessage) {
		fn(msg.Data)
	})
}

func (c *pionChannel) Close() error {
	return c.dc.Close()
}
