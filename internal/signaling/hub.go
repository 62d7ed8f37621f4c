package signaling

import (
	"log/slog"

	petname "github.com/dustinkirkland/golang-petname"
)

// Hub is the central brain of the signaling server. It owns the Registry and
// the connection table and processes every event inside a single goroutine,
// so registry mutations are serialized and each membership snapshot is
// consistent with the mutation that produced it.
type Hub struct {
	registry *Registry

	// clients maps connection id to client for O(1) relay addressing.
	clients map[string]*Client

	// Register and Unregister carry connection lifecycle events.
	Register   chan *Client
	Unregister chan *Client

	inbound chan *Message
}

// NewHub creates a hub with an empty registry.
func NewHub() *Hub {
	return &Hub{
		registry:   NewRegistry(),
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		inbound:    make(chan *Message),
	}
}

// Dispatch hands an inbound message to the hub's event loop on behalf of c.
// ReadPump calls this for every frame; tests drive the hub through it
// directly.
func (h *Hub) Dispatch(c *Client, msg *Message) {
	msg.sender = c
	h.inbound <- msg
}

// Run starts the hub's event loop. It never returns; run it in its own
// goroutine. A malformed message affects only its own connection: every
// handler either replies to the sender or drops the message.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client.ID] = client
			slog.Info("client registered", "conn", client.ID)

		case client := <-h.Unregister:
			// Abrupt disconnects and explicit leaves share the same
			// cleanup; the transport noticing the close is the only
			// implicit leave trigger. A half-open connection that
			// never surfaces a close leaks its membership until the
			// read deadline fires - accepted limitation.
			if _, ok := h.clients[client.ID]; !ok {
				continue
			}
			delete(h.clients, client.ID)
			h.leaveRoom(client)
			close(client.Send)
			slog.Info("client unregistered", "conn", client.ID)

		case msg := <-h.inbound:
			h.handle(msg)
		}
	}
}

func (h *Hub) handle(msg *Message) {
	c := msg.sender

	switch msg.Kind {
	case KindJoinMeeting:
		h.join(c, msg, RoomMeeting)

	case KindJoinInterview:
		h.join(c, msg, RoomInterview)

	case KindSignal:
		h.relay(c, msg)

	case KindChat, KindCodeChange, KindLangChange, KindMalpractice:
		h.broadcast(c, &Message{Kind: msg.Kind, From: c.ID, Payload: msg.Payload})

	case KindToggleCamera:
		if msg.Enabled != nil {
			c.Camera = *msg.Enabled
		}
		h.broadcast(c, &Message{Kind: msg.Kind, From: c.ID, Enabled: msg.Enabled})

	case KindToggleMic:
		if msg.Enabled != nil {
			c.Mic = *msg.Enabled
		}
		h.broadcast(c, &Message{Kind: msg.Kind, From: c.ID, Enabled: msg.Enabled})

	case KindScreenStart:
		c.Screen = true
		h.broadcast(c, &Message{Kind: msg.Kind, From: c.ID})

	case KindScreenStop:
		c.Screen = false
		h.broadcast(c, &Message{Kind: msg.Kind, From: c.ID})

	case KindLeave:
		// Explicit end-call. The connection stays open; a fresh join
		// may follow.
		h.leaveRoom(c)

	default:
		slog.Warn("unknown message kind", "conn", c.ID, "kind", msg.Kind)
	}
}

// join admits c into the room named by msg.Room and broadcasts the membership
// delta symmetrically: the joiner gets KindJoined with the full snapshot, the
// existing members get KindUserJoined with the same snapshot, so both sides
// derive the same pairing set without further coordination.
func (h *Hub) join(c *Client, msg *Message, kind RoomKind) {
	if msg.Room == "" {
		c.enqueue(&Message{Kind: KindError, Payload: EncodePayload(ErrorPayload{Error: "room code required"})})
		return
	}

	c.Name = msg.Name
	if c.Name == "" {
		c.Name = petname.Generate(2, "-")
	}

	members, vacated, remaining, err := h.registry.Join(c, msg.Room, kind)

	// The join may have implicitly vacated a previous room.
	if vacated != "" {
		h.notifyLeft(vacated, c.ID, remaining)
	}

	switch err {
	case nil:
	case ErrRoomFull:
		slog.Info("join rejected, room full", "room", NormalizeCode(msg.Room), "conn", c.ID)
		c.enqueue(&Message{Kind: KindRoomFull, Room: NormalizeCode(msg.Room)})
		return
	default:
		c.enqueue(&Message{Kind: KindError, Payload: EncodePayload(ErrorPayload{Error: err.Error()})})
		return
	}

	slog.Info("client joined room", "room", c.Room, "conn", c.ID, "name", c.Name, "members", len(members))

	c.enqueue(&Message{Kind: KindJoined, Room: c.Room, From: c.ID, Name: c.Name, Members: members})

	delta := &Message{Kind: KindUserJoined, Room: c.Room, From: c.ID, Name: c.Name, Members: members}
	for _, peer := range h.registry.Peers(c.ID) {
		peer.enqueue(delta)
	}
}

// relay forwards an opaque negotiation payload to msg.To, tagged with the
// sender's id. The payload is never parsed. A missing or out-of-room target
// drops the message silently: best-effort, at-most-once, matching WebRTC's
// own tolerance for lost signaling during setup races.
func (h *Hub) relay(c *Client, msg *Message) {
	if c.Room == "" || msg.To == "" {
		return
	}
	target, ok := h.clients[msg.To]
	if !ok || target.Room != c.Room {
		return
	}
	target.enqueue(&Message{Kind: KindSignal, From: c.ID, Payload: msg.Payload})
}

// broadcast sends msg to every member of the sender's current room except the
// sender itself.
func (h *Hub) broadcast(c *Client, msg *Message) {
	if c.Room == "" {
		return
	}
	for _, peer := range h.registry.Peers(c.ID) {
		peer.enqueue(msg)
	}
}

func (h *Hub) leaveRoom(c *Client) {
	code, remaining, ok := h.registry.Leave(c.ID)
	if !ok {
		return
	}
	if remaining == nil {
		slog.Info("room deleted", "room", code)
		return
	}
	h.notifyLeft(code, c.ID, remaining)
}

func (h *Hub) notifyLeft(code, leftID string, remaining []*Client) {
	members := make([]Member, 0, len(remaining))
	for _, m := range remaining {
		members = append(members, Member{ID: m.ID, Name: m.Name, Role: m.Role})
	}
	note := &Message{Kind: KindUserLeft, Room: code, From: leftID, Members: members}
	for _, peer := range remaining {
		peer.enqueue(note)
	}
	slog.Info("peer left room", "room", code, "conn", leftID)
}
