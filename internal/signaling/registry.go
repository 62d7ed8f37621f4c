package signaling

import (
	"errors"
	"strings"
)

// RoomKind distinguishes plain meetings from capped interview rooms.
type RoomKind int

const (
	RoomMeeting RoomKind = iota
	RoomInterview
)

func (k RoomKind) String() string {
	if k == RoomInterview {
		return "interview"
	}
	return "meeting"
}

// InterviewCapacity is the hard member cap for interview rooms.
const InterviewCapacity = 2

// Interview role labels, assigned by join order.
const (
	RoleInterviewer = "interviewer"
	RoleCandidate   = "candidate"
)

var (
	// ErrRoomFull rejects a join against an interview room already at cap.
	ErrRoomFull = errors.New("room is full")
	// ErrKindMismatch rejects a join whose kind disagrees with the room's.
	ErrKindMismatch = errors.New("room kind mismatch")
)

// Room is one active signaling room. It exists only while it has members:
// created on first join, deleted when the last member leaves.
type Room struct {
	Code    string
	Kind    RoomKind
	members map[string]*Client
}

// Registry is the server-authoritative mapping of connections to rooms. It is
// owned by the Hub and mutated only from the Hub's event loop, so it needs no
// locking of its own.
type Registry struct {
	rooms  map[string]*Room
	byConn map[string]string // connection id -> room code
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		byConn: make(map[string]string),
	}
}

// NormalizeCode canonicalizes a room code for registry lookups.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Join adds c to the room identified by code, creating the room if absent,
// and returns the membership snapshot including c. Joining a room the client
// is already in is a no-op that still returns the snapshot. Joining while a
// member of a different room leaves that room first; the vacated room's code
// and remaining members are returned so the caller can notify them.
//
// Interview rooms enforce InterviewCapacity: an over-cap join returns
// ErrRoomFull and leaves the room untouched.
func (r *Registry) Join(c *Client, code string, kind RoomKind) (members []Member, vacated string, remaining []*Client, err error) {
	code = NormalizeCode(code)

	if prev, ok := r.byConn[c.ID]; ok {
		if prev == code {
			return r.snapshot(r.rooms[code]), "", nil, nil
		}
		vacated, remaining, _ = r.Leave(c.ID)
	}

	room, ok := r.rooms[code]
	if !ok {
		room = &Room{Code: code, Kind: kind, members: make(map[string]*Client)}
		r.rooms[code] = room
	} else if room.Kind != kind {
		return nil, vacated, remaining, ErrKindMismatch
	}

	if room.Kind == RoomInterview && len(room.members) >= InterviewCapacity {
		return nil, vacated, remaining, ErrRoomFull
	}

	if room.Kind == RoomInterview {
		if len(room.members) == 0 {
			c.Role = RoleInterviewer
		} else {
			c.Role = RoleCandidate
		}
	}

	room.members[c.ID] = c
	r.byConn[c.ID] = code
	c.Room = code

	return r.snapshot(room), vacated, remaining, nil
}

// Leave removes the connection from whatever room it occupies. The reverse
// index makes this O(1) regardless of room count. Returns the vacated room
// code and the members that remain; ok is false if the connection was not in
// any room. An emptied room is deleted so a later join with the same code
// starts fresh.
func (r *Registry) Leave(connID string) (code string, remaining []*Client, ok bool) {
	code, ok = r.byConn[connID]
	if !ok {
		return "", nil, false
	}
	delete(r.byConn, connID)

	room := r.rooms[code]
	if c := room.members[connID]; c != nil {
		c.Room = ""
		c.Role = ""
	}
	delete(room.members, connID)

	if len(room.members) == 0 {
		delete(r.rooms, code)
		return code, nil, true
	}

	remaining = make([]*Client, 0, len(room.members))
	for _, m := range room.members {
		remaining = append(remaining, m)
	}
	return code, remaining, true
}

// RoomOf returns the room the connection currently occupies, if any.
func (r *Registry) RoomOf(connID string) (*Room, bool) {
	code, ok := r.byConn[connID]
	if !ok {
		return nil, false
	}
	return r.rooms[code], true
}

// Peers returns the current members of the connection's room other than the
// connection itself.
func (r *Registry) Peers(connID string) []*Client {
	room, ok := r.RoomOf(connID)
	if !ok {
		return nil
	}
	peers := make([]*Client, 0, len(room.members)-1)
	for id, m := range room.members {
		if id != connID {
			peers = append(peers, m)
		}
	}
	return peers
}

// Len reports the number of active rooms.
func (r *Registry) Len() int {
	return len(r.rooms)
}

// MemberCount reports the member count of a room, 0 if absent.
func (r *Registry) MemberCount(code string) int {
	room, ok := r.rooms[NormalizeCode(code)]
	if !ok {
		return 0
	}
	return len(room.members)
}

func (r *Registry) snapshot(room *Room) []Member {
	members := make([]Member, 0, len(room.members))
	for _, c := range room.members {
		members = append(members, Member{ID: c.ID, Name: c.Name, Role: c.Role})
	}
	return members
}
