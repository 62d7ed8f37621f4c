package signaling

import "encoding/json"

// Kind identifies a signaling message. The set is closed: the hub dispatches
// on it exhaustively and drops anything it does not know.
type Kind string

// Client-to-server kinds.
const (
	KindJoinMeeting   Kind = "join_meeting"
	KindJoinInterview Kind = "join_interview"
	KindSignal        Kind = "signal"
	KindChat          Kind = "chat"
	KindToggleCamera  Kind = "toggle_camera"
	KindToggleMic     Kind = "toggle_mic"
	KindScreenStart   Kind = "screen_share_start"
	KindScreenStop    Kind = "screen_share_stop"
	KindCodeChange    Kind = "code_change"
	KindLangChange    Kind = "language_change"
	KindMalpractice   Kind = "malpractice"
	KindLeave         Kind = "leave"
)

// Server-to-client kinds. KindSignal, KindChat, the toggle kinds and the
// editor kinds are echoed back out under the same name with From filled in.
const (
	KindJoined     Kind = "joined"
	KindUserJoined Kind = "user_joined"
	KindUserLeft   Kind = "user_left"
	KindRoomFull   Kind = "room_full"
	KindError      Kind = "error"
)

// Message is the envelope for every websocket frame between a peer and the
// signaling server. Payload is opaque to the server: for KindSignal it holds
// an SDP description or ICE candidate the relay forwards verbatim; for chat,
// editor and malpractice kinds it holds the typed payloads below.
type Message struct {
	Kind    Kind            `json:"kind"`
	Room    string          `json:"room,omitempty"`
	From    string          `json:"from,omitempty"`
	To      string          `json:"to,omitempty"`
	Name    string          `json:"name,omitempty"`
	Enabled *bool           `json:"enabled,omitempty"`
	Members []Member        `json:"members,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`

	// sender is attached by the hub's dispatch path and never serialized.
	sender *Client `json:"-"`
}

// Member is one entry of a room membership snapshot.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// ChatPayload carries one chat line.
type ChatPayload struct {
	Text       string `json:"text"`
	SenderName string `json:"sender_name"`
}

// MalpracticePayload carries one anomaly flagged by the candidate-side
// detector. The server relays it to the interviewer without interpretation.
type MalpracticePayload struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Message    string  `json:"message"`
}

// ErrorPayload carries a human-readable rejection reason.
type ErrorPayload struct {
	Error string `json:"error"`
}

// EncodePayload marshals v into a raw payload, panicking never: a marshal
// failure returns nil, which the receiving side treats as an empty payload.
func EncodePayload(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
