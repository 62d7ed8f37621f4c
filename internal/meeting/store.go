package meeting

import (
	"context"
	"errors"
	"time"
)

// Kind labels what a reserved code is for.
type Kind string

const (
	KindMeeting   Kind = "meeting"
	KindInterview Kind = "interview"
)

var (
	// ErrNotFound means no live reservation exists for a code.
	ErrNotFound = errors.New("code not found")
	// ErrCodeTaken means the code is already reserved.
	ErrCodeTaken = errors.New("code already reserved")
)

// Record is one reserved room code with its logging session id. The signaling
// layer never reads these; they only gate entry before a client connects.
type Record struct {
	Code      string    `json:"code" dynamodbav:"code"`
	Kind      Kind      `json:"kind" dynamodbav:"kind"`
	SessionID string    `json:"session_id" dynamodbav:"session_id"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"` // TTL, unix seconds
}

// Expired reports whether the reservation's TTL has passed.
func (r Record) Expired(now time.Time) bool {
	return r.ExpiresAt != 0 && now.Unix() >= r.ExpiresAt
}

// Store persists code reservations. Put must fail with ErrCodeTaken if a live
// reservation for the code exists; Get must fail with ErrNotFound for absent
// or expired codes.
type Store interface {
	Put(ctx context.Context, rec Record) error
	Get(ctx context.Context, code string) (Record, error)
}
