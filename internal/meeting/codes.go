package meeting

import (
	"crypto/rand"
	"log/slog"
	"math/big"
	"strings"
)

// codeAlphabet omits 0/O and 1/I, which read ambiguously when a candidate
// dictates a code over the phone.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the length of generated room codes.
const CodeLength = 6

// GenerateCode returns a fresh random room code. Uniqueness against live
// codes is the caller's concern; the keyspace makes collisions rare.
func GenerateCode() string {
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(codeAlphabet[randomIndex(len(codeAlphabet))])
	}
	return b.String()
}

// randomIndex returns a cryptographically secure random index for a slice of
// given length.
func randomIndex(max int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		slog.Error("random source failed", "err", err)
		panic(err)
	}
	return int(n.Int64())
}
