package ws

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

var errInvalidToken = errors.New("invalid token")

// ConnInfo carries the identity and correlation context of a single
// websocket connection, captured at handshake time.
type ConnInfo struct {
	ConnID      string
	UserID      int
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
