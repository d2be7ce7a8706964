// device/surfaces.go
package device

import (
	"context"
	"errors"
	"sync"
)

// Artifact is what gets handed to a share surface: image bytes or plain
// text, never both empty.
type Artifact struct {
	Filename string
	MIME     string
	Data     []byte
	Text     string
}

type ShareResult int

const (
	ShareDelivered ShareResult = iota
	// ShareCancelled: the user dismissed the share sheet. Not an error.
	ShareCancelled
	// ShareUnavailable: no share mechanism on this device.
	ShareUnavailable
)

// ShareSurface hands an artifact to the platform share mechanism.
// Contract: best-effort, the user may cancel silently.
type ShareSurface interface {
	Share(ctx context.Context, artifact Artifact) (ShareResult, error)
}

var ErrTelephonyUnavailable = errors.New("telephony unavailable")

// Dialer places a USSD call. Absence of telephony is a supported condition,
// not a failure of the deposit.
type Dialer interface {
	Dial(code string) error
}

// Clipboard is write-only from the workflow's perspective.
type Clipboard interface {
	Copy(text string) error
}

// NoTelephonyDialer is the default on devices (and servers) without a
// telephony surface.
type NoTelephonyDialer struct{}

func (NoTelephonyDialer) Dial(string) error { return ErrTelephonyUnavailable }

// BufferClipboard holds the last copied value in memory. It backs the
// copy-code fallback when no platform clipboard is bridged in.
type BufferClipboard struct {
	mu   sync.Mutex
	last string
}

func (c *BufferClipboard) Copy(text string) error {
	c.mu.Lock()
	c.last = text
	c.mu.Unlock()
	return nil
}

func (c *BufferClipboard) Last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}
