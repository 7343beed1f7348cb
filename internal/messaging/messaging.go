// Package messaging sends replies back to chat users.
package messaging

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("messaging transport not configured")

type Sender interface {
	// Send delivers body to the destination, attaching mediaURL when it is
	// not empty.
	Send(ctx context.Context, to, body, mediaURL string) error
}
