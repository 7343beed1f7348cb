// Package delivery sends composed messages with a fixed image fallback chain.
package delivery

import (
	"context"
	"log/slog"
	"time"

	"github.com/vbonduro/menumate/internal/domain"
	"github.com/vbonduro/menumate/internal/logging"
	"github.com/vbonduro/menumate/internal/messaging"
)

type State int

const (
	NotSent State = iota
	SentWithMedia
	SentTextOnlyAfterImageFallback
	SentTextOnly
	Failed
)

func (s State) String() string {
	switch s {
	case NotSent:
		return "not_sent"
	case SentWithMedia:
		return "sent_with_media"
	case SentTextOnlyAfterImageFallback:
		return "sent_text_only_after_image_fallback"
	case SentTextOnly:
		return "sent_text_only"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type Manager struct {
	sender  messaging.Sender
	timeout time.Duration
	logger  *slog.Logger
}

func NewManager(sender messaging.Sender, timeout time.Duration, logger *slog.Logger) *Manager {
	return &Manager{sender: sender, timeout: timeout, logger: logger}
}

// Deliver sends msg to the recipient. With an image it tries, in order: text
// and image together; the image alone with caption followed by the text; the
// text alone. Nothing is retried beyond that chain and the outcome is only
// logged.
func (m *Manager) Deliver(ctx context.Context, to string, msg domain.OutboundMessage, caption string) State {
	state := m.deliver(ctx, to, msg, caption)
	m.logger.Info("delivery finished", "to", to, "state", state.String(), "chars", len([]rune(msg.Text)))
	return state
}

func (m *Manager) deliver(ctx context.Context, to string, msg domain.OutboundMessage, caption string) State {
	if msg.MediaURL == "" {
		if err := m.send(ctx, to, msg.Text, ""); err != nil {
			m.logger.Error("text send failed", "to", to, logging.Err(err))
			return Failed
		}
		return SentTextOnly
	}

	err := m.send(ctx, to, msg.Text, msg.MediaURL)
	if err == nil {
		return SentWithMedia
	}
	m.logger.Warn("send with image failed, trying image on its own", "to", to, logging.Err(err))

	if err = m.send(ctx, to, caption, msg.MediaURL); err == nil {
		if err := m.send(ctx, to, msg.Text, ""); err != nil {
			m.logger.Error("follow-up text after image failed", "to", to, logging.Err(err))
		}
		return SentTextOnlyAfterImageFallback
	}
	m.logger.Warn("image-only send failed, sending text only", "to", to, logging.Err(err))

	if err := m.send(ctx, to, msg.Text, ""); err != nil {
		m.logger.Error("text-only fallback send failed", "to", to, logging.Err(err))
	}
	return SentTextOnly
}

// SendDirect makes a single attempt with no fallback. Used for apologies and
// prompts.
func (m *Manager) SendDirect(ctx context.Context, to, text string) error {
	err := m.send(ctx, to, text, "")
	if err != nil {
		m.logger.Error("direct send failed", "to", to, logging.Err(err))
	}
	return err
}

func (m *Manager) send(ctx context.Context, to, body, mediaURL string) error {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	return m.sender.Send(ctx, to, body, mediaURL)
}
