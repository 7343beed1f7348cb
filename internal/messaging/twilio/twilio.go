package twilio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/vbonduro/menumate/internal/messaging"
)

const whatsappPrefix = "whatsapp:"

// messageCreator is the subset of the Twilio REST API the sender uses.
type messageCreator interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

// Sender delivers WhatsApp messages through the Twilio Messages API.
type Sender struct {
	api     messageCreator
	from    string
	timeout time.Duration
	logger  *slog.Logger
}

// NewSender returns a Sender whose HTTP calls give up after timeout. Without
// credentials every send fails with messaging.ErrNotConfigured.
func NewSender(accountSID, authToken, from string, timeout time.Duration, logger *slog.Logger) *Sender {
	s := &Sender{from: WhatsAppAddress(from), timeout: timeout, logger: logger}
	if accountSID != "" && authToken != "" {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		})
		if timeout > 0 {
			client.SetTimeout(timeout)
		}
		s.api = client.Api
	}
	return s
}

// Send posts one message. The Twilio client has no context support, so ctx is
// only checked before the call and the client's own timeout bounds it.
func (s *Sender) Send(ctx context.Context, to, body, mediaURL string) error {
	if s.api == nil {
		return messaging.ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetFrom(s.from)
	params.SetTo(WhatsAppAddress(to))
	params.SetBody(body)
	if mediaURL != "" {
		params.SetMediaUrl([]string{mediaURL})
	}

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send twilio message: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		s.logger.Debug("twilio message sent", "sid", *resp.Sid, "with_media", mediaURL != "")
	}
	return nil
}

// WhatsAppAddress adds the channel prefix Twilio needs for WhatsApp numbers.
func WhatsAppAddress(number string) string {
	if number == "" || strings.HasPrefix(number, whatsappPrefix) {
		return number
	}
	return whatsappPrefix + number
}

// StripWhatsApp removes the channel prefix from an inbound sender.
func StripWhatsApp(address string) string {
	return strings.TrimPrefix(address, whatsappPrefix)
}
