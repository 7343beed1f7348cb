package twilio

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/vbonduro/menumate/internal/messaging"
)

type fakeCreator struct {
	params []*twilioapi.CreateMessageParams
	err    error
}

func (f *fakeCreator) CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioapi.ApiV2010Message{Sid: &sid}, nil
}

func TestSendWithMedia(t *testing.T) {
	fake := &fakeCreator{}
	s := &Sender{api: fake, from: WhatsAppAddress("+14155238886"), logger: slog.Default()}

	err := s.Send(context.Background(), "+15550001", "Bon appétit!", "https://img.example/pizza.jpg")
	require.NoError(t, err)

	require.Len(t, fake.params, 1)
	p := fake.params[0]
	assert.Equal(t, "whatsapp:+14155238886", *p.From)
	assert.Equal(t, "whatsapp:+15550001", *p.To)
	assert.Equal(t, "Bon appétit!", *p.Body)
	require.NotNil(t, p.MediaUrl)
	assert.Equal(t, []string{"https://img.example/pizza.jpg"}, *p.MediaUrl)
}

func TestSendTextOnly(t *testing.T) {
	fake := &fakeCreator{}
	s := &Sender{api: fake, from: "whatsapp:+14155238886", logger: slog.Default()}

	require.NoError(t, s.Send(context.Background(), "whatsapp:+15550001", "hi", ""))
	assert.Equal(t, "whatsapp:+15550001", *fake.params[0].To)
	assert.Nil(t, fake.params[0].MediaUrl)
}

func TestSendError(t *testing.T) {
	s := &Sender{api: &fakeCreator{err: errors.New("21620 invalid media")}, logger: slog.Default()}
	assert.Error(t, s.Send(context.Background(), "+15550001", "hi", "https://img"))
}

func TestSendNotConfigured(t *testing.T) {
	s := NewSender("", "", "+14155238886", 15*time.Second, slog.Default())
	assert.ErrorIs(t, s.Send(context.Background(), "+15550001", "hi", ""), messaging.ErrNotConfigured)
}

func TestNewSenderWithCredentials(t *testing.T) {
	s := NewSender("AC123", "token", "+14155238886", 7*time.Second, slog.Default())

	assert.NotNil(t, s.api)
	assert.Equal(t, 7*time.Second, s.timeout)
	assert.Equal(t, "whatsapp:+14155238886", s.from)
}

func TestSendCancelledContext(t *testing.T) {
	fake := &fakeCreator{}
	s := &Sender{api: fake, logger: slog.Default()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Send(ctx, "+15550001", "hi", ""), context.Canceled)
	assert.Empty(t, fake.params)
}

func TestAddressHelpers(t *testing.T) {
	assert.Equal(t, "whatsapp:+1555", WhatsAppAddress("+1555"))
	assert.Equal(t, "whatsapp:+1555", WhatsAppAddress("whatsapp:+1555"))
	assert.Equal(t, "", WhatsAppAddress(""))
	assert.Equal(t, "+1555", StripWhatsApp("whatsapp:+1555"))
}
