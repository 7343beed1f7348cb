package delivery

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/menumate/internal/domain"
)

type call struct {
	To       string
	Body     string
	MediaURL string
}

// scriptedSender fails the calls whose index is in fail and records every
// attempt.
type scriptedSender struct {
	mu    sync.Mutex
	calls []call
	fail  map[int]bool
}

func (s *scriptedSender) Send(_ context.Context, to, body, mediaURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := len(s.calls)
	s.calls = append(s.calls, call{To: to, Body: body, MediaURL: mediaURL})
	if s.fail[idx] {
		return errors.New("provider rejected message")
	}
	return nil
}

func newManager(s *scriptedSender) *Manager {
	return NewManager(s, time.Second, slog.Default())
}

var withImage = domain.OutboundMessage{Text: "full recommendation", MediaURL: "https://img.example/pizza.jpg"}

func TestDeliverWithMedia(t *testing.T) {
	s := &scriptedSender{}

	state := newManager(s).Deliver(context.Background(), "+1555", withImage, "caption")

	assert.Equal(t, SentWithMedia, state)
	require.Len(t, s.calls, 1)
	assert.Equal(t, call{To: "+1555", Body: "full recommendation", MediaURL: "https://img.example/pizza.jpg"}, s.calls[0])
}

func TestDeliverImageFallback(t *testing.T) {
	s := &scriptedSender{fail: map[int]bool{0: true}}

	state := newManager(s).Deliver(context.Background(), "+1555", withImage, "Here's the pizza")

	assert.Equal(t, SentTextOnlyAfterImageFallback, state)
	require.Len(t, s.calls, 3)
	assert.Equal(t, call{To: "+1555", Body: "Here's the pizza", MediaURL: withImage.MediaURL}, s.calls[1])
	assert.Equal(t, call{To: "+1555", Body: "full recommendation"}, s.calls[2])
}

func TestDeliverImageFallbackFollowUpFailureIsNotRetried(t *testing.T) {
	s := &scriptedSender{fail: map[int]bool{0: true, 2: true}}

	state := newManager(s).Deliver(context.Background(), "+1555", withImage, "caption")

	assert.Equal(t, SentTextOnlyAfterImageFallback, state)
	assert.Len(t, s.calls, 3)
}

func TestDeliverTextOnlyAfterBothImageAttemptsFail(t *testing.T) {
	s := &scriptedSender{fail: map[int]bool{0: true, 1: true}}

	state := newManager(s).Deliver(context.Background(), "+1555", withImage, "caption")

	assert.Equal(t, SentTextOnly, state)
	require.Len(t, s.calls, 3)
	assert.Equal(t, call{To: "+1555", Body: "full recommendation"}, s.calls[2])
}

func TestDeliverTextOnlyRegardlessOfFinalOutcome(t *testing.T) {
	s := &scriptedSender{fail: map[int]bool{0: true, 1: true, 2: true}}

	state := newManager(s).Deliver(context.Background(), "+1555", withImage, "caption")

	assert.Equal(t, SentTextOnly, state)
	assert.Len(t, s.calls, 3)
}

func TestDeliverWithoutImage(t *testing.T) {
	s := &scriptedSender{}

	state := newManager(s).Deliver(context.Background(), "+1555", domain.OutboundMessage{Text: "hello"}, "unused")

	assert.Equal(t, SentTextOnly, state)
	require.Len(t, s.calls, 1)
	assert.Empty(t, s.calls[0].MediaURL)
}

func TestDeliverWithoutImageFailure(t *testing.T) {
	s := &scriptedSender{fail: map[int]bool{0: true}}

	state := newManager(s).Deliver(context.Background(), "+1555", domain.OutboundMessage{Text: "hello"}, "")

	assert.Equal(t, Failed, state)
	assert.Len(t, s.calls, 1)
}

func TestSendDirectSingleAttempt(t *testing.T) {
	s := &scriptedSender{fail: map[int]bool{0: true}}

	err := newManager(s).SendDirect(context.Background(), "+1555", "sorry")

	assert.Error(t, err)
	assert.Len(t, s.calls, 1)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "sent_text_only_after_image_fallback", SentTextOnlyAfterImageFallback.String())
	assert.Equal(t, "not_sent", NotSent.String())
	assert.Equal(t, "unknown", State(99).String())
}
