package web

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/vbonduro/menumate/internal/compose"
	"github.com/vbonduro/menumate/internal/domain"
	"github.com/vbonduro/menumate/internal/logging"
	"github.com/vbonduro/menumate/internal/messaging/twilio"
	"github.com/vbonduro/menumate/internal/service"
)

// handleWebhook acknowledges every inbound message immediately and does the
// real work in the background. The response never depends on the outcome.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.Warn("failed to parse webhook form", logging.Err(err))
		writeAck(w)
		return
	}

	if s.validator != nil {
		fullURL := strings.TrimRight(s.publicBaseURL, "/") + r.URL.RequestURI()
		if !s.validator.Valid(fullURL, r.PostForm, r.Header.Get(twilio.SignatureHeader)) {
			s.logger.Warn("rejected webhook with invalid signature", "remote", r.RemoteAddr)
			http.Error(w, "invalid signature", http.StatusForbidden)
			return
		}
	}

	in := parseInbound(r)
	if in.Sender == "" {
		s.logger.Warn("webhook without sender ignored", "message_sid", in.MessageSID)
		writeAck(w)
		return
	}

	s.route(r.Context(), in)
	writeAck(w)
}

// route decides between a pipeline run and the photo prompt, using the
// sender's pending photo for text-only follow-ups.
func (s *Server) route(ctx context.Context, in domain.InboundRequest) {
	logger := s.logger.With("sender", in.Sender, "message_sid", in.MessageSID)

	if in.HasMedia() {
		question := in.Body
		if question == "" {
			question = domain.DefaultQuestion
		}
		s.pending.Put(in.Sender, domain.PendingEntry{MediaURL: in.MediaURL, Question: question, CreatedAt: s.now()})
		logger.Info("photo received, starting pipeline", "content_type", in.MediaContentType)
		s.dispatch(ctx, in.Sender, in.MediaURL, question)
		return
	}

	if in.Body != "" {
		if entry, ok := s.followUp(in.Sender, in.Body); ok {
			logger.Info("follow-up for pending photo, starting pipeline")
			s.dispatch(ctx, in.Sender, entry.MediaURL, in.Body)
			return
		}
	}

	logger.Info("no photo, asking for one")
	sender := in.Sender
	s.tasks.Go(ctx, "photo-prompt", func(ctx context.Context) error {
		return s.notifier.SendDirect(ctx, sender, compose.PhotoPrompt)
	})
}

// followUp records body as the latest question on the sender's fresh pending
// photo and returns the entry. The photo's timestamp is kept, so follow-ups
// do not extend its lifetime.
func (s *Server) followUp(sender, body string) (domain.PendingEntry, bool) {
	var (
		entry domain.PendingEntry
		found bool
	)
	s.pending.Update(sender, func(cur domain.PendingEntry, ok bool) (domain.PendingEntry, bool) {
		if !ok {
			return cur, false
		}
		cur.Question = body
		entry, found = cur, true
		return cur, true
	})
	return entry, found
}

func (s *Server) dispatch(ctx context.Context, sender, mediaURL, question string) {
	job := service.Job{
		RequestID: uuid.NewString(),
		Sender:    sender,
		MediaURL:  mediaURL,
		Question:  question,
	}
	s.tasks.Go(ctx, "pipeline", func(ctx context.Context) error {
		return s.pipeline.Process(ctx, job).Failure()
	})
}

func parseInbound(r *http.Request) domain.InboundRequest {
	in := domain.InboundRequest{
		Sender:     twilio.StripWhatsApp(strings.TrimSpace(r.PostFormValue("From"))),
		Body:       strings.TrimSpace(r.PostFormValue("Body")),
		MessageSID: r.PostFormValue("MessageSid"),
	}
	if n, err := strconv.Atoi(r.PostFormValue("NumMedia")); err == nil && n > 0 {
		in.MediaURL = strings.TrimSpace(r.PostFormValue("MediaUrl0"))
		in.MediaContentType = r.PostFormValue("MediaContentType0")
	}
	return in
}

func writeAck(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
