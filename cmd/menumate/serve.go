package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vbonduro/menumate/internal/config"
	"github.com/vbonduro/menumate/internal/delivery"
	"github.com/vbonduro/menumate/internal/dispatch"
	openaiimagegen "github.com/vbonduro/menumate/internal/imagegen/openai"
	"github.com/vbonduro/menumate/internal/logging"
	"github.com/vbonduro/menumate/internal/media"
	"github.com/vbonduro/menumate/internal/messaging/twilio"
	"github.com/vbonduro/menumate/internal/pending"
	"github.com/vbonduro/menumate/internal/reasoning"
	claudereasoning "github.com/vbonduro/menumate/internal/reasoning/claude"
	ollamareasoning "github.com/vbonduro/menumate/internal/reasoning/ollama"
	openaireasoning "github.com/vbonduro/menumate/internal/reasoning/openai"
	"github.com/vbonduro/menumate/internal/recommend"
	"github.com/vbonduro/menumate/internal/search/serper"
	"github.com/vbonduro/menumate/internal/service"
	"github.com/vbonduro/menumate/internal/web"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if addr != "" {
				cfg.ListenAddr = addr
			}
			return serve(cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides LISTEN_ADDR and PORT)")
	return cmd
}

func serve(cfg *config.Config) error {
	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer cleanup()

	reasoner := newReasoner(cfg, logger)
	searcher := serper.NewClient(cfg.SerperAPIKey, cfg.SearchTimeout)
	generator := openaiimagegen.NewGenerator(cfg.OpenAIAPIKey, cfg.OpenAIImageModel, cfg.ImageGenTimeout)
	sender := twilio.NewSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppNumber, cfg.SendTimeout, logger)
	warnMissingCredentials(cfg, logger)

	synth := recommend.NewSynthesizer(reasoner, searcher, recommend.ParseReviewFallback(cfg.ReviewFallback), logger)
	images := recommend.NewDishImageResolver(searcher, generator, media.NewVerifier(cfg.VerifyTimeout), logger)
	deliv := delivery.NewManager(sender, cfg.SendTimeout, logger)
	orch := service.NewOrchestrator(
		synth,
		images,
		media.NewResolver(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.MediaTimeout),
		deliv,
		logger,
	)

	tasks := dispatch.New(cfg.PipelineTimeout, logger)
	cache := pending.NewStore(cfg.PendingMaxEntries, cfg.PendingTTL)

	var opts []web.Option
	if cfg.TwilioValidateSignature {
		if cfg.TwilioAuthToken == "" || cfg.PublicBaseURL == "" {
			return errors.New("TWILIO_VALIDATE_SIGNATURE needs TWILIO_AUTH_TOKEN and PUBLIC_BASE_URL")
		}
		opts = append(opts, web.WithSignatureValidation(twilio.NewSignatureValidator(cfg.TwilioAuthToken), cfg.PublicBaseURL))
	}
	srv := web.NewServer(orch, deliv, cache, tasks, logger, opts...).HTTPServer(cfg.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "reasoning_backend", cfg.ReasoningBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", logging.Err(err))
	}
	if err := tasks.Shutdown(shutdownCtx); err != nil {
		logger.Warn("in-flight requests abandoned", logging.Err(err))
	}
	logger.Info("stopped")
	return nil
}

func newReasoner(cfg *config.Config, logger *slog.Logger) reasoning.Service {
	switch cfg.ReasoningBackend {
	case "claude":
		logger.Info("using Claude reasoning backend", "model", cfg.ClaudeModel)
		return claudereasoning.NewReasoner(cfg.AnthropicAPIKey, cfg.ClaudeModel, cfg.ReasoningTimeout)
	case "ollama":
		logger.Info("using Ollama reasoning backend", "host", cfg.OllamaHost, "model", cfg.OllamaModel)
		return ollamareasoning.NewReasoner(cfg.OllamaHost, cfg.OllamaModel, cfg.ReasoningTimeout)
	default:
		logger.Info("using OpenAI reasoning backend", "model", cfg.OpenAIModel)
		return openaireasoning.NewReasoner(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.ReasoningTimeout)
	}
}

// warnMissingCredentials logs each unset credential once at startup. The
// matching stage degrades at runtime instead of failing the process.
func warnMissingCredentials(cfg *config.Config, logger *slog.Logger) {
	missing := map[string]bool{
		"SERPER_API_KEY":     cfg.SerperAPIKey == "",
		"TWILIO_ACCOUNT_SID": cfg.TwilioAccountSID == "",
		"TWILIO_AUTH_TOKEN":  cfg.TwilioAuthToken == "",
		"OPENAI_API_KEY":     cfg.OpenAIAPIKey == "",
	}
	if cfg.ReasoningBackend == "claude" {
		missing["ANTHROPIC_API_KEY"] = cfg.AnthropicAPIKey == ""
	}
	for name, unset := range missing {
		if unset {
			logger.Warn("credential not set, dependent stage will degrade", "env", name)
		}
	}
}
