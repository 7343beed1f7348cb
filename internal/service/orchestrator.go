package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vbonduro/menumate/internal/compose"
	"github.com/vbonduro/menumate/internal/delivery"
	"github.com/vbonduro/menumate/internal/domain"
	"github.com/vbonduro/menumate/internal/logging"
	"github.com/vbonduro/menumate/internal/media"
	"github.com/vbonduro/menumate/internal/recommend"
)

// maxNameWords bounds how long a free-text reply may be and still be taken
// as a restaurant name.
const maxNameWords = 5

// synthesizer is the subset of recommend.Synthesizer the pipeline requires.
type synthesizer interface {
	Analyze(ctx context.Context, imageURL, question string) recommend.AnalysisResult
	Recommend(ctx context.Context, analysis domain.MenuAnalysis, restaurant string) domain.Recommendation
	AttachReviewLinks(ctx context.Context, restaurant string, rec *domain.Recommendation)
}

type imageResolver interface {
	Resolve(ctx context.Context, restaurant, dish, cuisine string) domain.DishImage
}

type mediaResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

type deliverer interface {
	Deliver(ctx context.Context, to string, msg domain.OutboundMessage, caption string) delivery.State
	SendDirect(ctx context.Context, to, text string) error
}

// Job is one pipeline run.
type Job struct {
	RequestID string
	Sender    string
	MediaURL  string
	Question  string
}

// Outcome records how far a run got. Stage is the stage that ended the run
// early, empty when it ran to delivery.
type Outcome struct {
	Stage    string
	Delivery delivery.State
	Err      error
}

type Orchestrator struct {
	synth    synthesizer
	images   imageResolver
	media    mediaResolver
	delivery deliverer
	logger   *slog.Logger
}

func NewOrchestrator(
	synth synthesizer,
	images imageResolver,
	mediaRes mediaResolver,
	deliv deliverer,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		synth:    synth,
		images:   images,
		media:    mediaRes,
		delivery: deliv,
		logger:   logger,
	}
}

// Process runs the recommendation pipeline for job and replies to the
// sender. It never panics; a panic becomes an apology.
func (o *Orchestrator) Process(ctx context.Context, job Job) (out Outcome) {
	start := time.Now()
	logger := o.logger.With("request_id", job.RequestID, "sender", job.Sender)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("pipeline panicked: %v", r)
			logger.Error("pipeline panicked", "stage", "panic", logging.Err(err))
			o.apologize(ctx, logger, job.Sender, compose.Apology)
			out = Outcome{Stage: "panic", Err: err}
		}
	}()

	logger.Info("pipeline started", "question", logging.Truncate(job.Question, 100))

	imageURL := job.MediaURL
	if media.NeedsAuth(imageURL) {
		resolved, err := o.media.Resolve(ctx, imageURL)
		if err != nil {
			logger.Error("media download failed", "stage", "media", logging.Err(err))
			o.apologize(ctx, logger, job.Sender, compose.DownloadFailed)
			return Outcome{Stage: "media", Err: err}
		}
		imageURL = resolved
	}

	question := strings.TrimSpace(job.Question)
	if question == "" {
		question = domain.DefaultQuestion
	}

	res := o.synth.Analyze(ctx, imageURL, question)
	if res.Failure == recommend.FailureUnavailable {
		o.apologize(ctx, logger, job.Sender, compose.Apology)
		return Outcome{Stage: "analyze", Err: res.Err}
	}
	analysis := res.Analysis

	restaurant := domain.NormalizeRestaurantName(analysis.RestaurantName)
	if restaurant == "" && LooksLikeRestaurantName(question) {
		restaurant = question
		logger.Info("using message text as restaurant name", "stage", "name", "restaurant", restaurant)
	}

	rec := o.synth.Recommend(ctx, analysis, restaurant)

	var (
		img      domain.DishImage
		g        errgroup.Group
		bestDish = rec.Best.Dish
	)
	g.Go(func() error {
		img = o.images.Resolve(ctx, restaurant, bestDish, analysis.CuisineType)
		return nil
	})
	o.synth.AttachReviewLinks(ctx, restaurant, &rec)
	_ = g.Wait()

	text := compose.Compose(compose.Input{
		Restaurant:     restaurant,
		Recommendation: rec,
		Image:          img,
		AskForName:     restaurant == "",
	})

	state := o.delivery.Deliver(ctx, job.Sender, domain.OutboundMessage{Text: text, MediaURL: img.URL}, compose.ImageCaption(rec.Best.Dish))
	logger.Info("pipeline finished",
		"restaurant", restaurant,
		"best", rec.Best.Dish,
		"image", string(img.Source),
		"delivery", state.String(),
		"duration_ms", time.Since(start).Milliseconds())

	out = Outcome{Delivery: state}
	if state == delivery.Failed {
		out.Stage = "deliver"
		out.Err = errors.New("reply could not be delivered")
	}
	return out
}

// LooksLikeRestaurantName reports whether free text sent with a photo is
// more likely a restaurant name than a question.
func LooksLikeRestaurantName(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || text == domain.DefaultQuestion {
		return false
	}
	if strings.HasSuffix(text, "?") {
		return false
	}
	return len(strings.Fields(text)) <= maxNameWords
}

// apologize sends text even when the run's own deadline has passed.
func (o *Orchestrator) apologize(ctx context.Context, logger *slog.Logger, to, text string) {
	if err := o.delivery.SendDirect(context.WithoutCancel(ctx), to, text); err != nil {
		logger.Error("could not notify user", "stage", "notify", logging.Err(err))
	}
}

// Failure wraps Err with the stage that produced it. Nil on success.
func (o Outcome) Failure() error {
	if o.Err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", o.Stage, o.Err)
}
