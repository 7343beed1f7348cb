// Package recommend turns a menu photo into a ranked dish recommendation and
// finds a picture of the winning dish.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vbonduro/menumate/internal/domain"
	"github.com/vbonduro/menumate/internal/logging"
	"github.com/vbonduro/menumate/internal/reasoning"
	"github.com/vbonduro/menumate/internal/search"
)

// Review text handed to the model when there is nothing better.
const (
	NoReviews = "No reviews available."
	MenuOnly  = "No reviews were searched. Recommend from the menu alone."
)

const reviewResultLimit = 5

// ReviewFallback decides what to search for when the restaurant is unnamed.
type ReviewFallback string

const (
	FallbackCuisine ReviewFallback = "cuisine"
	FallbackSkip    ReviewFallback = "skip"
)

// ParseReviewFallback maps a config value to a policy, defaulting to cuisine.
func ParseReviewFallback(s string) ReviewFallback {
	if ReviewFallback(strings.ToLower(strings.TrimSpace(s))) == FallbackSkip {
		return FallbackSkip
	}
	return FallbackCuisine
}

type Failure int

const (
	FailureNone Failure = iota
	// FailureUnavailable means the model could not be reached at all.
	FailureUnavailable
	// FailureMalformed means the model answered but the answer was unusable.
	FailureMalformed
)

func (f Failure) String() string {
	switch f {
	case FailureUnavailable:
		return "unavailable"
	case FailureMalformed:
		return "malformed"
	default:
		return "none"
	}
}

type AnalysisResult struct {
	Analysis domain.MenuAnalysis
	Failure  Failure
	Err      error
}

type Synthesizer struct {
	reasoner reasoning.Service
	search   search.Service
	fallback ReviewFallback
	logger   *slog.Logger
}

func NewSynthesizer(reasoner reasoning.Service, searcher search.Service, fallback ReviewFallback, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		reasoner: reasoner,
		search:   searcher,
		fallback: fallback,
		logger:   logger,
	}
}

// Analyze extracts structured menu data from the image. A malformed answer
// yields an empty analysis the pipeline can still work with; an unreachable
// model is reported as FailureUnavailable.
func (s *Synthesizer) Analyze(ctx context.Context, imageURL, question string) AnalysisResult {
	if strings.TrimSpace(question) == "" {
		question = domain.DefaultQuestion
	}

	raw, err := s.reasoner.Complete(ctx, reasoning.ExtractionRequest(imageURL, question))
	if err != nil {
		s.logger.Error("menu analysis failed", "stage", "analyze", logging.Err(err))
		return AnalysisResult{Failure: FailureUnavailable, Err: fmt.Errorf("analyzing menu: %w", err)}
	}

	analysis, err := reasoning.ParseMenuAnalysis(raw)
	if err != nil {
		s.logger.Warn("menu analysis malformed, continuing without menu data",
			"stage", "analyze", logging.Err(err), "raw", logging.Truncate(raw, 200))
		return AnalysisResult{
			Analysis: domain.MenuAnalysis{CuisineType: "unknown", Language: "unknown"},
			Failure:  FailureMalformed,
			Err:      err,
		}
	}

	s.logger.Info("menu analyzed",
		"stage", "analyze",
		"restaurant", analysis.RestaurantName,
		"items", len(analysis.MenuItems),
		"cuisine", analysis.CuisineType)
	return AnalysisResult{Analysis: analysis}
}

// Recommend searches for reviews and asks the model for the best, worst and
// diet picks. It always returns a usable triple.
func (s *Synthesizer) Recommend(ctx context.Context, analysis domain.MenuAnalysis, restaurant string) domain.Recommendation {
	reviews := s.reviews(ctx, analysis, restaurant)

	label := restaurant
	if label == "" {
		label = "the restaurant"
	}

	raw, err := s.reasoner.Complete(ctx, reasoning.RecommendationRequest(label, analysis.MenuItems, reviews))
	if err != nil {
		s.logger.Error("recommendation failed, using defaults", "stage", "recommend", logging.Err(err))
		return Degraded(analysis.MenuItems)
	}

	rec, err := reasoning.ParseRecommendation(raw)
	if err != nil {
		s.logger.Warn("recommendation malformed, using defaults",
			"stage", "recommend", logging.Err(err), "raw", logging.Truncate(raw, 200))
		return Degraded(analysis.MenuItems)
	}

	defaults := Degraded(analysis.MenuItems)
	rec.Best = s.onMenu("best", rec.Best, analysis.MenuItems, defaults.Best)
	rec.Worst = s.onMenu("worst", rec.Worst, analysis.MenuItems, defaults.Worst)
	rec.Diet = s.onMenu("diet", rec.Diet, analysis.MenuItems, defaults.Diet)

	s.logger.Info("recommendation ready",
		"stage", "recommend",
		"best", rec.Best.Dish,
		"worst", rec.Worst.Dish,
		"diet", rec.Diet.Dish)
	return rec
}

// Placeholder explanations for slots the model could not fill.
const (
	unrankedExplanation = "I couldn't rank the dishes this time."
	menuPickExplanation = "Picked from the menu without review data."
	noWorstExplanation  = "Not enough information to name a dish to avoid."
	noDietExplanation   = "Ask the staff about lighter options."
)

// Degraded is the triple used when the model gives no usable answer.
func Degraded(menuItems []string) domain.Recommendation {
	best := domain.RecommendationEntry{
		Dish:        domain.NoDishPlaceholder,
		Explanation: unrankedExplanation,
		Supporting:  NoReviews,
	}
	if len(menuItems) > 0 {
		best.Dish = menuItems[0]
		best.Explanation = menuPickExplanation
	}
	return domain.Recommendation{
		Best:  best,
		Worst: domain.RecommendationEntry{Dish: domain.NotAvailable, Explanation: noWorstExplanation},
		Diet:  domain.RecommendationEntry{Dish: domain.NotAvailable, Explanation: noDietExplanation},
	}
}

func (s *Synthesizer) reviews(ctx context.Context, analysis domain.MenuAnalysis, restaurant string) string {
	var query string
	switch {
	case restaurant != "":
		query = restaurant + " reviews"
	case s.fallback == FallbackSkip:
		return MenuOnly
	case len(analysis.MenuItems) > 0:
		query = analysis.CuisineType + " restaurant reviews"
	default:
		return NoReviews
	}

	results, err := s.search.Web(ctx, query, reviewResultLimit)
	if err != nil {
		if errors.Is(err, search.ErrNotConfigured) {
			s.logger.Warn("review search not configured", "stage", "reviews")
		} else {
			s.logger.Error("review search failed", "stage", "reviews", "query", query, logging.Err(err))
		}
		return NoReviews
	}

	snippets := make([]string, 0, len(results))
	for _, r := range results {
		if strings.TrimSpace(r.Snippet) == "" {
			continue
		}
		snippets = append(snippets, fmt.Sprintf("%s: %s", r.Title, r.Snippet))
	}
	if len(snippets) == 0 {
		return NoReviews
	}
	return strings.Join(snippets, "\n\n")
}

// ReviewLink returns the first web result for a dish at restaurant.
func (s *Synthesizer) ReviewLink(ctx context.Context, restaurant, dish string) (string, error) {
	results, err := s.search.Web(ctx, fmt.Sprintf("%s %s review", restaurant, dish), 1)
	if err != nil {
		return "", err
	}
	for _, r := range results {
		if r.Link != "" {
			return r.Link, nil
		}
	}
	return "", nil
}

// AttachReviewLinks looks up a review link for each recommended dish
// concurrently. A failed lookup leaves that link empty.
func (s *Synthesizer) AttachReviewLinks(ctx context.Context, restaurant string, rec *domain.Recommendation) {
	if restaurant == "" {
		return
	}
	var g errgroup.Group
	for _, entry := range []*domain.RecommendationEntry{&rec.Best, &rec.Worst, &rec.Diet} {
		if !isRealDish(entry.Dish) {
			continue
		}
		g.Go(func() error {
			link, err := s.ReviewLink(ctx, restaurant, entry.Dish)
			if err != nil {
				s.logger.Warn("review link lookup failed", "stage", "links", "dish", entry.Dish, logging.Err(err))
				return nil
			}
			entry.ReviewLink = link
			return nil
		})
	}
	_ = g.Wait()
}

func isRealDish(dish string) bool {
	return dish != "" && dish != domain.NotAvailable && dish != domain.NoDishPlaceholder
}

// onMenu keeps entry when its dish is on the menu, using the menu's own
// spelling. An empty dish, or one missing from a non-empty menu, yields
// fallback.
func (s *Synthesizer) onMenu(slot string, entry domain.RecommendationEntry, menu []string, fallback domain.RecommendationEntry) domain.RecommendationEntry {
	if entry.Dish == "" {
		return fallback
	}
	if len(menu) == 0 {
		return entry
	}
	dish, ok := snapToMenu(entry.Dish, menu)
	if !ok {
		s.logger.Warn("model picked a dish that is not on the menu, using default",
			"stage", "recommend", "slot", slot, "dish", entry.Dish)
		return fallback
	}
	entry.Dish = dish
	return entry
}

// snapToMenu finds dish on the menu, tolerating changed case or a partial
// name, and returns the menu's spelling.
func snapToMenu(dish string, menu []string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(dish))
	if needle == "" {
		return "", false
	}
	for _, item := range menu {
		if strings.ToLower(item) == needle {
			return item, true
		}
	}
	for _, item := range menu {
		lower := strings.ToLower(item)
		if strings.Contains(lower, needle) || strings.Contains(needle, lower) {
			return item, true
		}
	}
	return "", false
}
