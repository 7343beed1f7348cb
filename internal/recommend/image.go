package recommend

import (
	"context"
	"log/slog"

	"github.com/vbonduro/menumate/internal/domain"
	"github.com/vbonduro/menumate/internal/imagegen"
	"github.com/vbonduro/menumate/internal/logging"
	"github.com/vbonduro/menumate/internal/search"
)

const imageResultLimit = 5

// Verifier confirms the messaging channel will be able to fetch an image.
type Verifier interface {
	Verify(ctx context.Context, imageURL string) error
}

type DishImageResolver struct {
	search    search.Service
	generator imagegen.Generator
	verifier  Verifier
	logger    *slog.Logger
}

func NewDishImageResolver(searcher search.Service, generator imagegen.Generator, verifier Verifier, logger *slog.Logger) *DishImageResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &DishImageResolver{
		search:    searcher,
		generator: generator,
		verifier:  verifier,
		logger:    logger,
	}
}

// Resolve finds a real photo of dish, or generates one, and returns it only
// if it is reachable. The zero DishImage means no image.
func (r *DishImageResolver) Resolve(ctx context.Context, restaurant, dish, cuisine string) domain.DishImage {
	if !isRealDish(dish) {
		return domain.DishImage{}
	}

	var img domain.DishImage
	if restaurant != "" {
		img = r.find(ctx, restaurant, dish)
	}
	if img.URL == "" {
		img = r.generate(ctx, restaurant, dish, cuisine)
	}
	if img.URL == "" {
		return domain.DishImage{}
	}

	if err := r.verifier.Verify(ctx, img.URL); err != nil {
		r.logger.Warn("dish image unreachable, dropping it",
			"stage", "image", "source", string(img.Source), logging.Err(err))
		return domain.DishImage{}
	}
	r.logger.Info("dish image ready", "stage", "image", "source", string(img.Source))
	return img
}

func (r *DishImageResolver) find(ctx context.Context, restaurant, dish string) domain.DishImage {
	images, err := r.search.Images(ctx, restaurant+" "+dish, imageResultLimit)
	if err != nil {
		r.logger.Warn("dish photo search failed", "stage", "image", logging.Err(err))
		return domain.DishImage{}
	}
	for _, im := range images {
		if im.ImageURL != "" {
			return domain.DishImage{URL: im.ImageURL, Source: domain.ImageFound, SourceLink: im.SourceURL}
		}
	}
	return domain.DishImage{}
}

func (r *DishImageResolver) generate(ctx context.Context, restaurant, dish, cuisine string) domain.DishImage {
	url, err := r.generator.Generate(ctx, imagegen.DishPrompt(restaurant, dish, cuisine))
	if err != nil {
		r.logger.Warn("dish image generation failed", "stage", "image", logging.Err(err))
		return domain.DishImage{}
	}
	if url == "" {
		return domain.DishImage{}
	}
	return domain.DishImage{URL: url, Source: domain.ImageGenerated}
}
