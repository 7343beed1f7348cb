// Package imagegen produces illustrative dish photos when no real one can be
// found.
package imagegen

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotConfigured = errors.New("image generation not configured")

type Generator interface {
	// Generate returns a publicly reachable URL of the generated image.
	Generate(ctx context.Context, prompt string) (string, error)
}

// DishPrompt describes a photorealistic shot of dish as served at restaurant.
func DishPrompt(restaurant, dish, cuisine string) string {
	if restaurant == "" {
		restaurant = "a restaurant"
	}
	if cuisine == "" {
		cuisine = "unknown"
	}
	return fmt.Sprintf("Photorealistic high-quality food photography of %s from %s, a %s restaurant. "+
		"Professional restaurant lighting, appetizing presentation, shot on white plate, shallow depth of field.",
		dish, restaurant, cuisine)
}
