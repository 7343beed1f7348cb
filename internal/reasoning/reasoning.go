// Package reasoning talks to vision-capable language models. Backends live in
// subpackages; this package owns the prompts and the parsing of their JSON
// answers so every backend behaves the same way.
package reasoning

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured is returned by backends that are missing credentials.
var ErrNotConfigured = errors.New("reasoning service not configured")

// ErrMalformed is returned when a model answer cannot be parsed.
var ErrMalformed = errors.New("malformed model output")

type Request struct {
	System string
	Prompt string
	// ImageURL is an http(s) or data: URL. Empty for text-only calls.
	ImageURL  string
	MaxTokens int
}

type Service interface {
	Complete(ctx context.Context, req Request) (string, error)
}

const extractionSystemPrompt = `You are an expert at analyzing restaurant menus and restaurant photos.
Extract:
1. Restaurant name (if visible)
2. All menu items listed (dish names; translate non-English names to English)
3. Language of the menu
4. Cuisine type
5. Notable characteristics of the restaurant or menu
Respond with a single JSON object and nothing else.`

const extractionFormat = `Return JSON with exactly this structure:
{
  "restaurant_name": "name or null if not found",
  "menu_items": ["item1", "item2"],
  "cuisine_type": "type",
  "language": "language",
  "analysis": "short free-text analysis"
}`

const recommendSystemPrompt = `You are a food critic and restaurant advisor. Analyze the reviews and the menu
and recommend dishes. Be concise but informative. Respond with a single JSON
object and nothing else.`

// ExtractionRequest builds the first call: structured menu data from the image.
func ExtractionRequest(imageURL, question string) Request {
	return Request{
		System:    extractionSystemPrompt,
		Prompt:    question + "\n\nPlease analyze this menu/restaurant image and extract all relevant information.\n\n" + extractionFormat,
		ImageURL:  imageURL,
		MaxTokens: 1000,
	}
}

// RecommendationRequest builds the second call: the ranked triple. Dish names
// must come from menuItems when there are any.
func RecommendationRequest(restaurant string, menuItems []string, reviews string) Request {
	items := "Not specified"
	if len(menuItems) > 0 {
		items = strings.Join(menuItems, ", ")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Restaurant: %s\n\n", restaurant)
	fmt.Fprintf(&b, "Available menu items: %s\n\n", items)
	fmt.Fprintf(&b, "Reviews:\n%s\n\n", reviews)
	b.WriteString(`Based on these reviews and the menu items, pick:
1. The BEST reviewed dish to order
2. The WORST reviewed dish to avoid
3. The best option for someone on a diet
Every dish MUST be copied exactly from the available menu items when they are specified.
Keep each explanation to 2 sentences.

Return JSON in this format:
{
  "best_dish": "dish name",
  "best_reasoning": "brief explanation",
  "review_highlights": "key positive mentions from reviews",
  "worst_dish": "dish name",
  "worst_reasoning": "brief explanation",
  "complaints": "key complaints from reviews",
  "diet_dish": "dish name",
  "diet_reasoning": "brief explanation",
  "ingredients": "main ingredients"
}`)
	return Request{
		System:    recommendSystemPrompt,
		Prompt:    b.String(),
		MaxTokens: 700,
	}
}
