package domain

import (
	"strings"
	"time"
)

// DefaultQuestion is used when an inbound message carries a photo but no text.
const DefaultQuestion = "What should I order?"

// NoDishPlaceholder is the best-dish value used when nothing on the menu can be
// recommended.
const NoDishPlaceholder = "Ask the waiter for recommendations"

// NotAvailable marks a worst or diet slot that could not be filled.
const NotAvailable = "Not available"

type InboundRequest struct {
	Sender           string
	Body             string
	MediaURL         string
	MediaContentType string
	MessageSID       string
}

func (r InboundRequest) HasMedia() bool {
	return r.MediaURL != ""
}

type PendingEntry struct {
	MediaURL  string
	Question  string
	CreatedAt time.Time
}

type MenuAnalysis struct {
	RestaurantName string
	MenuItems      []string
	CuisineType    string
	Language       string
	Analysis       string
}

func (m MenuAnalysis) HasRestaurant() bool {
	return m.RestaurantName != ""
}

type RecommendationEntry struct {
	Dish        string
	Explanation string
	Supporting  string
	ReviewLink  string
}

type Recommendation struct {
	Best  RecommendationEntry
	Worst RecommendationEntry
	Diet  RecommendationEntry
}

type ImageSource string

const (
	ImageFound     ImageSource = "found"
	ImageGenerated ImageSource = "generated"
)

type DishImage struct {
	URL        string
	Source     ImageSource
	SourceLink string
}

type OutboundMessage struct {
	Text     string
	MediaURL string
}

// NormalizeRestaurantName collapses the literal tokens models emit for "no
// name" to the empty string.
func NormalizeRestaurantName(name string) string {
	switch strings.TrimSpace(name) {
	case "", "null", "None":
		return ""
	default:
		return name
	}
}
