package reasoning

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vbonduro/menumate/internal/domain"
)

// ExtractJSON returns the outermost JSON object in raw, tolerating markdown
// code fences and chatter around it.
func ExtractJSON(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return "", fmt.Errorf("%w: no JSON object found", ErrMalformed)
	}
	return raw[start : end+1], nil
}

type menuPayload struct {
	RestaurantName string   `json:"restaurant_name"`
	MenuItems      []string `json:"menu_items"`
	CuisineType    string   `json:"cuisine_type"`
	Language       string   `json:"language"`
	Analysis       string   `json:"analysis"`
}

// ParseMenuAnalysis decodes the extraction answer. Missing cuisine and language
// default to "unknown"; blank menu items are dropped.
func ParseMenuAnalysis(raw string) (domain.MenuAnalysis, error) {
	obj, err := ExtractJSON(raw)
	if err != nil {
		return domain.MenuAnalysis{}, err
	}
	var p menuPayload
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		return domain.MenuAnalysis{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	items := make([]string, 0, len(p.MenuItems))
	for _, it := range p.MenuItems {
		if it = strings.TrimSpace(it); it != "" {
			items = append(items, it)
		}
	}

	return domain.MenuAnalysis{
		RestaurantName: domain.NormalizeRestaurantName(strings.TrimSpace(p.RestaurantName)),
		MenuItems:      items,
		CuisineType:    orUnknown(p.CuisineType),
		Language:       orUnknown(p.Language),
		Analysis:       p.Analysis,
	}, nil
}

type recommendationPayload struct {
	BestDish         string `json:"best_dish"`
	BestReasoning    string `json:"best_reasoning"`
	ReviewHighlights string `json:"review_highlights"`
	WorstDish        string `json:"worst_dish"`
	WorstReasoning   string `json:"worst_reasoning"`
	Complaints       string `json:"complaints"`
	DietDish         string `json:"diet_dish"`
	DietReasoning    string `json:"diet_reasoning"`
	Ingredients      string `json:"ingredients"`
}

// ParseRecommendation decodes the recommendation answer. An answer without a
// best dish is malformed; empty worst and diet slots are left for the caller
// to fill.
func ParseRecommendation(raw string) (domain.Recommendation, error) {
	obj, err := ExtractJSON(raw)
	if err != nil {
		return domain.Recommendation{}, err
	}
	var p recommendationPayload
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		return domain.Recommendation{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if strings.TrimSpace(p.BestDish) == "" {
		return domain.Recommendation{}, fmt.Errorf("%w: best_dish missing", ErrMalformed)
	}

	return domain.Recommendation{
		Best: domain.RecommendationEntry{
			Dish:        strings.TrimSpace(p.BestDish),
			Explanation: strings.TrimSpace(p.BestReasoning),
			Supporting:  strings.TrimSpace(p.ReviewHighlights),
		},
		Worst: domain.RecommendationEntry{
			Dish:        strings.TrimSpace(p.WorstDish),
			Explanation: strings.TrimSpace(p.WorstReasoning),
			Supporting:  strings.TrimSpace(p.Complaints),
		},
		Diet: domain.RecommendationEntry{
			Dish:        strings.TrimSpace(p.DietDish),
			Explanation: strings.TrimSpace(p.DietReasoning),
			Supporting:  strings.TrimSpace(p.Ingredients),
		},
	}, nil
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return s
}
