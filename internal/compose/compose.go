// Package compose renders recommendations into WhatsApp-sized messages.
//
// Everything here is a pure function of its arguments so the exact output can
// be asserted in tests.
package compose

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vbonduro/menumate/internal/domain"
)

const (
	// MaxLength is the message limit in characters (runes). WhatsApp allows
	// 1600; the rest is headroom for the provider.
	MaxLength = 1500

	ExplanationBudget = 180
	SupportingBudget  = 130

	ClosingLine = "Bon appétit! 🍴"

	separator = "━━━━━━━━━━━━━━"
	ellipsis  = "…"
)

// User-facing texts sent outside the recommendation template.
const (
	PhotoPrompt    = "📸 Please send a photo of the menu or restaurant along with your question!"
	DownloadFailed = "⚠️ Sorry, I couldn't download the image. Please try sending it again."
	Apology        = "❌ Sorry, an error occurred while processing your request. Please try again."
)

type Input struct {
	Restaurant     string
	Recommendation domain.Recommendation
	Image          domain.DishImage
	// AskForName adds a hint inviting the user to reply with the restaurant
	// name.
	AskForName bool
}

type section struct {
	icon     string
	title    string
	supIcon  string
	supLabel string
	entry    domain.RecommendationEntry
}

// Compose renders in into a message of at most MaxLength characters.
func Compose(in Input) string {
	restaurant := strings.TrimSpace(in.Restaurant)
	if restaurant == "" {
		restaurant = "Restaurant"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🍽️ *%s*\n", restaurant)

	sections := []section{
		{icon: "✅", title: "Best reviewed", supIcon: "⭐", supLabel: "Review highlights", entry: in.Recommendation.Best},
		{icon: "⚠️", title: "Worst reviewed", supIcon: "👎", supLabel: "Common complaints", entry: in.Recommendation.Worst},
		{icon: "🥗", title: "Diet option", supIcon: "🥦", supLabel: "Key ingredients", entry: in.Recommendation.Diet},
	}
	for _, s := range sections {
		writeSection(&b, s)
	}

	if footer := provenance(in.Image); footer != "" {
		b.WriteString("\n")
		b.WriteString(footer)
		b.WriteString("\n")
	}
	if in.AskForName {
		b.WriteString("\n💡 Reply with the restaurant name to get review-based picks.\n")
	}

	body := strings.TrimRightFunc(b.String(), unicode.IsSpace)
	msg := body + "\n\n" + ClosingLine
	if utf8.RuneCountInString(msg) <= MaxLength {
		return msg
	}

	// Cut from the tail so the header and the best section survive.
	budget := MaxLength - utf8.RuneCountInString("\n\n"+ClosingLine)
	return strings.TrimRightFunc(TruncateWords(body, budget), unicode.IsSpace) + "\n\n" + ClosingLine
}

func writeSection(b *strings.Builder, s section) {
	dish := strings.TrimSpace(s.entry.Dish)
	if dish == "" {
		dish = domain.NotAvailable
	}

	fmt.Fprintf(b, "\n%s\n%s *%s:* %s\n", separator, s.icon, s.title, dish)
	if link := strings.TrimSpace(s.entry.ReviewLink); link != "" {
		fmt.Fprintf(b, "🔗 %s\n", link)
	}
	if expl := strings.TrimSpace(s.entry.Explanation); expl != "" {
		b.WriteString(TruncateWords(expl, ExplanationBudget))
		b.WriteString("\n")
	}
	if sup := strings.TrimSpace(s.entry.Supporting); sup != "" {
		fmt.Fprintf(b, "%s *%s:*\n%s\n", s.supIcon, s.supLabel, TruncateWords(sup, SupportingBudget))
	}
}

func provenance(img domain.DishImage) string {
	if img.URL == "" {
		return ""
	}
	switch img.Source {
	case domain.ImageFound:
		if img.SourceLink != "" {
			return "📸 Photo found online: " + img.SourceLink
		}
		return "📸 Photo found online"
	case domain.ImageGenerated:
		return "🎨 Image is AI-generated and may not match the actual dish."
	default:
		return ""
	}
}

// ImageCaption is the short text sent with the image when it has to go out on
// its own.
func ImageCaption(dish string) string {
	return fmt.Sprintf("🖼️ Here's what %s looks like:", dish)
}

// TruncateWords shortens s to at most budget characters. The text is cut to
// budget-3 characters and, when the last whitespace in that prefix sits at or
// after 80% of the budget, backed up to it; then an ellipsis is appended.
func TruncateWords(s string, budget int) string {
	r := []rune(s)
	if len(r) <= budget {
		return s
	}
	if budget <= 3 {
		return string(r[:max(budget, 0)])
	}

	cut := budget - 3
	floor := (budget*4 + 4) / 5
	// r[cut] itself may be the boundary, so look at one rune past the cut.
	for i := cut; i >= floor; i-- {
		if unicode.IsSpace(r[i]) {
			cut = i
			break
		}
	}
	return strings.TrimRightFunc(string(r[:cut]), unicode.IsSpace) + ellipsis
}
