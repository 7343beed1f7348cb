package media

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Verifier checks that an image URL is publicly reachable before it is handed
// to the messaging provider, which fetches it on its own.
type Verifier struct {
	client *http.Client
}

func NewVerifier(timeout time.Duration) *Verifier {
	return &Verifier{client: &http.Client{Timeout: timeout}}
}

// Verify issues a GET (several image CDNs reject HEAD) and requires a 2xx
// answer whose content is an image.
func (v *Verifier) Verify(ctx context.Context, imageURL string) error {
	if strings.HasPrefix(imageURL, "data:") {
		return fmt.Errorf("data URLs cannot be sent as media")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("image unreachable: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close verify response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("image host returned status %d", resp.StatusCode)
	}
	if mt := contentType(resp.Header.Get("Content-Type"), sniffPrefix(resp.Body)); !isImage(mt) {
		return fmt.Errorf("url serves %s, not an image", mt)
	}
	return nil
}
