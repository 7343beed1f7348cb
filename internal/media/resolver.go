package media

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioMediaHost = "api.twilio.com"

// Resolver downloads channel-authenticated media (Twilio media URLs need the
// account credentials) and re-encodes it as a data: URL.
type Resolver struct {
	accountSID string
	authToken  string
	client     *http.Client
}

func NewResolver(accountSID, authToken string, timeout time.Duration) *Resolver {
	return &Resolver{
		accountSID: accountSID,
		authToken:  authToken,
		client:     &http.Client{Timeout: timeout},
	}
}

// NeedsAuth reports whether ref can only be fetched with channel credentials.
func NeedsAuth(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == twilioMediaHost || strings.HasSuffix(host, "."+twilioMediaHost)
}

func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	if r.accountSID == "" || r.authToken == "" {
		return "", ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	// Twilio redirects to a signed storage URL; net/http drops the
	// Authorization header when the redirect leaves the original host.
	req.SetBasicAuth(r.accountSID, r.authToken)

	data, mimeType, err := fetch(r.client, req)
	if err != nil {
		return "", err
	}
	if !isImage(mimeType) {
		return "", fmt.Errorf("media is %s, not an image", mimeType)
	}
	return DataURL(data, mimeType), nil
}
