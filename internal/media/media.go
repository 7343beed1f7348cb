// Package media turns channel media references into something the reasoning
// backends can consume and checks that outbound images are reachable.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// ErrNotConfigured is returned when authenticated media is requested without
// channel credentials.
var ErrNotConfigured = errors.New("media credentials not configured")

// maxMediaSize caps downloads; WhatsApp images are far below this.
const maxMediaSize = 20 * 1024 * 1024

// DataURL encodes data as a data: URL.
func DataURL(data []byte, mimeType string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// ParseDataURL decodes a base64 data: URL.
func ParseDataURL(ref string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(ref, "data:")
	if !ok {
		return nil, "", fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("data URL has no payload")
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, "", fmt.Errorf("data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode data URL: %w", err)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}

// Load returns the bytes and MIME type behind ref, which is either a data: URL
// or a public http(s) URL. Backends that cannot take URLs use this.
func Load(ctx context.Context, client *http.Client, ref string) ([]byte, string, error) {
	if strings.HasPrefix(ref, "data:") {
		return ParseDataURL(ref)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	return fetch(client, req)
}

func fetch(client *http.Client, req *http.Request) ([]byte, string, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch media: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close media response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("media host returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaSize))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read media: %w", err)
	}
	return data, contentType(resp.Header.Get("Content-Type"), data), nil
}

// contentType prefers the declared type and falls back to sniffing.
func contentType(declared string, data []byte) string {
	if declared != "" {
		if mt, _, _ := strings.Cut(declared, ";"); strings.TrimSpace(mt) != "" {
			return strings.TrimSpace(mt)
		}
	}
	return http.DetectContentType(data)
}

func isImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

// sniffPrefix reads enough of r for http.DetectContentType.
func sniffPrefix(r io.Reader) []byte {
	var buf bytes.Buffer
	_, _ = io.CopyN(&buf, r, 512)
	return buf.Bytes()
}
