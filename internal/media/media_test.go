package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

func TestDataURLRoundTrip(t *testing.T) {
	ref := DataURL(jpegHeader, "image/jpeg")
	assert.Contains(t, ref, "data:image/jpeg;base64,")

	data, mimeType, err := ParseDataURL(ref)
	require.NoError(t, err)
	assert.Equal(t, jpegHeader, data)
	assert.Equal(t, "image/jpeg", mimeType)
}

func TestParseDataURLRejectsNonBase64(t *testing.T) {
	_, _, err := ParseDataURL("data:text/plain,hello")
	assert.Error(t, err)

	_, _, err = ParseDataURL("https://example.com/a.jpg")
	assert.Error(t, err)
}

func TestNeedsAuth(t *testing.T) {
	assert.True(t, NeedsAuth("https://api.twilio.com/2010-04-01/Accounts/AC1/Messages/MM1/Media/ME1"))
	assert.False(t, NeedsAuth("https://example.com/menu.jpg"))
	assert.False(t, NeedsAuth("https://api.twilio.com.evil.example/x"))
	assert.False(t, NeedsAuth("data:image/jpeg;base64,AAAA"))
}

func TestResolverDownloadsWithBasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC123" || pass != "secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(jpegHeader)
	}))
	defer server.Close()

	r := NewResolver("AC123", "secret", 5*time.Second)
	ref, err := r.Resolve(context.Background(), server.URL+"/Media/ME1")
	require.NoError(t, err)
	assert.Equal(t, DataURL(jpegHeader, "image/jpeg"), ref)
}

func TestResolverErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewResolver("", "", time.Second).Resolve(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewResolver("AC123", "secret", time.Second).Resolve(context.Background(), server.URL)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(jpegHeader)
	}))
	defer server.Close()

	data, mimeType, err := Load(context.Background(), server.Client(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, jpegHeader, data)
	assert.Equal(t, "image/jpeg", mimeType)

	data, mimeType, err = Load(context.Background(), server.Client(), DataURL([]byte("png"), "image/png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
	assert.Equal(t, "image/png", mimeType)
}

func TestVerifier(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(jpegHeader)
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	})
	mux.HandleFunc("/missing.jpg", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	v := NewVerifier(time.Second)
	ctx := context.Background()

	assert.NoError(t, v.Verify(ctx, server.URL+"/ok.jpg"))
	assert.Error(t, v.Verify(ctx, server.URL+"/page"))
	assert.Error(t, v.Verify(ctx, server.URL+"/missing.jpg"))
	assert.Error(t, v.Verify(ctx, "data:image/jpeg;base64,AAAA"))
}
