package recommend

import (
	"context"
	"errors"
	"sync"

	"github.com/vbonduro/menumate/internal/reasoning"
	"github.com/vbonduro/menumate/internal/search"
)

type reply struct {
	out string
	err error
}

type fakeReasoner struct {
	mu       sync.Mutex
	replies  []reply
	requests []reasoning.Request
}

func (f *fakeReasoner) Complete(_ context.Context, req reasoning.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if len(f.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r.out, r.err
}

type fakeSearch struct {
	mu           sync.Mutex
	web          map[string][]search.Result
	images       []search.Image
	webErr       error
	imagesErr    error
	webQueries   []string
	imageQueries []string
}

func (f *fakeSearch) Web(_ context.Context, query string, _ int) ([]search.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.webQueries = append(f.webQueries, query)
	if f.webErr != nil {
		return nil, f.webErr
	}
	return f.web[query], nil
}

func (f *fakeSearch) Images(_ context.Context, query string, _ int) ([]search.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageQueries = append(f.imageQueries, query)
	return f.images, f.imagesErr
}

type fakeGenerator struct {
	url     string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.url, f.err
}

type fakeVerifier struct {
	err     error
	checked []string
}

func (f *fakeVerifier) Verify(_ context.Context, url string) error {
	f.checked = append(f.checked, url)
	return f.err
}
