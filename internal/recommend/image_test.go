package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/menumate/internal/domain"
	"github.com/vbonduro/menumate/internal/search"
)

func TestResolvePrefersFoundPhoto(t *testing.T) {
	srch := &fakeSearch{images: []search.Image{
		{ImageURL: "", SourceURL: "https://ignored.example"},
		{ImageURL: "https://img.example/pizza.jpg", SourceURL: "https://yelp.example/luigis"},
	}}
	gen := &fakeGenerator{url: "https://gen.example/pizza.png"}
	ver := &fakeVerifier{}
	r := NewDishImageResolver(srch, gen, ver, nil)

	img := r.Resolve(context.Background(), "Luigi's", "Pizza", "Italian")

	assert.Equal(t, domain.DishImage{
		URL:        "https://img.example/pizza.jpg",
		Source:     domain.ImageFound,
		SourceLink: "https://yelp.example/luigis",
	}, img)
	assert.Equal(t, []string{"Luigi's Pizza"}, srch.imageQueries)
	assert.Empty(t, gen.prompts)
	assert.Equal(t, []string{"https://img.example/pizza.jpg"}, ver.checked)
}

func TestResolveGeneratesWhenSearchEmpty(t *testing.T) {
	srch := &fakeSearch{}
	gen := &fakeGenerator{url: "https://gen.example/pizza.png"}
	r := NewDishImageResolver(srch, gen, &fakeVerifier{}, nil)

	img := r.Resolve(context.Background(), "Luigi's", "Pizza", "Italian")

	assert.Equal(t, domain.ImageGenerated, img.Source)
	assert.Equal(t, "https://gen.example/pizza.png", img.URL)
	assert.Empty(t, img.SourceLink)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Pizza from Luigi's")
}

func TestResolveWithoutNameSkipsPhotoSearch(t *testing.T) {
	srch := &fakeSearch{images: []search.Image{{ImageURL: "https://img.example/x.jpg"}}}
	gen := &fakeGenerator{url: "https://gen.example/x.png"}
	r := NewDishImageResolver(srch, gen, &fakeVerifier{}, nil)

	img := r.Resolve(context.Background(), "", "Pho", "Vietnamese")

	assert.Empty(t, srch.imageQueries)
	assert.Equal(t, domain.ImageGenerated, img.Source)
}

func TestResolveVerificationFailureClearsImage(t *testing.T) {
	srch := &fakeSearch{images: []search.Image{{ImageURL: "https://img.example/pizza.jpg", SourceURL: "https://yelp.example"}}}
	r := NewDishImageResolver(srch, &fakeGenerator{}, &fakeVerifier{err: errors.New("404")}, nil)

	img := r.Resolve(context.Background(), "Luigi's", "Pizza", "Italian")

	assert.Equal(t, domain.DishImage{}, img)
}

func TestResolveNothingAvailable(t *testing.T) {
	ver := &fakeVerifier{}
	r := NewDishImageResolver(&fakeSearch{imagesErr: errors.New("down")}, &fakeGenerator{err: errors.New("quota")}, ver, nil)

	img := r.Resolve(context.Background(), "Luigi's", "Pizza", "Italian")

	assert.Equal(t, domain.DishImage{}, img)
	assert.Empty(t, ver.checked)
}

func TestResolveSkipsPlaceholderDish(t *testing.T) {
	srch := &fakeSearch{}
	gen := &fakeGenerator{url: "https://gen.example/x.png"}
	r := NewDishImageResolver(srch, gen, &fakeVerifier{}, nil)

	img := r.Resolve(context.Background(), "Luigi's", domain.NoDishPlaceholder, "Italian")

	assert.Equal(t, domain.DishImage{}, img)
	assert.Empty(t, srch.imageQueries)
	assert.Empty(t, gen.prompts)
}
