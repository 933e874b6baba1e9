package organizations

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Acme Clinic", "acme-clinic"},
		{"Acme Clinic!!", "acme-clinic"},
		{"  Acme   Clinic  ", "acme-clinic"},
		{"ACME-CLINIC", "acme-clinic"},
		{"Acme --- Clinic", "acme-clinic"},
		{"Acme & Sons, LLC", "acme-sons-llc"},
		{"café", "caf"},
		{"123 Go", "123-go"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.name), "name %q", tt.name)
	}
}

func TestSlugifyTruncates(t *testing.T) {
	long := strings.Repeat("a", 80)
	got := Slugify(long)
	assert.Len(t, got, 50)

	// truncation never leaves a trailing hyphen
	boundary := strings.Repeat("a", 49) + " bcd"
	got = Slugify(boundary)
	assert.LessOrEqual(t, len(got), 50)
	assert.False(t, strings.HasSuffix(got, "-"))
}

type fakeProber struct {
	taken map[string]bool
	err   error
}

func (f *fakeProber) SlugExists(ctx context.Context, slug string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.taken[slug], nil
}

func TestResolveSlug(t *testing.T) {
	ctx := context.Background()

	slug, err := ResolveSlug(ctx, &fakeProber{taken: map[string]bool{}}, "acme-clinic")
	require.NoError(t, err)
	assert.Equal(t, "acme-clinic", slug)

	slug, err = ResolveSlug(ctx, &fakeProber{taken: map[string]bool{"acme-clinic": true}}, "acme-clinic")
	require.NoError(t, err)
	assert.Equal(t, "acme-clinic-1", slug)

	slug, err = ResolveSlug(ctx, &fakeProber{taken: map[string]bool{
		"acme-clinic":   true,
		"acme-clinic-1": true,
		"acme-clinic-2": true,
	}}, "acme-clinic")
	require.NoError(t, err)
	assert.Equal(t, "acme-clinic-3", slug)
}

func TestResolveSlugEmptyBase(t *testing.T) {
	slug, err := ResolveSlug(context.Background(), &fakeProber{taken: map[string]bool{}}, "")
	require.NoError(t, err)
	assert.Equal(t, "org", slug)
}

func TestResolveSlugExhausted(t *testing.T) {
	all := &fakeProber{taken: map[string]bool{"x": true}}
	for i := 1; i <= slugProbeLimit; i++ {
		all.taken["x-"+strconv.Itoa(i)] = true
	}
	_, err := ResolveSlug(context.Background(), all, "x")
	assert.Error(t, err)
}
