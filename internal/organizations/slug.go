package organizations

import (
	"context"
	"fmt"
	"strings"
)

const (
	slugMaxLen = 50
	// slugProbeLimit bounds the uniqueness probe. The UNIQUE constraint on
	// organizations.slug remains the final authority; the probe is an
	// optimization to pick a readable suffix.
	slugProbeLimit = 50
)

// Slugify derives a URL-safe slug from an organization name: lowercase, keep
// letters/digits/spaces/hyphens, collapse whitespace runs to single hyphens,
// collapse repeated hyphens, truncate to 50 characters.
func Slugify(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n':
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	slug := strings.Join(fields, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if len(slug) > slugMaxLen {
		slug = strings.Trim(slug[:slugMaxLen], "-")
	}
	return slug
}

// SlugProber reports whether a slug is already taken.
type SlugProber interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// ResolveSlug probes base, base-1, base-2, ... and returns the first unused
// candidate. The probe-then-insert sequence is not atomic under concurrent
// registrations; Create surfaces the constraint violation and the caller
// retries.
func ResolveSlug(ctx context.Context, prober SlugProber, base string) (string, error) {
	if base == "" {
		base = "org"
	}
	for i := 0; i <= slugProbeLimit; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		taken, err := prober.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("probe slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free slug for %q within %d probes", base, slugProbeLimit)
}
