package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestEngineDecide(t *testing.T) {
	e := NewEngine("https://id.example.com", zap.NewNop())
	assert.True(t, e.Enabled())

	tests := []struct {
		name          string
		path          string
		authenticated bool
		wantRedirect  string
	}{
		{"unauthenticated on org page", "/org/acme", false, "/login"},
		{"unauthenticated on legacy page", "/dashboard", false, "/login"},
		{"unauthenticated on auth page", "/login", false, ""},
		{"unauthenticated on public page", "/", false, ""},

		{"authenticated on org page", "/org/acme", true, ""},
		{"authenticated on legacy page", "/dashboard", true, ""},
		{"authenticated on auth page", "/login", true, "/"},
		{"authenticated on register page", "/register", true, "/"},
		{"authenticated on public page", "/pricing", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := e.Decide(tt.path, tt.authenticated)
			assert.False(t, d.Skipped)
			assert.Equal(t, tt.wantRedirect, d.RedirectTo)
			assert.Equal(t, tt.wantRedirect == "", d.None())
		})
	}
}

func TestEngineDisabledSkipsEveryDecision(t *testing.T) {
	e := NewEngine("", zap.NewNop())
	assert.False(t, e.Enabled())

	for _, path := range []string{"/org/acme", "/dashboard", "/login", "/"} {
		for _, authenticated := range []bool{true, false} {
			d := e.Decide(path, authenticated)
			assert.True(t, d.Skipped, "path %q", path)
			// skipped means no enforcement, never a redirect
			assert.Empty(t, d.RedirectTo)
			assert.True(t, d.None())
		}
	}
}
