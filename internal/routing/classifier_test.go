package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want RouteClass
	}{
		{"/login", ClassAuth},
		{"/register", ClassAuth},
		{"/register-org", ClassAuth},
		{"/login?next=%2Fdashboard", ClassAuth},
		{"/register/", ClassAuth},

		{"/org/acme-clinic", ClassOrgScoped},
		{"/org/acme-clinic/dashboard", ClassOrgScoped},
		{"/org/x?tab=requests", ClassOrgScoped},

		{"/dashboard", ClassLegacyProtected},
		{"/dashboard/settings", ClassLegacyProtected},
		{"/admin", ClassLegacyProtected},
		{"/calendar", ClassLegacyProtected},
		{"/calendar/", ClassLegacyProtected},

		{"/", ClassPublic},
		{"", ClassPublic},
		{"/about", ClassPublic},
		{"/health", ClassPublic},
		// prefix match stops at the path segment text, not a segment boundary;
		// /organization does not start with "/org/"
		{"/organization", ClassPublic},
		// trailing slash is stripped before prefix matching, so the bare /org
		// page is public while anything under it is tenant-scoped
		{"/org", ClassPublic},
		{"/org/", ClassPublic},
		// case-sensitive
		{"/Login", ClassPublic},
		{"/DASHBOARD", ClassPublic},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.path), "path %q", tt.path)
	}
}

func TestIsProtected(t *testing.T) {
	assert.True(t, IsProtected("/org/acme"))
	assert.True(t, IsProtected("/dashboard"))
	assert.True(t, IsProtected("/admin/users"))
	assert.True(t, IsProtected("/calendar"))

	assert.False(t, IsProtected("/login"))
	assert.False(t, IsProtected("/register"))
	assert.False(t, IsProtected("/"))
	assert.False(t, IsProtected("/pricing"))
}
