package tenancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		// loopback / development hosts
		{"localhost", ""},
		{"localhost:3000", ""},
		{"127.0.0.1", ""},
		{"127.0.0.1:8080", ""},
		{"[::1]:8080", ""},
		{"quisqueya.localhost", ""},

		// apex and bare domains
		{"campushaiti.org", ""},
		{"campushaiti.org:443", ""},

		// standard tenant subdomains
		{"quisqueya.campushaiti.org", "quisqueya"},
		{"uni-notre-dame.campushaiti.org", "uni-notre-dame"},
		{"QUISQUEYA.campushaiti.org", "quisqueya"},
		{"quisqueya.campushaiti.org:443", "quisqueya"},

		// preview hosting: 3 labels is the deployment apex, 4+ carries a slug
		{"campus-haiti.vercel.app", ""},
		{"quisqueya.campus-haiti.vercel.app", "quisqueya"},
		{"quisqueya.campus-haiti-git-main.vercel.app", "quisqueya"},

		// reserved names are never tenants
		{"www.campushaiti.org", ""},
		{"admin.campushaiti.org", ""},
		{"api.campushaiti.org", ""},
		{"app.campushaiti.org", ""},
		{"staging.campushaiti.org", ""},
		{"dev.campushaiti.org", ""},
		{"test.campushaiti.org", ""},
		{"campushaiti.campushaiti.org", ""},
		{"admin.campus-haiti.vercel.app", ""},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.host))
		})
	}
}

func TestCandidate_SeesReservedNames(t *testing.T) {
	// The middleware distinguishes the admin subdomain via Candidate;
	// Resolve deliberately hides it.
	assert.Equal(t, "admin", Candidate("admin.campushaiti.org"))
	assert.Equal(t, "", Resolve("admin.campushaiti.org"))
}

func TestValidSlug(t *testing.T) {
	valid := []string{"quisqueya", "uni-notre-dame", "a", "u2", "a-b-c"}
	for _, s := range valid {
		assert.True(t, ValidSlug(s), s)
	}

	invalid := []string{"", "-quisqueya", "quisqueya-", "Quisqueya", "uni--nd", "uni_nd", "uni.nd"}
	for _, s := range invalid {
		assert.False(t, ValidSlug(s), s)
	}
}

func TestReserved(t *testing.T) {
	for _, name := range []string{"www", "admin", "api", "app", "staging", "dev", "test", "campushaiti"} {
		assert.True(t, Reserved(name), name)
	}
	assert.False(t, Reserved("quisqueya"))
}
