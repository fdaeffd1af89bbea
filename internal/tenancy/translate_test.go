package tenancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"root maps to landing", "/", "/en/schools"},
		{"empty maps to landing", "", "/en/schools"},
		{"plain path is prefixed", "/programs/new", "/en/schools/programs/new"},
		{"dashboard", "/dashboard", "/en/schools/dashboard"},
		{"locale prefix stripped, not re-added", "/fr/programs/new", "/en/schools/programs/new"},
		{"ht locale stripped", "/ht/apply", "/en/schools/apply"},
		{"bare locale maps to landing", "/fr", "/en/schools"},
		{"locale-like segment kept", "/free/stuff", "/en/schools/free/stuff"},
		{"already translated", "/en/schools/programs/new", "/en/schools/programs/new"},
		{"namespace root unchanged", "/en/schools", "/en/schools"},
		{"auth passes through", "/sign-in", "/sign-in"},
		{"auth subtree passes through", "/auth/callback", "/auth/callback"},
		{"reset password passes through", "/reset-password/tok-123", "/reset-password/tok-123"},
		{"localized auth stays auth", "/fr/sign-in", "/sign-in"},
		{"localized auth subtree stays auth", "/ht/auth/callback", "/auth/callback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Translate(tt.path))
		})
	}
}

func TestTranslate_Idempotent(t *testing.T) {
	paths := []string{"/", "/programs/new", "/fr/programs", "/en/schools/x", "/sign-in", "/fr/sign-in", "/deep/a/b/c"}
	for _, p := range paths {
		once := Translate(p)
		assert.Equal(t, once, Translate(once), p)
	}
}

func TestTranslateAdmin(t *testing.T) {
	assert.Equal(t, "/en/admin/users", TranslateAdmin("/users"))
	assert.Equal(t, "/en/admin", TranslateAdmin("/"))
	assert.Equal(t, "/en/admin/users", TranslateAdmin("/en/admin/users"))
	assert.Equal(t, "/en/admin/users", TranslateAdmin("/fr/users"))
	assert.Equal(t, "/sign-in", TranslateAdmin("/sign-in"))
	assert.Equal(t, "/sign-in", TranslateAdmin("/fr/sign-in"))
}

func TestStripLocale(t *testing.T) {
	assert.Equal(t, "/programs", StripLocale("/fr/programs"))
	assert.Equal(t, "/", StripLocale("/en"))
	assert.Equal(t, "/free", StripLocale("/free"))
	assert.Equal(t, "/x/en/y", StripLocale("/x/en/y"))
}
