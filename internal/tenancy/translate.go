package tenancy

import "strings"

// Internal namespaces. Tenant pages are served from a single
// default-locale namespace; the tenant itself travels in a request header,
// never in the path.
const (
	DefaultLocale   = "en"
	SchoolNamespace = "/" + DefaultLocale + "/schools"
	AdminNamespace  = "/" + DefaultLocale + "/admin"
)

// SupportedLocales are the locale codes that may prefix a public path.
var SupportedLocales = []string{"en", "fr", "ht"}

// authPrefixes are never translated: sign-in and friends are global flows
// shared by every tenant.
var authPrefixes = []string{"/auth", "/sign-in", "/sign-up", "/forgot-password", "/reset-password"}

// IsAuthPath reports whether path belongs to the global auth flow.
func IsAuthPath(path string) bool {
	for _, p := range authPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Translate rewrites a tenant-relative path to its canonical internal form
// under the school namespace. It is idempotent: a path already under the
// namespace comes back unchanged, so calling it twice is safe even though
// the middleware only calls it once per request.
//
//	/                 -> /en/schools
//	/programs/new     -> /en/schools/programs/new
//	/fr/programs/new  -> /en/schools/programs/new  (locale stripped, not re-added)
//	/en/schools/x     -> /en/schools/x             (unchanged)
//	/sign-in          -> /sign-in                  (auth is global)
func Translate(path string) string {
	return translate(path, SchoolNamespace)
}

// TranslateAdmin is Translate for the platform admin namespace.
func TranslateAdmin(path string) string {
	return translate(path, AdminNamespace)
}

func translate(path, namespace string) string {
	if path == namespace || strings.HasPrefix(path, namespace+"/") {
		return path
	}
	if IsAuthPath(path) {
		return path
	}

	stripped := StripLocale(path)
	// Re-check after the locale prefix is gone: /en/schools/... strips to
	// /schools/... which must not be double-prefixed, and a localized auth
	// link (/fr/sign-in) is still an auth path.
	if IsAuthPath(stripped) {
		return stripped
	}
	if stripped == namespace || strings.HasPrefix(stripped, namespace+"/") {
		return stripped
	}
	if stripped == "" || stripped == "/" {
		return namespace
	}
	return namespace + stripped
}

// StripLocale removes a leading supported-locale segment from path.
// "/fr/programs" -> "/programs", "/fr" -> "/", "/free" -> "/free".
func StripLocale(path string) string {
	for _, loc := range SupportedLocales {
		prefix := "/" + loc
		if path == prefix {
			return "/"
		}
		if strings.HasPrefix(path, prefix+"/") {
			return path[len(prefix):]
		}
	}
	return path
}
