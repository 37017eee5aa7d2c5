package middleware

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}
type countryContextKey struct{}

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// Locale resolves the request locale from the X-Locale header, then the
// Accept-Language header matched against the supported set, and annotates
// the context with the caller's country when a GeoIP lookup is available.
func Locale(defaultLocale string, supported []string, lookup CountryLookup) func(http.Handler) http.Handler {
	tags := make([]language.Tag, 0, len(supported))
	locales := make([]string, 0, len(supported))
	for _, loc := range supported {
		tag, err := language.Parse(loc)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		locales = append(locales, loc)
	}
	if len(tags) == 0 {
		tags = []language.Tag{language.English}
		locales = []string{"en"}
	}
	matcher := language.NewMatcher(tags)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, matcher, locales, defaultLocale)
			ctx := context.WithValue(r.Context(), localeContextKey{}, locale)

			if lookup != nil {
				if country, err := lookup(clientIPForRateLimit(r)); err == nil && country != "" {
					ctx = context.WithValue(ctx, countryContextKey{}, strings.ToUpper(country))
				}
			}

			w.Header().Set("Content-Language", locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, matcher language.Matcher, locales []string, fallback string) string {
	header := r.Header.Get("X-Locale")
	if header == "" {
		header = r.Header.Get("Accept-Language")
	}
	if header == "" {
		if fallback != "" {
			return fallback
		}
		return locales[0]
	}
	wanted, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(wanted) == 0 {
		if fallback != "" {
			return fallback
		}
		return locales[0]
	}
	_, idx, _ := matcher.Match(wanted...)
	return locales[idx]
}

// LocaleFromContext returns the locale resolved for the request, or "" when
// the middleware did not run.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(localeContextKey{}).(string); ok {
		return v
	}
	return ""
}

// CountryFromContext returns the ISO country code resolved for the request,
// or "" when unknown.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(countryContextKey{}).(string); ok {
		return v
	}
	return ""
}
