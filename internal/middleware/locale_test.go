package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func runLocale(t *testing.T, lookup CountryLookup, configure func(*http.Request)) (locale, country string) {
	t.Helper()
	handler := Locale("en", []string{"en", "fr", "de"}, lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale = LocaleFromContext(r.Context())
		country = CountryFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.RemoteAddr = "203.0.113.1:4444"
	if configure != nil {
		configure(req)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return locale, country
}

func TestLocaleDefault(t *testing.T) {
	locale, _ := runLocale(t, nil, nil)
	if locale != "en" {
		t.Fatalf("locale = %q, want en", locale)
	}
}

func TestLocaleFromXLocaleHeader(t *testing.T) {
	locale, _ := runLocale(t, nil, func(r *http.Request) {
		r.Header.Set("X-Locale", "fr")
	})
	if locale != "fr" {
		t.Fatalf("locale = %q, want fr", locale)
	}
}

func TestLocaleFromAcceptLanguage(t *testing.T) {
	locale, _ := runLocale(t, nil, func(r *http.Request) {
		r.Header.Set("Accept-Language", "de-CH, de;q=0.9, en;q=0.5")
	})
	if locale != "de" {
		t.Fatalf("locale = %q, want de", locale)
	}
}

func TestLocaleUnsupportedFallsBack(t *testing.T) {
	locale, _ := runLocale(t, nil, func(r *http.Request) {
		r.Header.Set("Accept-Language", "ja")
	})
	if locale != "en" {
		t.Fatalf("locale = %q, want en", locale)
	}
}

func TestCountryLookupAnnotatesContext(t *testing.T) {
	lookup := func(ip string) (string, error) {
		if ip != "203.0.113.1" {
			t.Fatalf("unexpected lookup ip: %s", ip)
		}
		return "au", nil
	}
	_, country := runLocale(t, lookup, nil)
	if country != "AU" {
		t.Fatalf("country = %q, want AU", country)
	}
}

func TestCountryLookupFailureIgnored(t *testing.T) {
	lookup := func(string) (string, error) { return "", errors.New("no database") }
	locale, country := runLocale(t, lookup, nil)
	if locale != "en" || country != "" {
		t.Fatalf("got locale %q country %q", locale, country)
	}
}
