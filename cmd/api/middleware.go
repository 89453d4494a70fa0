package main

import (
	"net"
	"net/http"

	"festive/internal/i18n"
)

func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.config.rateLimiter.Enabled {
			if allow, retryAfter := app.rateLimiter.Allow(clientIP(r)); !allow {
				app.rateLimitExceededResponse(w, r, retryAfter)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP is the remote address without its port. middleware.RealIP has
// already swapped in the proxy-reported address when there is one.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// requestLang picks the response language from an explicit choice, the
// ?lang= query parameter or Accept-Language, in that order.
func requestLang(r *http.Request, explicit string) i18n.Lang {
	if explicit == "" {
		explicit = r.URL.Query().Get("lang")
	}
	return i18n.Negotiate(explicit, r.Header.Get("Accept-Language"))
}
