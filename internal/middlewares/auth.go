package middlewares

import (
	"net/http"
	"strings"

	"github.com/cx-tal-miterani/airport-booking/internal/auth"
)

type TokenParser interface {
	Parse(token string) (auth.Caller, error)
}

// Authenticate requires a bearer token and stores the caller in the request
// context. Browsers cannot set headers on websocket handshakes, so a
// token query parameter is accepted as well.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				writeError(w, http.StatusUnauthorized, auth.ErrUnauthenticated.Error())
				return
			}

			caller, err := tokens.Parse(raw)
			if err != nil {
				writeError(w, http.StatusUnauthorized, auth.ErrUnauthenticated.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithCaller(r.Context(), caller)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("token")
}

// AdminOrReadOnly lets any authenticated caller read and only staff write.
func AdminOrReadOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := auth.CallerFrom(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if !isSafeMethod(r.Method) && !caller.IsStaff {
			writeError(w, http.StatusForbidden, auth.ErrForbidden.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
