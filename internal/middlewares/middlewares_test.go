package middlewares

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cx-tal-miterani/airport-booking/internal/auth"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func callerEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := auth.CallerFrom(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"user_id": caller.UserID, "is_staff": caller.IsStaff})
	})
}

func TestAuthenticate(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	token, err := issuer.Issue(7, true)
	require.NoError(t, err)

	h := Authenticate(issuer)(callerEcho())

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/airport/orders/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"user_id":7,"is_staff":true}`, rr.Body.String())
	})

	t.Run("query token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ws/flights/1?token="+token, nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/airport/orders/", nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "error")
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/airport/orders/", nil)
		req.Header.Set("Authorization", "Basic "+token)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("forged token", func(t *testing.T) {
		forged, err := auth.NewIssuer("other-secret", time.Hour).Issue(7, true)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/airport/orders/", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAdminOrReadOnly(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := AdminOrReadOnly(ok)

	tests := []struct {
		name   string
		method string
		caller *auth.Caller
		want   int
	}{
		{name: "anonymous read", method: http.MethodGet, want: http.StatusUnauthorized},
		{name: "user read", method: http.MethodGet, caller: &auth.Caller{UserID: 1}, want: http.StatusNoContent},
		{name: "user write", method: http.MethodPost, caller: &auth.Caller{UserID: 1}, want: http.StatusForbidden},
		{name: "user delete", method: http.MethodDelete, caller: &auth.Caller{UserID: 1}, want: http.StatusForbidden},
		{name: "staff write", method: http.MethodPatch, caller: &auth.Caller{UserID: 2, IsStaff: true}, want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/airport/countries/", nil)
			if tt.caller != nil {
				req = req.WithContext(auth.WithCaller(req.Context(), *tt.caller))
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodOptions, "/api/airport/orders/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
	assert.False(t, called)
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	h := RequestLogger(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/airport/orders/", nil))
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc", rr.Header().Get(requestIDHeader))
}

func TestMetrics_PassesThrough(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Metrics)
	r.HandleFunc("/api/airport/flights/{id}/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/airport/flights/3/", nil))
	assert.Equal(t, http.StatusAccepted, rr.Code)
}

func withCaller(r *http.Request, userID int64) *http.Request {
	return r.WithContext(auth.WithCaller(r.Context(), auth.Caller{UserID: userID}))
}

func TestIdempotency(t *testing.T) {
	const key = "idempotency:5:abc"
	body := `{"id":10}`

	created := func(calls *int) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*calls++
			// the handler still sees the full body
			got, _ := io.ReadAll(r.Body)
			if len(got) == 0 {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(body))
		})
	}

	const orderBody = `{"tickets":[{"row":1,"seat":1,"flight":3}]}`
	newRequestWith := func(reqBody string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/airport/orders/", strings.NewReader(reqBody))
		req.Header.Set(idempotencyHeader, "abc")
		return withCaller(req, 5)
	}
	newRequest := func() *http.Request { return newRequestWith(orderBody) }

	stored := func() []byte {
		payload, err := json.Marshal(storedResponse{
			RequestHash: hashBody([]byte(orderBody)),
			Status:      http.StatusCreated,
			ContentType: "application/json",
			Body:        json.RawMessage(body),
		})
		require.NoError(t, err)
		return payload
	}

	t.Run("first request stores the response", func(t *testing.T) {
		db, mock := redismock.NewClientMock()

		mock.ExpectGet(key).RedisNil()
		mock.ExpectSetNX(key, processingValue, lockTTL).SetVal(true)
		mock.ExpectSet(key, stored(), resultTTL).SetVal("OK")

		calls := 0
		rr := httptest.NewRecorder()
		Idempotency(db, quietLogger())(created(&calls)).ServeHTTP(rr, newRequest())

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, body, rr.Body.String())
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("repeat replays the stored response", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectGet(key).SetVal(string(stored()))

		calls := 0
		rr := httptest.NewRecorder()
		Idempotency(db, quietLogger())(created(&calls)).ServeHTTP(rr, newRequest())

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.JSONEq(t, body, rr.Body.String())
		assert.Equal(t, "true", rr.Header().Get(replayedHeader))
		assert.Zero(t, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("same key with another body is rejected", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectGet(key).SetVal(string(stored()))

		calls := 0
		rr := httptest.NewRecorder()
		other := newRequestWith(`{"tickets":[{"row":2,"seat":2,"flight":3}]}`)
		Idempotency(db, quietLogger())(created(&calls)).ServeHTTP(rr, other)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Empty(t, rr.Header().Get(replayedHeader))
		assert.Zero(t, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("in flight request conflicts", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectGet(key).SetVal(processingValue)

		calls := 0
		rr := httptest.NewRecorder()
		Idempotency(db, quietLogger())(created(&calls)).ServeHTTP(rr, newRequest())

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Zero(t, calls)
	})

	t.Run("lost lock race conflicts", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectGet(key).RedisNil()
		mock.ExpectSetNX(key, processingValue, lockTTL).SetVal(false)

		calls := 0
		rr := httptest.NewRecorder()
		Idempotency(db, quietLogger())(created(&calls)).ServeHTTP(rr, newRequest())

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Zero(t, calls)
	})

	t.Run("failed response releases the key", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectGet(key).RedisNil()
		mock.ExpectSetNX(key, processingValue, lockTTL).SetVal(true)
		mock.ExpectDel(key).SetVal(1)

		failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusConflict, "seat is already taken")
		})
		rr := httptest.NewRecorder()
		Idempotency(db, quietLogger())(failing).ServeHTTP(rr, newRequest())

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis outage passes through", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectGet(key).SetErr(errors.New("connection refused"))

		calls := 0
		rr := httptest.NewRecorder()
		Idempotency(db, quietLogger())(created(&calls)).ServeHTTP(rr, newRequest())

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, 1, calls)
	})

	t.Run("no key or no redis passes through", func(t *testing.T) {
		calls := 0
		req := withCaller(httptest.NewRequest(http.MethodPost, "/api/airport/orders/", strings.NewReader(orderBody)), 5)
		rr := httptest.NewRecorder()
		db, _ := redismock.NewClientMock()
		Idempotency(db, quietLogger())(created(&calls)).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusCreated, rr.Code)

		rr = httptest.NewRecorder()
		Idempotency(nil, quietLogger())(created(&calls)).ServeHTTP(rr, newRequest())
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, 2, calls)
	})
}
