package middlewares

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/cx-tal-miterani/airport-booking/internal/auth"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "X-Idempotency-Replayed"
	processingValue   = "PROCESSING"
	lockTTL           = 30 * time.Second
	resultTTL         = 24 * time.Hour
)

type storedResponse struct {
	RequestHash string          `json:"request_hash"`
	Status      int             `json:"status"`
	ContentType string          `json:"content_type"`
	Body        json.RawMessage `json:"body"`
}

// Idempotency replays the first successful response of a request that
// carries an Idempotency-Key. Keys are scoped to the caller and bound to
// the request body: reusing a key with another body gets 422. A request
// still in flight gets 409, and failed responses release the key so the
// client may retry. Without redis every request passes through.
func Idempotency(rdb redis.Cmdable, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(idempotencyHeader)
			if rdb == nil || key == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			caller, err := auth.CallerFrom(r.Context())
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				writeError(w, http.StatusBadRequest, "failed to read request body")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			requestHash := hashBody(body)

			idemKey := fmt.Sprintf("idempotency:%d:%s", caller.UserID, key)
			ctx := r.Context()

			val, err := rdb.Get(ctx, idemKey).Result()
			switch {
			case err == nil:
				replay(w, val, requestHash)
				return
			case !errors.Is(err, redis.Nil):
				log.WithError(err).Warn("idempotency: redis unavailable, skipping")
				next.ServeHTTP(w, r)
				return
			}

			acquired, err := rdb.SetNX(ctx, idemKey, processingValue, lockTTL).Result()
			if err != nil {
				log.WithError(err).Warn("idempotency: redis unavailable, skipping")
				next.ServeHTTP(w, r)
				return
			}
			if !acquired {
				writeError(w, http.StatusConflict, "a request with this Idempotency-Key is already in progress")
				return
			}

			rec := newRecorder(w, true)
			next.ServeHTTP(rec, r)

			if rec.status < 200 || rec.status >= 300 {
				if err := rdb.Del(ctx, idemKey).Err(); err != nil {
					log.WithError(err).Warn("idempotency: failed to release key")
				}
				return
			}

			payload, err := json.Marshal(storedResponse{
				RequestHash: requestHash,
				Status:      rec.status,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        json.RawMessage(rec.body.Bytes()),
			})
			if err == nil {
				err = rdb.Set(ctx, idemKey, payload, resultTTL).Err()
			}
			if err != nil {
				log.WithError(err).Warn("idempotency: failed to store response")
			}
		})
	}
}

func hashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func replay(w http.ResponseWriter, val, requestHash string) {
	if val == processingValue {
		writeError(w, http.StatusConflict, "a request with this Idempotency-Key is already in progress")
		return
	}

	var stored storedResponse
	if err := json.Unmarshal([]byte(val), &stored); err != nil {
		writeError(w, http.StatusConflict, "request already processed")
		return
	}
	if stored.RequestHash != requestHash {
		writeError(w, http.StatusUnprocessableEntity, "Idempotency-Key was already used with a different request body")
		return
	}

	if stored.ContentType != "" {
		w.Header().Set("Content-Type", stored.ContentType)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(stored.Status)
	w.Write(stored.Body)
}
