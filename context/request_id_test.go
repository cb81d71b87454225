package context

import (
	stdctx "context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		id := NewRequestID()
		ctx := WithRequestID(stdctx.Background(), id)
		assert.Equal(t, id, RequestIDFromContext(ctx))
	})

	t.Run("Missing", func(t *testing.T) {
		assert.Equal(t, "", RequestIDFromContext(stdctx.Background()))
	})
}

func TestMiddleware(t *testing.T) {
	var seen string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	t.Run("GeneratesID", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("KeepsCallerID", func(t *testing.T) {
		id := NewRequestID()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, id)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, id, seen)
	})

	t.Run("ReplacesGarbage", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, "not-a-uuid")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.NotEqual(t, "not-a-uuid", seen)
	})
}
