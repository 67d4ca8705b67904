package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecart/commerce/internal/events"
	"github.com/bluecart/commerce/internal/infrastructure/memory"
	"github.com/bluecart/commerce/internal/order"
	"github.com/bluecart/commerce/internal/platform/clock"
	"github.com/bluecart/commerce/internal/platform/config"
	"github.com/bluecart/commerce/internal/transport/http/handlers"
)

type recordingPub struct{}

func (recordingPub) Publish(ctx context.Context, eventType string, data any, meta events.Metadata) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		ServiceName: "order-service",
		JWTSecret:   "test-secret",
		JWTIssuer:   "bluecart",
	}
}

func bearer(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    "bluecart",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return "Bearer " + signed
}

func newOrdersRouter(t *testing.T) http.Handler {
	t.Helper()
	svc := order.New(memory.NewOrderRepo(), recordingPub{}, clock.System{}, zerolog.Nop())
	return Orders(testConfig(), zerolog.Nop(), handlers.NewOrderHandler(svc))
}

func TestOrdersRouter(t *testing.T) {
	t.Run("healthz_is_public", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newOrdersRouter(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "order-service")
	})

	t.Run("metrics_is_public", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newOrdersRouter(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("orders_require_auth", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newOrdersRouter(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/orders/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("create_then_get", func(t *testing.T) {
		r := newOrdersRouter(t)
		auth := bearer(t, "u1")

		body := `{"items":[{"productId":"prod-1","quantity":2,"price":10}],"totalAmount":20}`
		req := httptest.NewRequest(http.MethodPost, "/api/orders/", strings.NewReader(body))
		req.Header.Set("Authorization", auth)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		var created struct {
			Data struct {
				ID     string `json:"id"`
				UserID string `json:"userId"`
				Status string `json:"status"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
		assert.Equal(t, "u1", created.Data.UserID)
		assert.Equal(t, "pending", created.Data.Status)

		getReq := httptest.NewRequest(http.MethodGet, "/api/orders/"+created.Data.ID, nil)
		getReq.Header.Set("Authorization", auth)
		getRR := httptest.NewRecorder()
		r.ServeHTTP(getRR, getReq)
		assert.Equal(t, http.StatusOK, getRR.Code)
	})

	t.Run("foreign_order_hidden", func(t *testing.T) {
		r := newOrdersRouter(t)

		body := `{"items":[{"productId":"prod-1","quantity":1,"price":5}],"totalAmount":5}`
		req := httptest.NewRequest(http.MethodPost, "/api/orders/", strings.NewReader(body))
		req.Header.Set("Authorization", bearer(t, "u1"))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		require.Equal(t, http.StatusCreated, rr.Code)

		var created struct {
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

		getReq := httptest.NewRequest(http.MethodGet, "/api/orders/"+created.Data.ID, nil)
		getReq.Header.Set("Authorization", bearer(t, "u2"))
		getRR := httptest.NewRecorder()
		r.ServeHTTP(getRR, getReq)
		assert.Equal(t, http.StatusNotFound, getRR.Code)
	})

	t.Run("invalid_body_is_400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/orders/", strings.NewReader("not json"))
		req.Header.Set("Authorization", bearer(t, "u1"))
		rr := httptest.NewRecorder()
		newOrdersRouter(t).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
