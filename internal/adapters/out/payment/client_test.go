package payment_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/payment"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(t *testing.T, handler http.HandlerFunc) *payment.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return payment.NewClient(server.URL, 200*time.Millisecond)
}

func request() ports.PaymentRequest {
	return ports.PaymentRequest{
		OrderID:  kernel.NewUUID(),
		Amount:   kernel.MustMoney("1305"),
		Currency: "LKR",
		Method:   order.PaymentMethodCard,
	}
}

func TestClient_Capture(t *testing.T) {
	t.Run("succeeded", func(t *testing.T) {
		req := request()
		gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/payments/capture", r.URL.Path)
			assert.Equal(t, req.OrderID.String(), r.Header.Get("Idempotency-Key"))

			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, req.OrderID.String(), body["orderId"])
			assert.InDelta(t, 1305.0, body["amount"], 1e-9)
			assert.Equal(t, "LKR", body["currency"])
			assert.Equal(t, "card", body["method"])

			_, _ = w.Write([]byte(`{"status":"succeeded","transactionId":"tx-1"}`))
		})

		result, err := gateway.Capture(t.Context(), req)
		require.NoError(t, err)
		assert.True(t, result.Succeeded)
		assert.Equal(t, "tx-1", result.TransactionID)
	})

	t.Run("failed status is a decline", func(t *testing.T) {
		gateway := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"failed","transactionId":"tx-2","reason":"insufficient funds"}`))
		})

		result, err := gateway.Capture(t.Context(), request())
		require.NoError(t, err)
		assert.False(t, result.Succeeded)
		assert.Equal(t, "insufficient funds", result.Reason)
	})

	t.Run("402 is a decline", func(t *testing.T) {
		gateway := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
			_, _ = w.Write([]byte(`{"status":"failed"}`))
		})

		result, err := gateway.Capture(t.Context(), request())
		require.NoError(t, err)
		assert.False(t, result.Succeeded)
		assert.Equal(t, "payment declined", result.Reason)
	})

	t.Run("timeout is unknown outcome", func(t *testing.T) {
		gateway := newGateway(t, func(_ http.ResponseWriter, _ *http.Request) {
			time.Sleep(500 * time.Millisecond)
		})

		_, err := gateway.Capture(t.Context(), request())
		require.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
	})

	t.Run("unknown status is unknown outcome", func(t *testing.T) {
		gateway := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"processing"}`))
		})

		_, err := gateway.Capture(t.Context(), request())
		require.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
	})

	t.Run("rejected request is unknown outcome", func(t *testing.T) {
		gateway := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
		})

		_, err := gateway.Capture(t.Context(), request())
		require.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
	})
}
