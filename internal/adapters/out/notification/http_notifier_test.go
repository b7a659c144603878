package notification_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/notification"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPNotifier_Notify(t *testing.T) {
	received := make(chan ports.Notification, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/notifications" {
			http.NotFound(w, r)
			return
		}
		var n ports.Notification
		if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if n.Recipient == "reject@example.com" {
			http.Error(w, "unknown recipient", http.StatusUnprocessableEntity)
			return
		}
		received <- n
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	notifier := notification.NewHTTPNotifier(server.URL, time.Second)

	t.Run("delivered", func(t *testing.T) {
		err := notifier.Notify(t.Context(), ports.Notification{
			Channel:   ports.AudienceCustomer,
			Recipient: "amaya@example.com",
			Message:   "Order confirmed",
		})
		require.NoError(t, err)

		got := <-received
		assert.Equal(t, "customer", got.Channel)
		assert.Equal(t, "amaya@example.com", got.Recipient)
		assert.Equal(t, "Order confirmed", got.Message)
	})

	t.Run("rejected", func(t *testing.T) {
		err := notifier.Notify(t.Context(), ports.Notification{
			Channel: ports.AudienceCustomer, Recipient: "reject@example.com", Message: "x",
		})
		require.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
	})

	t.Run("incomplete notification", func(t *testing.T) {
		err := notifier.Notify(t.Context(), ports.Notification{Channel: ports.AudienceDriver})
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}
