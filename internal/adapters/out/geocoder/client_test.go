package geocoder_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/geocoder"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Geocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		switch r.URL.Query().Get("q") {
		case "12 Galle Rd, Colombo 04":
			_, _ = w.Write([]byte(`[{"lat":"6.8905","lon":"79.8567","display_name":"Galle Road"}]`))
		case "garbled":
			_, _ = w.Write([]byte(`[{"lat":"north","lon":"79.8"}]`))
		case "not a number":
			_, _ = w.Write([]byte(`[{"lat":"NaN","lon":"79.8"}]`))
		case "nowhere":
			_, _ = w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}))
	defer server.Close()

	client := geocoder.NewClient(server.URL, time.Second)

	t.Run("found", func(t *testing.T) {
		loc, err := client.Geocode(t.Context(), "  12 Galle Rd, Colombo 04 ")
		require.NoError(t, err)
		assert.InDelta(t, 6.8905, loc.Lat(), 1e-9)
		assert.InDelta(t, 79.8567, loc.Lng(), 1e-9)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := client.Geocode(t.Context(), "nowhere")
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("malformed coordinates", func(t *testing.T) {
		_, err := client.Geocode(t.Context(), "garbled")
		require.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
	})

	t.Run("NaN coordinates", func(t *testing.T) {
		_, err := client.Geocode(t.Context(), "not a number")
		require.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
		assert.NotErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("rate limited", func(t *testing.T) {
		_, err := client.Geocode(t.Context(), "anything else")
		require.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
	})

	t.Run("empty address", func(t *testing.T) {
		_, err := client.Geocode(t.Context(), " ")
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}
