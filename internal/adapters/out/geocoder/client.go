// Package geocoder resolves addresses with a Nominatim-compatible search API.
package geocoder

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fulfillment/internal/adapters/out/httpclient"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// userAgent identifies the service as the Nominatim usage policy requires.
const userAgent = "fulfillment-service/1.0"

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Client implements ports.Geocoder and returns the best match only.
type Client struct {
	http *httpclient.Client
}

var _ ports.Geocoder = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{http: httpclient.New("geocoder", baseURL, timeout)}
}

func (c *Client) Geocode(ctx context.Context, address string) (kernel.Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return kernel.Location{}, errs.NewValueIsRequiredError("address")
	}

	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")
	path := "/search?" + params.Encode()

	var places []place
	resp, err := c.http.Do(ctx, http.MethodGet, path, nil, map[string]string{"User-Agent": userAgent}, &places)
	if err != nil {
		return kernel.Location{}, err
	}
	if !resp.IsSuccess() {
		return kernel.Location{}, c.http.Unexpected(http.MethodGet, "/search", resp)
	}
	if len(places) == 0 {
		return kernel.Location{}, errs.NewObjectNotFoundError("address", address)
	}

	lat, latErr := strconv.ParseFloat(places[0].Lat, 64)
	lng, lngErr := strconv.ParseFloat(places[0].Lon, 64)
	if latErr != nil || lngErr != nil {
		return kernel.Location{}, errs.NewUpstreamUnavailableErrorWithCause(c.http.Service(),
			fmt.Errorf("malformed coordinates %q,%q", places[0].Lat, places[0].Lon))
	}

	// ParseFloat accepts "NaN" and "Inf"; the range check in NewLocation
	// rejects them, and a bad answer is the upstream's fault.
	loc, err := kernel.NewLocation(lat, lng)
	if err != nil {
		return kernel.Location{}, errs.NewUpstreamUnavailableErrorWithCause(c.http.Service(), err)
	}
	return loc, nil
}
