// Package catalog reads restaurants and menu items from the restaurant
// catalog service over HTTP.
package catalog

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"fulfillment/internal/adapters/out/httpclient"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

type restaurantResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

type menuItemResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable bool            `json:"isAvailable"`
}

// Client implements ports.RestaurantCatalog.
type Client struct {
	http *httpclient.Client
}

var _ ports.RestaurantCatalog = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{http: httpclient.New("catalog", baseURL, timeout)}
}

func (c *Client) GetRestaurant(ctx context.Context, restaurantID kernel.UUID) (ports.Restaurant, error) {
	if err := restaurantID.Validate(); err != nil {
		return ports.Restaurant{}, err
	}

	path := "/restaurants/" + restaurantID.String()
	var body restaurantResponse
	resp, err := c.http.Do(ctx, http.MethodGet, path, nil, nil, &body)
	if err != nil {
		return ports.Restaurant{}, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return ports.Restaurant{}, errs.NewObjectNotFoundError("restaurantId", restaurantID.String())
	}
	if !resp.IsSuccess() {
		return ports.Restaurant{}, c.http.Unexpected(http.MethodGet, path, resp)
	}

	return ports.Restaurant{
		ID:      restaurantID,
		Name:    body.Name,
		Address: body.Address,
		Email:   body.Email,
		Phone:   body.Phone,
	}, nil
}

func (c *Client) GetMenuItem(ctx context.Context, restaurantID kernel.UUID, itemID string) (ports.MenuItem, error) {
	if err := restaurantID.Validate(); err != nil {
		return ports.MenuItem{}, err
	}
	if itemID == "" {
		return ports.MenuItem{}, errs.NewValueIsRequiredError("itemId")
	}

	path := "/restaurants/" + restaurantID.String() + "/menu-items/" + url.PathEscape(itemID)
	var body menuItemResponse
	resp, err := c.http.Do(ctx, http.MethodGet, path, nil, nil, &body)
	if err != nil {
		return ports.MenuItem{}, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return ports.MenuItem{}, errs.NewObjectNotFoundError("itemId", itemID)
	}
	if !resp.IsSuccess() {
		return ports.MenuItem{}, c.http.Unexpected(http.MethodGet, path, resp)
	}

	price, err := kernel.NewMoney(body.Price)
	if err != nil {
		return ports.MenuItem{}, errs.NewUpstreamUnavailableErrorWithCause(c.http.Service(), err)
	}

	return ports.MenuItem{
		ID:          itemID,
		Name:        body.Name,
		Price:       price,
		IsAvailable: body.IsAvailable,
	}, nil
}
