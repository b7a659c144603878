// Package payment captures order payments through the payment service.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fulfillment/internal/adapters/out/httpclient"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const capturePath = "/payments/capture"

const (
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
)

type captureRequest struct {
	OrderID  string      `json:"orderId"`
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency"`
	Method   string      `json:"method"`
}

type captureResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
	Reason        string `json:"reason"`
}

// Client implements ports.PaymentGateway. The order id is sent as the
// Idempotency-Key, so a retried capture is never charged twice.
type Client struct {
	http *httpclient.Client
}

var _ ports.PaymentGateway = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{http: httpclient.New("payment", baseURL, timeout)}
}

// Capture returns a declined result for a "failed" answer or a 402, and an
// error whenever the outcome is not known.
func (c *Client) Capture(ctx context.Context, req ports.PaymentRequest) (ports.PaymentResult, error) {
	if err := req.OrderID.Validate(); err != nil {
		return ports.PaymentResult{}, err
	}
	if err := req.Method.Validate(); err != nil {
		return ports.PaymentResult{}, err
	}

	body := captureRequest{
		OrderID:  req.OrderID.String(),
		Amount:   json.Number(req.Amount.String()),
		Currency: req.Currency,
		Method:   string(req.Method),
	}
	headers := map[string]string{"Idempotency-Key": req.OrderID.String()}

	var answer captureResponse
	resp, err := c.http.Do(ctx, http.MethodPost, capturePath, body, headers, &answer)
	if err != nil {
		return ports.PaymentResult{}, err
	}

	if resp.StatusCode == http.StatusPaymentRequired {
		_ = json.Unmarshal([]byte(resp.Body), &answer)
		return declined(answer), nil
	}
	if !resp.IsSuccess() {
		return ports.PaymentResult{}, c.http.Unexpected(http.MethodPost, capturePath, resp)
	}

	switch answer.Status {
	case statusSucceeded:
		return ports.PaymentResult{Succeeded: true, TransactionID: answer.TransactionID}, nil
	case statusFailed:
		return declined(answer), nil
	default:
		return ports.PaymentResult{}, errs.NewUpstreamUnavailableErrorWithCause(c.http.Service(),
			fmt.Errorf("unknown capture status %q", answer.Status))
	}
}

func declined(answer captureResponse) ports.PaymentResult {
	reason := answer.Reason
	if reason == "" {
		reason = "payment declined"
	}
	return ports.PaymentResult{TransactionID: answer.TransactionID, Reason: reason}
}
