package http

import (
	"errors"
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`

	// OrderID is set when the order was persisted even though the request failed,
	// as with a declined or unanswered payment.
	OrderID string `json:"orderId,omitempty"`
}

// statusFor maps an application error to its HTTP status.
// Conflicts are checked before validation because ErrDriverHoldsAssignment
// is also a ValueIsInvalidError.
func statusFor(err error) int {
	switch {
	case errors.Is(err, commands.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, driver.ErrDriverHoldsAssignment),
		errors.Is(err, delivery.ErrAssignmentAlreadyClaimed),
		errors.Is(err, delivery.ErrDriverUnavailable),
		errors.Is(err, delivery.ErrAlreadyDispatched),
		errors.Is(err, services.ErrOrderNotReadyForPickup),
		errors.Is(err, errs.ErrIllegalTransition):
		return http.StatusConflict
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as an ErrorResponse. Internal errors are logged and their
// text is not exposed.
func (s *Server) fail(c echo.Context, err error) error {
	return s.failForOrder(c, err, nil)
}

func (s *Server) failForOrder(c echo.Context, err error, o *order.Order) error {
	code := statusFor(err)
	resp := ErrorResponse{Code: code, Message: err.Error()}
	if o != nil {
		resp.OrderID = o.ID().String()
	}

	if code >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
		if code == http.StatusInternalServerError {
			resp.Message = http.StatusText(code)
		}
	}
	return c.JSON(code, resp)
}

// handleHTTPError renders errors raised by echo itself, such as unknown
// routes and malformed bodies, in the same shape.
func (s *Server) handleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		_ = c.JSON(he.Code, ErrorResponse{Code: he.Code, Message: msg})
		return
	}
	_ = s.fail(c, err)
}
