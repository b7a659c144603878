package http

import (
	"errors"
	"net/http"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorContextKey = "actor"

var errMissingBearer = errors.New("missing bearer token")

// actorClaims carries the caller's user id in sub and its role.
type actorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// authenticate resolves the bearer token into an order.Actor stored on the context.
func authenticate(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, err := parseBearer(c.Request().Header.Get(echo.HeaderAuthorization), secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Code:    http.StatusUnauthorized,
					Message: "invalid or missing bearer token",
				})
			}
			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

// requireRole rejects actors outside roles with 403.
func requireRole(roles ...order.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := actorFrom(c)
			for _, role := range roles {
				if actor.Role() == role {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, ErrorResponse{
				Code:    http.StatusForbidden,
				Message: errs.NewForbiddenError(actor.String(), c.Request().Method+" "+c.Path()).Error(),
			})
		}
	}
}

func parseBearer(header string, secret []byte) (order.Actor, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return order.Actor{}, errMissingBearer
	}

	claims := &actorClaims{}
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return order.Actor{}, err
	}
	if !parsed.Valid {
		return order.Actor{}, errors.New("invalid token")
	}

	role, err := order.ParseRole(strings.ToLower(claims.Role))
	if err != nil {
		return order.Actor{}, err
	}
	id, err := kernel.UUIDFromString(claims.Subject)
	if err != nil {
		return order.Actor{}, err
	}
	return order.NewActor(role, id)
}

// actorFrom returns the authenticated actor, or the zero Actor on public routes.
func actorFrom(c echo.Context) order.Actor {
	actor, _ := c.Get(actorContextKey).(order.Actor)
	return actor
}
