package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/veluxora/auction-engine/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes. Authorization failures
	// map to 401/403, unknown ids to 404, lifecycle violations and duplicates
	// to 409, input violations to 422.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrNotRegistered),
		errors.Is(err, domain.ErrNotCreator),
		errors.Is(err, domain.ErrNotHighestBidder):
		return http.StatusForbidden, err.Error()

	case errors.Is(err, domain.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"

	case errors.Is(err, domain.ErrAuctionStarted),
		errors.Is(err, domain.ErrAuctionNotActive),
		errors.Is(err, domain.ErrAuctionNotEnded),
		errors.Is(err, domain.ErrAuctionCanceled),
		errors.Is(err, domain.ErrAlreadyClaimed),
		errors.Is(err, domain.ErrAuctionHasBids),
		errors.Is(err, domain.ErrAlreadyRegistered),
		errors.Is(err, domain.ErrDuplicateAuction),
		errors.Is(err, domain.ErrDuplicateAsset),
		errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, err.Error()

	case errors.Is(err, domain.ErrInvalidMinBid),
		errors.Is(err, domain.ErrStartNotFuture),
		errors.Is(err, domain.ErrEndBeforeStart),
		errors.Is(err, domain.ErrBidBelowMinimum),
		errors.Is(err, domain.ErrBidNotHighEnough):
		return http.StatusUnprocessableEntity, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
