package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxParticipant extracts the caller identity injected by the Auth
// middleware and performs a fast-fail check before any service call: an
// empty participant means the middleware did not run or the token carried
// no subject, and no engine operation can be attributed to the caller.
func ctxParticipant(c echo.Context) (participant, role string, err error) {
	participant, _ = c.Get("participant").(string)
	if participant == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	role, _ = c.Get("role").(string)
	return participant, role, nil
}
