package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/veluxora/auction-engine/internal/core/ports"
)

// RegistryHandler handles participant registration.
type RegistryHandler struct {
	registry ports.RegistryService
}

func NewRegistryHandler(registry ports.RegistryService) *RegistryHandler {
	return &RegistryHandler{registry: registry}
}

// Register handles POST /v1/registry — enrolls the caller as a participant.
//
// @Summary      Register the authenticated caller as an auction participant
// @Tags         registry
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/registry [post]
func (h *RegistryHandler) Register(c echo.Context) error {
	caller, _, err := ctxParticipant(c)
	if err != nil {
		return err
	}

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	p, err := h.registry.Register(c.Request().Context(), caller, req.KYCHash)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{
		Participant:  p.ID,
		RegisteredAt: p.RegisteredAt,
	})
}

// IsRegistered handles GET /v1/registry/:participant.
//
// @Summary      Check whether a participant identity is registered
// @Tags         registry
// @Produce      json
// @Security     BearerAuth
// @Param        participant  path      string  true  "Participant identity"
// @Success      200          {object}  isRegisteredResponse
// @Failure      401          {object}  errorResponse
// @Router       /v1/registry/{participant} [get]
func (h *RegistryHandler) IsRegistered(c echo.Context) error {
	participant := c.Param("participant")

	registered, err := h.registry.IsRegistered(c.Request().Context(), participant)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, isRegisteredResponse{
		Participant: participant,
		Registered:  registered,
	})
}
