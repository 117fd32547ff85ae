package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/veluxora/auction-engine/internal/core/ports"
)

// ClaimHandler handles the settlement operations of ended auctions.
type ClaimHandler struct {
	service  ports.ClaimService
	auctions ports.AuctionService
}

func NewClaimHandler(service ports.ClaimService, auctions ports.AuctionService) *ClaimHandler {
	return &ClaimHandler{service: service, auctions: auctions}
}

// ClaimAsset handles POST /v1/auctions/:id/claims/asset.
//
// @Summary      Claim the asset as the winning bidder
// @Tags         claims
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Auction id"
// @Success      200  {object}  claimAssetResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/auctions/{id}/claims/asset [post]
func (h *ClaimHandler) ClaimAsset(c echo.Context) error {
	caller, _, err := ctxParticipant(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if err := h.service.ClaimAsset(c.Request().Context(), caller, id); err != nil {
		return err
	}

	detail, err := h.auctions.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, claimAssetResponse{AuctionID: id, AssetID: detail.AssetID})
}

// ClaimFunds handles POST /v1/auctions/:id/claims/funds.
//
// @Summary      Claim the escrowed funds as the creator
// @Tags         claims
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Auction id"
// @Success      200  {object}  claimFundsResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/auctions/{id}/claims/funds [post]
func (h *ClaimHandler) ClaimFunds(c echo.Context) error {
	caller, _, err := ctxParticipant(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	amount, err := h.service.ClaimFunds(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, claimFundsResponse{AuctionID: id, Amount: amount})
}

// Reclaim handles POST /v1/auctions/:id/reclaim — the zero-bid recovery path.
//
// @Summary      Reclaim the asset after an auction ended with no bids
// @Tags         claims
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Auction id"
// @Success      200  {object}  claimAssetResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/auctions/{id}/reclaim [post]
func (h *ClaimHandler) Reclaim(c echo.Context) error {
	caller, _, err := ctxParticipant(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if err := h.service.ReclaimAsset(c.Request().Context(), caller, id); err != nil {
		return err
	}

	detail, err := h.auctions.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, claimAssetResponse{AuctionID: id, AssetID: detail.AssetID})
}
