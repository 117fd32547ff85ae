package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/veluxora/auction-engine/internal/core/ports"
)

// BidHandler handles bid submission and history retrieval.
type BidHandler struct {
	service ports.BidService
}

func NewBidHandler(service ports.BidService) *BidHandler {
	return &BidHandler{service: service}
}

// Place handles POST /v1/auctions/:id/bids.
//
// @Summary      Place a bid
// @Tags         bids
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Auction id"
// @Param        body  body      placeBidRequest  true  "Bid amount"
// @Success      201   {object}  bidResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/auctions/{id}/bids [post]
func (h *BidHandler) Place(c echo.Context) error {
	caller, _, err := ctxParticipant(c)
	if err != nil {
		return err
	}

	var req placeBidRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.service.Place(c.Request().Context(), ports.PlaceBidInput{
		Caller:    caller,
		AuctionID: c.Param("id"),
		Amount:    req.Amount,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, bidResponse{
		AuctionID:      result.AuctionID,
		Bidder:         result.Bidder,
		Amount:         result.Amount,
		RefundedBidder: result.RefundedBidder,
		RefundedAmount: result.RefundedAmount,
	})
}

// History handles GET /v1/auctions/:id/bids.
//
// @Summary      Get the auction's bid history in chronological order
// @Tags         bids
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Auction id"
// @Success      200  {object}  bidHistoryResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/auctions/{id}/bids [get]
func (h *BidHandler) History(c echo.Context) error {
	id := c.Param("id")

	records, err := h.service.History(c.Request().Context(), id)
	if err != nil {
		return err
	}

	resp := bidHistoryResponse{AuctionID: id, Bids: make([]bidRecordResponse, 0, len(records))}
	for _, rec := range records {
		resp.Bids = append(resp.Bids, bidRecordResponse{
			Bidder:    rec.Bidder,
			Amount:    rec.Amount,
			Timestamp: rec.Timestamp,
		})
	}
	return c.JSON(http.StatusOK, resp)
}
