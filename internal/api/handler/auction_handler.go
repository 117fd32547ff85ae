package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/veluxora/auction-engine/internal/core/ports"
)

// AuctionHandler handles HTTP requests for auction lifecycle operations.
type AuctionHandler struct {
	service ports.AuctionService
}

func NewAuctionHandler(service ports.AuctionService) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// Create handles POST /v1/auctions.
//
// @Summary      List an asset for auction
// @Tags         auctions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAuctionRequest  true  "Auction details"
// @Success      201   {object}  auctionResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/auctions [post]
func (h *AuctionHandler) Create(c echo.Context) error {
	caller, _, err := ctxParticipant(c)
	if err != nil {
		return err
	}

	var req createAuctionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	detail, err := h.service.Create(c.Request().Context(), ports.CreateAuctionInput{
		Caller:      caller,
		ID:          req.ID,
		MinBid:      req.MinBid,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		AssetID:     req.AssetID,
		MetadataURI: req.MetadataURI,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toAuctionResponse(detail))
}

// Update handles PUT /v1/auctions/:id.
//
// @Summary      Update a pending auction
// @Tags         auctions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Auction id"
// @Param        body  body      updateAuctionRequest  true  "New auction terms"
// @Success      200   {object}  auctionResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/auctions/{id} [put]
func (h *AuctionHandler) Update(c echo.Context) error {
	caller, _, err := ctxParticipant(c)
	if err != nil {
		return err
	}

	var req updateAuctionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	detail, err := h.service.Update(c.Request().Context(), ports.UpdateAuctionInput{
		Caller:      caller,
		ID:          c.Param("id"),
		MinBid:      req.MinBid,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		AssetID:     req.AssetID,
		MetadataURI: req.MetadataURI,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toAuctionResponse(detail))
}

// Cancel handles POST /v1/auctions/:id/cancel.
//
// @Summary      Cancel a pending auction
// @Tags         auctions
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Auction id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/auctions/{id}/cancel [post]
func (h *AuctionHandler) Cancel(c echo.Context) error {
	caller, _, err := ctxParticipant(c)
	if err != nil {
		return err
	}

	if err := h.service.Cancel(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Get handles GET /v1/auctions/:id.
//
// @Summary      Get auction detail
// @Tags         auctions
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Auction id"
// @Success      200  {object}  auctionResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/auctions/{id} [get]
func (h *AuctionHandler) Get(c echo.Context) error {
	detail, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAuctionResponse(detail))
}

// List handles GET /v1/auctions.
//
// @Summary      List auctions
// @Tags         auctions
// @Produce      json
// @Security     BearerAuth
// @Param        creator   query     string  false  "Filter by creator"
// @Param        asset_id  query     string  false  "Filter by asset id"
// @Param        phase     query     string  false  "Filter by phase"  Enums(pending, active, ended, canceled)
// @Param        page      query     int     false  "Page (1-based)"
// @Param        limit     query     int     false  "Page size (max 100)"
// @Success      200  {object}  listAuctionsResponse
// @Router       /v1/auctions [get]
func (h *AuctionHandler) List(c echo.Context) error {
	var q struct {
		Creator string `query:"creator"`
		AssetID string `query:"asset_id"`
		Phase   string `query:"phase" validate:"omitempty,oneof=pending active ended canceled"`
		Page    int    `query:"page"`
		Limit   int    `query:"limit"`
	}
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&q); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.service.List(c.Request().Context(), ports.ListAuctionsInput{
		Creator: q.Creator,
		AssetID: q.AssetID,
		Phase:   q.Phase,
		Page:    q.Page,
		Limit:   q.Limit,
	})
	if err != nil {
		return err
	}

	resp := listAuctionsResponse{
		Data: make([]auctionResponse, 0, len(result.Items)),
		Pagination: paginationResponse{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	}
	for i := range result.Items {
		resp.Data = append(resp.Data, toAuctionResponse(&result.Items[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// EventsHandler serves the per-auction event audit trail.
type EventsHandler struct {
	auctions ports.AuctionService
	events   ports.EventRepository
}

func NewEventsHandler(auctions ports.AuctionService, events ports.EventRepository) *EventsHandler {
	return &EventsHandler{auctions: auctions, events: events}
}

// List handles GET /v1/auctions/:id/events.
//
// @Summary      List the auction's events in delivery order
// @Tags         auctions
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Auction id"
// @Success      200  {object}  eventListResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/auctions/{id}/events [get]
func (h *EventsHandler) List(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.auctions.Get(c.Request().Context(), id); err != nil {
		return err
	}

	events, err := h.events.ListByAuction(c.Request().Context(), id)
	if err != nil {
		return err
	}

	resp := eventListResponse{AuctionID: id, Events: make([]eventResponse, 0, len(events))}
	for _, ev := range events {
		resp.Events = append(resp.Events, eventResponse{
			Type:      string(ev.Type),
			Actor:     ev.Actor,
			AssetID:   ev.AssetID,
			Amount:    ev.Amount,
			Timestamp: ev.Timestamp,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func toAuctionResponse(d *ports.AuctionDetail) auctionResponse {
	return auctionResponse{
		ID:            d.ID,
		Creator:       d.Creator,
		MinBid:        d.MinBid,
		StartTime:     d.StartTime,
		EndTime:       d.EndTime,
		AssetID:       d.AssetID,
		MetadataURI:   d.MetadataURI,
		HighestBid:    d.HighestBid,
		HighestBidder: d.HighestBidder,
		Phase:         d.Phase,
		Canceled:      d.Canceled,
		AssetClaimed:  d.AssetClaimed,
		FundsClaimed:  d.FundsClaimed,
		CreatedAt:     d.CreatedAt,
		Links: auctionLinks{
			Self: "/v1/auctions/" + d.ID,
			Bids: "/v1/auctions/" + d.ID + "/bids",
		},
	}
}
