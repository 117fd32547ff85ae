package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Registry ---

type registerRequest struct {
	KYCHash string `json:"kyc_hash" validate:"required"`
}

type registerResponse struct {
	Participant  string    `json:"participant"`
	RegisteredAt time.Time `json:"registered_at"`
}

type isRegisteredResponse struct {
	Participant string `json:"participant"`
	Registered  bool   `json:"registered"`
}

// --- Auctions ---

type createAuctionRequest struct {
	ID          string    `json:"id"           validate:"required"`
	MinBid      int64     `json:"min_bid"      validate:"required,gt=0"`
	StartTime   time.Time `json:"start_time"   validate:"required"`
	EndTime     time.Time `json:"end_time"     validate:"required"`
	AssetID     string    `json:"asset_id"     validate:"required"`
	MetadataURI string    `json:"metadata_uri" validate:"required"`
}

type updateAuctionRequest struct {
	MinBid      int64     `json:"min_bid"      validate:"required,gt=0"`
	StartTime   time.Time `json:"start_time"   validate:"required"`
	EndTime     time.Time `json:"end_time"     validate:"required"`
	AssetID     string    `json:"asset_id"     validate:"required"`
	MetadataURI string    `json:"metadata_uri" validate:"required"`
}

type auctionLinks struct {
	Self string `json:"self"`
	Bids string `json:"bids"`
}

type auctionResponse struct {
	ID            string       `json:"id"`
	Creator       string       `json:"creator"`
	MinBid        int64        `json:"min_bid"`
	StartTime     time.Time    `json:"start_time"`
	EndTime       time.Time    `json:"end_time"`
	AssetID       string       `json:"asset_id"`
	MetadataURI   string       `json:"metadata_uri"`
	HighestBid    int64        `json:"highest_bid"`
	HighestBidder string       `json:"highest_bidder,omitempty"`
	Phase         string       `json:"phase"`
	Canceled      bool         `json:"canceled"`
	AssetClaimed  bool         `json:"asset_claimed"`
	FundsClaimed  bool         `json:"funds_claimed"`
	CreatedAt     time.Time    `json:"created_at"`
	Links         auctionLinks `json:"_links"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listAuctionsResponse struct {
	Data       []auctionResponse  `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

// --- Bids ---

type placeBidRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type bidResponse struct {
	AuctionID      string `json:"auction_id"`
	Bidder         string `json:"bidder"`
	Amount         int64  `json:"amount"`
	RefundedBidder string `json:"refunded_bidder,omitempty"`
	RefundedAmount int64  `json:"refunded_amount,omitempty"`
}

type bidRecordResponse struct {
	Bidder    string    `json:"bidder"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

type bidHistoryResponse struct {
	AuctionID string              `json:"auction_id"`
	Bids      []bidRecordResponse `json:"bids"`
}

// --- Claims ---

type claimFundsResponse struct {
	AuctionID string `json:"auction_id"`
	Amount    int64  `json:"amount"`
}

type claimAssetResponse struct {
	AuctionID string `json:"auction_id"`
	AssetID   string `json:"asset_id"`
}

// --- Events ---

type eventResponse struct {
	Type      string    `json:"type"`
	Actor     string    `json:"actor,omitempty"`
	AssetID   string    `json:"asset_id,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type eventListResponse struct {
	AuctionID string          `json:"auction_id"`
	Events    []eventResponse `json:"events"`
}
