package domain

import (
	"errors"
	"time"
)

// AuctionPhase is the lifecycle state of an auction. It is never stored:
// every operation derives it from the record's timestamps and flags plus the
// clock reading taken at the top of the call, so the stored record and the
// phase can never drift apart.
type AuctionPhase string

const (
	PhasePending          AuctionPhase = "pending"
	PhaseActive           AuctionPhase = "active"
	PhaseEnded            AuctionPhase = "ended"
	PhasePartiallySettled AuctionPhase = "partially_settled"
	PhaseSettled          AuctionPhase = "settled"
	PhaseCanceled         AuctionPhase = "canceled"
)

var ErrAuctionNotFound = errors.New("auction not found")
var ErrDuplicateAuction = errors.New("auction id already exists")
var ErrDuplicateAsset = errors.New("asset already listed in an active auction")
var ErrInvalidMinBid = errors.New("minimum bid must be positive")
var ErrStartNotFuture = errors.New("start time must be in the future")
var ErrEndBeforeStart = errors.New("end time must be after start time")
var ErrNotCreator = errors.New("caller is not the auction creator")
var ErrAuctionStarted = errors.New("auction has already started")
var ErrAuctionNotActive = errors.New("auction is not open for bidding")
var ErrAuctionNotEnded = errors.New("auction has not ended yet")
var ErrAuctionCanceled = errors.New("auction is canceled")
var ErrBidBelowMinimum = errors.New("bid is below the minimum bid")
var ErrBidNotHighEnough = errors.New("bid must exceed the current highest bid")
var ErrNotHighestBidder = errors.New("caller is not the highest bidder")
var ErrAlreadyClaimed = errors.New("already claimed")
var ErrAuctionHasBids = errors.New("auction received bids")

// Auction is the core aggregate root. Amounts are opaque non-negative
// integers; the engine never interprets them as a currency.
type Auction struct {
	ID            string    `json:"id" bson:"_id"`
	Creator       string    `json:"creator" bson:"creator"`
	MinBid        int64     `json:"min_bid" bson:"min_bid"`
	StartTime     time.Time `json:"start_time" bson:"start_time"`
	EndTime       time.Time `json:"end_time" bson:"end_time"`
	AssetID       string    `json:"asset_id" bson:"asset_id"`
	MetadataURI   string    `json:"metadata_uri" bson:"metadata_uri"`
	HighestBid    int64     `json:"highest_bid" bson:"highest_bid"`
	HighestBidder string    `json:"highest_bidder,omitempty" bson:"highest_bidder,omitempty"`
	Canceled      bool      `json:"canceled" bson:"canceled"`
	AssetClaimed  bool      `json:"asset_claimed" bson:"asset_claimed"`
	FundsClaimed  bool      `json:"funds_claimed" bson:"funds_claimed"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// PhaseOf derives the auction phase at the given instant.
func PhaseOf(a *Auction, now time.Time) AuctionPhase {
	switch {
	case a.Canceled:
		return PhaseCanceled
	case now.Before(a.StartTime):
		return PhasePending
	case now.Before(a.EndTime):
		return PhaseActive
	case a.AssetClaimed && a.FundsClaimed:
		return PhaseSettled
	case a.AssetClaimed || a.FundsClaimed:
		return PhasePartiallySettled
	default:
		return PhaseEnded
	}
}

// Terminal reports whether no further mutation of the auction is permitted.
func (a *Auction) Terminal() bool {
	return a.Canceled || (a.AssetClaimed && a.FundsClaimed)
}

// BidRecord is one entry in an auction's append-only bid history.
// Records are never rewritten or removed; insertion order is chronological.
type BidRecord struct {
	AuctionID string    `json:"auction_id" bson:"auction_id"`
	Bidder    string    `json:"bidder" bson:"bidder"`
	Amount    int64     `json:"amount" bson:"amount"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}
