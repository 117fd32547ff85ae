package domain

import "time"

// EventType names an observable state change emitted by the engine.
type EventType string

const (
	EventUserRegistered   EventType = "UserRegistered"
	EventAuctionCreated   EventType = "AuctionCreated"
	EventAuctionUpdated   EventType = "AuctionUpdated"
	EventAuctionCanceled  EventType = "AuctionCanceled"
	EventNewBidAdded      EventType = "NewBidAdded"
	EventDepositReturned  EventType = "DepositReturned"
	EventAssetClaimed     EventType = "AssetClaimed"
	EventFundsTransferred EventType = "FundsTransferred"
)

// Event is one observable state change. Events for the same auction are
// delivered in the order the mutations were applied.
type Event struct {
	Type      EventType `json:"type"`
	Actor     string    `json:"actor,omitempty"`
	AuctionID string    `json:"auction_id,omitempty"`
	AssetID   string    `json:"asset_id,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
