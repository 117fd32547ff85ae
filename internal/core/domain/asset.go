package domain

import "time"

// CustodianKind distinguishes who currently holds an asset.
type CustodianKind string

const (
	// CustodianEngine marks an asset held in custody by the auction engine.
	CustodianEngine CustodianKind = "engine"
	// CustodianParticipant marks an asset held by a participant (the original
	// owner before listing, or the winner after a successful claim).
	CustodianParticipant CustodianKind = "participant"
)

// AssetCustody records the current custodian of an asset. Custody is a
// capability: exactly one holder at any time, never shared. While the engine
// holds the asset, AuctionID points at the auction that took it.
type AssetCustody struct {
	AssetID   string        `json:"asset_id" bson:"_id"`
	Kind      CustodianKind `json:"kind" bson:"kind"`
	Holder    string        `json:"holder,omitempty" bson:"holder,omitempty"`
	AuctionID string        `json:"auction_id,omitempty" bson:"auction_id,omitempty"`
	UpdatedAt time.Time     `json:"updated_at" bson:"updated_at"`
}
