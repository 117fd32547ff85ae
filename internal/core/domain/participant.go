package domain

import (
	"errors"
	"time"
)

var ErrAlreadyRegistered = errors.New("participant already registered")
var ErrNotRegistered = errors.New("participant not registered")

// Participant is a caller identity enrolled in the auction registry.
// Registration is permanent: participants are never deleted and a second
// registration attempt for the same identity is rejected.
type Participant struct {
	ID           string    `json:"id" bson:"_id"`
	KYCHash      string    `json:"kyc_hash" bson:"kyc_hash"`
	RegisteredAt time.Time `json:"registered_at" bson:"registered_at"`
}
