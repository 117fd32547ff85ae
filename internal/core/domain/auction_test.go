package domain

import (
	"testing"
	"time"
)

func TestPhaseOf(t *testing.T) {
	start := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	cases := []struct {
		name    string
		mutate  func(*Auction)
		now     time.Time
		want    AuctionPhase
	}{
		{"before start", nil, start.Add(-time.Minute), PhasePending},
		{"at start", nil, start, PhaseActive},
		{"just before end", nil, end.Add(-time.Second), PhaseActive},
		{"at end", nil, end, PhaseEnded},
		{"after end", nil, end.Add(time.Hour), PhaseEnded},
		{"canceled wins over time", func(a *Auction) { a.Canceled = true }, start.Add(time.Minute), PhaseCanceled},
		{"asset claimed only", func(a *Auction) { a.AssetClaimed = true }, end, PhasePartiallySettled},
		{"funds claimed only", func(a *Auction) { a.FundsClaimed = true }, end, PhasePartiallySettled},
		{"both claimed", func(a *Auction) { a.AssetClaimed = true; a.FundsClaimed = true }, end, PhaseSettled},
		{"claims ignored while active", func(a *Auction) { a.AssetClaimed = true }, start, PhaseActive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &Auction{StartTime: start, EndTime: end}
			if tc.mutate != nil {
				tc.mutate(a)
			}
			if got := PhaseOf(a, tc.now); got != tc.want {
				t.Errorf("PhaseOf = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTerminal(t *testing.T) {
	if (&Auction{}).Terminal() {
		t.Error("fresh auction reported terminal")
	}
	if !(&Auction{Canceled: true}).Terminal() {
		t.Error("canceled auction not terminal")
	}
	if (&Auction{AssetClaimed: true}).Terminal() {
		t.Error("half-settled auction reported terminal")
	}
	if !(&Auction{AssetClaimed: true, FundsClaimed: true}).Terminal() {
		t.Error("settled auction not terminal")
	}
}
