package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/veluxora/auction-engine/internal/core/domain"
	"github.com/veluxora/auction-engine/internal/core/ports"
)

func placeBid(t *testing.T, env *testEnv, caller string, amount int64) *ports.BidResult {
	t.Helper()
	res, err := env.bidSvc.Place(context.Background(), ports.PlaceBidInput{
		Caller:    caller,
		AuctionID: "auc-1",
		Amount:    amount,
	})
	if err != nil {
		t.Fatalf("Place(%s, %d): unexpected error: %v", caller, amount, err)
	}
	return res
}

func TestBidServicePlace(t *testing.T) {
	env := newTestEnv("alice", "bob")
	env.seedAuction(standardAuction("auc-1", "alice", "asset-1"))
	env.at(90 * time.Minute)

	res := placeBid(t, env, "bob", 100)
	if res.Amount != 100 || res.Bidder != "bob" {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.RefundedBidder != "" || res.RefundedAmount != 0 {
		t.Errorf("first bid reported a refund: %+v", res)
	}

	a := env.auctions.byID["auc-1"]
	if a.HighestBid != 100 || a.HighestBidder != "bob" {
		t.Errorf("record not updated: bid=%d bidder=%q", a.HighestBid, a.HighestBidder)
	}

	bidder, amount, _ := env.escrow.Held(context.Background(), "auc-1")
	if bidder != "bob" || amount != 100 {
		t.Errorf("escrow holds %s/%d, want bob/100", bidder, amount)
	}

	types := env.publisher.typesOf()
	if len(types) != 1 || types[0] != domain.EventNewBidAdded {
		t.Errorf("published events = %v, want [NewBidAdded]", types)
	}
}

func TestBidServiceOutbidRefundsPreviousLeader(t *testing.T) {
	env := newTestEnv("alice", "bob", "carol")
	env.seedAuction(standardAuction("auc-1", "alice", "asset-1"))
	env.at(90 * time.Minute)

	placeBid(t, env, "bob", 100)
	res := placeBid(t, env, "carol", 150)

	if res.RefundedBidder != "bob" || res.RefundedAmount != 100 {
		t.Errorf("refund = %s/%d, want bob/100", res.RefundedBidder, res.RefundedAmount)
	}
	if len(env.escrow.refunds) != 1 || env.escrow.refunds[0] != (escrowEntry{bidder: "bob", amount: 100}) {
		t.Errorf("ledger refunds = %+v", env.escrow.refunds)
	}

	// The engine holds exactly the leader's stake, nothing more.
	bidder, amount, _ := env.escrow.Held(context.Background(), "auc-1")
	if bidder != "carol" || amount != 150 {
		t.Errorf("escrow holds %s/%d, want carol/150", bidder, amount)
	}

	types := env.publisher.typesOf()
	want := []domain.EventType{domain.EventNewBidAdded, domain.EventDepositReturned, domain.EventNewBidAdded}
	if len(types) != len(want) {
		t.Fatalf("published events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event[%d] = %v, want %v", i, types[i], want[i])
		}
	}
}

func TestBidServiceLeaderRaisesOwnBid(t *testing.T) {
	env := newTestEnv("alice", "bob")
	env.seedAuction(standardAuction("auc-1", "alice", "asset-1"))
	env.at(90 * time.Minute)

	placeBid(t, env, "bob", 100)
	res := placeBid(t, env, "bob", 200)

	if res.RefundedBidder != "bob" || res.RefundedAmount != 100 {
		t.Errorf("old deposit not refunded on rebid: %+v", res)
	}
	bidder, amount, _ := env.escrow.Held(context.Background(), "auc-1")
	if bidder != "bob" || amount != 200 {
		t.Errorf("escrow holds %s/%d, want bob/200", bidder, amount)
	}
}

func TestBidServiceCreatorMayBid(t *testing.T) {
	env := newTestEnv("alice")
	env.seedAuction(standardAuction("auc-1", "alice", "asset-1"))
	env.at(90 * time.Minute)

	res := placeBid(t, env, "alice", 120)
	if res.Bidder != "alice" {
		t.Errorf("creator bid rejected: %+v", res)
	}
}

func TestBidServiceRejections(t *testing.T) {
	env := newTestEnv("alice", "bob")
	env.seedAuction(standardAuction("auc-1", "alice", "asset-1"))
	env.at(90 * time.Minute)
	placeBid(t, env, "bob", 150)

	cases := []struct {
		name   string
		offset time.Duration
		caller string
		id     string
		amount int64
		want   error
	}{
		{"unregistered caller", 90 * time.Minute, "mallory", "auc-1", 500, domain.ErrNotRegistered},
		{"unknown auction", 90 * time.Minute, "bob", "auc-404", 500, domain.ErrAuctionNotFound},
		{"before start", 0, "bob", "auc-1", 500, domain.ErrAuctionNotActive},
		{"after end", 3 * time.Hour, "bob", "auc-1", 500, domain.ErrAuctionNotActive},
		{"below minimum", 90 * time.Minute, "bob", "auc-1", 50, domain.ErrBidBelowMinimum},
		{"equal to leader", 90 * time.Minute, "bob", "auc-1", 150, domain.ErrBidNotHighEnough},
		{"below leader", 90 * time.Minute, "bob", "auc-1", 120, domain.ErrBidNotHighEnough},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env.at(tc.offset)
			_, err := env.bidSvc.Place(context.Background(), ports.PlaceBidInput{
				Caller:    tc.caller,
				AuctionID: tc.id,
				Amount:    tc.amount,
			})
			if !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}

	// No rejection may have touched the ledger or the record.
	bidder, amount, _ := env.escrow.Held(context.Background(), "auc-1")
	if bidder != "bob" || amount != 150 {
		t.Errorf("escrow moved on rejected bid: %s/%d", bidder, amount)
	}
	if a := env.auctions.byID["auc-1"]; a.HighestBid != 150 {
		t.Errorf("record moved on rejected bid: %d", a.HighestBid)
	}
}

func TestBidServiceCanceledAuctionRejectsBids(t *testing.T) {
	env := newTestEnv("alice", "bob")
	a := standardAuction("auc-1", "alice", "asset-1")
	a.Canceled = true
	env.seedAuction(a)
	env.at(90 * time.Minute)

	_, err := env.bidSvc.Place(context.Background(), ports.PlaceBidInput{Caller: "bob", AuctionID: "auc-1", Amount: 500})
	if !errors.Is(err, domain.ErrAuctionNotActive) {
		t.Fatalf("got %v, want ErrAuctionNotActive", err)
	}
}

func TestBidServiceEscrowFailureAbortsBid(t *testing.T) {
	env := newTestEnv("alice", "bob")
	env.seedAuction(standardAuction("auc-1", "alice", "asset-1"))
	env.at(90 * time.Minute)
	env.escrow.replaceErr = errors.New("transfer declined")

	_, err := env.bidSvc.Place(context.Background(), ports.PlaceBidInput{Caller: "bob", AuctionID: "auc-1", Amount: 100})
	if err == nil {
		t.Fatal("bid accepted despite escrow failure")
	}
	if a := env.auctions.byID["auc-1"]; a.HighestBid != 0 || a.HighestBidder != "" {
		t.Errorf("record moved despite escrow failure: %+v", a)
	}
	if len(env.bids.byAuction["auc-1"]) != 0 {
		t.Error("history written despite escrow failure")
	}
}

func TestBidServicePersistFailureSwapsEscrowBack(t *testing.T) {
	env := newTestEnv("alice", "bob", "carol")
	env.seedAuction(standardAuction("auc-1", "alice", "asset-1"))
	env.at(90 * time.Minute)
	placeBid(t, env, "bob", 100)

	env.auctions.setBidErr = errors.New("write concern timeout")
	_, err := env.bidSvc.Place(context.Background(), ports.PlaceBidInput{Caller: "carol", AuctionID: "auc-1", Amount: 200})
	if err == nil {
		t.Fatal("bid accepted despite persist failure")
	}

	// The compensating swap restores the displaced deposit.
	bidder, amount, _ := env.escrow.Held(context.Background(), "auc-1")
	if bidder != "bob" || amount != 100 {
		t.Errorf("escrow holds %s/%d after rollback, want bob/100", bidder, amount)
	}
}

func TestBidServiceFirstBidRollbackLeavesEscrowEmpty(t *testing.T) {
	env := newTestEnv("alice", "bob")
	env.seedAuction(standardAuction("auc-1", "alice", "asset-1"))
	env.at(90 * time.Minute)

	env.auctions.setBidErr = errors.New("write concern timeout")
	_, err := env.bidSvc.Place(context.Background(), ports.PlaceBidInput{Caller: "bob", AuctionID: "auc-1", Amount: 100})
	if err == nil {
		t.Fatal("bid accepted despite persist failure")
	}

	// Unwinding the first deposit must remove the ledger entry, not park an
	// empty one that would block the next deposit.
	bidder, amount, _ := env.escrow.Held(context.Background(), "auc-1")
	if bidder != "" || amount != 0 {
		t.Fatalf("escrow holds %s/%d after rollback, want empty", bidder, amount)
	}

	env.auctions.setBidErr = nil
	res := placeBid(t, env, "bob", 100)
	if res.Amount != 100 {
		t.Errorf("retry result: %+v", res)
	}

	bidder, amount, _ = env.escrow.Held(context.Background(), "auc-1")
	if bidder != "bob" || amount != 100 {
		t.Errorf("escrow holds %s/%d after retry, want bob/100", bidder, amount)
	}
}

func TestBidServiceMonotonicAmounts(t *testing.T) {
	env := newTestEnv("alice", "bob", "carol")
	env.seedAuction(standardAuction("auc-1", "alice", "asset-1"))
	env.at(90 * time.Minute)

	placeBid(t, env, "bob", 100)
	placeBid(t, env, "carol", 101)
	placeBid(t, env, "bob", 500)

	history, err := env.bidSvc.History(context.Background(), "auc-1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].Amount <= history[i-1].Amount {
			t.Errorf("history[%d]=%d not above history[%d]=%d", i, history[i].Amount, i-1, history[i-1].Amount)
		}
	}

	// Escrow always equals the current highest bid.
	a := env.auctions.byID["auc-1"]
	_, amount, _ := env.escrow.Held(context.Background(), "auc-1")
	if amount != a.HighestBid {
		t.Errorf("escrow %d != highest bid %d", amount, a.HighestBid)
	}
}

func TestBidServiceHistoryEmptyAndUnknown(t *testing.T) {
	env := newTestEnv("alice")
	env.seedAuction(standardAuction("auc-1", "alice", "asset-1"))
	env.at(0)

	history, err := env.bidSvc.History(context.Background(), "auc-1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history of fresh auction = %v, want empty", history)
	}

	if _, err := env.bidSvc.History(context.Background(), "auc-404"); !errors.Is(err, domain.ErrAuctionNotFound) {
		t.Errorf("got %v, want ErrAuctionNotFound", err)
	}
}
