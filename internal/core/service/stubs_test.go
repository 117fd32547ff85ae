package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/veluxora/auction-engine/internal/core/domain"
	"github.com/veluxora/auction-engine/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Shared in-memory stubs
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

// baseTime is the fixed clock origin every test builds offsets from.
var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type stubRegistryRepo struct {
	participants map[string]*domain.Participant
}

func newStubRegistryRepo(ids ...string) *stubRegistryRepo {
	r := &stubRegistryRepo{participants: make(map[string]*domain.Participant)}
	for _, id := range ids {
		r.participants[id] = &domain.Participant{ID: id, RegisteredAt: baseTime}
	}
	return r
}

func (r *stubRegistryRepo) Insert(_ context.Context, p *domain.Participant) error {
	if _, ok := r.participants[p.ID]; ok {
		return domain.ErrAlreadyRegistered
	}
	clone := *p
	r.participants[p.ID] = &clone
	return nil
}

func (r *stubRegistryRepo) Find(_ context.Context, id string) (*domain.Participant, error) {
	p, ok := r.participants[id]
	if !ok {
		return nil, domain.ErrNotRegistered
	}
	clone := *p
	return &clone, nil
}

type stubAuctionRepo struct {
	byID       map[string]*domain.Auction
	insertErr  error
	replaceErr error
	setBidErr  error
}

func newStubAuctionRepo() *stubAuctionRepo {
	return &stubAuctionRepo{byID: make(map[string]*domain.Auction)}
}

func (r *stubAuctionRepo) Insert(_ context.Context, a *domain.Auction) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	if _, ok := r.byID[a.ID]; ok {
		return domain.ErrDuplicateAuction
	}
	clone := *a
	r.byID[a.ID] = &clone
	return nil
}

func (r *stubAuctionRepo) FindByID(_ context.Context, id string) (*domain.Auction, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *stubAuctionRepo) Replace(_ context.Context, a *domain.Auction) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}
	if _, ok := r.byID[a.ID]; !ok {
		return domain.ErrAuctionNotFound
	}
	clone := *a
	r.byID[a.ID] = &clone
	return nil
}

func (r *stubAuctionRepo) SetHighestBid(_ context.Context, id string, prevAmount int64, bidder string, amount int64) error {
	if r.setBidErr != nil {
		return r.setBidErr
	}
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	if a.HighestBid != prevAmount {
		return fmt.Errorf("auction %s: highest bid moved past %d", id, prevAmount)
	}
	a.HighestBid = amount
	a.HighestBidder = bidder
	return nil
}

func (r *stubAuctionRepo) SetCanceled(_ context.Context, id string) error {
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	a.Canceled = true
	return nil
}

func (r *stubAuctionRepo) MarkAssetClaimed(_ context.Context, id string) error {
	return r.flag(id, "asset", false, true)
}

func (r *stubAuctionRepo) UnmarkAssetClaimed(_ context.Context, id string) error {
	return r.flag(id, "asset", true, false)
}

func (r *stubAuctionRepo) MarkFundsClaimed(_ context.Context, id string) error {
	return r.flag(id, "funds", false, true)
}

func (r *stubAuctionRepo) UnmarkFundsClaimed(_ context.Context, id string) error {
	return r.flag(id, "funds", true, false)
}

func (r *stubAuctionRepo) flag(id, which string, from, to bool) error {
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	var field *bool
	if which == "asset" {
		field = &a.AssetClaimed
	} else {
		field = &a.FundsClaimed
	}
	if *field != from {
		if to {
			return domain.ErrAlreadyClaimed
		}
		return fmt.Errorf("auction %s: %s flag already reverted", id, which)
	}
	*field = to
	return nil
}

// List mirrors the phase translation of the real Mongo repo.
func (r *stubAuctionRepo) List(_ context.Context, f ports.ListAuctionsFilter) ([]*domain.Auction, int64, error) {
	var matched []*domain.Auction
	for _, a := range r.byID {
		if f.Creator != "" && a.Creator != f.Creator {
			continue
		}
		if f.AssetID != "" && a.AssetID != f.AssetID {
			continue
		}
		switch f.Phase {
		case domain.PhasePending:
			if a.Canceled || !f.Now.Before(a.StartTime) {
				continue
			}
		case domain.PhaseActive:
			if a.Canceled || f.Now.Before(a.StartTime) || !f.Now.Before(a.EndTime) {
				continue
			}
		case domain.PhaseEnded:
			if a.Canceled || f.Now.Before(a.EndTime) {
				continue
			}
		case domain.PhaseCanceled:
			if !a.Canceled {
				continue
			}
		}
		clone := *a
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip > len(matched) {
		return []*domain.Auction{}, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

type stubBidRepo struct {
	byAuction map[string][]domain.BidRecord
	appendErr error
}

func newStubBidRepo() *stubBidRepo {
	return &stubBidRepo{byAuction: make(map[string][]domain.BidRecord)}
}

func (r *stubBidRepo) Append(_ context.Context, rec *domain.BidRecord) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.byAuction[rec.AuctionID] = append(r.byAuction[rec.AuctionID], *rec)
	return nil
}

func (r *stubBidRepo) ListByAuction(_ context.Context, auctionID string) ([]domain.BidRecord, error) {
	out := r.byAuction[auctionID]
	if out == nil {
		return []domain.BidRecord{}, nil
	}
	return append([]domain.BidRecord{}, out...), nil
}

type stubCustodyRepo struct {
	byAsset    map[string]*domain.AssetCustody
	takeErr    error
	releaseErr error
	allowReuse bool
}

func newStubCustodyRepo() *stubCustodyRepo {
	return &stubCustodyRepo{byAsset: make(map[string]*domain.AssetCustody)}
}

// Take mirrors the conditional upsert: held-by-another-auction refuses.
func (r *stubCustodyRepo) Take(_ context.Context, assetID, owner, auctionID string) error {
	if r.takeErr != nil {
		return r.takeErr
	}
	if !r.allowReuse {
		if c, ok := r.byAsset[assetID]; ok && c.Kind == domain.CustodianEngine && c.AuctionID != auctionID {
			return domain.ErrDuplicateAsset
		}
	}
	r.byAsset[assetID] = &domain.AssetCustody{
		AssetID:   assetID,
		Kind:      domain.CustodianEngine,
		Holder:    owner,
		AuctionID: auctionID,
	}
	return nil
}

func (r *stubCustodyRepo) Release(_ context.Context, assetID, participant string) error {
	if r.releaseErr != nil {
		return r.releaseErr
	}
	r.byAsset[assetID] = &domain.AssetCustody{
		AssetID: assetID,
		Kind:    domain.CustodianParticipant,
		Holder:  participant,
	}
	return nil
}

type escrowEntry struct {
	bidder string
	amount int64
}

type stubEscrow struct {
	held       map[string]escrowEntry
	replaceErr error
	payoutErr  error
	// refunds records every (bidder, amount) released by a swap.
	refunds []escrowEntry
}

func newStubEscrow() *stubEscrow {
	return &stubEscrow{held: make(map[string]escrowEntry)}
}

func (e *stubEscrow) Replace(_ context.Context, auctionID, prevBidder string, prevAmount int64, newBidder string, newAmount int64) error {
	if e.replaceErr != nil {
		return e.replaceErr
	}
	if prevBidder == "" && prevAmount == 0 {
		// First deposit: refused when anything is held, like the insert path.
		if _, ok := e.held[auctionID]; ok {
			return fmt.Errorf("escrow %s: deposit already held", auctionID)
		}
		e.held[auctionID] = escrowEntry{bidder: newBidder, amount: newAmount}
		return nil
	}
	cur, ok := e.held[auctionID]
	if !ok || cur.bidder != prevBidder || cur.amount != prevAmount {
		return fmt.Errorf("escrow %s: held deposit does not match %s/%d", auctionID, prevBidder, prevAmount)
	}
	e.refunds = append(e.refunds, escrowEntry{bidder: prevBidder, amount: prevAmount})
	if newBidder == "" && newAmount == 0 {
		// Unwinding a first deposit deletes the entry outright.
		delete(e.held, auctionID)
		return nil
	}
	e.held[auctionID] = escrowEntry{bidder: newBidder, amount: newAmount}
	return nil
}

func (e *stubEscrow) Payout(_ context.Context, auctionID, _ string) (int64, error) {
	if e.payoutErr != nil {
		return 0, e.payoutErr
	}
	cur, ok := e.held[auctionID]
	if !ok {
		return 0, nil
	}
	delete(e.held, auctionID)
	return cur.amount, nil
}

func (e *stubEscrow) Held(_ context.Context, auctionID string) (string, int64, error) {
	cur := e.held[auctionID]
	return cur.bidder, cur.amount, nil
}

func (e *stubEscrow) Deposit(_ context.Context, auctionID, bidder string, amount int64) error {
	e.held[auctionID] = escrowEntry{bidder: bidder, amount: amount}
	return nil
}

type stubPublisher struct {
	events []domain.Event
}

func (p *stubPublisher) Publish(event domain.Event) {
	p.events = append(p.events, event)
}

// typesOf flattens published event types for easy assertions.
func (p *stubPublisher) typesOf() []domain.EventType {
	out := make([]domain.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// fixedClock returns a nowFn frozen at the given offset from baseTime.
func fixedClock(offset time.Duration) func() time.Time {
	return func() time.Time { return baseTime.Add(offset) }
}

// testEnv wires every service against the shared in-memory stubs.
type testEnv struct {
	registry  *stubRegistryRepo
	auctions  *stubAuctionRepo
	bids      *stubBidRepo
	custody   *stubCustodyRepo
	escrow    *stubEscrow
	publisher *stubPublisher

	auctionSvc *AuctionService
	bidSvc     *BidService
	claimSvc   *ClaimService
}

func newTestEnv(participants ...string) *testEnv {
	env := &testEnv{
		registry:  newStubRegistryRepo(participants...),
		auctions:  newStubAuctionRepo(),
		bids:      newStubBidRepo(),
		custody:   newStubCustodyRepo(),
		escrow:    newStubEscrow(),
		publisher: &stubPublisher{},
	}
	locks := NewAuctionLocks()
	env.auctionSvc = NewAuctionService(env.auctions, env.registry, env.custody, env.publisher, nil, locks, discardLogger)
	env.bidSvc = NewBidService(env.auctions, env.registry, env.bids, env.escrow, env.publisher, nil, locks, discardLogger)
	env.claimSvc = NewClaimService(env.auctions, env.custody, env.escrow, env.publisher, nil, locks, discardLogger)
	return env
}

// at freezes all three service clocks at baseTime+offset.
func (e *testEnv) at(offset time.Duration) {
	clock := fixedClock(offset)
	e.auctionSvc.nowFn = clock
	e.bidSvc.nowFn = clock
	e.claimSvc.nowFn = clock
}

// seedAuction installs an auction record and matching engine custody,
// bypassing the service create path.
func (e *testEnv) seedAuction(a *domain.Auction) {
	clone := *a
	e.auctions.byID[a.ID] = &clone
	e.custody.byAsset[a.AssetID] = &domain.AssetCustody{
		AssetID:   a.AssetID,
		Kind:      domain.CustodianEngine,
		Holder:    a.Creator,
		AuctionID: a.ID,
	}
}

// standardAuction runs from baseTime+1h to baseTime+2h with a min bid of 100.
func standardAuction(id, creator, assetID string) *domain.Auction {
	return &domain.Auction{
		ID:        id,
		Creator:   creator,
		MinBid:    100,
		StartTime: baseTime.Add(time.Hour),
		EndTime:   baseTime.Add(2 * time.Hour),
		AssetID:   assetID,
		CreatedAt: baseTime,
	}
}
