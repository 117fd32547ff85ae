package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/veluxora/auction-engine/internal/core/domain"
)

type recordingEventRepo struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recordingEventRepo) Insert(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

func (r *recordingEventRepo) ListByAuction(_ context.Context, auctionID string) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, ev := range r.events {
		if ev.AuctionID == auctionID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *recordingEventRepo) waitFor(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		got := len(r.events)
		r.mu.Unlock()
		if got >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events", n)
}

func TestPublisherDeliversEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &recordingEventRepo{}
	p := NewPublisher(4, repo, zerolog.Nop())
	p.Start(ctx)

	p.Publish(domain.Event{Type: domain.EventAuctionCreated, AuctionID: "auc-1", Actor: "alice"})
	p.Publish(domain.Event{Type: domain.EventNewBidAdded, AuctionID: "auc-1", Actor: "bob", Amount: 100})
	repo.waitFor(t, 2)
}

func TestPublisherPreservesPerAuctionOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &recordingEventRepo{}
	p := NewPublisher(4, repo, zerolog.Nop())
	p.Start(ctx)

	const n = 50
	for i := 0; i < n; i++ {
		p.Publish(domain.Event{
			Type:      domain.EventNewBidAdded,
			AuctionID: "auc-1",
			Amount:    int64(i),
		})
		// Interleave traffic for other auctions.
		p.Publish(domain.Event{
			Type:      domain.EventNewBidAdded,
			AuctionID: fmt.Sprintf("auc-%d", i%7+2),
			Amount:    int64(i),
		})
	}
	repo.waitFor(t, 2*n)

	got, err := repo.ListByAuction(context.Background(), "auc-1")
	if err != nil {
		t.Fatalf("ListByAuction: %v", err)
	}
	if len(got) != n {
		t.Fatalf("auc-1 events = %d, want %d", len(got), n)
	}
	for i, ev := range got {
		if ev.Amount != int64(i) {
			t.Fatalf("event %d has amount %d, publication order lost", i, ev.Amount)
		}
	}
}

func TestPublisherShardIsDeterministic(t *testing.T) {
	p := NewPublisher(8, &recordingEventRepo{}, zerolog.Nop())

	for _, id := range []string{"", "auc-1", "auc-2", "very-long-auction-identifier"} {
		first := p.shardIndex(id)
		for i := 0; i < 10; i++ {
			if got := p.shardIndex(id); got != first {
				t.Fatalf("shardIndex(%q) unstable: %d then %d", id, first, got)
			}
		}
		if first < 0 || first >= 8 {
			t.Fatalf("shardIndex(%q) = %d out of range", id, first)
		}
	}
}
