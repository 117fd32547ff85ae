package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/veluxora/auction-engine/internal/api/metrics"
	"github.com/veluxora/auction-engine/internal/core/domain"
	"github.com/veluxora/auction-engine/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Publisher delivers engine events to the audit trail through a fixed set of
// workers, sharded by consistent hashing on the auction id. All events for
// one auction land on the same worker, so they are persisted in publication
// order; registry events (no auction id) share shard zero.
type Publisher struct {
	workers []chan domain.Event
	repo    ports.EventRepository
	log     zerolog.Logger
}

// NewPublisher creates a Publisher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewPublisher(numWorkers int, repo ports.EventRepository, log zerolog.Logger) *Publisher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	p := &Publisher{
		workers: make([]chan domain.Event, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range p.workers {
		p.workers[i] = make(chan domain.Event, channelBuffer)
	}
	return p
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (p *Publisher) Start(ctx context.Context) {
	for i, ch := range p.workers {
		go p.runWorker(ctx, i, ch)
	}
}

// Publish sends an event to the worker responsible for its auction id.
// The call is non-blocking up to channelBuffer capacity.
func (p *Publisher) Publish(event domain.Event) {
	idx := p.shardIndex(event.AuctionID)
	p.workers[idx] <- event
	metrics.EventsPublishedTotal.WithLabelValues(string(event.Type)).Inc()
	metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(p.workers[idx])))
}

// shardIndex maps an auction id deterministically to a worker index.
func (p *Publisher) shardIndex(auctionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(auctionID))
	return int(h.Sum32()) % len(p.workers)
}

func (p *Publisher) runWorker(ctx context.Context, id int, ch <-chan domain.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := p.repo.Insert(ctx, &event); err != nil {
				p.log.Error().Err(err).
					Str("event_type", string(event.Type)).
					Str("auction_id", event.AuctionID).
					Int("worker_id", id).
					Msg("event persistence failed")
			}
			metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
		}
	}
}
