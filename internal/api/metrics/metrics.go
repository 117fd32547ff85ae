// Package metrics defines and registers all custom Prometheus metrics for the
// auction engine. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register themselves with the default Prometheus registry via
// promauto at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auction"

// ── Auction lifecycle metrics ─────────────────────────────────────────────────

// AuctionsCreatedTotal counts successfully created auctions.
var AuctionsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auctions_created_total",
		Help:      "Total number of auctions created.",
	},
)

// AuctionsCanceledTotal counts auctions canceled before their start time.
var AuctionsCanceledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auctions_canceled_total",
		Help:      "Total number of auctions canceled by their creator.",
	},
)

// ── Bid metrics ───────────────────────────────────────────────────────────────

// BidsAcceptedTotal counts bids that passed every gate and replaced the leader.
var BidsAcceptedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bids_accepted_total",
		Help:      "Total number of accepted bids.",
	},
)

// BidsRejectedTotal counts rejected bids.
// Label:
//   - reason: short failure description (e.g. "not_active", "not_high_enough")
var BidsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bids_rejected_total",
		Help:      "Total number of rejected bids, by reason.",
	},
	[]string{"reason"},
)

// RefundsTotal counts deposits returned to displaced bidders.
var RefundsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refunds_total",
		Help:      "Total number of deposits refunded to outbid bidders.",
	},
)

// BidProcessingDuration measures how long a bid takes from validation to
// persistence, escrow swap included.
var BidProcessingDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "bid_processing_duration_seconds",
		Help:      "Duration of bid processing from validation to persistence.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)

// ── Settlement metrics ────────────────────────────────────────────────────────

// ClaimsTotal counts successful settlement operations.
// Label:
//   - kind: "asset" (winner claim), "funds" (creator claim), "reclaim" (zero-bid return)
var ClaimsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "claims_total",
		Help:      "Total number of successful claim operations, by kind.",
	},
	[]string{"kind"},
)

// EscrowHeld tracks the deposit currently held per auction. The series is
// deleted when the funds are paid out, so only auctions with live deposits
// contribute label values.
// Label:
//   - auction_id: the auction holding the deposit
var EscrowHeld = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "escrow_held",
		Help:      "Amount currently held in escrow, per auction.",
	},
	[]string{"auction_id"},
)

// ── Read-path and delivery metrics ────────────────────────────────────────────

// CacheLookupsTotal counts auction detail cache lookups.
// Label:
//   - result: "hit" or "miss"
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Total number of auction detail cache lookups, by result (hit/miss).",
	},
	[]string{"result"},
)

// EventsPublishedTotal counts engine events handed to the publisher.
// Label:
//   - type: the event type (e.g. "NewBidAdded")
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of engine events published, by type.",
	},
	[]string{"type"},
)

// EventsQueueDepth tracks the current number of events waiting in each
// publisher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each publisher worker channel.",
	},
	[]string{"worker_id"},
)
