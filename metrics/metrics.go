package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"sportsbook/events"
)

// Counters fed from the event bus. Settlement and placement emit their events
// only after the owning transaction commits, so the counters never see
// rolled-back work.
var (
	usersRegistered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sportsbook_users_registered_total",
		Help: "Accounts created",
	})
	betsPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sportsbook_bets_placed_total",
		Help: "Bets accepted",
	})
	betsSettled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsbook_bets_settled_total",
		Help: "Bets resolved, by result",
	}, []string{"result"})
	eventsClosed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sportsbook_events_closed_total",
		Help: "Events closed with a final result",
	})
	balanceChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsbook_balance_changes_total",
		Help: "Balance history entries, by transaction type",
	}, []string{"type"})
)

// Register installs the counters on the default registry and subscribes them
// to the event bus
func Register(bus *events.Bus) {
	prometheus.MustRegister(usersRegistered, betsPlaced, betsSettled, eventsClosed, balanceChanges)

	bus.Subscribe(events.EventTypeUserCreated, func(ctx context.Context, e events.Event) {
		usersRegistered.Inc()
	})

	bus.Subscribe(events.EventTypeBetPlaced, func(ctx context.Context, e events.Event) {
		betsPlaced.Inc()
	})

	bus.Subscribe(events.EventTypeBetSettled, func(ctx context.Context, e events.Event) {
		if settled, ok := e.(events.BetSettledEvent); ok {
			betsSettled.WithLabelValues(string(settled.Status)).Inc()
		}
	})

	bus.Subscribe(events.EventTypeEventClosed, func(ctx context.Context, e events.Event) {
		eventsClosed.Inc()
	})

	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		if change, ok := e.(events.BalanceChangeEvent); ok {
			balanceChanges.WithLabelValues(string(change.TransactionType)).Inc()
		}
	})
}
