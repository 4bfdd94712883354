package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/opdev7/LendTez/internal/contract"
)

type DealSource interface {
	Deals() []contract.Deal
}

type Broadcaster interface {
	Publish(channel string, payload []byte)
}

// ExpiryWorker announces deals whose expiry has passed, once per deal, so
// creditors learn they may claim the deposit. It never closes anything:
// default settlement stays an explicit creditor/admin call.
type ExpiryWorker struct {
	deals    DealSource
	events   Broadcaster
	notified map[uint64]bool
	now      func() time.Time
}

func NewExpiryWorker(deals DealSource, events Broadcaster) *ExpiryWorker {
	return &ExpiryWorker{
		deals:    deals,
		events:   events,
		notified: map[uint64]bool{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (w *ExpiryWorker) RunOnce(_ context.Context) error {
	now := w.now()
	live := map[uint64]bool{}
	for _, deal := range w.deals.Deals() {
		live[deal.ID] = true
		if !deal.Expiry.Before(now) || w.notified[deal.ID] {
			continue
		}
		payload, _ := json.Marshal(map[string]any{
			"kind": "deal_expired",
			"at":   now,
			"data": deal,
		})
		w.events.Publish("deals", payload)
		w.notified[deal.ID] = true
	}

	// Closed deals need no bookkeeping anymore.
	for id := range w.notified {
		if !live[id] {
			delete(w.notified, id)
		}
	}
	return nil
}

// Run loops RunOnce until the context is cancelled.
func (w *ExpiryWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = w.RunOnce(ctx)
		}
	}
}
