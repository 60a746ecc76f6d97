// workers/reconcile.go
package workers

import (
	"context"
	"log"
	"time"

	"dkp-tracker/store"
)

// ReconcileWorker periodically checks the ledger invariant: every player's
// total_dkp must equal the sum of their attendance awards plus the sum of
// their manual adjustment deltas. The recorder keeps this true
// transactionally; out-of-band writes (or bugs) are what this catches.
type ReconcileWorker struct {
	Store    store.Store
	Interval time.Duration
	Repair   bool
}

func NewReconcileWorker(st store.Store, interval time.Duration, repair bool) *ReconcileWorker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &ReconcileWorker{
		Store:    st,
		Interval: interval,
		Repair:   repair,
	}
}

func (w *ReconcileWorker) Start(ctx context.Context) {
	log.Printf("🔁 Starting DKP reconcile worker (every %s, repair=%t)…", w.Interval, w.Repair)
	go w.run(ctx)
}

func (w *ReconcileWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				log.Printf("❌ DKP reconcile pass failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ DKP reconcile worker stopped")
			return
		}
	}
}

// RunOnce performs one reconciliation pass and returns how many players
// drifted. Drift is always logged; it is only corrected when Repair is set.
func (w *ReconcileWorker) RunOnce(ctx context.Context) (int, error) {
	awarded, err := w.Store.Attendances().TotalsByPlayer(ctx)
	if err != nil {
		return 0, err
	}
	adjusted, err := w.Store.Adjustments().TotalsByPlayer(ctx)
	if err != nil {
		return 0, err
	}
	players, err := w.Store.Players().List(ctx, "", 0)
	if err != nil {
		return 0, err
	}

	drifted := 0
	for _, p := range players {
		expected := awarded[p.ID] + adjusted[p.ID]
		if p.TotalDKP == expected {
			continue
		}

		drifted++
		log.Printf("⚠️ [RECONCILE] %s (discord_id=%s) total_dkp=%d but ledger says %d",
			p.Username, p.DiscordID, p.TotalDKP, expected)

		if !w.Repair {
			continue
		}
		if err := w.Store.Players().SetTotalDKP(ctx, p.ID, expected); err != nil {
			log.Printf("❌ [RECONCILE] Failed to repair %s: %v", p.Username, err)
			continue
		}
		log.Printf("✅ [RECONCILE] Repaired %s: total_dkp %d → %d", p.Username, p.TotalDKP, expected)
	}

	if drifted == 0 {
		log.Println("✅ [RECONCILE] Ledger consistent")
	}
	return drifted, nil
}
