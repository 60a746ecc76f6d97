// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartExportScheduler snapshots the standings to object storage on an
// interval. No-op when the export target is unconfigured.
func (s *ExportService) StartExportScheduler(interval time.Duration) {
	if s.Upload == nil {
		log.Println("⚠️  Standings export not configured, scheduler disabled")
		return
	}
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			url, err := s.Export(ctx)
			if err != nil {
				log.Printf("❌ Scheduled standings export failed: %v", err)
				return
			}
			log.Printf("📤 Standings exported to %s", url)
		}),
	)

	log.Printf("🗓️  Standings export scheduled every %s", interval)
}
