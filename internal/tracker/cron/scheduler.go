package cronjob

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/prioboard/prioboard-backend/internal/tracker/service"
)

// Scheduler runs the nightly priority compaction. Incomplete bulk reorders
// can leave duplicate or gapped priority values behind; compaction renumbers
// everything to a dense 0..N-1 sequence without changing the visible order.
type Scheduler struct {
	svc  *service.TrackerService
	spec string
}

func NewScheduler(svc *service.TrackerService, spec string) *Scheduler {
	return &Scheduler{svc: svc, spec: spec}
}

// Start initializes cron tasks. An empty spec disables the scheduler.
func (s *Scheduler) Start() {
	if s.spec == "" {
		log.Println("Priority compaction disabled (no schedule)")
		return
	}

	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(s.spec, s.runCompaction)
	if err != nil {
		log.Printf("Failed to create compaction cron job: %v", err)
		return
	}

	log.Printf("Cron scheduler started (priority compaction: %q)", s.spec)
	c.Start()
}

func (s *Scheduler) runCompaction() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	changed, err := s.svc.CompactPriorities(ctx)
	if err != nil {
		log.Printf("Priority compaction failed: %v", err)
		return
	}
	if changed {
		log.Println("Priority compaction renumbered projects")
	} else {
		log.Println("Priority compaction: nothing to do")
	}
}
