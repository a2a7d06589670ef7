// Package scheduler wires up the cron job that periodically reloads the
// settings files into the shared snapshot.
package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"jobmate/jobboard-service/internal/settings"
)

// Scheduler wraps robfig/cron and manages the reload loop.
type Scheduler struct {
	cron  *cron.Cron
	store *settings.Store
	snap  *settings.Snapshot
	spec  string // cron spec, e.g. "@every 15m"
}

// New creates a Scheduler that reloads every intervalMinutes minutes.
func New(store *settings.Store, snap *settings.Snapshot, intervalMinutes int) *Scheduler {
	if intervalMinutes < 1 {
		intervalMinutes = 1
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cron.DefaultLogger),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		store: store,
		snap:  snap,
		spec:  fmt.Sprintf("@every %dm", intervalMinutes),
	}
}

// Start registers the job and starts the scheduler. One reload runs
// synchronously first so the snapshot is populated before Start returns.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.Reload); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.Reload()
	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)
	return nil
}

// Stop shuts down the scheduler and waits for a running reload to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[scheduler] Cron stopped")
}

// Reload refreshes the snapshot from disk. Also called on settings events.
func (s *Scheduler) Reload() {
	s.snap.Reload(s.store)
	log.Printf("[scheduler] Settings reloaded — %d keyword(s), %d location(s)",
		len(s.snap.Keywords()), len(s.snap.Locations().Terms()))
}
