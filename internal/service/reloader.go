package service

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Reloadable is implemented by stores whose reference data can be
// refreshed from its backing file.
type Reloadable interface {
	Reload() error
}

// Reloader refreshes a file-backed spot store on a cron schedule, so an
// updated CSV is picked up without a restart.
type Reloader struct {
	cron *cron.Cron
}

// NewReloader schedules store.Reload on the given cron spec (robfig
// syntax, e.g. "@every 10m"). A failed refresh keeps the previous data.
func NewReloader(spec string, store Reloadable) (*Reloader, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := store.Reload(); err != nil {
			log.Printf("Spot data refresh failed: %v", err)
			return
		}
		log.Println("Spot data refreshed")
	})
	if err != nil {
		return nil, fmt.Errorf("reloader: bad schedule %q: %w", spec, err)
	}
	return &Reloader{cron: c}, nil
}

// Start begins running the schedule in its own goroutine.
func (r *Reloader) Start() {
	r.cron.Start()
}

// Stop halts the schedule; a refresh already in flight completes.
func (r *Reloader) Stop() {
	r.cron.Stop()
}
