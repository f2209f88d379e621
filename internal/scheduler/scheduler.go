package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/itinerary-weather/internal/logger"
)

const defaultInterval = 5 * time.Minute

// Job is a periodic cleanup task. Sweep returns how many entries it removed.
type Job struct {
	Name  string
	Sweep func() int
}

// Scheduler periodically runs the housekeeping jobs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	jobs      []Job
	interval  time.Duration
	log       logger.Logger
}

// New creates a new Scheduler. A non-positive interval falls back to five
// minutes.
func New(jobs []Job, interval time.Duration, log logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		jobs:      jobs,
		interval:  interval,
		log:       log.WithField("component", "scheduler"),
	}
}

// Start schedules every job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.jobs) == 0 {
		s.log.Infof("no jobs configured; nothing to schedule")
		return nil
	}

	for _, job := range s.jobs {
		job := job
		_, err := s.scheduler.Every(s.interval).Tag(job.Name).Do(func() {
			if n := job.Sweep(); n > 0 {
				s.log.Infof("%s: removed %d entries", job.Name, n)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule %s: %w", job.Name, err)
		}
	}

	s.scheduler.StartAsync()
	s.log.Infof("running %d jobs every %s", len(s.jobs), s.interval)
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
