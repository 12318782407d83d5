package services

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultIdleTimeout = 30 * time.Minute

// IdleSweeper periodically closes editor sessions nobody is using.
type IdleSweeper struct {
	cron    *cron.Cron
	editors *EditorService
	maxIdle time.Duration
}

// StartIdleSweeper runs Sweep on the given cron schedule, e.g. "@every 1m".
func StartIdleSweeper(editors *EditorService, schedule string, maxIdle time.Duration) (*IdleSweeper, error) {
	if maxIdle <= 0 {
		maxIdle = DefaultIdleTimeout
	}
	s := &IdleSweeper{cron: cron.New(), editors: editors, maxIdle: maxIdle}
	if _, err := s.cron.AddFunc(schedule, s.Sweep); err != nil {
		return nil, err
	}
	s.cron.Start()
	log.Printf("🧹 Editor idle sweeper started (%s, idle after %s)", schedule, maxIdle)
	return s, nil
}

func (s *IdleSweeper) Sweep() {
	if n := s.editors.CloseIdle(s.maxIdle); n > 0 {
		log.Printf("🧹 Closed %d idle editor session(s)", n)
	}
}

// Stop stops scheduling and waits for a running sweep.
func (s *IdleSweeper) Stop() {
	<-s.cron.Stop().Done()
}
