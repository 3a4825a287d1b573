// Package scheduler drives watch mode: the same search re-run on a cron
// expression or a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"iv_housing/config"
	"iv_housing/models"
	"iv_housing/search"
)

var ErrNoSchedule = errors.New("no watch schedule configured (set WATCH_CRON or WATCH_INTERVAL)")

// Runner is satisfied by *search.Service.
type Runner interface {
	Run(ctx context.Context, criteria models.FilterCriteria) search.Result
}

type Scheduler struct {
	cfg      config.WatchConfig
	runner   Runner
	criteria models.FilterCriteria
	onResult func(search.Result)

	cron     *cron.Cron
	ticker   *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func New(cfg config.WatchConfig, runner Runner, criteria models.FilterCriteria, onResult func(search.Result)) *Scheduler {
	if onResult == nil {
		onResult = func(search.Result) {}
	}
	return &Scheduler{
		cfg:      cfg,
		runner:   runner,
		criteria: criteria,
		onResult: onResult,
		stopCh:   make(chan struct{}),
	}
}

// Start schedules runs. Cron takes precedence over the interval.
func (s *Scheduler) Start(ctx context.Context) error {
	switch {
	case s.cfg.Cron != "":
		log.Printf("Watch: starting with cron: %s", s.cfg.Cron)
		s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
		_, err := s.cron.AddFunc(s.cfg.Cron, func() {
			s.TriggerNow(ctx)
		})
		if err != nil {
			s.cron = nil
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()

	case s.cfg.Interval > 0:
		log.Printf("Watch: starting with interval: %s", s.cfg.Interval)
		s.ticker = time.NewTicker(s.cfg.Interval)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.TriggerNow(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()

	default:
		return ErrNoSchedule
	}
	return nil
}

// TriggerNow runs the search once and hands the result to the callback.
func (s *Scheduler) TriggerNow(ctx context.Context) search.Result {
	res := s.runner.Run(ctx, s.criteria)
	log.Printf("Watch: run %s finished: %s (%d/%d)", res.RunID, res.Status, len(res.Listings), res.Found)
	s.onResult(res)
	return res
}

// Stop halts scheduling and waits for an in-flight run to finish. Safe to call twice.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.cron != nil {
			<-s.cron.Stop().Done()
		}
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		s.wg.Wait()
	})
}
