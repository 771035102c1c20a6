/*
scheduler.go - Periodic refresh of per-hotel gauges

PURPOSE:
  Recomputes, for every hotel, the hotel-wide booking trend and the number
  of rooms out of service today, and publishes them as Prometheus gauges
  so dashboards and alerts don't have to call the API.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Runs once immediately on Start
  - A hotel without production data reports a 0% trend (logged at debug)
  - A failing hotel is logged and skipped; the others are still refreshed

CONFIGURATION:
  - Interval: How often to refresh (default: 15 minutes)
  - Enabled:  Whether the scheduler is active (default: true)

USAGE:
  scheduler := NewScheduler(advisor, metrics, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - metrics/metrics.go: TrendPercentChange, RoomsOutOfService
  - upgrade/advisor.go: Trend, Inventory
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/warp/upgrade-advisor/generic"
	"github.com/warp/upgrade-advisor/logger"
	"github.com/warp/upgrade-advisor/metrics"
	"github.com/warp/upgrade-advisor/upgrade"
)

// Scheduler refreshes per-hotel gauges in the background.
type Scheduler struct {
	Advisor  *upgrade.Advisor
	Metrics  *metrics.Metrics
	Log      logger.Logger
	Interval time.Duration
	Enabled  bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewScheduler(advisor *upgrade.Advisor, m *metrics.Metrics, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		Advisor:  advisor,
		Metrics:  m,
		Log:      log,
		Interval: 15 * time.Minute,
		Enabled:  true,
	}
}

// Start begins the scheduler. Calling Start twice is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Log.Info("scheduler disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.Interval)
	s.stop = make(chan struct{})
	s.wg.Add(1)
	go s.run()

	s.Log.Info("scheduler started", "interval", s.Interval.String())
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.stop)
	s.wg.Wait()
	s.ticker = nil
	s.Log.Info("scheduler stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.stop
		cancel()
	}()

	s.RunNow(ctx)
	for {
		select {
		case <-s.ticker.C:
			s.RunNow(ctx)
		case <-s.stop:
			return
		}
	}
}

// RunNow refreshes every hotel and returns how many were updated.
func (s *Scheduler) RunNow(ctx context.Context) int {
	hotels, err := s.Advisor.Store.ListHotels(ctx)
	if err != nil {
		s.Metrics.Fail("scheduler")
		s.Log.Error("scheduler: list hotels failed", "error", err)
		return 0
	}

	refreshed := 0
	for _, hotel := range hotels {
		if err := s.refresh(ctx, hotel.ID); err != nil {
			s.Metrics.Fail("scheduler")
			s.Log.Error("scheduler: refresh failed", "hotel", hotel.ID, "error", err)
			continue
		}
		refreshed++
	}
	s.Log.Debug("scheduler: hotels refreshed", "refreshed", refreshed, "hotels", len(hotels))
	return refreshed
}

func (s *Scheduler) refresh(ctx context.Context, hotelID generic.HotelID) error {
	var pct float64
	trend, err := s.Advisor.Trend(ctx, generic.SeriesKey{HotelID: hotelID}, 0)
	switch {
	case generic.IsDataUnavailable(err), generic.IsClientError(err):
		s.Log.Debug("scheduler: no trend", "hotel", hotelID, "reason", err)
	case err != nil:
		return err
	default:
		pct = trend.PercentChange.InexactFloat64()
	}

	lines, err := s.Advisor.Inventory(ctx, hotelID, s.Advisor.Today())
	if err != nil {
		return err
	}
	outOfService := 0
	for _, l := range lines {
		outOfService += l.OutOfService
	}

	s.Metrics.ObserveHotel(string(hotelID), pct, outOfService)
	return nil
}
