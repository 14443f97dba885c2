package app

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/fnoscan/internal/cache"
	"github.com/bobmcallan/fnoscan/internal/calendar"
	"github.com/bobmcallan/fnoscan/internal/common"
)

// Housekeeping runs maintenance checks on cron schedules in the exchange
// timezone. Specs carry a leading seconds field.
type Housekeeping struct {
	cron     *cron.Cron
	calendar *calendar.Calendar
	cache    *cache.Cache
	interval time.Duration
	logger   *common.Logger
	now      func() time.Time
}

// NewHousekeeping creates the scheduler. interval is the refresh interval the
// staleness check measures against.
func NewHousekeeping(cal *calendar.Calendar, c *cache.Cache, interval time.Duration, logger *common.Logger) *Housekeeping {
	return &Housekeeping{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(cal.Location()),
			cron.WithChain(cron.Recover(cronLogger{logger})),
		),
		calendar: cal,
		cache:    c,
		interval: interval,
		logger:   logger,
		now:      cal.Now,
	}
}

// Start registers the checks and starts the cron runner. Empty specs disable
// the corresponding check.
func (h *Housekeeping) Start(cfg common.HousekeepingConfig) error {
	jobs := []struct {
		name string
		spec string
		fn   func()
	}{
		{"calendar_check", cfg.CalendarCheck, func() { h.CheckCalendarCoverage() }},
		{"staleness_check", cfg.StalenessCheck, func() { h.CheckStaleness() }},
	}

	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		if _, err := h.cron.AddFunc(job.spec, job.fn); err != nil {
			return fmt.Errorf("invalid %s schedule %q: %w", job.name, job.spec, err)
		}
		h.logger.Info().Str("job", job.name).Str("schedule", job.spec).Msg("Housekeeping job scheduled")
	}

	h.cron.Start()
	return nil
}

// Stop halts the runner and waits for running jobs.
func (h *Housekeeping) Stop() {
	<-h.cron.Stop().Done()
	h.logger.Info().Msg("Housekeeping: stopped")
}

// CheckCalendarCoverage warns when the holiday list has no entries for the
// current year. It reports whether the year is covered.
func (h *Housekeeping) CheckCalendarCoverage() bool {
	year := h.now().In(h.calendar.Location()).Year()
	if h.calendar.Covers(year) {
		h.logger.Debug().Int("year", year).Msg("Calendar check: holidays covered")
		return true
	}
	h.logger.Warn().
		Int("year", year).
		Str("years_covered", fmt.Sprint(h.calendar.YearsCovered())).
		Msg("Calendar check: no exchange holidays listed for current year")
	return false
}

// CheckStaleness warns when the live snapshot is missing or older than
// StaleAfterIntervals refresh intervals. It reports whether it is stale.
func (h *Housekeeping) CheckStaleness() bool {
	snap := h.cache.Snapshot()
	if snap == nil {
		h.logger.Warn().Msg("Staleness check: no snapshot published yet")
		return true
	}

	ttl := common.SnapshotTTL(h.interval)
	age := snap.Age(h.now())
	if age <= ttl {
		return false
	}

	h.logger.Warn().
		Dur("age", age).
		Dur("ttl", ttl).
		Str("cycle_id", snap.CycleID).
		Str("source", snap.Source).
		Msg("Staleness check: snapshot is stale")
	return true
}

// cronLogger adapts the application logger to cron's logging interface.
type cronLogger struct {
	logger *common.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Str("kv", fmt.Sprint(keysAndValues...)).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Str("kv", fmt.Sprint(keysAndValues...)).Msg("cron: " + msg)
}
