// Package calendar decides trading days and which dates a snapshot refers to.
package calendar

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/bobmcallan/fnoscan/internal/common"
	"github.com/bobmcallan/fnoscan/internal/models"
)

const (
	msgOpen      = "Market is Live."
	msgPreMarket = "Market has not opened yet."
	msgPostClose = "Market is closed for the day."
	msgClosed    = "Market is closed."

	headerLayout = "Mon, 02 Jan"
)

// Calendar knows the exchange session hours and holidays.
type Calendar struct {
	location    *time.Location
	marketOpen  time.Duration // offset from local midnight
	marketClose time.Duration
	holidays    map[string]string
}

type settings struct {
	timezone string
	open     string
	close    string
	holidays map[string]string
}

// Option configures a Calendar
type Option func(*settings)

// WithTimezone sets the exchange timezone (IANA name)
func WithTimezone(name string) Option {
	return func(s *settings) {
		s.timezone = name
	}
}

// WithSession sets the session hours as "HH:MM" strings
func WithSession(open, close string) Option {
	return func(s *settings) {
		s.open = open
		s.close = close
	}
}

// WithHolidays replaces the holiday list (keys are YYYY-MM-DD)
func WithHolidays(h map[string]string) Option {
	return func(s *settings) {
		s.holidays = h
	}
}

// New creates a Calendar. Defaults are Asia/Kolkata, 09:15-15:30 and the
// built-in NSE holiday list.
func New(opts ...Option) (*Calendar, error) {
	s := settings{
		timezone: "Asia/Kolkata",
		open:     "09:15",
		close:    "15:30",
	}
	for _, opt := range opts {
		opt(&s)
	}

	loc, err := time.LoadLocation(s.timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", s.timezone, err)
	}
	open, err := parseClock(s.open)
	if err != nil {
		return nil, fmt.Errorf("invalid market open: %w", err)
	}
	closeAt, err := parseClock(s.close)
	if err != nil {
		return nil, fmt.Errorf("invalid market close: %w", err)
	}
	if closeAt <= open {
		return nil, fmt.Errorf("market close %s must be after open %s", s.close, s.open)
	}
	if s.holidays == nil {
		s.holidays = DefaultHolidays()
	}

	return &Calendar{
		location:    loc,
		marketOpen:  open,
		marketClose: closeAt,
		holidays:    s.holidays,
	}, nil
}

// NewFromConfig builds a Calendar from the [calendar] config section.
func NewFromConfig(cfg common.CalendarConfig) (*Calendar, error) {
	opts := []Option{
		WithTimezone(cfg.Timezone),
		WithSession(cfg.MarketOpen, cfg.MarketClose),
	}
	if cfg.HolidaysFile != "" {
		h, err := LoadHolidays(cfg.HolidaysFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithHolidays(h))
	}
	return New(opts...)
}

// Location returns the exchange timezone.
func (c *Calendar) Location() *time.Location {
	return c.location
}

// Now returns the current time in the exchange timezone.
func (c *Calendar) Now() time.Time {
	return time.Now().In(c.location)
}

// DateKey formats t as YYYY-MM-DD in the exchange timezone.
func (c *Calendar) DateKey(t time.Time) string {
	return t.In(c.location).Format(dateLayout)
}

// IsTradingDay reports whether t falls on a weekday that is not a holiday.
func (c *Calendar) IsTradingDay(t time.Time) bool {
	t = t.In(c.location)
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	_, holiday := c.holidays[t.Format(dateLayout)]
	return !holiday
}

// LastNTradingDays returns the n most recent trading days strictly before
// from's date, newest first, each at local midnight.
func (c *Calendar) LastNTradingDays(n int, from time.Time) []time.Time {
	if n <= 0 {
		return []time.Time{}
	}
	days := make([]time.Time, 0, n)
	d := midnight(from.In(c.location)).AddDate(0, 0, -1)
	for len(days) < n {
		if c.IsTradingDay(d) {
			days = append(days, d)
		}
		d = d.AddDate(0, 0, -1)
	}
	return days
}

// ResolveView decides the session state at now and which dates the current
// and P-day columns refer to.
func (c *Calendar) ResolveView(now time.Time) models.MarketView {
	now = now.In(c.location)

	view := models.MarketView{
		Status:   models.MarketClosedHoliday,
		Message:  msgClosed,
		ViewMode: models.ViewHistorical,
	}

	if c.IsTradingDay(now) {
		tod := now.Sub(midnight(now))
		switch {
		case tod < c.marketOpen:
			view.Status = models.MarketClosedPreMarket
			view.Message = msgPreMarket
		case tod >= c.marketClose:
			view.Status = models.MarketClosedPostClose
			view.Message = msgPostClose
			view.ViewMode = models.ViewLive
		default:
			view.Status = models.MarketOpen
			view.Message = msgOpen
			view.ViewMode = models.ViewLive
		}
	}

	if view.ViewMode == models.ViewLive {
		days := c.LastNTradingDays(3, now)
		view.Dates = models.ViewDates{Current: now, P1: days[0], P2: days[1], P3: days[2]}
	} else {
		days := c.LastNTradingDays(4, now)
		view.Dates = models.ViewDates{Current: days[0], P1: days[1], P2: days[2], P3: days[3]}
	}
	return view
}

// Status returns the market-status payload with display headers.
func (c *Calendar) Status(now time.Time) models.MarketStatus {
	now = now.In(c.location)
	view := c.ResolveView(now)

	headers := models.ViewHeaders{
		Current: header(view.Dates.Current),
		P1:      header(view.Dates.P1),
		P2:      header(view.Dates.P2),
		P3:      header(view.Dates.P3),
	}
	if view.ViewMode == models.ViewLive {
		headers.Current = fmt.Sprintf("Today (%s)", view.Dates.Current.Format("Mon"))
	}

	return models.MarketStatus{
		Status:      view.Status,
		CurrentTime: now.Format(time.RFC3339),
		Message:     view.Message,
		ViewMode:    view.ViewMode,
		Headers:     headers,
	}
}

// YearsCovered returns the distinct years present in the holiday list, ascending.
func (c *Calendar) YearsCovered() []int {
	seen := make(map[int]struct{})
	for date := range c.holidays {
		if y, err := strconv.Atoi(date[:4]); err == nil {
			seen[y] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

// Covers reports whether the holiday list has any entry for year.
func (c *Calendar) Covers(year int) bool {
	return slices.Contains(c.YearsCovered(), year)
}

func header(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(headerLayout)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func parseClock(s string) (time.Duration, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}
