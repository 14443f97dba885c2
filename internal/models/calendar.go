package models

import "time"

// MarketState is the exchange session state at an instant.
type MarketState string

const (
	MarketOpen            MarketState = "OPEN"
	MarketClosedPreMarket MarketState = "CLOSED_PRE_MARKET"
	MarketClosedPostClose MarketState = "CLOSED_POST_MARKET"
	MarketClosedHoliday   MarketState = "CLOSED_HOLIDAY"
)

// ViewMode selects which dates the current and P-day columns refer to.
type ViewMode string

const (
	ViewLive       ViewMode = "LIVE"
	ViewHistorical ViewMode = "HISTORICAL"
)

// ViewDates are the dates behind the current and previous-day columns.
// A zero time means no date could be resolved.
type ViewDates struct {
	Current time.Time `json:"current"`
	P1      time.Time `json:"p1"`
	P2      time.Time `json:"p2"`
	P3      time.Time `json:"p3"`
}

// PDays returns P1..P3 in order.
func (d ViewDates) PDays() [3]time.Time {
	return [3]time.Time{d.P1, d.P2, d.P3}
}

// MarketView is the resolved view for a given instant.
type MarketView struct {
	Status   MarketState `json:"status"`
	Message  string      `json:"message"`
	ViewMode ViewMode    `json:"view_mode"`
	Dates    ViewDates   `json:"dates"`
}

// ViewHeaders are display labels for each column.
type ViewHeaders struct {
	Current string `json:"current"`
	P1      string `json:"p1"`
	P2      string `json:"p2"`
	P3      string `json:"p3"`
}

// MarketStatus is the market-status endpoint payload.
type MarketStatus struct {
	Status      MarketState `json:"status"`
	CurrentTime string      `json:"current_time"`
	Message     string      `json:"message"`
	ViewMode    ViewMode    `json:"view_mode"`
	Headers     ViewHeaders `json:"headers"`
}
