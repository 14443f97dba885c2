// Package eodhd provides a client for the EODHD API
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/fnoscan/internal/clients/rangespec"
	"github.com/bobmcallan/fnoscan/internal/common"
	"github.com/bobmcallan/fnoscan/internal/interfaces"
	"github.com/bobmcallan/fnoscan/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "NA" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// ptr returns nil for zero, which EODHD uses for missing values.
func (f flexFloat64) ptr() *float64 {
	if f == 0 {
		return nil
	}
	v := float64(f)
	return &v
}

const (
	DefaultBaseURL      = "https://eodhd.com/api"
	DefaultTimeout      = 30 * time.Second
	DefaultRateLimit    = 10 // requests per second
	DefaultSymbolSuffix = ".NSE"
)

// Client implements MarketDataClient and FundamentalsClient over EODHD
type Client struct {
	baseURL    string
	apiKey     string
	suffix     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	now        func() time.Time
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithSymbolSuffix sets the exchange suffix appended to base symbols
func WithSymbolSuffix(suffix string) ClientOption {
	return func(c *Client) {
		c.suffix = suffix
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		suffix:  DefaultSymbolSuffix,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Ticker maps a base symbol to an EODHD ticker. Index symbols ("^NSEI")
// map to the INDX exchange.
func (c *Client) Ticker(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if strings.HasPrefix(symbol, "^") {
		return strings.TrimPrefix(symbol, "^") + ".INDX"
	}
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + c.suffix
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// eodBarResponse represents the API response for EOD data
type eodBarResponse struct {
	Date          string      `json:"date"`
	Open          flexFloat64 `json:"open"`
	High          flexFloat64 `json:"high"`
	Low           flexFloat64 `json:"low"`
	Close         flexFloat64 `json:"close"`
	AdjustedClose flexFloat64 `json:"adjusted_close"`
	Volume        flexFloat64 `json:"volume"`
}

// GetBars retrieves daily bars for the range, oldest first
func (c *Client) GetBars(ctx context.Context, symbol, rng string) ([]models.Bar, error) {
	params := url.Values{}
	params.Set("period", "d")
	params.Set("order", "a")

	if from := rangespec.Start(c.now(), rng); !from.IsZero() {
		params.Set("from", from.Format("2006-01-02"))
	}

	path := fmt.Sprintf("/eod/%s", c.Ticker(symbol))

	var raw []eodBarResponse
	if err := c.get(ctx, path, params, &raw); err != nil {
		return nil, err
	}

	bars := make([]models.Bar, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, b := range raw {
		if b.Close <= 0 {
			continue
		}
		date, err := time.Parse("2006-01-02", b.Date)
		if err != nil {
			continue
		}
		if _, dup := seen[b.Date]; dup {
			continue
		}
		seen[b.Date] = struct{}{}
		bars = append(bars, models.Bar{
			Date:   date,
			Open:   float64(b.Open),
			High:   float64(b.High),
			Low:    float64(b.Low),
			Close:  float64(b.Close),
			Volume: int64(b.Volume),
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	return bars, nil
}

// realTimeResponse represents the /real-time payload
type realTimeResponse struct {
	Code          string      `json:"code"`
	Timestamp     int64       `json:"timestamp"`
	Open          flexFloat64 `json:"open"`
	High          flexFloat64 `json:"high"`
	Low           flexFloat64 `json:"low"`
	Close         flexFloat64 `json:"close"`
	Volume        flexFloat64 `json:"volume"`
	PreviousClose flexFloat64 `json:"previousClose"`
	Change        flexFloat64 `json:"change"`
	ChangeP       flexFloat64 `json:"change_p"`
}

// GetQuote retrieves the latest (delayed) session values
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	path := fmt.Sprintf("/real-time/%s", c.Ticker(symbol))

	var resp realTimeResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	return &models.Quote{
		Symbol:        symbol,
		LastPrice:     float64(resp.Close),
		PreviousClose: float64(resp.PreviousClose),
		DayHigh:       float64(resp.High),
		DayLow:        float64(resp.Low),
		Volume:        int64(resp.Volume),
	}, nil
}

// fundamentalsResponse represents the API response structure
type fundamentalsResponse struct {
	General struct {
		Code     string `json:"Code"`
		Name     string `json:"Name"`
		Sector   string `json:"Sector"`
		Industry string `json:"Industry"`
	} `json:"General"`
	Highlights struct {
		MarketCapitalization flexFloat64 `json:"MarketCapitalization"`
		PERatio              flexFloat64 `json:"PERatio"`
		EarningsShare        flexFloat64 `json:"EarningsShare"`
		BookValue            flexFloat64 `json:"BookValue"`
		DividendYield        flexFloat64 `json:"DividendYield"`
		ReturnOnEquityTTM    flexFloat64 `json:"ReturnOnEquityTTM"`
		ReturnOnAssetsTTM    flexFloat64 `json:"ReturnOnAssetsTTM"`
	} `json:"Highlights"`
	Valuation struct {
		ForwardPE    flexFloat64 `json:"ForwardPE"`
		PriceBookMRQ flexFloat64 `json:"PriceBookMRQ"`
	} `json:"Valuation"`
	Technicals struct {
		Beta         flexFloat64 `json:"Beta"`
		WeekHigh52   flexFloat64 `json:"52WeekHigh"`
		WeekLow52    flexFloat64 `json:"52WeekLow"`
		DayMA50      flexFloat64 `json:"50DayMA"`
		DayMA200     flexFloat64 `json:"200DayMA"`
		SharesShort  flexFloat64 `json:"SharesShort"`
		ShortPercent flexFloat64 `json:"ShortPercent"`
	} `json:"Technicals"`
}

// GetFundamentals retrieves fundamental data
func (c *Client) GetFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	path := fmt.Sprintf("/fundamentals/%s", c.Ticker(symbol))

	var resp fundamentalsResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	return &models.Fundamentals{
		Symbol:        symbol,
		Name:          resp.General.Name,
		Sector:        resp.General.Sector,
		Industry:      resp.General.Industry,
		MarketCap:     resp.Highlights.MarketCapitalization.ptr(),
		PE:            resp.Highlights.PERatio.ptr(),
		ForwardPE:     resp.Valuation.ForwardPE.ptr(),
		EPS:           resp.Highlights.EarningsShare.ptr(),
		BookValue:     resp.Highlights.BookValue.ptr(),
		PB:            resp.Valuation.PriceBookMRQ.ptr(),
		DividendYield: resp.Highlights.DividendYield.ptr(),
		ROE:           resp.Highlights.ReturnOnEquityTTM.ptr(),
		ROA:           resp.Highlights.ReturnOnAssetsTTM.ptr(),
		YearHigh:      resp.Technicals.WeekHigh52.ptr(),
		YearLow:       resp.Technicals.WeekLow52.ptr(),
		DMA50:         resp.Technicals.DayMA50.ptr(),
		DMA200:        resp.Technicals.DayMA200.ptr(),
	}, nil
}

// Ensure Client implements the market data interfaces
var _ interfaces.MarketDataProvider = (*Client)(nil)
