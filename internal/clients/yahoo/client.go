// Package yahoo provides a client for the Yahoo Finance chart and quoteSummary APIs
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/fnoscan/internal/common"
	"github.com/bobmcallan/fnoscan/internal/interfaces"
	"github.com/bobmcallan/fnoscan/internal/models"
)

const (
	DefaultBaseURL      = "https://query1.finance.yahoo.com"
	DefaultTimeout      = 20 * time.Second
	DefaultRateLimit    = 2 // requests per second
	DefaultSymbolSuffix = ".NS"

	quoteRange     = "5d"
	summaryModules = "price,summaryDetail,defaultKeyStatistics,financialData,assetProfile"
)

// ErrNoData is returned when Yahoo answers with an empty result set.
var ErrNoData = errors.New("yahoo: no data returned")

// Client implements MarketDataClient and FundamentalsClient over Yahoo Finance
type Client struct {
	baseURL    string
	suffix     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
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

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		suffix:  DefaultSymbolSuffix,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-200 response
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Ticker maps a base symbol to a Yahoo ticker. Index symbols ("^NSEI") and
// symbols that already carry a suffix are passed through.
func (c *Client) Ticker(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if strings.HasPrefix(symbol, "^") || strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + c.suffix
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Yahoo API request")

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

type apiErrorBody struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// chartResponse is the /v8/finance/chart payload
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiErrorBody `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol               string   `json:"symbol"`
		ExchangeTimezoneName string   `json:"exchangeTimezoneName"`
		RegularMarketPrice   float64  `json:"regularMarketPrice"`
		RegularMarketTime    int64    `json:"regularMarketTime"`
		ChartPreviousClose   float64  `json:"chartPreviousClose"`
		PreviousClose        float64  `json:"previousClose"`
		RegularMarketDayHigh float64  `json:"regularMarketDayHigh"`
		RegularMarketDayLow  float64  `json:"regularMarketDayLow"`
		RegularMarketVolume  int64    `json:"regularMarketVolume"`
		FiftyTwoWeekHigh     *float64 `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow      *float64 `json:"fiftyTwoWeekLow"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

func (c *Client) chart(ctx context.Context, symbol, rng string) (*chartResult, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", rng)

	path := "/v8/finance/chart/" + url.PathEscape(c.Ticker(symbol))

	var resp chartResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s", symbol, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, ErrNoData
	}
	return &resp.Chart.Result[0], nil
}

// GetBars retrieves daily bars for the range, oldest first
func (c *Client) GetBars(ctx context.Context, symbol, rng string) ([]models.Bar, error) {
	res, err := c.chart(ctx, symbol, rng)
	if err != nil {
		return nil, err
	}
	if len(res.Indicators.Quote) == 0 {
		return nil, ErrNoData
	}
	return parseBars(res), nil
}

// parseBars converts the chart arrays to daily bars. Null bars are skipped;
// when a date repeats the later entry wins, since Yahoo appends the live bar last.
func parseBars(res *chartResult) []models.Bar {
	if len(res.Indicators.Quote) == 0 {
		return nil
	}
	loc := res.location()

	q := res.Indicators.Quote[0]
	bars := make([]models.Bar, 0, len(res.Timestamp))
	index := make(map[string]int, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		closeVal := value(q.Close, i)
		if closeVal <= 0 {
			continue // null bar
		}
		date := dayOf(ts, loc)
		bar := models.Bar{
			Date:   date,
			Open:   value(q.Open, i),
			High:   value(q.High, i),
			Low:    value(q.Low, i),
			Close:  closeVal,
			Volume: int64(value(q.Volume, i)),
		}
		key := date.Format("2006-01-02")
		if j, dup := index[key]; dup {
			bars[j] = bar
			continue
		}
		index[key] = len(bars)
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars
}

func (r *chartResult) location() *time.Location {
	if tz := r.Meta.ExchangeTimezoneName; tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			return l
		}
	}
	return time.UTC
}

func dayOf(ts int64, loc *time.Location) time.Time {
	t := time.Unix(ts, 0).In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// GetQuote retrieves the latest session values from the chart metadata
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	res, err := c.chart(ctx, symbol, quoteRange)
	if err != nil {
		return nil, err
	}

	m := res.Meta
	prev := m.PreviousClose
	if prev <= 0 {
		prev = sessionPreviousClose(res)
	}

	return &models.Quote{
		Symbol:        symbol,
		LastPrice:     m.RegularMarketPrice,
		PreviousClose: prev,
		DayHigh:       m.RegularMarketDayHigh,
		DayLow:        m.RegularMarketDayLow,
		Volume:        m.RegularMarketVolume,
		YearHigh:      m.FiftyTwoWeekHigh,
		YearLow:       m.FiftyTwoWeekLow,
	}, nil
}

// sessionPreviousClose returns the close of the bar before the quoted session.
// chartPreviousClose is the close before the whole chart window, so it only
// answers when the session bar is the first bar of the window.
func sessionPreviousClose(res *chartResult) float64 {
	bars := parseBars(res)
	if len(bars) == 0 {
		return 0
	}

	last := len(bars) - 1
	sessionDay := bars[last].Date
	if res.Meta.RegularMarketTime > 0 {
		sessionDay = dayOf(res.Meta.RegularMarketTime, res.location())
	}

	// The last bar is the quoted session unless the quote is for a later day.
	if bars[last].Date.Before(sessionDay) {
		return bars[last].Close
	}
	if last > 0 {
		return bars[last-1].Close
	}
	return res.Meta.ChartPreviousClose
}

// rawValue is Yahoo's {"raw": 1.23, "fmt": "1.23"} wrapper
type rawValue struct {
	Raw *float64 `json:"raw"`
}

// quoteSummaryResponse is the /v10/finance/quoteSummary payload
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				LongName  string `json:"longName"`
				ShortName string `json:"shortName"`
			} `json:"price"`
			SummaryDetail struct {
				MarketCap            rawValue `json:"marketCap"`
				TrailingPE           rawValue `json:"trailingPE"`
				ForwardPE            rawValue `json:"forwardPE"`
				DividendYield        rawValue `json:"dividendYield"`
				FiftyTwoWeekHigh     rawValue `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow      rawValue `json:"fiftyTwoWeekLow"`
				FiftyDayAverage      rawValue `json:"fiftyDayAverage"`
				TwoHundredDayAverage rawValue `json:"twoHundredDayAverage"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				TrailingEps rawValue `json:"trailingEps"`
				BookValue   rawValue `json:"bookValue"`
				PriceToBook rawValue `json:"priceToBook"`
			} `json:"defaultKeyStatistics"`
			FinancialData struct {
				ReturnOnEquity rawValue `json:"returnOnEquity"`
				ReturnOnAssets rawValue `json:"returnOnAssets"`
			} `json:"financialData"`
			AssetProfile struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
		} `json:"result"`
		Error *apiErrorBody `json:"error"`
	} `json:"quoteSummary"`
}

// GetFundamentals retrieves valuation data from quoteSummary
func (c *Client) GetFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	params := url.Values{}
	params.Set("modules", summaryModules)

	path := "/v10/finance/quoteSummary/" + url.PathEscape(c.Ticker(symbol))

	var resp quoteSummaryResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo quoteSummary %s: %s", symbol, resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, ErrNoData
	}

	r := resp.QuoteSummary.Result[0]
	name := r.Price.LongName
	if name == "" {
		name = r.Price.ShortName
	}

	return &models.Fundamentals{
		Symbol:        symbol,
		Name:          name,
		Sector:        r.AssetProfile.Sector,
		Industry:      r.AssetProfile.Industry,
		MarketCap:     r.SummaryDetail.MarketCap.Raw,
		PE:            r.SummaryDetail.TrailingPE.Raw,
		ForwardPE:     r.SummaryDetail.ForwardPE.Raw,
		EPS:           r.DefaultKeyStatistics.TrailingEps.Raw,
		BookValue:     r.DefaultKeyStatistics.BookValue.Raw,
		PB:            r.DefaultKeyStatistics.PriceToBook.Raw,
		DividendYield: r.SummaryDetail.DividendYield.Raw,
		ROE:           r.FinancialData.ReturnOnEquity.Raw,
		ROA:           r.FinancialData.ReturnOnAssets.Raw,
		YearHigh:      r.SummaryDetail.FiftyTwoWeekHigh.Raw,
		YearLow:       r.SummaryDetail.FiftyTwoWeekLow.Raw,
		DMA50:         r.SummaryDetail.FiftyDayAverage.Raw,
		DMA200:        r.SummaryDetail.TwoHundredDayAverage.Raw,
	}, nil
}

func value(s []*float64, i int) float64 {
	if i >= len(s) || s[i] == nil {
		return 0
	}
	return *s[i]
}

// Ensure Client implements the market data interfaces
var _ interfaces.MarketDataProvider = (*Client)(nil)
