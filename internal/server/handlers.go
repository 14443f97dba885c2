package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bobmcallan/fnoscan/internal/common"
	"github.com/bobmcallan/fnoscan/internal/models"
	"github.com/bobmcallan/fnoscan/internal/services/refresh"
	"github.com/bobmcallan/fnoscan/internal/services/stocks"
)

// manualRefreshTimeout bounds a refresh triggered over HTTP.
const manualRefreshTimeout = 5 * time.Minute

// HealthResponse is the /api/health payload.
type HealthResponse struct {
	Status   string         `json:"status"`
	Uptime   string         `json:"uptime"`
	Snapshot SnapshotHealth `json:"snapshot"`
}

// SnapshotHealth describes the live snapshot.
type SnapshotHealth struct {
	Ready       bool       `json:"ready"`
	Records     int        `json:"records"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	AgeSeconds  float64    `json:"age_seconds"`
	Fresh       bool       `json:"fresh"`
	Degraded    bool       `json:"degraded"`
	Source      string     `json:"source,omitempty"`
	CycleID     string     `json:"cycle_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	resp := HealthResponse{Status: "ok"}
	if !s.app.StartupTime.IsZero() {
		resp.Uptime = time.Since(s.app.StartupTime).Round(time.Second).String()
	}

	if s.app.Cache != nil {
		if snap := s.app.Cache.Snapshot(); snap != nil {
			published := snap.PublishedAt
			ttl := common.SnapshotTTL(s.app.Config.Refresh.GetInterval())
			resp.Snapshot = SnapshotHealth{
				Ready:       true,
				Records:     snap.Len(),
				PublishedAt: &published,
				AgeSeconds:  snap.Age(time.Now()).Seconds(),
				Fresh:       common.IsFresh(published, ttl),
				Degraded:    snap.Degraded,
				Source:      snap.Source,
				CycleID:     snap.CycleID,
			}
		}
	}

	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}

// handleRefresh handles POST /api/refresh (non-production only). The cycle
// runs in the background; the response does not wait for it.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Manual refresh disabled in production")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), manualRefreshTimeout)
	go func() {
		defer cancel()
		snap, err := s.app.RefreshService.RunOnce(ctx)
		switch {
		case errors.Is(err, refresh.ErrCycleInProgress):
			s.logger.Info().Msg("Manual refresh skipped, cycle already running")
		case err != nil:
			s.logger.Warn().Err(err).Msg("Manual refresh failed")
		default:
			s.logger.Info().Int("records", snap.Len()).Msg("Manual refresh complete")
		}
	}()

	WriteJSON(w, http.StatusAccepted, map[string]string{"status": "refresh started"})
}

func (s *Server) handleMarketStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.app.StockService.MarketStatus(r.Context()))
}

func (s *Server) handleSectors(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.app.StockService.Sectors(r.Context()))
}

func (s *Server) handleIndices(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.app.StockService.Indices(r.Context()))
}

// handleStockList serves /api/stocks, /api/stocks/fno and
// /api/stocks/strength-analyzer with the same filters.
func (s *Server) handleStockList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q, err := stocks.ParseStockQuery(r.URL.Query())
	if err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "invalid_query")
		return
	}

	writeRecords(w, s.app.StockService.List(r.Context(), q))
}

func (s *Server) handleTopByAvg3(w http.ResponseWriter, r *http.Request, desc bool) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit, err := queryInt(r, "limit", stocks.DefaultTopLimit)
	if err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "invalid_query")
		return
	}

	writeRecords(w, s.app.StockService.TopBy(r.Context(), models.SortAvg3Day, limit, desc))
}

func (s *Server) handleStockDetail(w http.ResponseWriter, r *http.Request, raw string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol, errMsg := validateSymbol(raw)
	if errMsg != "" {
		WriteError(w, http.StatusBadRequest, errMsg)
		return
	}

	rec, err := s.app.StockService.Detail(r.Context(), symbol)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

func (s *Server) handleStockChart(w http.ResponseWriter, r *http.Request, raw string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol, errMsg := validateSymbol(raw)
	if errMsg != "" {
		WriteError(w, http.StatusBadRequest, errMsg)
		return
	}

	width, err := queryInt(r, "width", stocks.DefaultChartWidth)
	if err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "invalid_query")
		return
	}

	png, err := s.app.StockService.ChartPNG(r.Context(), symbol, width)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleSnapshotStream upgrades to a WebSocket that receives one event per
// published snapshot.
func (s *Server) handleSnapshotStream(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if s.app.Hub == nil {
		WriteError(w, http.StatusServiceUnavailable, "Snapshot stream unavailable")
		return
	}
	s.app.Hub.ServeWS(w, r)
}

func writeRecords(w http.ResponseWriter, records []models.StockRecord) {
	if records == nil {
		records = []models.StockRecord{}
	}
	WriteJSON(w, http.StatusOK, records)
}
