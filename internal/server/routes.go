package server

import (
	"net/http"
	"strings"
)

// legacyPrefix is the path prefix used by the v1 web dashboard.
const legacyPrefix = "/api/v1/"

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/refresh", s.handleRefresh)

	// Market
	mux.HandleFunc("/api/market-status", s.handleMarketStatus)
	mux.HandleFunc("/api/sectors", s.handleSectors)
	mux.HandleFunc("/api/indices", s.handleIndices)

	// Stocks
	mux.HandleFunc("/api/stocks", s.handleStockList)
	mux.HandleFunc("/api/stocks/", s.routeStocks)

	// Push notifications
	mux.HandleFunc("/api/ws/snapshots", s.handleSnapshotStream)

	// Compatibility with /api/v1 paths
	mux.Handle(legacyPrefix, s.legacyRoutes(mux))
}

// routeStocks dispatches /api/stocks/{...} paths.
func (s *Server) routeStocks(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/stocks/"), "/")

	switch path {
	case "", "fno", "strength-analyzer":
		s.handleStockList(w, r)
		return
	case "gainers-3day":
		s.handleTopByAvg3(w, r, true)
		return
	case "losers-3day":
		s.handleTopByAvg3(w, r, false)
		return
	case "market-status":
		s.handleMarketStatus(w, r)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	symbol := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch subpath {
	case "", "details":
		s.handleStockDetail(w, r, symbol)
	case "chart.png":
		s.handleStockChart(w, r, symbol)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// legacyRoutes maps /api/v1/... onto the current routes, including the
// advanced heatmap and indices paths.
func (s *Server) legacyRoutes(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, legacyPrefix)
		switch rest {
		case "advanced/heatmap":
			rest = "sectors"
		case "advanced/indices":
			rest = "indices"
		}

		r2 := r.Clone(r.Context())
		r2.URL.Path = "/api/" + rest
		r2.URL.RawPath = ""
		mux.ServeHTTP(w, r2)
	})
}
