// Package api provides the HTTP API for the game.
// GET endpoints are public (read-only).
// POST endpoints require a bearer token and are rate limited.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"github.com/talgya/geofarm/internal/catalog"
	"github.com/talgya/geofarm/internal/economy"
	"github.com/talgya/geofarm/internal/engine"
	"github.com/talgya/geofarm/internal/ledger"
	"github.com/talgya/geofarm/internal/model"
)

// Server serves the game state over HTTP.
type Server struct {
	Store       *engine.Store
	Eng         *engine.Engine
	Ledger      *ledger.DB // Optional; ledger endpoints return 503 without it
	Catalog     *catalog.Catalog
	Hub         *Hub
	Port        int
	AdminKey    string   // Bearer token for POST endpoints. Empty = POST disabled.
	CORSOrigins []string // "*" allows any origin
	Limiter     *RateLimiter
}

// Handler builds the full route table.
func (s *Server) Handler() http.Handler {
	if s.Limiter == nil {
		s.Limiter = NewRateLimiter(5, 20)
	}
	action := func(h http.HandlerFunc) http.HandlerFunc {
		return s.adminOnly(RateLimitMiddleware(s.Limiter, h))
	}

	mux := http.NewServeMux()

	// Read models.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/snapshot", s.handleSnapshot)
	mux.HandleFunc("/api/v1/catalog", s.handleCatalog)
	mux.HandleFunc("/api/v1/prices", s.handlePrices)
	mux.HandleFunc("/api/v1/networth", s.handleNetWorth)
	mux.HandleFunc("/api/v1/ledger/summary", s.handleLedgerSummary)
	mux.HandleFunc("/api/v1/ledger/recent", s.handleLedgerRecent)

	// Collections: GET lists, POST creates.
	mux.HandleFunc("/api/v1/player", action(s.handlePlayer))
	mux.HandleFunc("/api/v1/properties", action(s.handleProperties))
	mux.HandleFunc("/api/v1/vehicles", action(s.handleVehicles))
	mux.HandleFunc("/api/v1/productions", action(s.handleProductions))
	mux.HandleFunc("/api/v1/orders", action(s.handleOrders))
	mux.HandleFunc("/api/v1/transactions", action(s.handleTransactions))
	mux.HandleFunc("/api/v1/staff", action(s.handleStaff))
	mux.HandleFunc("/api/v1/speed", action(s.handleSpeed))

	// Detail and per-entity actions.
	mux.HandleFunc("/api/v1/property/", action(s.handlePropertyRoutes))
	mux.HandleFunc("/api/v1/vehicle/", action(s.handleVehicleRoutes))
	mux.HandleFunc("/api/v1/production/", action(s.handleProductionRoutes))
	mux.HandleFunc("/api/v1/order/", action(s.handleOrderRoutes))

	root := http.NewServeMux()
	if s.Hub != nil {
		// Outside the gzip wrapper so the upgrade can hijack the connection.
		root.HandleFunc("/ws", s.Hub.ServeWs)
	}
	root.Handle("/", gzhttp.GzipHandler(mux))
	return corsMiddleware(s.CORSOrigins, root)
}

// Start begins serving in a goroutine and returns the server for shutdown.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	anyOrigin := false
	for _, o := range origins {
		if o == "*" {
			anyOrigin = true
		}
		allowedOrigins[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (anyOrigin || allowedOrigins[origin]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "actions disabled (no GEOFARM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	gs := s.Store.GameState()
	p := s.Store.Player()
	nw := s.Store.NetWorth()

	status := map[string]any{
		"name":          "GeoFarm Tycoon",
		"game_time":     gs.CurrentTime,
		"season":        gs.Season,
		"hemisphere":    gs.Hemisphere,
		"speed":         gs.GameSpeed,
		"player":        p.Name,
		"level":         p.Level,
		"xp":            p.XP,
		"balance":       p.Balance,
		"balance_label": economy.FormatCurrency(p.Balance),
		"net_worth":     nw,
		"net_worth_fmt": economy.FormatCurrency(nw),
		"properties":    len(p.Properties),
		"vehicles":      len(p.Vehicles),
	}
	if s.Eng != nil {
		status["tick"] = s.Eng.Ticks()
		status["running"] = s.Eng.Running()
	}
	if s.Ledger != nil {
		for _, key := range []string{"started_at", "last_flush"} {
			if v, err := s.Ledger.GetMeta(key); err == nil {
				status[key] = v
			}
		}
	}
	if s.Hub != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 100*time.Millisecond)
		status["ws_clients"] = s.Hub.Clients(ctx)
		cancel()
	}
	writeJSON(w, status)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, s.Store.Snapshot())
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	if s.Catalog == nil {
		http.Error(w, "catalog not loaded", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]any{
		"crops":  s.Catalog.Crops(),
		"biomes": s.Catalog.Biomes(),
	})
}

// handlePrices returns every price history, or one with ?product=.
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	if product := r.URL.Query().Get("product"); product != "" {
		h, ok := s.Store.PriceHistory(product)
		if !ok {
			http.Error(w, "no prices for product", http.StatusNotFound)
			return
		}
		writeJSON(w, h)
		return
	}
	writeJSON(w, s.Store.PriceHistories())
}

func (s *Server) handleNetWorth(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	resp := map[string]any{"current": s.Store.NetWorth()}
	if s.Ledger != nil {
		history, err := s.Ledger.NetWorthHistory(queryInt(r, "limit", 168))
		if err != nil {
			slog.Error("net worth history failed", "error", err)
			http.Error(w, "ledger error", http.StatusInternalServerError)
			return
		}
		resp["history"] = history
	}
	writeJSON(w, resp)
}

// handleLedgerSummary totals journaled transactions since ?since= (RFC 3339).
func (s *Server) handleLedgerSummary(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	if s.Ledger == nil {
		http.Error(w, "ledger disabled", http.StatusServiceUnavailable)
		return
	}
	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "since must be RFC 3339", http.StatusBadRequest)
			return
		}
		since = t
	}
	sum, err := s.Ledger.Summary(since)
	if err != nil {
		slog.Error("ledger summary failed", "error", err)
		http.Error(w, "ledger error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, sum)
}

func (s *Server) handleLedgerRecent(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	if s.Ledger == nil {
		http.Error(w, "ledger disabled", http.StatusServiceUnavailable)
		return
	}
	txs, err := s.Ledger.RecentTransactions(queryInt(r, "limit", 50))
	if err != nil {
		slog.Error("recent transactions failed", "error", err)
		http.Error(w, "ledger error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, txs)
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodPost {
		var patch model.PlayerPatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		if err := s.Store.SetPlayer(patch); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, s.Store.Player())
}

func (s *Server) handleProperties(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodGet {
		writeJSON(w, s.Store.Properties())
		return
	}
	var p model.Property
	if !decodeJSON(w, r, &p) {
		return
	}
	added, err := s.Store.AddProperty(p)
	if err != nil {
		writeError(w, err)
		return
	}
	s.publish("property_purchased", added)
	writeJSONStatus(w, http.StatusCreated, added)
}

// handlePropertyRoutes serves /property/{id} and /property/{id}/plant.
func (s *Server) handlePropertyRoutes(w http.ResponseWriter, r *http.Request) {
	id, sub := splitPath(r.URL.Path, "/api/v1/property/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	switch sub {
	case "":
		if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
			return
		}
		if r.Method == http.MethodPost {
			var patch model.PropertyPatch
			if !decodeJSON(w, r, &patch) {
				return
			}
			if err := s.Store.UpdateProperty(id, patch); err != nil {
				writeError(w, err)
				return
			}
		}
		p, ok := s.Store.Property(id)
		if !ok {
			http.Error(w, "property not found", http.StatusNotFound)
			return
		}
		writeJSON(w, p)

	case "plant":
		if !allowMethods(w, r, http.MethodPost) {
			return
		}
		var req struct {
			CropID string `json:"crop_id"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		prod, err := s.Store.PlantCrop(id, req.CropID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSONStatus(w, http.StatusCreated, prod)

	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleVehicles(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodGet {
		writeJSON(w, s.Store.Vehicles())
		return
	}
	var v model.Vehicle
	if !decodeJSON(w, r, &v) {
		return
	}
	added, err := s.Store.AddVehicle(v)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, added)
}

// handleVehicleRoutes serves /vehicle/{id}, /vehicle/{id}/dispatch and /vehicle/{id}/refuel.
func (s *Server) handleVehicleRoutes(w http.ResponseWriter, r *http.Request) {
	id, sub := splitPath(r.URL.Path, "/api/v1/vehicle/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	switch sub {
	case "":
		if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
			return
		}
		if r.Method == http.MethodPost {
			var patch model.VehiclePatch
			if !decodeJSON(w, r, &patch) {
				return
			}
			if err := s.Store.UpdateVehicle(id, patch); err != nil {
				writeError(w, err)
				return
			}
		}
		v, ok := s.Store.Vehicle(id)
		if !ok {
			http.Error(w, "vehicle not found", http.StatusNotFound)
			return
		}
		writeJSON(w, v)

	case "dispatch":
		if !allowMethods(w, r, http.MethodPost) {
			return
		}
		var req struct {
			To      model.Coordinates `json:"to"`
			CargoID string            `json:"cargo_id"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		route, err := s.Store.DispatchVehicle(id, req.To, req.CargoID)
		if err != nil {
			writeError(w, err)
			return
		}
		s.publish("vehicle_dispatched", map[string]any{"vehicle_id": id, "route": route})
		writeJSON(w, route)

	case "refuel":
		if !allowMethods(w, r, http.MethodPost) {
			return
		}
		var req struct {
			Liters        float64 `json:"liters"`
			PricePerLiter float64 `json:"price_per_liter"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		added, err := s.Store.RefuelVehicle(id, req.Liters, req.PricePerLiter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]float64{"added": added})

	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleProductions(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodGet {
		writeJSON(w, s.Store.Productions())
		return
	}
	var p model.Production
	if !decodeJSON(w, r, &p) {
		return
	}
	started, err := s.Store.StartProduction(p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, started)
}

// handleProductionRoutes serves /production/{id} and /production/{id}/harvest.
func (s *Server) handleProductionRoutes(w http.ResponseWriter, r *http.Request) {
	id, sub := splitPath(r.URL.Path, "/api/v1/production/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	switch sub {
	case "":
		if !allowMethods(w, r, http.MethodGet) {
			return
		}
		p, ok := s.Store.Production(id)
		if !ok {
			http.Error(w, "production not found", http.StatusNotFound)
			return
		}
		writeJSON(w, p)

	case "harvest":
		if !allowMethods(w, r, http.MethodPost) {
			return
		}
		res, ok := s.Store.HarvestProduction(id)
		if !ok {
			if _, exists := s.Store.Production(id); exists {
				http.Error(w, "already harvested", http.StatusConflict)
				return
			}
			http.Error(w, "production not found", http.StatusNotFound)
			return
		}
		s.publish("harvest", res)
		writeJSON(w, res)

	default:
		http.NotFound(w, r)
	}
}

// handleOrders lists active orders (GET) or posts a new one (POST).
func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodGet {
		writeJSON(w, s.Store.ActiveMarketOrders())
		return
	}
	var o model.MarketOrder
	if !decodeJSON(w, r, &o) {
		return
	}
	created, err := s.Store.CreateMarketOrder(o)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, created)
}

// handleOrderRoutes serves /order/{id} and /order/{id}/fill.
func (s *Server) handleOrderRoutes(w http.ResponseWriter, r *http.Request) {
	id, sub := splitPath(r.URL.Path, "/api/v1/order/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	switch sub {
	case "":
		if !allowMethods(w, r, http.MethodGet) {
			return
		}
		o, ok := s.Store.MarketOrder(id)
		if !ok {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		writeJSON(w, o)

	case "fill":
		if !allowMethods(w, r, http.MethodPost) {
			return
		}
		if !s.Store.FillMarketOrder(id) {
			if _, exists := s.Store.MarketOrder(id); exists {
				http.Error(w, "order is not active", http.StatusConflict)
				return
			}
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		o, _ := s.Store.MarketOrder(id)
		s.publish("order_filled", o)
		writeJSON(w, o)

	default:
		http.NotFound(w, r)
	}
}

// handleTransactions returns the ledger tail after ?since= (an entry
// count cursor), or appends a raw entry on POST.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodGet {
		txs, cursor := s.Store.TransactionsSince(queryInt(r, "since", 0))
		writeJSON(w, map[string]any{"transactions": txs, "cursor": cursor})
		return
	}
	var tx model.Transaction
	if !decodeJSON(w, r, &tx) {
		return
	}
	added, err := s.Store.AddTransaction(tx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, added)
}

func (s *Server) handleStaff(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodGet {
		writeJSON(w, s.Store.Player().Staff)
		return
	}
	var m model.StaffMember
	if !decodeJSON(w, r, &m) {
		return
	}
	hired, err := s.Store.HireStaff(m)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, hired)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := s.Store.SetGameSpeed(req.Speed); err != nil {
			http.Error(w, fmt.Sprintf("speed must be 0-%d", engine.MaxGameSpeed), http.StatusBadRequest)
			return
		}
	}
	writeJSON(w, map[string]float64{"speed": s.Store.GameState().GameSpeed})
}

func (s *Server) publish(msgType string, payload any) {
	if s.Hub != nil {
		s.Hub.Publish(msgType, payload)
	}
}

// splitPath returns the entity id and optional action after prefix.
func splitPath(path, prefix string) (id, sub string) {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	id, sub, _ = strings.Cut(rest, "/")
	return id, sub
}

func allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	return false
}

func queryInt(r *http.Request, key string, def int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			return v
		}
	}
	return def
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// writeError maps store errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrDuplicate),
		errors.Is(err, engine.ErrVehicleBusy),
		errors.Is(err, engine.ErrInsufficientFuel),
		errors.Is(err, engine.ErrFixedPace):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Warn("write json failed", "error", err)
	}
}
