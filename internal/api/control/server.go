package control

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/skinflip/internal/recorder"
	"github.com/Alias1177/skinflip/internal/scheduler"
	"github.com/Alias1177/skinflip/internal/trading/execution"
	"github.com/Alias1177/skinflip/models"
)

// Backend is what the control API reads from and acts on. *scheduler.Runner
// implements it.
type Backend interface {
	ActiveOrders() []models.ExecutionOrder
	OrderHistory() []models.ExecutionOrder
	ExecutionStats() execution.Stats
	ConfirmOrder(ctx context.Context, id string) (models.ExecutionOrder, error)
	CancelOrder(ctx context.Context, id string) (models.ExecutionOrder, error)
	RiskMetrics() models.RiskMetrics
	Positions() []models.Position
	StopLosses() []models.StopLossOrder
	RiskAlerts() []models.Alert
	LastCycle() (scheduler.CycleReport, bool)
}

var _ Backend = (*scheduler.Runner)(nil)

// Server is the HTTP status and control API.
type Server struct {
	backend Backend
	ledger  models.InventoryLedger
	journal recorder.Recorder
	token   string
	router  *mux.Router
	logger  zerolog.Logger
	started time.Time
}

// NewServer builds the router. ledger and journal may be nil; their
// endpoints then answer 503. A non-empty token enables bearer auth on /api.
func NewServer(backend Backend, ledger models.InventoryLedger, journal recorder.Recorder, token string) *Server {
	s := &Server{
		backend: backend,
		ledger:  ledger,
		journal: journal,
		token:   token,
		router:  mux.NewRouter(),
		logger:  log.With().Str("component", "control_api").Logger(),
		started: time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.authMiddleware)

	api.HandleFunc("/status", s.handleStatus).Methods("GET")

	api.HandleFunc("/orders", s.handleActiveOrders).Methods("GET")
	api.HandleFunc("/orders/history", s.handleOrderHistory).Methods("GET")
	api.HandleFunc("/orders/journal", s.handleJournal).Methods("GET")
	api.HandleFunc("/orders/{id}/confirm", s.handleConfirm).Methods("POST")
	api.HandleFunc("/orders/{id}/cancel", s.handleCancel).Methods("POST")

	api.HandleFunc("/risk", s.handleRisk).Methods("GET")
	api.HandleFunc("/alerts", s.handleAlerts).Methods("GET")
	api.HandleFunc("/inventory", s.handleInventory).Methods("GET")
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Control API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), []byte("Bearer "+s.token)) != 1 {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ==============================
// Handlers
// ==============================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Execution: s.backend.ExecutionStats()}
	if cycle, ok := s.backend.LastCycle(); ok {
		resp.LastCycle = &cycle
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleActiveOrders(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, OrdersResponse{Orders: nonNil(s.backend.ActiveOrders())})
}

func (s *Server) handleOrderHistory(w http.ResponseWriter, r *http.Request) {
	orders := s.backend.OrderHistory()
	if limit := queryLimit(r, 0); limit > 0 && len(orders) > limit {
		orders = orders[len(orders)-limit:]
	}
	respondJSON(w, http.StatusOK, OrdersResponse{Orders: nonNil(orders)})
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		respondError(w, http.StatusServiceUnavailable, "journal unavailable", "no local journal configured")
		return
	}
	records, err := s.journal.RecentOrders(r.Context(), queryLimit(r, 50))
	if err != nil {
		s.logger.Error().Err(err).Msg("Journal query failed")
		respondError(w, http.StatusInternalServerError, "journal query failed", err.Error())
		return
	}
	if records == nil {
		records = []recorder.OrderRecord{}
	}
	respondJSON(w, http.StatusOK, records)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	order, err := s.backend.ConfirmOrder(r.Context(), id)
	if err != nil {
		s.orderError(w, id, err)
		return
	}
	s.logger.Info().Str("order_id", id).Str("status", order.Status.String()).Msg("Order confirmed via API")
	respondJSON(w, http.StatusOK, order)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	order, err := s.backend.CancelOrder(r.Context(), id)
	if err != nil {
		s.orderError(w, id, err)
		return
	}
	s.logger.Info().Str("order_id", id).Msg("Order cancelled via API")
	respondJSON(w, http.StatusOK, order)
}

func (s *Server) orderError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, execution.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order not found", err.Error())
	case errors.Is(err, execution.ErrOrderNotPending):
		respondError(w, http.StatusConflict, "order not pending", err.Error())
	default:
		s.logger.Error().Err(err).Str("order_id", id).Msg("Order action failed")
		respondError(w, http.StatusInternalServerError, "order action failed", err.Error())
	}
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, RiskResponse{
		Metrics:    s.backend.RiskMetrics(),
		Positions:  nonNil(s.backend.Positions()),
		StopLosses: nonNil(s.backend.StopLosses()),
	})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := s.backend.RiskAlerts()
	if level := r.URL.Query().Get("level"); level != "" {
		minLevel, err := models.ParseAlertLevel(level)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid level", err.Error())
			return
		}
		var filtered []models.Alert
		for _, a := range alerts {
			if a.Level >= minLevel {
				filtered = append(filtered, a)
			}
		}
		alerts = filtered
	}
	if limit := queryLimit(r, 0); limit > 0 && len(alerts) > limit {
		alerts = alerts[len(alerts)-limit:]
	}
	respondJSON(w, http.StatusOK, nonNil(alerts))
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		respondError(w, http.StatusServiceUnavailable, "inventory unavailable", "no ledger database configured")
		return
	}
	summary, err := s.ledger.Summary(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Inventory summary failed")
		respondError(w, http.StatusInternalServerError, "inventory query failed", err.Error())
		return
	}

	resp := InventoryResponse{
		TotalItems:        summary.TotalItems,
		ByStatus:          make(map[string]int, len(summary.ByStatus)),
		InvestedUSD:       summary.InvestedUSD,
		HoldingValueUSD:   summary.HoldingValueUSD,
		RealizedUSD:       summary.RealizedUSD,
		RealizedProfitUSD: summary.RealizedProfitUSD,
	}
	for st, n := range summary.ByStatus {
		resp.ByStatus[st.String()] = n
	}
	respondJSON(w, http.StatusOK, resp)
}

// ==============================
// Helpers
// ==============================

func queryLimit(r *http.Request, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, message string) {
	respondJSON(w, status, ErrorResponse{Error: error, Message: message})
}
