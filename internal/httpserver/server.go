package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alexanderramin/furrow/internal/app"
	"github.com/alexanderramin/furrow/internal/catalog"
	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	maxBodyBytes    = 1 << 20
	maxImportBytes  = 16 << 20
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Planning app.PlanningUseCase
	Batches  app.BatchUseCase
	Orders   app.OrderUseCase
	Catalog  *catalog.Catalog
	// DB is optional; without it /health only reports liveness.
	DB     Pinger
	Logger *slog.Logger
}

// Server exposes the planning use cases as a JSON API.
type Server struct {
	planning app.PlanningUseCase
	batches  app.BatchUseCase
	orders   app.OrderUseCase
	catalog  *catalog.Catalog
	db       Pinger
	logger   *slog.Logger
}

func New(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		planning: d.Planning,
		batches:  d.Batches,
		orders:   d.Orders,
		catalog:  d.Catalog,
		db:       d.DB,
		logger:   logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", s.handleHealth)

	r.Get("/recommendations", s.handleRecommend)
	r.Get("/pipeline", s.handlePipeline)
	r.Get("/board", s.handleBoard)
	r.Get("/yield", s.handleYield)

	r.Route("/batches", func(r chi.Router) {
		r.Get("/", s.handleListBatches)
		r.Post("/", s.handlePlant)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleShowBatch)
			r.Post("/advance", s.handleAdvance)
			r.Post("/harvest", s.handleHarvest)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", s.handleListOrders)
		r.Post("/", s.handleRecordOrder)
		r.Post("/import", s.handleImportOrders)
	})

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/varieties", s.handleVarieties)
		r.Get("/varieties/{id}/schedule", s.handleSchedule)
	})

	return r
}

// ListenAndServe serves the router on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"ok":   true,
		"time": time.Now().UTC(),
	}
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			status["ok"] = false
			status["db"] = err.Error()
			respondJSON(w, http.StatusServiceUnavailable, status)
			return
		}
	}
	respondJSON(w, http.StatusOK, status)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code app.RequestErrorCode, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
		"code":  string(code),
	})
}

func (s *Server) respondBadRequest(w http.ResponseWriter, err error) {
	respondError(w, http.StatusBadRequest, app.ErrInvalidRequest, err.Error())
}

// respondUseCaseError maps a use case failure to its HTTP status. Errors
// without a request code are logged and reported as internal.
func (s *Server) respondUseCaseError(w http.ResponseWriter, r *http.Request, err error) {
	var re *app.RequestError
	if !errors.As(err, &re) {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err,
			"request_id", middleware.GetReqID(r.Context()))
		respondError(w, http.StatusInternalServerError, app.ErrInternalFailure, "internal error")
		return
	}
	respondError(w, statusFor(re.Code), re.Code, re.Message)
}

func statusFor(code app.RequestErrorCode) int {
	switch code {
	case app.ErrInvalidRequest, app.ErrUnknownVariety:
		return http.StatusBadRequest
	case app.ErrNotFound:
		return http.StatusNotFound
	case app.ErrInvalidState:
		return http.StatusConflict
	case app.ErrDataIntegrity:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func queryDate(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := domain.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &t, nil
}

func queryBool(r *http.Request, key string) (bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: want true or false, got %q", key, raw)
	}
	return b, nil
}

func parseOptionalDate(key string, raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := domain.ParseDate(*raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &t, nil
}
