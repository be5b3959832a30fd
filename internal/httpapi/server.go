// Package httpapi exposes the storefront pages' actions as a JSON API
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kieracarman/bakery-storefront/internal/orders"
	"github.com/kieracarman/bakery-storefront/internal/router"
	"github.com/kieracarman/bakery-storefront/internal/storefront"
)

const maxBodyBytes = 1 << 20

// Options tunes the HTTP surface
type Options struct {
	CheckoutRPS   int
	CheckoutBurst int
	// TrustProxy keys the checkout limiter by X-Forwarded-For
	TrustProxy bool
}

// Server routes HTTP requests to a storefront
type Server struct {
	sf       *storefront.Storefront
	logger   *slog.Logger
	limiters *limiters
	mux      chi.Router
}

// New creates the API server
func New(sf *storefront.Storefront, logger *slog.Logger, opts Options) *Server {
	if opts.CheckoutRPS <= 0 {
		opts.CheckoutRPS = 5
	}
	if opts.CheckoutBurst <= 0 {
		opts.CheckoutBurst = 10
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		sf:       sf,
		logger:   logger,
		limiters: newLimiters(opts.CheckoutRPS, opts.CheckoutBurst, opts.TrustProxy),
	}
	s.mux = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/products", s.handleListProducts)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", s.handleGetCart)
		r.Post("/items", s.handleAddCartItem)
		r.Put("/items/{id}", s.handleUpdateCartItem)
		r.Delete("/items/{id}", s.handleRemoveCartItem)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.With(s.limiters.middleware).Post("/", s.handleCheckout)
		r.Get("/pix", s.handlePendingPix)
		r.With(s.limiters.middleware).Post("/pix/confirm", s.handleConfirmPix)
		r.Post("/pix/cancel", s.handleCancelPix)
	})

	r.Get("/page", s.handleGetPage)
	r.Put("/page", s.handleNavigate)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/orders", s.handleListOrders)
		r.Get("/board", s.handleBoard)
		r.Put("/orders/{id}/status", s.handleUpdateOrderStatus)
		r.Post("/orders/{id}/advance", s.handleAdvanceOrder)
		r.Post("/products", s.handleAddProduct)
		r.Delete("/products/{id}", s.handleRemoveProduct)
	})

	return r
}

// SweepLimiters drops idle per-IP checkout limiters until ctx is done
func (s *Server) SweepLimiters(ctx context.Context, every, maxIdle time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.limiters.sweep(maxIdle)
		}
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, storefront.ErrProductNotFound),
		errors.Is(err, storefront.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, orders.ErrIllegalTransition),
		errors.Is(err, storefront.ErrNoPendingPix):
		return http.StatusConflict
	case errors.Is(err, orders.ErrUnknownStatus),
		errors.Is(err, router.ErrUnknownPage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err.Error())
}
