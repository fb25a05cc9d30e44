package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jeffsasaki/storefront/logging"
	"github.com/jeffsasaki/storefront/metrics"
	"github.com/jeffsasaki/storefront/models"
	"github.com/jeffsasaki/storefront/orders"
	"github.com/jeffsasaki/storefront/store"
)

const (
	serviceName     = "storefront"
	maxRequestBytes = 1 << 20
)

type errorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Server is the storefront HTTP API.
type Server struct {
	orders  *orders.Service
	metrics *metrics.ServerMetrics
	ping    func(context.Context) error
}

// NewServer builds the API over svc. ping backs /health and may be nil.
func NewServer(svc *orders.Service, m *metrics.ServerMetrics, ping func(context.Context) error) *Server {
	return &Server{orders: svc, metrics: m, ping: ping}
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.instrument)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products", s.handleListProducts).Methods(http.MethodGet).Name("list_products")
	api.HandleFunc("/products/{id}", s.handleGetProduct).Methods(http.MethodGet).Name("get_product")
	api.HandleFunc("/orders", s.handleCreateOrder).Methods(http.MethodPost).Name("create_order")
	api.HandleFunc("/orders/{id}", s.handleGetOrder).Methods(http.MethodGet).Name("get_order")

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet).Name("health")
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet).Name("metrics")

	return r
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := s.orders.ListProducts(r.Context(), store.ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	})
	if err != nil {
		s.internalError(w, r, "list_products", err, "Failed to fetch products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "Product not found"})
		return
	}

	product, err := s.orders.GetProduct(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "Product not found"})
		return
	}
	if err != nil {
		s.internalError(w, r, "get_product", err, "Failed to fetch product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid JSON"})
		return
	}

	order, err := s.orders.CreateOrder(r.Context(), req)

	var validationErr *orders.ValidationError
	var notFoundErr *orders.ProductNotFoundError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: validationErr.Message, Field: validationErr.Field})
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: notFoundErr.Error()})
	case err != nil:
		s.internalError(w, r, "create_order", err, "Internal server error")
	default:
		s.metrics.OrdersCreated.Inc()
		logging.Log(logging.Fields{
			Service:   serviceName,
			RequestID: w.Header().Get(requestIDHeader),
			OrderID:   order.ID,
			Step:      "create_order",
			Status:    "created",
			Message:   "total " + models.FormatAmount(order.TotalAmount),
		})
		writeJSON(w, http.StatusCreated, order)
	}
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "Order not found"})
		return
	}

	order, err := s.orders.GetOrder(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "Order not found"})
		return
	}
	if err != nil {
		s.internalError(w, r, "get_order", err, "Failed to fetch order")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			logging.Err(serviceName, "health", err, logging.Fields{})
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// internalError logs err with its detail and answers with message only.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, step string, err error, message string) {
	logging.Err(serviceName, step, err, logging.Fields{
		RequestID: w.Header().Get(requestIDHeader),
		Message:   r.Method + " " + r.URL.Path,
	})
	writeJSON(w, http.StatusInternalServerError, errorResponse{Message: message})
}

// pathID parses the {id} route variable. Anything but a positive int4
// cannot name a row.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	return id, err == nil && id > 0
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument tags the request with an id, then logs and counts it once the
// handler returns.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		name := "unknown"
		if route := mux.CurrentRoute(r); route != nil && route.GetName() != "" {
			name = route.GetName()
		}
		elapsed := time.Since(start)
		s.metrics.Observe(name, rec.status, elapsed)
		logging.Log(logging.Fields{
			Service:    serviceName,
			RequestID:  requestID,
			Step:       name,
			Status:     strconv.Itoa(rec.status),
			DurationMS: elapsed.Milliseconds(),
			Message:    r.Method + " " + r.URL.RequestURI(),
		})
	})
}
