package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kilnlm/kiln/internal/logger"
	"github.com/kilnlm/kiln/internal/metrics"
	"github.com/kilnlm/kiln/internal/version"
)

// Server exposes the HTTP surface of the service. It is constructed only
// after the model and tokenizer have loaded; until then the health endpoint
// of a bare Server reports unavailable.
type Server struct {
	service  *GenerateService
	met      *metrics.Metrics
	gatherer prometheus.Gatherer
	log      logger.Logger
}

func NewServer(service *GenerateService, met *metrics.Metrics, gatherer prometheus.Gatherer, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		service:  service,
		met:      met,
		gatherer: gatherer,
		log:      log,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/generate", s.handleGenerate)
	e.GET("/health", s.handleHealth)
	e.GET("/", s.handleRoot)
	e.GET("/metrics", s.handleMetrics)
}

func (s *Server) handleGenerate(c *echo.Context) error {
	start := time.Now()
	status := http.StatusOK
	defer func() { s.observe("/generate", status, start) }()

	if s.service == nil {
		status = http.StatusServiceUnavailable
		return writeError(c, status, "server_error", "generation service not configured")
	}

	req, err := decodeJSON[GenerateRequest](c.Request().Body)
	if err != nil {
		status = http.StatusBadRequest
		return writeError(c, status, "invalid_request_error", err.Error())
	}

	reqID := uuid.NewString()
	log := s.log.With("request_id", reqID)

	resp, cached, err := s.service.Generate(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			status = http.StatusBadRequest
			return writeError(c, status, "invalid_request_error", err.Error())
		}
		status = http.StatusInternalServerError
		log.Error("generation failed", "error", err)
		return writeError(c, status, "server_error", "generation failed")
	}

	log.Info("generation complete",
		"tokens", resp.TokensGenerated,
		"cached", cached,
		"duration", time.Since(start),
	)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c *echo.Context) error {
	start := time.Now()
	if s.service == nil || s.service.engine == nil {
		s.observe("/health", http.StatusServiceUnavailable, start)
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
	}
	cache := s.service.Cache()
	s.observe("/health", http.StatusOK, start)
	return c.JSON(http.StatusOK, HealthResponse{
		Status:          "ok",
		ModelLoaded:     true,
		TokenizerLoaded: true,
		CacheEntries:    cache.Len(),
		CacheCapacity:   cache.Cap(),
	})
}

func (s *Server) handleRoot(c *echo.Context) error {
	return c.JSON(http.StatusOK, ServiceInfo{
		Service:   "kiln",
		Version:   version.String(),
		Endpoints: []string{"POST /generate", "GET /health", "GET /metrics"},
	})
}

func (s *Server) handleMetrics(c *echo.Context) error {
	gatherer := s.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	h := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	h.ServeHTTP(c.Response(), c.Request())
	return nil
}

func (s *Server) observe(route string, status int, start time.Time) {
	if s.met == nil {
		return
	}
	s.met.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	s.met.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": APIError{
			Message: msg,
			Type:    errType,
		},
	})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
