// Package api exposes the screener over HTTP.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spigell/cv-screener/internal/ai"
	"github.com/spigell/cv-screener/internal/evaluation"
	"github.com/spigell/cv-screener/internal/kvstore"
	"github.com/spigell/cv-screener/internal/queue"
	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
	"go.uber.org/zap"
)

// Dependencies holds what the handlers need.
type Dependencies struct {
	Store    store.Store
	Queue    *queue.Queue
	Pipeline *evaluation.Pipeline
	Drafter  ai.PostingDrafter
	Summary  kvstore.Cache[recruiting.PostingSummary]
	// PublicURL prefixes the application links handed out to candidates.
	PublicURL string
	Version   string
	Logger    *zap.Logger
}

type Server struct {
	store     store.Store
	queue     *queue.Queue
	pipeline  *evaluation.Pipeline
	drafter   ai.PostingDrafter
	summary   kvstore.Cache[recruiting.PostingSummary]
	publicURL string
	version   string
	logger    *zap.Logger
	now       func() time.Time
}

func NewServer(deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:     deps.Store,
		queue:     deps.Queue,
		pipeline:  deps.Pipeline,
		drafter:   deps.Drafter,
		summary:   deps.Summary,
		publicURL: deps.PublicURL,
		version:   deps.Version,
		logger:    logger.Named("api"),
		now:       time.Now,
	}
}

// Echo builds the HTTP handler with middleware and routes.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(s.logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health"
		},
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	RegisterRoutes(e, s)
	return e
}

func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, NewBadRequestError("invalid "+name, err)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(c echo.Context, name string) (*int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, NewBadRequestError("invalid "+name, err)
	}
	return &v, nil
}

func bind(c echo.Context, target any) error {
	if err := c.Bind(target); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	return nil
}

// listResponse is a page of items with the exact total.
type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
