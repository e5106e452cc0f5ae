package httpapi

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nguyentantai21042004/speaker-flow/internal/logger"
	"github.com/nguyentantai21042004/speaker-flow/internal/processor"
	"github.com/nguyentantai21042004/speaker-flow/internal/repository"
)

type implServer struct {
	addr      string
	echo      *echo.Echo
	processor processor.Processor
	repo      repository.Repository
	logger    logger.Logger
}

// New creates the HTTP server. repo may be nil, in which case job lookups return 404.
func New(addr string, proc processor.Processor, repo repository.Repository, log logger.Logger) Server {
	s := &implServer{
		addr:      addr,
		echo:      echo.New(),
		processor: proc,
		repo:      repo,
		logger:    log,
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:     true,
		LogURI:        true,
		LogStatus:     true,
		LogLatency:    true,
		LogValuesFunc: s.logRequest,
	}))

	s.routes()
	return s
}

func (s *implServer) routes() {
	s.echo.GET("/healthz", s.health)
	s.echo.POST("/v1/diarize", s.diarize)
	s.echo.GET("/v1/jobs/:id/segments", s.jobSegments)
}
