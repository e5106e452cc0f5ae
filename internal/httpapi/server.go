package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nguyentantai21042004/speaker-flow/internal/diarization"
	"github.com/nguyentantai21042004/speaker-flow/internal/transcript"
)

const shutdownTimeout = 10 * time.Second

func (s *implServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "HTTP server listening on %s", s.addr)
		errCh <- s.echo.Start(s.addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info(ctx, "Shutting down HTTP server...")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return ctx.Err()
}

func (s *implServer) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *implServer) diarize(c echo.Context) error {
	var req diarizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	out, err := s.processor.ProcessSegments(c.Request().Context(), req.JobID, "http", req.Segments)
	if err != nil {
		s.logger.Error(c.Request().Context(), "Diarize request failed: %v", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	assignments := out.Result.Assignments
	if assignments == nil {
		assignments = []diarization.Assignment{}
	}
	speakers := out.Speakers
	if speakers == nil {
		speakers = []transcript.SpeakerText{}
	}

	return c.JSON(http.StatusOK, diarizeResponse{
		JobID:        out.JobID,
		Assignments:  assignments,
		Speakers:     speakers,
		ClusterCount: out.Result.ClusterCount,
		Fallback:     out.Result.Fallback,
	})
}

func (s *implServer) jobSegments(c echo.Context) error {
	if s.repo == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "job storage is disabled"})
	}

	segments, err := s.repo.ListSegments(c.Request().Context(), c.Param("id"))
	if err != nil {
		s.logger.Error(c.Request().Context(), "List segments failed: %v", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	if len(segments) == 0 {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "job not found"})
	}
	return c.JSON(http.StatusOK, segments)
}

func (s *implServer) logRequest(c echo.Context, v middleware.RequestLoggerValues) error {
	s.logger.Debug(c.Request().Context(), "%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
	return nil
}
