package ytsummarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"yt-summary/internal/models"
	"yt-summary/shared/config"
	"yt-summary/shared/monitoring"
	"yt-summary/shared/transcript"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const streamMIME = "application/x-json-stream"

// TranscriptSource is the subset of transcript.Fetcher used by the handlers
type TranscriptSource interface {
	Discover(ctx context.Context, id models.VideoID) (*models.VideoMetadata, error)
	FetchTranscript(ctx context.Context, videoURL, languageCode string) (string, bool)
}

// SummaryStreamer is the subset of summary.Relay used by the handlers
type SummaryStreamer interface {
	Stream(ctx context.Context, text, language string) iter.Seq[models.StreamRecord]
}

type Server struct {
	echo        *echo.Echo
	config      *config.Config
	transcripts TranscriptSource
	summaries   SummaryStreamer
	metrics     *monitoring.Metrics
	logger      *slog.Logger
}

func NewServer(cfg *config.Config, transcripts TranscriptSource, summaries SummaryStreamer,
	monitor *monitoring.Monitor, metrics *monitoring.Metrics, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	renderer, err := newPageRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:      cfg,
		transcripts: transcripts,
		summaries:   summaries,
		metrics:     metrics,
		logger:      logger,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:     true,
		LogURI:        true,
		LogRoutePath:  true,
		LogStatus:     true,
		LogLatency:    true,
		LogRemoteIP:   true,
		LogError:      true,
		HandleError:   true,
		LogValuesFunc: s.logRequest,
	}))

	e.GET("/", s.index)
	e.POST("/get_transcripts", s.getTranscripts)
	e.POST("/transcript", s.getTranscript)
	e.POST("/summarize_stream", s.summarizeStream)

	health := monitoring.NewHealthHandler(monitor)
	e.GET("/health", echo.WrapHandler(http.HandlerFunc(health.Health)))
	e.GET("/status", echo.WrapHandler(http.HandlerFunc(health.Status)))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	s.echo = e
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.String("addr", s.config.Server.Addr))
		if err := s.echo.Start(s.config.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]string{"error": msg})
}

func (s *Server) logRequest(c echo.Context, v middleware.RequestLoggerValues) error {
	route := v.RoutePath
	if route == "" {
		route = "unmatched"
	}
	s.metrics.ObserveRequest(route, v.Status)

	attrs := []slog.Attr{
		slog.String("method", v.Method),
		slog.String("uri", v.URI),
		slog.Int("status", v.Status),
		slog.Duration("latency", v.Latency),
		slog.String("remote_ip", v.RemoteIP),
	}
	if v.Error != nil {
		attrs = append(attrs, slog.Any("err", v.Error))
		s.logger.LogAttrs(c.Request().Context(), slog.LevelWarn, "request failed", attrs...)
		return nil
	}
	s.logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
	return nil
}

func (s *Server) index(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", pageData{
		Model:           s.config.AI.Model,
		DefaultLanguage: s.config.Summary.DefaultLanguage,
	})
}

// Request fields are pointers so that a missing field is told apart from an empty one

type transcriptsRequest struct {
	URL *string `json:"url"`
}

type transcriptRequest struct {
	URL          *string `json:"url"`
	LanguageCode *string `json:"language_code"`
}

type summarizeRequest struct {
	Text            *string `json:"text"`
	SummaryLanguage *string `json:"summary_language"`
}

func (s *Server) getTranscripts(c echo.Context) error {
	var req transcriptsRequest
	if err := c.Bind(&req); err != nil || req.URL == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "URL is required.")
	}

	id, ok := transcript.NormalizeVideoID(*req.URL)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid YouTube URL or ID.")
	}

	meta, err := s.transcripts.Discover(c.Request().Context(), id)
	switch {
	case errors.Is(err, transcript.ErrNoSubtitles):
		return echo.NewHTTPError(http.StatusNotFound, "No subtitles found for this video.")
	case errors.Is(err, transcript.ErrNoValidTranscripts):
		return echo.NewHTTPError(http.StatusNotFound, "No valid transcript URLs found.")
	case err != nil:
		s.logger.Error("failed to fetch video metadata", slog.String("video_id", string(id)), slog.Any("err", err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}

	return c.JSON(http.StatusOK, meta)
}

func (s *Server) getTranscript(c echo.Context) error {
	var req transcriptRequest
	if err := c.Bind(&req); err != nil || req.URL == nil || req.LanguageCode == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "URL and language_code are required.")
	}

	id, ok := transcript.NormalizeVideoID(*req.URL)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid YouTube URL or ID.")
	}

	text, ok := s.transcripts.FetchTranscript(c.Request().Context(), id.WatchURL(), *req.LanguageCode)
	if !ok || text == "" {
		return echo.NewHTTPError(http.StatusNotFound,
			fmt.Sprintf("Could not retrieve transcript for language '%s'.", *req.LanguageCode))
	}

	return c.JSON(http.StatusOK, map[string]string{"transcript": text})
}

func (s *Server) summarizeStream(c echo.Context) error {
	var req summarizeRequest
	if err := c.Bind(&req); err != nil || req.Text == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Text for summarization is required.")
	}

	language := s.config.Summary.DefaultLanguage
	if req.SummaryLanguage != nil && strings.TrimSpace(*req.SummaryLanguage) != "" {
		language = *req.SummaryLanguage
	}

	ctx := c.Request().Context()
	if s.config.Server.StreamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Server.StreamTimeout)
		defer cancel()
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, streamMIME)
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	enc := json.NewEncoder(res)
	enc.SetEscapeHTML(false)
	for record := range s.summaries.Stream(ctx, *req.Text, language) {
		if err := enc.Encode(record); err != nil {
			s.logger.Debug("client went away during summary stream", slog.Any("err", err))
			return nil
		}
		res.Flush()
	}
	return nil
}
