package ytsummarizer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"yt-summary/agents/yt-summarizer/youtube"
	"yt-summary/shared/ai"
	"yt-summary/shared/config"
	"yt-summary/shared/monitoring"
	"yt-summary/shared/scheduler"
	"yt-summary/shared/summary"
	"yt-summary/shared/transcript"
)

// SummarizerAgent owns the long-lived collaborators of the service. It also
// implements scheduler.Job as the yt-dlp self-update.
type SummarizerAgent struct {
	config    *config.Config
	logger    *slog.Logger
	monitor   *monitoring.Monitor
	metrics   *monitoring.Metrics
	extractor *youtube.Ytdlp
	fetcher   *transcript.Fetcher
	relay     *summary.Relay
}

func NewSummarizerAgent(cfg *config.Config, logger *slog.Logger) *SummarizerAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummarizerAgent{
		config:  cfg,
		logger:  logger,
		monitor: monitoring.NewMonitor(),
		metrics: monitoring.NewMetrics(),
	}
}

func (a *SummarizerAgent) Name() string {
	return "update-extractor"
}

// Initialize builds the transcript side. It needs no credentials.
func (a *SummarizerAgent) Initialize(ctx context.Context) error {
	if a.extractor == nil {
		a.extractor = youtube.NewYtdlp(a.config.Extractor.YtdlpPath, a.config.Extractor.Timeout)
	}

	if a.fetcher == nil {
		opts := []transcript.Option{
			transcript.WithHTTPClient(&http.Client{Timeout: a.config.Extractor.CaptionTimeout}),
			transcript.WithLogger(a.logger),
			transcript.WithMetrics(a.metrics),
		}

		if a.config.YouTube.APIKey != "" {
			describer, err := youtube.NewDataAPI(ctx, &a.config.YouTube)
			if err != nil {
				return fmt.Errorf("failed to create YouTube Data API client: %w", err)
			}
			opts = append(opts, transcript.WithDescriber(describer))
			a.logger.Info("YouTube Data API enabled for video metadata")
		}

		a.fetcher = transcript.NewFetcher(a.extractor, opts...)
	}

	return nil
}

// InitializeSummarizer builds the Gemini client, verifying the key when configured
func (a *SummarizerAgent) InitializeSummarizer(ctx context.Context) error {
	if a.relay != nil {
		return nil
	}
	if err := a.config.ValidateAI(); err != nil {
		return err
	}

	summarizer, err := ai.NewSummarizer(ctx, &a.config.AI)
	if err != nil {
		return err
	}
	if a.config.AI.VerifyOnStart {
		if err := summarizer.Verify(ctx); err != nil {
			return err
		}
		a.logger.Info("Gemini model verified", slog.String("model", summarizer.Model()))
	}

	a.relay = summary.NewRelay(summarizer, a.logger, a.metrics)
	return nil
}

func (a *SummarizerAgent) Fetcher() *transcript.Fetcher {
	return a.fetcher
}

func (a *SummarizerAgent) Relay() *summary.Relay {
	return a.relay
}

// Run updates the yt-dlp binary in place
func (a *SummarizerAgent) Run(ctx context.Context) (string, error) {
	if err := a.Initialize(ctx); err != nil {
		return "", err
	}
	return a.extractor.Update(ctx)
}

// Serve runs the HTTP server and, when scheduled, the extractor updates until ctx is cancelled
func (a *SummarizerAgent) Serve(ctx context.Context) error {
	if err := a.Initialize(ctx); err != nil {
		return err
	}
	if err := a.InitializeSummarizer(ctx); err != nil {
		return err
	}

	server, err := NewServer(a.config, a.fetcher, a.relay, a.monitor, a.metrics, a.logger)
	if err != nil {
		return err
	}

	if schedule := a.config.Extractor.UpdateSchedule; schedule != "" {
		s := scheduler.New(schedule, a, a.monitor, a.logger)
		go func() {
			if err := s.Start(ctx); err != nil && ctx.Err() == nil {
				a.logger.Error("extractor update scheduler failed", slog.Any("err", err))
			}
		}()
	}

	return server.Start(ctx)
}
