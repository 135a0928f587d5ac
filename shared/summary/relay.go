package summary

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"sync/atomic"

	"yt-summary/internal/models"
	"yt-summary/shared/monitoring"
)

const promptTemplate = `
Provide a clear, well-structured summary in %s.

Transcript:
%s
`

var (
	ErrStreamConsumed = errors.New("summary stream already consumed")
	ErrStreamTimeout  = errors.New("summary generation timed out")
)

// Generator produces a live stream of text fragments for a prompt
type Generator interface {
	GenerateStream(ctx context.Context, prompt string) iter.Seq2[string, error]
}

type Relay struct {
	generator Generator
	logger    *slog.Logger
	metrics   *monitoring.Metrics
}

func NewRelay(generator Generator, logger *slog.Logger, metrics *monitoring.Metrics) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		generator: generator,
		logger:    logger,
		metrics:   metrics,
	}
}

func BuildPrompt(text, language string) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(language), text)
}

// Stream returns a single-pass sequence of stream records. Each non-empty
// upstream fragment becomes one chunk record, in upstream order. The first
// upstream error becomes one final error record, and so does an expired ctx
// deadline. When the consumer stops or ctx is cancelled, the upstream stream
// is released and nothing more is emitted.
func (r *Relay) Stream(ctx context.Context, text, language string) iter.Seq[models.StreamRecord] {
	var used atomic.Bool

	return func(yield func(models.StreamRecord) bool) {
		if used.Swap(true) {
			yield(models.ErrorRecord(ErrStreamConsumed))
			return
		}

		chunks := 0
		outcome := "completed"
		defer func() {
			r.metrics.ObserveSummaryStream(outcome, chunks)
		}()

		for chunk, err := range r.generator.GenerateStream(ctx, BuildPrompt(text, language)) {
			if ctx.Err() != nil {
				outcome = r.interrupted(ctx, yield, language, chunks)
				return
			}
			if err != nil {
				outcome = "failed"
				r.logger.Error("streaming summary failed",
					slog.String("language", language), slog.Int("chunks", chunks), slog.Any("err", err))
				yield(models.ErrorRecord(err))
				return
			}
			if chunk == "" {
				continue
			}
			if !yield(models.ChunkRecord(chunk)) {
				outcome = "cancelled"
				return
			}
			chunks++
		}

		if ctx.Err() != nil {
			outcome = r.interrupted(ctx, yield, language, chunks)
		}
	}
}

// interrupted ends a stream whose ctx is done. A deadline is a failure the
// client must see; a cancellation means the client is gone.
func (r *Relay) interrupted(ctx context.Context, yield func(models.StreamRecord) bool, language string, chunks int) string {
	if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "cancelled"
	}
	r.logger.Error("streaming summary timed out",
		slog.String("language", language), slog.Int("chunks", chunks))
	yield(models.ErrorRecord(ErrStreamTimeout))
	return "failed"
}
