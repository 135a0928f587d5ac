package transcript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"yt-summary/internal/models"
	"yt-summary/shared/monitoring"
)

const (
	// SubtitleFormat asks for WebVTT with json3 as fallback
	SubtitleFormat = "vtt/json3"

	defaultTitle    = "No title found"
	maxCaptionBytes = 16 << 20
)

var (
	ErrLanguageUnavailable = errors.New("no subtitles for requested language")
	ErrNoSubtitles         = errors.New("no subtitles found for this video")
	ErrNoValidTranscripts  = errors.New("no valid transcript URLs found")
	ErrCaptionTooLarge     = errors.New("caption payload too large")
)

// Extractor resolves video metadata and caption track locations without downloading media
type Extractor interface {
	Extract(ctx context.Context, videoURL string, opts models.ExtractOptions) (*models.VideoInfo, error)
}

// Describer is an optional source for a video's title and thumbnail
type Describer interface {
	Describe(ctx context.Context, id models.VideoID) (title, thumbnail string, err error)
}

// StatusError reports a caption download that returned a non-success HTTP status
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("caption download returned status %d", e.StatusCode)
}

type Fetcher struct {
	extractor Extractor
	describer Describer
	client    *http.Client
	logger    *slog.Logger
	metrics   *monitoring.Metrics
	maxBytes  int64
}

type Option func(*Fetcher)

func WithDescriber(d Describer) Option {
	return func(f *Fetcher) { f.describer = d }
}

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

func WithMetrics(m *monitoring.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

func NewFetcher(extractor Extractor, opts ...Option) *Fetcher {
	f := &Fetcher{
		extractor: extractor,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:   slog.Default(),
		maxBytes: maxCaptionBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchTranscript returns the transcript text for a language. Every failure,
// including an unavailable language, is logged and reported as ok=false.
func (f *Fetcher) FetchTranscript(ctx context.Context, videoURL, languageCode string) (string, bool) {
	text, err := f.Fetch(ctx, videoURL, languageCode)
	if err != nil {
		if errors.Is(err, ErrLanguageUnavailable) {
			f.logger.Warn("no subtitles found for language",
				slog.String("url", videoURL), slog.String("language", languageCode))
			f.metrics.ObserveTranscript("unavailable")
		} else {
			f.logger.Error("failed to fetch transcript",
				slog.String("url", videoURL), slog.String("language", languageCode), slog.Any("err", err))
			f.metrics.ObserveTranscript("failed")
		}
		return "", false
	}
	f.metrics.ObserveTranscript("ok")
	return text, true
}

// Fetch is the strict variant of FetchTranscript: an unavailable language is
// reported as ErrLanguageUnavailable, distinct from extraction and download errors.
func (f *Fetcher) Fetch(ctx context.Context, videoURL, languageCode string) (string, error) {
	start := time.Now()
	info, err := f.extractor.Extract(ctx, videoURL, models.ExtractOptions{
		Languages:      []string{languageCode},
		SubtitleFormat: SubtitleFormat,
	})
	f.metrics.ObserveExtraction("transcript", time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("failed to extract subtitles for %s: %w", videoURL, err)
	}

	track, ok := info.RequestedSubtitles[languageCode]
	if !ok || track.URL == "" {
		return "", fmt.Errorf("%w: %s", ErrLanguageUnavailable, languageCode)
	}

	payload, err := f.download(ctx, track.URL)
	if err != nil {
		return "", err
	}

	text, err := ParseCaptions(payload)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s subtitles: %w", languageCode, err)
	}
	return text, nil
}

func (f *Fetcher) download(ctx context.Context, captionURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, captionURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create caption request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download captions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{URL: captionURL, StatusCode: resp.StatusCode}
	}

	// one byte past the limit tells a full payload from a cut one
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read captions: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return "", fmt.Errorf("%w: more than %d bytes", ErrCaptionTooLarge, f.maxBytes)
	}
	return string(body), nil
}

// Discover lists a video's title, thumbnail and the caption languages that expose a download URL
func (f *Fetcher) Discover(ctx context.Context, id models.VideoID) (*models.VideoMetadata, error) {
	start := time.Now()
	info, err := f.extractor.Extract(ctx, id.WatchURL(), models.ExtractOptions{})
	f.metrics.ObserveExtraction("metadata", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to extract metadata for %s: %w", id, err)
	}

	meta := &models.VideoMetadata{
		VideoID:      id,
		Title:        info.Title,
		ThumbnailURL: info.Thumbnail,
	}
	if meta.Title == "" {
		meta.Title = defaultTitle
	}

	if len(info.Subtitles) == 0 {
		return nil, ErrNoSubtitles
	}

	codes := make([]string, 0, len(info.Subtitles))
	for code := range info.Subtitles {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		formats := info.Subtitles[code]
		if len(formats) == 0 || formats[0].URL == "" {
			continue
		}
		meta.AvailableTranscripts = append(meta.AvailableTranscripts, models.CaptionTrack{
			Language:     languageName(code, formats),
			LanguageCode: code,
		})
	}

	if len(meta.AvailableTranscripts) == 0 {
		return nil, ErrNoValidTranscripts
	}

	if f.describer != nil {
		title, thumbnail, err := f.describer.Describe(ctx, id)
		if err != nil {
			f.logger.Warn("video describer failed, keeping extractor metadata",
				slog.String("video_id", string(id)), slog.Any("err", err))
		} else {
			if title != "" {
				meta.Title = title
			}
			if thumbnail != "" {
				meta.ThumbnailURL = thumbnail
			}
		}
	}

	return meta, nil
}

func languageName(code string, formats []models.SubtitleFormat) string {
	for _, format := range formats {
		if format.Name != "" {
			return format.Name
		}
	}
	return code
}
