package youtube

import (
	"context"
	"errors"
	"fmt"

	"yt-summary/internal/models"
	"yt-summary/shared/config"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

var ErrVideoNotFound = errors.New("video not found")

// DataAPI looks up titles and thumbnails through the YouTube Data API v3.
// It only needs an API key since nothing private is read.
type DataAPI struct {
	service *youtube.Service
}

func NewDataAPI(ctx context.Context, cfg *config.YouTubeConfig, opts ...option.ClientOption) (*DataAPI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("YouTube API key is required")
	}

	opts = append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &DataAPI{service: service}, nil
}

func (d *DataAPI) Describe(ctx context.Context, id models.VideoID) (string, string, error) {
	resp, err := d.service.Videos.List([]string{"snippet"}).Id(string(id)).Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("failed to get video details: %w", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return "", "", fmt.Errorf("%w: %s", ErrVideoNotFound, id)
	}

	snippet := resp.Items[0].Snippet
	return snippet.Title, bestThumbnail(snippet.Thumbnails), nil
}

func bestThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, thumb := range []*youtube.Thumbnail{t.Maxres, t.Standard, t.High, t.Medium, t.Default} {
		if thumb != nil && thumb.Url != "" {
			return thumb.Url
		}
	}
	return ""
}
