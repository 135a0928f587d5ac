package models

import "fmt"

// VideoID is a canonical 11 character YouTube video identifier
type VideoID string

func (id VideoID) WatchURL() string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", id)
}

// SubtitleFormat is one downloadable rendition of a caption track as reported by the extractor
type SubtitleFormat struct {
	Ext  string `json:"ext"`
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

type VideoInfo struct {
	ID                 string                      `json:"id"`
	Title              string                      `json:"title"`
	Thumbnail          string                      `json:"thumbnail"`
	Subtitles          map[string][]SubtitleFormat `json:"subtitles"`
	RequestedSubtitles map[string]SubtitleFormat   `json:"requested_subtitles"`
}

// ExtractOptions restricts what the extractor resolves. Extraction never downloads media.
type ExtractOptions struct {
	Languages      []string
	SubtitleFormat string // e.g. "vtt/json3"
}

type CaptionTrack struct {
	Language     string `json:"language"`
	LanguageCode string `json:"language_code"`
}

type VideoMetadata struct {
	VideoID              VideoID        `json:"video_id"`
	Title                string         `json:"title"`
	ThumbnailURL         string         `json:"thumbnail_url"`
	AvailableTranscripts []CaptionTrack `json:"available_transcripts"`
}
