package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
)

var ErrMalformedCaptions = errors.New("malformed structured captions")

// subtitle-track lines starting with these are headers, not spoken text
var headerPrefixes = []string{"WEBVTT", "NOTE", "Kind:", "Language:"}

// inline cue markup such as <c>, </c>, <i> and <00:00:01.000>
var cueTagRE = regexp.MustCompile(`<[^>]*>`)

type json3Captions struct {
	Events []struct {
		Segs []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// ParseCaptions sniffs the payload format rather than trusting what was requested
// from the extractor: a payload starting with '{' is json3, anything else is VTT.
func ParseCaptions(payload string) (string, error) {
	if strings.HasPrefix(strings.TrimSpace(payload), "{") {
		return ParseStructured(payload)
	}
	return ParseSubtitleTrack(payload), nil
}

// ParseStructured flattens json3 events into text, one space between segments.
func ParseStructured(payload string) (string, error) {
	var doc json3Captions
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCaptions, err)
	}

	var parts []string
	for _, event := range doc.Events {
		for _, seg := range event.Segs {
			if text := strings.TrimSpace(seg.UTF8); text != "" {
				parts = append(parts, text)
			}
		}
	}

	return strings.Join(parts, " "), nil
}

// ParseSubtitleTrack drops headers, blank lines and timing cues and joins the remaining text lines.
func ParseSubtitleTrack(payload string) string {
	lines := strings.FieldsFunc(payload, func(r rune) bool {
		return r == '\n' || r == '\r'
	})

	var parts []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" || strings.Contains(line, "-->") || hasHeaderPrefix(line) {
			continue
		}
		text := strings.TrimSpace(html.UnescapeString(cueTagRE.ReplaceAllString(line, "")))
		if text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, " ")
}

func hasHeaderPrefix(line string) bool {
	for _, prefix := range headerPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
