package transcript

import (
	"errors"
	"net/url"
	"strings"

	"yt-summary/internal/models"
)

const videoIDLength = 11

var ErrInvalidVideoID = errors.New("invalid YouTube URL or ID")

// NormalizeVideoID accepts a raw video id or a youtube.com / youtu.be URL.
// Extracted ids are not length-checked, and /shorts/ and /embed/ paths are not recognized.
func NormalizeVideoID(input string) (models.VideoID, bool) {
	if isRawVideoID(input) {
		return models.VideoID(input), true
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case strings.Contains(host, "youtube.com"):
		v := u.Query()["v"]
		if len(v) == 0 || v[0] == "" {
			return "", false
		}
		return models.VideoID(v[0]), true
	case strings.Contains(host, "youtu.be"):
		id := strings.TrimLeft(u.Path, "/")
		if id == "" {
			return "", false
		}
		return models.VideoID(id), true
	}

	return "", false
}

func isRawVideoID(s string) bool {
	if len(s) != videoIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
		default:
			return false
		}
	}
	return true
}
