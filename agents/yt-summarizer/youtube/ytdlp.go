package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"yt-summary/internal/models"
)

const defaultTimeout = 60 * time.Second

// Ytdlp extracts video metadata and subtitle URLs by running the yt-dlp binary.
// Nothing is downloaded except the JSON description of the video.
type Ytdlp struct {
	Path    string
	Timeout time.Duration
}

func NewYtdlp(path string, timeout time.Duration) *Ytdlp {
	if path == "" {
		path = "yt-dlp"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Ytdlp{Path: path, Timeout: timeout}
}

func (y *Ytdlp) Extract(ctx context.Context, videoURL string, opts models.ExtractOptions) (*models.VideoInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, y.Timeout)
	defer cancel()

	out, err := y.run(ctx, "extract", buildArgs(videoURL, opts)...)
	if err != nil {
		return nil, err
	}

	var info models.VideoInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("failed to decode yt-dlp output: %w", err)
	}
	return &info, nil
}

// Update runs yt-dlp's self-update. YouTube changes break old extractors often.
func (y *Ytdlp) Update(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	out, err := y.run(ctx, "update", "-U")
	if err != nil {
		return "", err
	}
	return lastLine(string(out)), nil
}

// run executes yt-dlp; op names the operation in errors
func (y *Ytdlp) run(ctx context.Context, op string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, y.Path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("yt-dlp %s: %w", op, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("yt-dlp %s exited with code %d: %s", op, exitErr.ExitCode(), lastLine(stderr.String()))
		}
		return nil, fmt.Errorf("failed to run yt-dlp %s: %w", op, err)
	}
	return stdout.Bytes(), nil
}

func buildArgs(videoURL string, opts models.ExtractOptions) []string {
	args := []string{"--skip-download", "--dump-single-json", "--no-warnings", "--no-playlist"}

	if len(opts.Languages) > 0 {
		args = append(args, "--write-subs", "--sub-langs", strings.Join(opts.Languages, ","))
		if opts.SubtitleFormat != "" {
			args = append(args, "--sub-format", opts.SubtitleFormat)
		}
	}

	// "--" keeps a URL starting with "-" from being read as a flag
	return append(args, "--", videoURL)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
