package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	ytsummarizer "yt-summary/agents/yt-summarizer"
	"yt-summary/shared/config"
	"yt-summary/shared/transcript"

	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(os.Getenv("LOG_LEVEL"))
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:           "yt-summary",
		Short:         "Fetch YouTube transcripts and stream Gemini summaries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		serveCMD(logger),
		languagesCMD(logger),
		transcriptCMD(logger),
		summarizeCMD(logger),
		updateExtractorCMD(logger),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func loadAgent(logger *slog.Logger) (*ytsummarizer.SummarizerAgent, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return ytsummarizer.NewSummarizerAgent(cfg, logger), cfg, nil
}

func serveCMD(logger *slog.Logger) *cobra.Command {
	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, cfg, err := loadAgent(logger)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return agent.Serve(cmd.Context())
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (overrides LISTEN_ADDR and server.addr)")
	return serve
}

func languagesCMD(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "languages <url-or-id>",
		Short: "List the subtitle languages of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := transcript.NormalizeVideoID(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", transcript.ErrInvalidVideoID, args[0])
			}

			agent, _, err := loadAgent(logger)
			if err != nil {
				return err
			}
			if err := agent.Initialize(cmd.Context()); err != nil {
				return err
			}

			meta, err := agent.Fetcher().Discover(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", meta.Title)
			for _, t := range meta.AvailableTranscripts {
				fmt.Fprintf(out, "  %-8s %s\n", t.LanguageCode, t.Language)
			}
			return nil
		},
	}
}

func transcriptCMD(logger *slog.Logger) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "transcript <url-or-id>",
		Short: "Print the plain-text transcript of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := transcript.NormalizeVideoID(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", transcript.ErrInvalidVideoID, args[0])
			}

			agent, _, err := loadAgent(logger)
			if err != nil {
				return err
			}
			if err := agent.Initialize(cmd.Context()); err != nil {
				return err
			}

			text, err := agent.Fetcher().Fetch(cmd.Context(), id.WatchURL(), lang)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "en", "subtitle language code")
	return cmd
}

func summarizeCMD(logger *slog.Logger) *cobra.Command {
	var (
		file     string
		language string
	)
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize text from a file or stdin, writing NDJSON records to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, cfg, err := loadAgent(logger)
			if err != nil {
				return err
			}
			if err := agent.InitializeSummarizer(cmd.Context()); err != nil {
				return err
			}

			text, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			if strings.TrimSpace(language) == "" {
				language = cfg.Summary.DefaultLanguage
			}

			w := bufio.NewWriter(cmd.OutOrStdout())
			defer w.Flush()
			enc := json.NewEncoder(w)
			enc.SetEscapeHTML(false)

			for record := range agent.Relay().Stream(cmd.Context(), text, language) {
				if err := enc.Encode(record); err != nil {
					return fmt.Errorf("failed to write record: %w", err)
				}
				if err := w.Flush(); err != nil {
					return fmt.Errorf("failed to write record: %w", err)
				}
				if record.IsError() {
					return fmt.Errorf("summary failed: %s", record.Error)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read text from file instead of stdin")
	cmd.Flags().StringVar(&language, "language", "", "summary language (default summary.default_language)")
	return cmd
}

func updateExtractorCMD(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "update-extractor",
		Short: "Update the yt-dlp binary once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, _, err := loadAgent(logger)
			if err != nil {
				return err
			}
			summary, err := agent.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

func readInput(stdin io.Reader, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
