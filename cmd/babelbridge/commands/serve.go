package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/babelbridge/babelbridge/pkg/asr"
	"github.com/babelbridge/babelbridge/pkg/pipeline"
	"github.com/babelbridge/babelbridge/pkg/route"
	"github.com/babelbridge/babelbridge/pkg/server"
	"github.com/babelbridge/babelbridge/pkg/transcript"
	"github.com/babelbridge/babelbridge/pkg/translate"
	"github.com/babelbridge/babelbridge/pkg/tts"
	"github.com/babelbridge/babelbridge/pkg/vad"
)

func newServeCmd() *cobra.Command {
	var configPath string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the translation session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := server.DefaultConfig()
			if configPath != "" {
				var err error
				cfg, err = server.LoadConfig(configPath)
				if err != nil {
					return err
				}
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the YAML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}

func runServe(ctx context.Context, cfg server.Config) error {
	logger := slog.Default()

	transcripts, err := buildTranscripts(cfg.Log, logger)
	if err != nil {
		return err
	}
	defer transcripts.Close()

	srv := &server.Server{
		Probe: buildProbe(cfg.VAD),
		Pipeline: &pipeline.Pipeline{
			Transcriber:  &asr.Whisper{URL: cfg.ASR.URL},
			Translator:   buildTranslator(cfg.Translate, logger),
			Synthesizer:  buildSynthesizer(cfg.TTS),
			Format:       server.SessionFormat,
			StageTimeout: cfg.Pipeline.StageTimeout.Duration(),
			Logger:       logger,
		},
		Transcripts:    transcripts,
		AnalysisWindow: cfg.Audio.AnalysisWindow.Duration(),
		MinUtterance:   cfg.Audio.MinUtterance.Duration(),
		ProbeTimeout:   cfg.VAD.Timeout.Duration(),
		Logger:         logger,
	}

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Handler(),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serve: listening", "addr", cfg.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("serve: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildTranslator returns the chat translator, or a failing stand-in when it
// cannot be configured. The stand-in's errors hit the translation fallback, so
// sessions still relay the original text instead of the server refusing to
// start.
func buildTranslator(cfg server.TranslateConfig, logger *slog.Logger) translate.Translator {
	chat, err := translate.NewChat(translate.ChatConfig{
		APIKey:  cfg.APIKey(),
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})
	if err != nil {
		logger.Warn("serve: translator unavailable, sessions will relay original text", "error", err)
		confErr := fmt.Errorf("translator unavailable: %w", err)
		return translate.TranslateFunc(func(context.Context, string, route.Lang, route.Lang) (string, error) {
			return "", confErr
		})
	}
	return chat
}

func buildProbe(cfg server.VADConfig) vad.Probe {
	if cfg.Kind == "http" {
		return &vad.HTTPProbe{URL: cfg.URL}
	}
	return &vad.Energy{Threshold: cfg.Threshold}
}

func buildSynthesizer(cfg server.TTSConfig) tts.Synthesizer {
	g := &tts.Gateway{URL: cfg.URL}
	if len(cfg.Voices) > 0 {
		voices := make(map[route.Lang]string, len(cfg.Voices))
		for lang, voice := range tts.DefaultVoices {
			voices[lang] = voice
		}
		for lang, voice := range cfg.Voices {
			voices[route.Lang(lang)] = voice
		}
		g.Voices = voices
	}
	return g
}

func buildTranscripts(cfg server.LogConfig, logger *slog.Logger) (transcript.Log, error) {
	fileLog, err := transcript.NewFileLog(cfg.Dir, logger)
	if err != nil {
		return nil, fmt.Errorf("configure transcript files: %w", err)
	}
	if cfg.BadgerDir == "" {
		return fileLog, nil
	}
	badgerLog, err := transcript.NewBadgerLog(transcript.BadgerOptions{Dir: cfg.BadgerDir})
	if err != nil {
		fileLog.Close()
		return nil, fmt.Errorf("configure transcript store: %w", err)
	}
	return transcript.MultiLog{fileLog, badgerLog}, nil
}
