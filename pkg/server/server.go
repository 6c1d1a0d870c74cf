// Package server owns the websocket transport and the per-connection session
// coordinator for the speech-translation service.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/babelbridge/babelbridge/pkg/audio/pcm"
	"github.com/babelbridge/babelbridge/pkg/pipeline"
	"github.com/babelbridge/babelbridge/pkg/segment"
	"github.com/babelbridge/babelbridge/pkg/transcript"
	"github.com/babelbridge/babelbridge/pkg/vad"
)

// SessionFormat is the fixed input format of inbound audio frames:
// little-endian 16-bit PCM, 16kHz, mono.
const SessionFormat = pcm.L16Mono16K

// Server accepts translation sessions at /ws/translate. Sessions are fully
// isolated: the server shares only the pipeline, the probe, and the
// transcript sink across connections, all of which are concurrency-safe.
type Server struct {
	// Probe detects speech for the per-session segmenters.
	Probe vad.Probe

	// Pipeline processes finalized utterances.
	Pipeline *pipeline.Pipeline

	// Transcripts records completed translations. Nil disables logging.
	Transcripts transcript.Log

	// AnalysisWindow, MinUtterance, and ProbeTimeout tune the per-session
	// segmenters. Zero values use the segmenter defaults.
	AnalysisWindow time.Duration
	MinUtterance   time.Duration
	ProbeTimeout   time.Duration

	// Logger receives session lifecycle logs. Nil means slog.Default().
	Logger *slog.Logger
}

// upgrader accepts any origin; browser clients are served from a different
// host than the API.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Handler returns the HTTP handler serving the health endpoint and the
// websocket session endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /ws/translate", s.handleTranslate)
	return mux
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "BabelBridge API is running"})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger().Warn("server: websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	seg := segment.New(s.Probe, segment.Config{
		Format:         SessionFormat,
		AnalysisWindow: s.AnalysisWindow,
		MinUtterance:   s.MinUtterance,
		ProbeTimeout:   s.ProbeTimeout,
		Logger:         s.Logger,
	})
	sess := newSession(conn, seg, s.Pipeline, s.Transcripts, s.logger())
	sess.run()
}
