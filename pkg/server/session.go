package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/babelbridge/babelbridge/pkg/pipeline"
	"github.com/babelbridge/babelbridge/pkg/route"
	"github.com/babelbridge/babelbridge/pkg/segment"
	"github.com/babelbridge/babelbridge/pkg/transcript"
)

const (
	// workQueueDepth bounds utterances waiting for the pipeline. Audio
	// ingestion keeps draining the socket while utterances queue here; an
	// overflowing queue drops the newest utterance rather than stalling the
	// read loop.
	workQueueDepth = 8

	// outQueueDepth bounds outbound frames waiting for the write loop.
	outQueueDepth = 16
)

// controlMessage is an inbound text frame. Only "mode" is acted on; other
// types are ignored.
type controlMessage struct {
	Type string `json:"type"`
	Mode string `json:"mode"`
}

// resultMessage is the outbound text frame emitted for each translation,
// always followed by one binary frame carrying the synthesized audio.
type resultMessage struct {
	Type       string `json:"type"`
	Original   string `json:"original"`
	Translated string `json:"translated"`
	SrcLang    string `json:"src_lang"`
	TargetLang string `json:"target_lang"`
	Timestamp  string `json:"timestamp"`
}

type outFrame struct {
	kind int // websocket.TextMessage or websocket.BinaryMessage
	data []byte
}

// session coordinates one connection: it demultiplexes inbound frames, feeds
// the segmenter, hands finalized utterances to the pipeline, and serializes
// outbound frames. The read loop is the sole writer of session state (mode,
// segmenter buffer); the pipeline worker only reads a mode snapshot taken at
// pipeline start.
type session struct {
	id          string
	conn        *websocket.Conn
	seg         *segment.Segmenter
	pipe        *pipeline.Pipeline
	transcripts transcript.Log
	logger      *slog.Logger

	muMode sync.Mutex
	mode   route.Mode

	work chan []byte
	out  chan outFrame
}

func newSession(conn *websocket.Conn, seg *segment.Segmenter, pipe *pipeline.Pipeline, transcripts transcript.Log, logger *slog.Logger) *session {
	id := uuid.NewString()
	return &session{
		id:          id,
		conn:        conn,
		seg:         seg,
		pipe:        pipe,
		transcripts: transcripts,
		logger:      logger.With("session", id),
		mode:        route.DefaultMode,
		work:        make(chan []byte, workQueueDepth),
		out:         make(chan outFrame, outQueueDepth),
	}
}

func (s *session) currentMode() route.Mode {
	s.muMode.Lock()
	defer s.muMode.Unlock()
	return s.mode
}

func (s *session) setMode(m route.Mode) {
	s.muMode.Lock()
	s.mode = m
	s.muMode.Unlock()
}

// run services the connection until disconnect or an unrecoverable write
// failure, then tears the session down. In-flight pipeline work is abandoned
// on exit; no partial transcript entry is written for an abandoned utterance.
func (s *session) run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer s.conn.Close()

	s.logger.Info("session: connected")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.writeLoop(ctx, cancel)
	}()
	go func() {
		defer wg.Done()
		s.pipelineLoop(ctx)
	}()

	s.readLoop(ctx)

	cancel()
	wg.Wait()
	s.logger.Info("session: closed")
}

// readLoop drains the socket: control frames mutate session state
// immediately, audio frames feed the segmenter. It returns on any transport
// error.
func (s *session) readLoop(ctx context.Context) {
	for {
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Info("session: client disconnected")
			} else {
				s.logger.Warn("session: read failed", "error", err)
			}
			return
		}

		switch kind {
		case websocket.TextMessage:
			s.handleControl(data)
		case websocket.BinaryMessage:
			s.handleAudio(ctx, data)
		}
	}
}

// handleControl applies a mode switch immediately, independent of any
// in-flight pipeline work. Malformed or unrecognized messages are ignored.
func (s *session) handleControl(data []byte) {
	var msg controlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.logger.Debug("session: ignoring malformed control frame", "error", err)
		return
	}
	if msg.Type != "mode" {
		return
	}
	mode := route.ParseMode(msg.Mode)
	s.setMode(mode)
	s.logger.Info("session: mode switched", "mode", mode)
}

func (s *session) handleAudio(ctx context.Context, frame []byte) {
	utterance, boundary := s.seg.Ingest(ctx, frame)
	if !boundary {
		return
	}
	s.logger.Info("session: utterance finalized", "bytes", len(utterance))

	select {
	case s.work <- utterance:
	default:
		s.logger.Warn("session: pipeline queue full, dropping utterance", "bytes", len(utterance))
	}
}

// pipelineLoop processes finalized utterances one at a time. The mode
// snapshot is taken at pipeline start, so a control frame arriving mid-pass
// never changes an in-flight utterance's direction.
func (s *session) pipelineLoop(ctx context.Context) {
	for {
		var utterance []byte
		select {
		case <-ctx.Done():
			return
		case utterance = <-s.work:
		}

		mode := s.currentMode()
		res := s.pipe.Process(ctx, mode, utterance)
		if ctx.Err() != nil {
			return
		}

		switch res.Outcome {
		case pipeline.Translated:
			s.emit(ctx, mode, res)
		default:
			s.logger.Info("session: utterance produced no output", "outcome", res.Outcome.String())
		}
	}
}

// emit sends the result frame followed by the audio frame and records the
// transcript entry. Frames go through the write loop so the socket has a
// single writer.
func (s *session) emit(ctx context.Context, mode route.Mode, res pipeline.Result) {
	msg := resultMessage{
		Type:       "transcript",
		Original:   res.Original,
		Translated: res.Translated,
		SrcLang:    string(res.SrcLang),
		TargetLang: string(res.TargetLang),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("session: marshal result frame", "error", err)
		return
	}

	frames := []outFrame{
		{kind: websocket.TextMessage, data: data},
		{kind: websocket.BinaryMessage, data: res.Audio},
	}
	for _, f := range frames {
		select {
		case <-ctx.Done():
			return
		case s.out <- f:
		}
	}

	if s.transcripts == nil {
		return
	}
	entry := transcript.NewEntry(mode, res.SrcLang, res.Original, res.Translated)
	if err := s.transcripts.Append(ctx, entry); err != nil {
		s.logger.Error("session: transcript append failed", "error", err)
	}
}

// writeLoop is the sole writer on the connection. A write failure is
// unrecoverable for the session and cancels it.
func (s *session) writeLoop(ctx context.Context, cancel context.CancelFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-s.out:
			if err := s.conn.WriteMessage(f.kind, f.data); err != nil {
				s.logger.Warn("session: write failed", "error", err)
				cancel()
				// Unblock the read loop so the session can tear down.
				s.conn.Close()
				return
			}
		}
	}
}
