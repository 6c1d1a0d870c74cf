package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/babelbridge/babelbridge/pkg/audio/pcm"
	"github.com/babelbridge/babelbridge/pkg/route"
)

// Whisper is a Transcriber backed by a whisper-compatible transcription
// sidecar. The utterance is shipped as a WAV file; the service answers with
// the transcript text and the detected language code.
type Whisper struct {
	// URL is the transcription endpoint.
	URL string

	// Client is the HTTP client to use. Nil means http.DefaultClient.
	Client *http.Client
}

var _ Transcriber = (*Whisper)(nil)

// Transcribe implements Transcriber.
func (w *Whisper) Transcribe(ctx context.Context, data []byte, format pcm.Format) (string, route.Lang, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(wrapWAV(data, format)))
	if err != nil {
		return "", LangUnknown, fmt.Errorf("asr: build request: %w", err)
	}
	req.Header.Set("Content-Type", "audio/wav")

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", LangUnknown, fmt.Errorf("asr: transcribe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", LangUnknown, fmt.Errorf("asr: transcribe: unexpected status %s", resp.Status)
	}

	var out struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", LangUnknown, fmt.Errorf("asr: decode response: %w", err)
	}

	lang := route.Lang(out.Language)
	if lang == "" {
		lang = LangUnknown
	}
	return strings.TrimSpace(out.Text), lang, nil
}
