package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"google.golang.org/api/iterator"

	"github.com/babelbridge/babelbridge/pkg/route"
)

// DefaultVoices maps session languages to neural voice names, with Chinese as
// the fallback for anything unmapped.
var DefaultVoices = map[route.Lang]string{
	route.Chinese: "zh-CN-XiaoxiaoNeural",
	route.Thai:    "th-TH-PremwadeeNeural",
	route.English: "en-US-ChristopherNeural",
}

// Gateway is a Synthesizer backed by a websocket synthesis gateway. One
// synthesis is one connection: a single JSON request goes out, binary audio
// frames stream back until the gateway signals the end of the utterance.
type Gateway struct {
	// URL is the websocket endpoint (ws:// or wss://).
	URL string

	// Voices overrides DefaultVoices when non-nil.
	Voices map[route.Lang]string

	// Dialer is the websocket dialer. Nil means websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

var _ Synthesizer = (*Gateway)(nil)

// Voice returns the voice name for lang, falling back to the Chinese voice.
func (g *Gateway) Voice(lang route.Lang) string {
	voices := g.Voices
	if voices == nil {
		voices = DefaultVoices
	}
	if v, ok := voices[lang]; ok {
		return v
	}
	return voices[route.Chinese]
}

// Synthesize implements Synthesizer.
func (g *Gateway) Synthesize(ctx context.Context, text string, lang route.Lang) ([]byte, error) {
	dialer := g.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, g.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("tts: connect gateway: %w", err)
	}
	defer conn.Close()

	req := map[string]any{
		"text":  text,
		"voice": g.Voice(lang),
	}
	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("tts: send request: %w", err)
	}

	// Unblock reads when the caller gives up.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	var audio bytes.Buffer
	chunks := &chunkIterator{conn: conn}
	for {
		chunk, err := chunks.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("tts: receive audio: %w", err)
		}
		audio.Write(chunk)
	}
	return audio.Bytes(), nil
}

// chunkIterator yields binary audio frames from the gateway connection until
// an end-of-utterance control message or a normal close arrives.
type chunkIterator struct {
	conn *websocket.Conn
}

// Next returns the next audio chunk, or iterator.Done at end of stream.
func (it *chunkIterator) Next() ([]byte, error) {
	for {
		kind, data, err := it.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil, iterator.Done
			}
			return nil, err
		}
		switch kind {
		case websocket.BinaryMessage:
			return data, nil
		case websocket.TextMessage:
			var ctrl struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(data, &ctrl); err == nil && ctrl.Type == "end" {
				return nil, iterator.Done
			}
			// Non-end control messages are ignored.
		}
	}
}
