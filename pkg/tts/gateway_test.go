package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/babelbridge/babelbridge/pkg/route"
)

// fakeGateway serves one synthesis request per connection: it reads the JSON
// request and streams the configured chunks back.
func fakeGateway(t *testing.T, chunks [][]byte, onRequest func(req map[string]any)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req map[string]any
		if err := json.Unmarshal(data, &req); err != nil {
			t.Errorf("bad request payload: %v", err)
			return
		}
		if onRequest != nil {
			onRequest(req)
		}

		for _, chunk := range chunks {
			if err := conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
				return
			}
		}
		conn.WriteJSON(map[string]string{"type": "end"})
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestGateway_Synthesize(t *testing.T) {
	chunks := [][]byte{{0x01, 0x02}, {0x03}, {0x04, 0x05, 0x06}}
	var gotReq map[string]any
	srv := fakeGateway(t, chunks, func(req map[string]any) { gotReq = req })
	defer srv.Close()

	g := &Gateway{URL: wsURL(srv)}
	audio, err := g.Synthesize(context.Background(), "สวัสดี", route.Thai)
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if want := []byte{1, 2, 3, 4, 5, 6}; !bytes.Equal(audio, want) {
		t.Errorf("audio = %v; want %v", audio, want)
	}
	if gotReq["text"] != "สวัสดี" {
		t.Errorf("text = %v; want สวัสดี", gotReq["text"])
	}
	if gotReq["voice"] != "th-TH-PremwadeeNeural" {
		t.Errorf("voice = %v; want th-TH-PremwadeeNeural", gotReq["voice"])
	}
}

func TestGateway_VoiceFallback(t *testing.T) {
	g := &Gateway{}
	if got := g.Voice(route.Lang("ja")); got != DefaultVoices[route.Chinese] {
		t.Errorf("Voice(ja) = %q; want Chinese fallback", got)
	}
	if got := g.Voice(route.English); got != "en-US-ChristopherNeural" {
		t.Errorf("Voice(en) = %q; want en-US-ChristopherNeural", got)
	}
}

func TestGateway_EmptyStream(t *testing.T) {
	srv := fakeGateway(t, nil, nil)
	defer srv.Close()

	g := &Gateway{URL: wsURL(srv)}
	audio, err := g.Synthesize(context.Background(), "hi", route.English)
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if len(audio) != 0 {
		t.Errorf("audio = %d bytes; want 0", len(audio))
	}
}

func TestGateway_DialFailure(t *testing.T) {
	g := &Gateway{URL: "ws://127.0.0.1:1/synthesize"}
	if _, err := g.Synthesize(context.Background(), "hi", route.English); err == nil {
		t.Error("Synthesize did not surface dial failure")
	}
}

func TestGateway_ContextCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// Never answer; the client must give up on its own. The read loop
		// ends when the client tears the connection down.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go cancel()

	g := &Gateway{URL: wsURL(srv)}
	if _, err := g.Synthesize(ctx, "hi", route.English); err == nil {
		t.Error("Synthesize did not fail on canceled context")
	}
}
