package translate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/babelbridge/babelbridge/pkg/route"
)

func TestChat_Translate(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "  สวัสดี  "}, "finish_reason": "stop"}]
		}`))
	}))
	defer srv.Close()

	c, err := NewChat(ChatConfig{APIKey: "test", BaseURL: srv.URL, Model: "deepseek-chat"})
	if err != nil {
		t.Fatalf("NewChat error: %v", err)
	}

	got, err := c.Translate(context.Background(), "你好", route.Chinese, route.Thai)
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if got != "สวัสดี" {
		t.Errorf("Translate = %q; want สวัสดี", got)
	}

	if gotBody["model"] != "deepseek-chat" {
		t.Errorf("model = %v; want deepseek-chat", gotBody["model"])
	}
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("messages = %d; want 1", len(msgs))
	}
	msg, _ := msgs[0].(map[string]any)
	content, _ := msg["content"].(string)
	if !strings.Contains(content, "你好") || !strings.Contains(content, "中文") || !strings.Contains(content, "泰语") {
		t.Errorf("prompt missing expected parts: %q", content)
	}
}

func TestChat_UnsupportedLanguage(t *testing.T) {
	c, err := NewChat(ChatConfig{APIKey: "test", Model: "deepseek-chat"})
	if err != nil {
		t.Fatalf("NewChat error: %v", err)
	}
	if _, err := c.Translate(context.Background(), "hi", route.Lang("ja"), route.Chinese); err == nil {
		t.Error("Translate accepted unsupported source language")
	}
}

func TestNewChat_Validation(t *testing.T) {
	if _, err := NewChat(ChatConfig{Model: "m"}); err == nil {
		t.Error("NewChat accepted empty api key")
	}
	if _, err := NewChat(ChatConfig{APIKey: "k"}); err == nil {
		t.Error("NewChat accepted empty model")
	}
}

func TestChat_BackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewChat(ChatConfig{APIKey: "test", BaseURL: srv.URL, Model: "deepseek-chat"})
	if err != nil {
		t.Fatalf("NewChat error: %v", err)
	}
	if _, err := c.Translate(context.Background(), "你好", route.Chinese, route.Thai); err == nil {
		t.Error("Translate did not surface backend failure")
	}
}
