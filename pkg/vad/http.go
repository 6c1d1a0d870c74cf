package vad

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/babelbridge/babelbridge/pkg/audio/pcm"
)

// HTTPProbe is a Probe backed by a VAD sidecar service (e.g. a silero-vad
// server). It posts the raw PCM span and expects a JSON verdict.
type HTTPProbe struct {
	// URL is the detection endpoint.
	URL string

	// Client is the HTTP client to use. Nil means http.DefaultClient.
	Client *http.Client
}

var _ Probe = (*HTTPProbe)(nil)

// Detect implements Probe. The sample rate travels in a query-style header so
// the payload stays raw PCM.
func (p *HTTPProbe) Detect(ctx context.Context, data []byte, format pcm.Format) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("vad: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Sample-Rate", strconv.Itoa(format.SampleRate()))

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("vad: detect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("vad: detect: unexpected status %s", resp.Status)
	}

	var out struct {
		Speech bool `json:"speech"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("vad: decode response: %w", err)
	}
	return out.Speech, nil
}
