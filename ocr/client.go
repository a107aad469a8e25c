// Package ocr talks to the external súmula extraction service. The
// OCR algorithm itself is out of scope: this client uploads nothing
// and owns no state, it just exchanges an image URL for structured
// per-player entries with a bounded timeout.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type Entry struct {
	PlayerName string   `json:"player_name"`
	Rating     *float64 `json:"rating"`
	Goals      int      `json:"goals"`
	Assists    int      `json:"assists"`
}

// Extraction is the structured result for one side's score sheet.
// ReportedGoals is the aggregate the OCR read off the sheet header; it
// can exceed the sum over Entries (own goals, unreadable lines).
type Extraction struct {
	Entries       []Entry `json:"entries"`
	ReportedGoals int     `json:"reported_goals"`
}

type Extractor interface {
	ExtractReport(ctx context.Context, imageURL string) (*Extraction, error)
}

type HTTPExtractorConfig struct {
	BaseURL string
	Timeout time.Duration
}

type httpExtractor struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

func NewHTTPExtractor(cfg HTTPExtractorConfig) (Extractor, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("ocr: base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("ocr: invalid base URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &httpExtractor{
		baseURL: cfg.BaseURL,
		timeout: timeout,
		client:  &http.Client{},
	}, nil
}

func (e *httpExtractor) ExtractReport(ctx context.Context, imageURL string) (*Extraction, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{"image_url": imageURL})
	if err != nil {
		return nil, fmt.Errorf("ocr: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/sumula/extract", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ocr: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocr: extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ocr: extraction service returned status %d", resp.StatusCode)
	}

	var extraction Extraction
	if err := json.NewDecoder(resp.Body).Decode(&extraction); err != nil {
		return nil, fmt.Errorf("ocr: failed to decode extraction response: %w", err)
	}
	return &extraction, nil
}
