// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package metadata

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Ensure implementations satisfy Translator
var (
	_ Translator = NoopTranslator{}
	_ Translator = (*LibreTranslateClient)(nil)
)

// LibreTranslateClient translates text through a LibreTranslate-compatible
// POST /translate endpoint with automatic source language detection.
type LibreTranslateClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

// NewLibreTranslateClient creates a translator for the service at baseURL.
// apiKey may be empty for servers that do not require one.
func NewLibreTranslateClient(baseURL, apiKey string, httpClient *http.Client) *LibreTranslateClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &LibreTranslateClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// Translate implements Translator.
func (c *LibreTranslateClient) Translate(ctx context.Context, text, target string) (string, error) {
	body, err := json.Marshal(translateRequest{
		Q:      text,
		Source: "auto",
		Target: target,
		Format: "text",
		APIKey: c.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("marshal translate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read translate response: %w", err)
	}

	var out translateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode translate response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate returned status %d: %s", resp.StatusCode, out.Error)
	}
	if out.TranslatedText == "" {
		return "", fmt.Errorf("translate returned empty text")
	}
	return out.TranslatedText, nil
}
