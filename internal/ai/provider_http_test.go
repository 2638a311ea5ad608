// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

// ---------- Helpers ----------

// newTestServer creates an httptest.Server that responds with the given status
// code and body bytes. The caller must call Close on the returned server.
func newTestServer(t *testing.T, statusCode int, body []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		w.Write(body)
	}))
}

// openAISuccessBody builds a chat completions response with one choice.
func openAISuccessBody(text string) []byte {
	resp := openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: text}},
		},
	}
	b, _ := json.Marshal(resp)
	return b
}

// claudeSuccessBody builds a Messages API response with one text block.
func claudeSuccessBody(text string) []byte {
	resp := claudeResponse{
		Content: []claudeContentBlock{
			{Type: "text", Text: text},
		},
	}
	b, _ := json.Marshal(resp)
	return b
}

// geminiSuccessBody builds a generateContent response with one candidate.
func geminiSuccessBody(text string) []byte {
	resp := geminiResponse{
		Candidates: []geminiCandidate{
			{Content: geminiContent{Parts: []geminiPart{{Text: text}}}},
		},
	}
	b, _ := json.Marshal(resp)
	return b
}

// =====================================================================
// OpenAI Provider Tests
// =====================================================================

func TestOpenAIGenerate_Success(t *testing.T) {
	want := "```html\n<p>hi</p>\n```"
	srv := newTestServer(t, http.StatusOK, openAISuccessBody(want))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "test-key", Model: "gpt-4o", BaseURL: srv.URL})

	got, err := p.Generate(context.Background(), "Build a site")
	if err != nil {
		t.Fatalf("Generate: unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("Generate: got %q, want %q", got, want)
	}
}

func TestOpenAIGenerate_VerifiesRequest(t *testing.T) {
	var capturedPath, capturedAuth string
	var capturedBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedAuth = r.Header.Get("Authorization")
		capturedBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write(openAISuccessBody("ok"))
	}))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "sk-test-12345", Model: "gpt-4o-mini", BaseURL: srv.URL})

	if _, err := p.Generate(context.Background(), "the prompt"); err != nil {
		t.Fatalf("Generate: unexpected error: %v", err)
	}

	if capturedPath != "/chat/completions" {
		t.Errorf("path: got %q, want /chat/completions", capturedPath)
	}
	if capturedAuth != "Bearer sk-test-12345" {
		t.Errorf("Authorization header: got %q", capturedAuth)
	}

	var reqBody openai.ChatCompletionRequest
	if err := json.Unmarshal(capturedBody, &reqBody); err != nil {
		t.Fatalf("unmarshal request body: %v", err)
	}
	if reqBody.Model != "gpt-4o-mini" {
		t.Errorf("request model: got %q", reqBody.Model)
	}
	if len(reqBody.Messages) != 1 || reqBody.Messages[0].Role != "user" || reqBody.Messages[0].Content != "the prompt" {
		t.Errorf("messages: got %+v", reqBody.Messages)
	}
}

func TestOpenAIGenerate_HTTPError(t *testing.T) {
	srv := newTestServer(t, http.StatusInternalServerError,
		[]byte(`{"error":{"message":"internal","type":"server_error"}}`))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "test-key", BaseURL: srv.URL})

	_, err := p.Generate(context.Background(), "x")
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *openai.APIError, got %v", err)
	}
	if apiErr.HTTPStatusCode != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", apiErr.HTTPStatusCode)
	}
}

func TestOpenAIGenerate_EmptyChoices(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, []byte(`{"choices":[]}`))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "test-key", BaseURL: srv.URL})

	_, err := p.Generate(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Fatalf("expected no choices error, got %v", err)
	}
}

func TestOpenAIGenerate_CancelledContext(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, openAISuccessBody("ok"))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "test-key", BaseURL: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Generate(ctx, "x"); err == nil {
		t.Fatal("expected error for cancelled context, got nil")
	}
}

func TestOpenAIDefaultModel(t *testing.T) {
	p := newOpenAI(ProviderConfig{APIKey: "k"})
	if p.model != openai.GPT4o {
		t.Errorf("default model: got %q, want %q", p.model, openai.GPT4o)
	}
	if p.Name() != "openai" {
		t.Errorf("Name: got %q", p.Name())
	}
}

// =====================================================================
// Claude Provider Tests
// =====================================================================

func TestClaudeGenerate_Success(t *testing.T) {
	want := "Hello from Claude"
	srv := newTestServer(t, http.StatusOK, claudeSuccessBody(want))
	defer srv.Close()

	p := newClaude(ProviderConfig{APIKey: "test-key", Model: "claude-sonnet-4-6", BaseURL: srv.URL})

	got, err := p.Generate(context.Background(), "Say hello")
	if err != nil {
		t.Fatalf("Generate: unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("Generate: got %q, want %q", got, want)
	}
}

func TestClaudeGenerate_VerifiesRequest(t *testing.T) {
	var capturedHeaders http.Header
	var capturedPath string
	var capturedBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedHeaders = r.Header.Clone()
		capturedPath = r.URL.Path
		capturedBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write(claudeSuccessBody("ok"))
	}))
	defer srv.Close()

	p := newClaude(ProviderConfig{APIKey: "sk-ant-test", Model: "claude-sonnet-4-6", BaseURL: srv.URL})

	if _, err := p.Generate(context.Background(), "the prompt"); err != nil {
		t.Fatalf("Generate: unexpected error: %v", err)
	}

	if capturedPath != "/v1/messages" {
		t.Errorf("path: got %q", capturedPath)
	}
	if got := capturedHeaders.Get("x-api-key"); got != "sk-ant-test" {
		t.Errorf("x-api-key: got %q", got)
	}
	if got := capturedHeaders.Get("anthropic-version"); got != "2023-06-01" {
		t.Errorf("anthropic-version: got %q", got)
	}

	var reqBody claudeRequest
	if err := json.Unmarshal(capturedBody, &reqBody); err != nil {
		t.Fatalf("unmarshal request body: %v", err)
	}
	if reqBody.Model != "claude-sonnet-4-6" || reqBody.MaxTokens != claudeMaxTokens {
		t.Errorf("request: got model %q max_tokens %d", reqBody.Model, reqBody.MaxTokens)
	}
	if len(reqBody.Messages) != 1 || reqBody.Messages[0].Content != "the prompt" {
		t.Errorf("messages: got %+v", reqBody.Messages)
	}
}

func TestClaudeGenerate_JoinsTextBlocks(t *testing.T) {
	body := []byte(`{"content":[{"type":"text","text":"<p>"},{"type":"tool_use"},{"type":"text","text":"hi</p>"}]}`)
	srv := newTestServer(t, http.StatusOK, body)
	defer srv.Close()

	p := newClaude(ProviderConfig{APIKey: "k", BaseURL: srv.URL})
	got, err := p.Generate(context.Background(), "x")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "<p>hi</p>" {
		t.Errorf("got %q", got)
	}
}

func TestClaudeGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http error", http.StatusTooManyRequests, `{"error":"rate limited"}`, "status 429"},
		{"malformed json", http.StatusOK, `{not json`, "unmarshal"},
		{"no text content", http.StatusOK, `{"content":[{"type":"tool_use"}]}`, "no text content"},
		{"empty blocks", http.StatusOK, `{"content":[]}`, "no text content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.status, []byte(tt.body))
			defer srv.Close()

			p := newClaude(ProviderConfig{APIKey: "k", BaseURL: srv.URL})
			_, err := p.Generate(context.Background(), "x")
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error: got %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestClaudeDefaultBaseURL(t *testing.T) {
	p := newClaude(ProviderConfig{APIKey: "k"})
	if p.config.BaseURL != "https://api.anthropic.com" {
		t.Errorf("default BaseURL: got %q", p.config.BaseURL)
	}
	if p.Name() != "claude" {
		t.Errorf("Name: got %q", p.Name())
	}
}

// =====================================================================
// Gemini Provider Tests
// =====================================================================

func TestGeminiGenerate_Success(t *testing.T) {
	want := "Hello from Gemini"
	srv := newTestServer(t, http.StatusOK, geminiSuccessBody(want))
	defer srv.Close()

	p := newGemini(ProviderConfig{APIKey: "test-key", BaseURL: srv.URL})

	got, err := p.Generate(context.Background(), "Say hello")
	if err != nil {
		t.Fatalf("Generate: unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("Generate: got %q, want %q", got, want)
	}
}

func TestGeminiGenerate_VerifiesRequest(t *testing.T) {
	var capturedPath, capturedKey string
	var capturedBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedKey = r.Header.Get("x-goog-api-key")
		capturedBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write(geminiSuccessBody("ok"))
	}))
	defer srv.Close()

	p := newGemini(ProviderConfig{APIKey: "g-key", BaseURL: srv.URL + "/"})

	if _, err := p.Generate(context.Background(), "the prompt"); err != nil {
		t.Fatalf("Generate: unexpected error: %v", err)
	}

	if capturedPath != "/v1beta/models/gemini-2.0-flash:generateContent" {
		t.Errorf("path: got %q", capturedPath)
	}
	if capturedKey != "g-key" {
		t.Errorf("x-goog-api-key: got %q", capturedKey)
	}

	var reqBody geminiRequest
	if err := json.Unmarshal(capturedBody, &reqBody); err != nil {
		t.Fatalf("unmarshal request body: %v", err)
	}
	if len(reqBody.Contents) != 1 || reqBody.Contents[0].Parts[0].Text != "the prompt" {
		t.Errorf("contents: got %+v", reqBody.Contents)
	}
}

func TestGeminiGenerate_JoinsParts(t *testing.T) {
	body, _ := json.Marshal(geminiResponse{
		Candidates: []geminiCandidate{
			{Content: geminiContent{Parts: []geminiPart{{Text: "```html\n"}, {Text: "<p>hi</p>\n```"}}}},
		},
	})
	srv := newTestServer(t, http.StatusOK, body)
	defer srv.Close()

	p := newGemini(ProviderConfig{APIKey: "k", BaseURL: srv.URL})
	got, err := p.Generate(context.Background(), "x")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "```html\n<p>hi</p>\n```" {
		t.Errorf("got %q", got)
	}
}

func TestGeminiGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http error", http.StatusServiceUnavailable, `{"error":{"message":"overloaded"}}`, "status 503"},
		{"error body included", http.StatusBadRequest, `{"error":{"message":"bad model"}}`, "bad model"},
		{"malformed json", http.StatusOK, `{not json`, "unmarshal"},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, "no candidates"},
		{"empty parts", http.StatusOK, `{"candidates":[{"content":{"parts":[]}}]}`, "empty response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.status, []byte(tt.body))
			defer srv.Close()

			p := newGemini(ProviderConfig{APIKey: "k", BaseURL: srv.URL})
			_, err := p.Generate(context.Background(), "x")
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error: got %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestGeminiDefaults(t *testing.T) {
	p := newGemini(ProviderConfig{APIKey: "k"})
	if p.config.BaseURL != "https://generativelanguage.googleapis.com" {
		t.Errorf("default BaseURL: got %q", p.config.BaseURL)
	}
	if p.config.Model != "gemini-2.0-flash" {
		t.Errorf("default Model: got %q", p.config.Model)
	}
	if p.Name() != "gemini" {
		t.Errorf("Name: got %q", p.Name())
	}
}

// =====================================================================
// Connection failures
// =====================================================================

func TestGenerate_ConnectionRefused(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, nil)
	url := srv.URL
	srv.Close()

	providers := []Provider{
		newOpenAI(ProviderConfig{APIKey: "k", BaseURL: url}),
		newClaude(ProviderConfig{APIKey: "k", BaseURL: url}),
		newGemini(ProviderConfig{APIKey: "k", BaseURL: url}),
	}
	for _, p := range providers {
		t.Run(p.Name(), func(t *testing.T) {
			if _, err := p.Generate(context.Background(), "x"); err == nil {
				t.Error("expected error for refused connection")
			}
		})
	}
}

// =====================================================================
// Registry over real HTTP providers
// =====================================================================

func TestRegistryGenerate_WithRealHTTPProviders(t *testing.T) {
	openaiSrv := newTestServer(t, http.StatusOK, openAISuccessBody("openai response"))
	defer openaiSrv.Close()
	claudeSrv := newTestServer(t, http.StatusOK, claudeSuccessBody("claude response"))
	defer claudeSrv.Close()
	geminiSrv := newTestServer(t, http.StatusOK, geminiSuccessBody("gemini response"))
	defer geminiSrv.Close()

	configs := map[string]ProviderConfig{
		"openai": {APIKey: "ok1", Model: "gpt-4o", BaseURL: openaiSrv.URL},
		"claude": {APIKey: "ok2", Model: "claude-sonnet-4-6", BaseURL: claudeSrv.URL},
		"gemini": {APIKey: "ok3", BaseURL: geminiSrv.URL},
	}

	for name, want := range map[string]string{
		"openai": "openai response",
		"claude": "claude response",
		"gemini": "gemini response",
	} {
		t.Run(name, func(t *testing.T) {
			reg := NewRegistry(name, 0, configs)
			got, err := reg.Generate(context.Background(), "prompt")
			if err != nil {
				t.Fatalf("Generate with %s: %v", name, err)
			}
			if got != want {
				t.Errorf("Generate with %s: got %q, want %q", name, got, want)
			}
		})
	}
}
