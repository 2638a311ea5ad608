// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Upload body formats accepted by the gateway.
const (
	FormatMultipart = "multipart"
	FormatJSON      = "json"
)

// SecretHeader carries the shared upload secret.
const SecretHeader = "X-Upload-Secret"

// maxResponseBody caps how much of the gateway reply is read.
const maxResponseBody = 64 << 10

// HTTPConfig configures an HTTPPublisher.
type HTTPConfig struct {
	UploadURL string
	Secret    string
	Format    string
	Timeout   time.Duration
}

// HTTPPublisher posts sites to an upload gateway.
type HTTPPublisher struct {
	url    string
	secret string
	format string
	client *http.Client
}

// NewHTTP creates a gateway publisher. Format defaults to multipart.
func NewHTTP(cfg HTTPConfig) (*HTTPPublisher, error) {
	if cfg.UploadURL == "" {
		return nil, fmt.Errorf("publish: upload URL is required")
	}
	switch cfg.Format {
	case "":
		cfg.Format = FormatMultipart
	case FormatMultipart, FormatJSON:
	default:
		return nil, fmt.Errorf("publish: unknown format %q", cfg.Format)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &HTTPPublisher{
		url:    cfg.UploadURL,
		secret: cfg.Secret,
		format: cfg.Format,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// gatewayReply is the optional JSON body returned by the gateway.
type gatewayReply struct {
	Status  *bool  `json:"status"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

// Publish uploads html as <siteName>.html. A non-2xx status, a transport
// failure or a JSON reply with "status": false is reported as ErrPublish.
func (p *HTTPPublisher) Publish(ctx context.Context, siteName, html string) (*Result, error) {
	body, contentType, err := p.encode(siteName, html)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %w", ErrPublish, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, body)
	if err != nil {
		return nil, fmt.Errorf("%w: request: %w", ErrPublish, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if p.secret != "" {
		req.Header.Set(SecretHeader, p.secret)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublish, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrPublish, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: gateway status %d: %s", ErrPublish, resp.StatusCode, truncate(string(respBody), 200))
	}

	result := &Result{Status: true}

	// Gateways that answer with plain text are treated as successful.
	var reply gatewayReply
	if json.Unmarshal(respBody, &reply) == nil {
		if reply.Status != nil && !*reply.Status {
			return nil, fmt.Errorf("%w: gateway rejected upload: %s", ErrPublish, reply.Message)
		}
		result.Message = reply.Message
		result.URL = reply.URL
	}
	return result, nil
}

func (p *HTTPPublisher) encode(siteName, html string) (io.Reader, string, error) {
	if p.format == FormatJSON {
		payload := map[string]string{"siteName": siteName, "html": html}
		if p.secret != "" {
			payload["secret"] = p.secret
		}
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(b), "application/json", nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("siteName", siteName); err != nil {
		return nil, "", err
	}
	if p.secret != "" {
		if err := w.WriteField("secret", p.secret); err != nil {
			return nil, "", err
		}
	}
	part, err := w.CreateFormFile("file", siteName+".html")
	if err != nil {
		return nil, "", err
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
