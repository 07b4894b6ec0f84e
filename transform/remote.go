package transform

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/okunev/stylebot/core/logger"
)

const maxResponseBytes = 20 << 20

// RemoteOptions configures the HTTP inference gateway.
type RemoteOptions struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// Client overrides the default client, mainly for tests.
	Client *http.Client
}

type remoteGateway struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRemoteGateway builds a gateway that POSTs images to
// <base-url>/<style>. Each request is a single attempt bounded by the
// configured timeout; the caller decides whether to resend.
func NewRemoteGateway(opts RemoteOptions) Gateway {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &remoteGateway{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		client:  client,
	}
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type inferenceError struct {
	Error json.RawMessage `json:"error"`
}

func (g *remoteGateway) Transform(ctx context.Context, img []byte, style string) ([]byte, error) {
	start := time.Now()
	url := g.baseURL + "/" + style

	body, err := json.Marshal(inferenceRequest{
		Inputs: base64.StdEncoding.EncodeToString(img),
	})
	if err != nil {
		return nil, &Error{Style: style, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Style: style, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		logger.Error(ctx, "gateway", "transform.failed",
			slog.String("style", style),
			slog.String("mode", "remote"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
		)
		return nil, &Error{Style: style, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		reason := readErrorReason(resp.Body, resp.StatusCode)
		logger.Error(ctx, "gateway", "transform.failed",
			slog.String("style", style),
			slog.String("mode", "remote"),
			slog.Int("http_code", resp.StatusCode),
			slog.String("err", logger.SanitizeLimit(reason, 256)),
			slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
		)
		return nil, &Error{Style: style, Reason: reason}
	}

	out, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Style: style, Err: err}
	}
	if len(out) == 0 {
		return nil, &Error{Style: style, Reason: "empty response body"}
	}

	logger.Debug(ctx, "gateway", "transform.done",
		slog.String("style", style),
		slog.String("mode", "remote"),
		slog.Int("bytes", len(out)),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
	)
	return out, nil
}

// readErrorReason extracts the service's {"error": ...} payload when
// present, otherwise falls back to the HTTP status.
func readErrorReason(body io.Reader, status int) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err == nil && len(raw) > 0 {
		var payload inferenceError
		if json.Unmarshal(raw, &payload) == nil && len(payload.Error) > 0 {
			var msg string
			if json.Unmarshal(payload.Error, &msg) == nil && msg != "" {
				return msg
			}
			return string(payload.Error)
		}
	}
	return fmt.Sprintf("unexpected status %d", status)
}
