package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/eventshare/internal/logging"
	"github.com/google/uuid"
)

// TokenSource supplies the current session token. An empty token means no
// session exists.
type TokenSource interface {
	Token(ctx context.Context) string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) string

// Token implements TokenSource.
func (f TokenFunc) Token(ctx context.Context) string { return f(ctx) }

// Options configures a Client.
type Options struct {
	BaseURL     string
	FaceBaseURL string
	HTTPClient  *http.Client
	// Timeout bounds JSON requests. Uploads and downloads are bounded by ctx only.
	Timeout   time.Duration
	Tokens    TokenSource
	Logger    *slog.Logger
	RequestID func() string
}

// Client is the gateway to the photo backend and the face search service.
type Client struct {
	baseURL     string
	faceBaseURL string
	http        *http.Client
	timeout     time.Duration
	tokens      TokenSource
	logger      *slog.Logger
	requestID   func() string
}

// New constructs a Client. Missing options fall back to usable defaults.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = TokenFunc(func(context.Context) string { return "" })
	}
	requestID := opts.RequestID
	if requestID == nil {
		requestID = uuid.NewString
	}
	face := opts.FaceBaseURL
	if face != "" && !strings.HasSuffix(face, "/") {
		face += "/"
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		faceBaseURL: face,
		http:        httpClient,
		timeout:     opts.Timeout,
		tokens:      tokens,
		logger:      logging.Default(opts.Logger),
		requestID:   requestID,
	}
}

type authMode int

const (
	authSession authMode = iota
	authNone
)

type request struct {
	method      string
	url         string
	query       url.Values
	jsonBody    any
	body        io.Reader
	contentType string
	auth        authMode
	fallback    string
	operation   string
	streaming   bool
}

// do sends req and decodes a JSON success body into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	if !req.streaming && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return &Error{Status: resp.StatusCode, Message: req.fallbackMessage(), Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// send performs the round trip and converts any failure into *Error. On
// success the caller owns the response body.
func (c *Client) send(ctx context.Context, req request) (*http.Response, error) {
	target := req.url
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	body := req.body
	contentType := req.contentType
	if req.jsonBody != nil {
		payload, err := json.Marshal(req.jsonBody)
		if err != nil {
			return nil, &Error{Message: req.fallbackMessage(), Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		if closer, ok := body.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, &Error{Message: req.fallbackMessage(), Err: err}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	requestID := c.requestID()
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.auth == authSession {
		if token := c.tokens.Token(ctx); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	logger := logging.Component(ctx, c.logger, "Gateway", req.operation,
		"method", req.method,
		"url", req.url,
		"request_id", requestID,
	)

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		logger.Warn("request failed", "error", err)
		if ctx.Err() != nil {
			return nil, &Error{Message: req.fallbackMessage(), Err: ctx.Err()}
		}
		return nil, networkError(err)
	}

	logger.Debug("request completed", "status", resp.StatusCode, "duration", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		apiErr := decodeError(resp.StatusCode, payload, req.fallbackMessage())
		logger.Debug("request rejected", "status", resp.StatusCode, "message", apiErr.Message)
		return nil, apiErr
	}
	return resp, nil
}

func (r request) fallbackMessage() string {
	if r.fallback != "" {
		return r.fallback
	}
	return DefaultErrorMessage
}

func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.baseURL + "/api/" + strings.Join(escaped, "/")
}
