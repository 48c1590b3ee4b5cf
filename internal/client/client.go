package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// TokenSource returns the bearer token to attach to a request. An error means
// "no credential" and the request is sent without Authorization.
type TokenSource func(ctx context.Context) (string, error)

// Client 物业后端 REST 客户端
// One resty client is shared by the typed sub-clients.
type Client struct {
	http   *resty.Client
	tokens TokenSource
	logger *zap.Logger

	Rooms        *RoomsClient
	RoomTypes    *RoomTypesClient
	Locations    *LocationsClient
	UtilityTypes *UtilityTypesClient
}

type Option func(*Client)

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithHTTPClient swaps the underlying resty client (tests point it at httptest servers).
func WithHTTPClient(rc *resty.Client) Option {
	return func(c *Client) { c.http = rc }
}

// New 创建客户端
// No retries are configured: a failed call is surfaced and the user re-triggers it.
func New(baseURL string, timeout time.Duration, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if c.tokens == nil {
			return nil
		}
		token, err := c.tokens(r.Context())
		if err != nil || token == "" {
			return nil
		}
		r.SetAuthToken(token)
		return nil
	})

	c.Rooms = &RoomsClient{c: c}
	c.RoomTypes = &RoomTypesClient{c: c}
	c.Locations = &LocationsClient{c: c}
	c.UtilityTypes = &UtilityTypesClient{c: c}
	return c
}

func (c *Client) request(ctx context.Context) *resty.Request {
	if ctx == nil {
		ctx = context.Background()
	}
	return c.http.R().SetContext(ctx)
}

// execute runs the request and turns transport failures and non-2xx statuses into errors.
func (c *Client) execute(req *resty.Request, method, path string) (*resty.Response, error) {
	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Error("Room API call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		apiErr := newAPIError(resp)
		c.logger.Warn("Room API returned error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("message", apiErr.Message),
		)
		return resp, apiErr
	}
	c.logger.Debug("Room API call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", resp.StatusCode()),
	)
	return resp, nil
}

// sendPayload posts a multipart payload with method to path.
func (c *Client) sendPayload(ctx context.Context, method, path string, pathParams map[string]string, p *Payload) (*resty.Response, error) {
	body, contentType, err := p.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode multipart payload: %w", err)
	}
	req := c.request(ctx).
		SetPathParams(pathParams).
		SetHeader("Content-Type", contentType).
		SetBody(body)
	return c.execute(req, method, path)
}

// decodeOne decodes a single object body. An empty body reports false.
func decodeOne(body []byte, out any) (bool, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return true, nil
}
