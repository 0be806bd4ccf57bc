package simplybook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/clipline/barbershop-backend/pkg/errors"
)

// Client is a JSON-RPC 2.0 wire client for the SimplyBook.me user API.
// A token is acquired lazily on first use and cached for the process
// lifetime; it is refreshed only through InvalidateToken.
type Client struct {
	companyLogin string
	apiKey       string
	baseURL      string
	httpClient   *http.Client

	mu    sync.Mutex
	token string

	requestID atomic.Int64
}

// NewClient creates a new SimplyBook wire client
func NewClient(companyLogin, apiKey, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		companyLogin: companyLogin,
		apiKey:       apiKey,
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int64         `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
	ID      int64           `json:"id"`
}

// Call invokes a remote method and decodes its result into result (which may
// be nil when the caller ignores the payload). A token is ensured first.
func (c *Client) Call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	headers := map[string]string{
		"X-Company-Login": c.companyLogin,
		"X-Token":         token,
	}

	raw, err := c.invoke(ctx, c.baseURL, method, params, headers)
	if err != nil {
		return err
	}

	if result != nil {
		if err := json.Unmarshal(raw, result); err != nil {
			return apperrors.NewExternalError(fmt.Sprintf("failed to decode %s result", method), err)
		}
	}
	return nil
}

// InvalidateToken discards the cached token so the next call re-authenticates.
func (c *Client) InvalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// ensureToken returns the cached token, acquiring one if absent.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		return c.token, nil
	}

	raw, err := c.invoke(ctx, c.baseURL+"/login", "getToken",
		[]interface{}{c.companyLogin, c.apiKey}, nil)
	if err != nil {
		return "", err
	}

	var token string
	if err := json.Unmarshal(raw, &token); err != nil {
		return "", apperrors.NewExternalError("failed to decode auth token", err)
	}
	if token == "" {
		return "", apperrors.NewExternalError("external system returned an empty auth token", nil)
	}

	c.token = token
	return c.token, nil
}

func (c *Client) invoke(ctx context.Context, url, method string, params []interface{}, headers map[string]string) (json.RawMessage, error) {
	if params == nil {
		params = []interface{}{}
	}
	payload := rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.requestID.Add(1),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode rpc request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build rpc request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError(fmt.Sprintf("rpc call %s failed", method), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewExternalError(
			fmt.Sprintf("rpc call %s returned status %d", method, resp.StatusCode), nil)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, apperrors.NewExternalError(fmt.Sprintf("failed to decode %s response", method), err)
	}

	if rpcResp.Error != nil {
		return nil, apperrors.NewExternalError(
			fmt.Sprintf("remote error on %s: %s (code %d)", method, rpcResp.Error.Message, rpcResp.Error.Code), nil)
	}

	return rpcResp.Result, nil
}
