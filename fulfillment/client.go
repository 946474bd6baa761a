package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"
)

// Session carries the caller's bearer token into fulfillment calls. The
// surrounding app wires OnUnauthenticated to its own navigation instead of a
// global interceptor mutating shared state.
type Session struct {
	Token             string
	OnUnauthenticated func()
}

// Client talks to the remote fulfillment API, which owns all authoritative
// order/ticket/preorder/payment state.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func NewClientFromEnv() *Client {
	base := os.Getenv("FULFILLMENT_API_URL")
	if base == "" {
		base = "http://localhost:8001/api/v1"
	}
	return NewClient(base)
}

// APIError is a non-2xx answer from the fulfillment API.
type APIError struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	RequestId string `json:"requestId,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fulfillment: %d %s", e.Status, e.Message)
}

func apiStatus(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

func IsNotFound(err error) bool     { return apiStatus(err) == http.StatusNotFound }
func IsConflict(err error) bool     { return apiStatus(err) == http.StatusConflict }
func IsUnauthorized(err error) bool { return apiStatus(err) == http.StatusUnauthorized }

// envelope matches the API's response wrapper.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) do(ctx context.Context, sess *Session, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, &payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())
	if sess != nil && sess.Token != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) && res.StatusCode < 300 {
		return err
	}

	if res.StatusCode == http.StatusUnauthorized {
		if sess != nil && sess.OnUnauthenticated != nil {
			sess.OnUnauthenticated()
		}
		return &APIError{Status: res.StatusCode, Message: env.Message}
	}
	if res.StatusCode >= 300 {
		msg := env.Message
		if msg == "" {
			msg = res.Status
		}
		return &APIError{Status: res.StatusCode, Message: msg, RequestId: req.Header.Get("X-Request-Id")}
	}

	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}
