package imagestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/Mr-fuaaaadh/hostelmate/internal/adapters/observability"
)

// Client talks to the external image-storage service: it takes raw bytes
// and hands back a public URL, and deletes by URL. Calls are rate limited
// so a bulk provider write cannot saturate the collaborator.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

var (
	ErrNotFound     = errors.New("imagestore: not found")
	ErrUnauthorized = errors.New("imagestore: unauthorized")
)

func New(base, key string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: 30 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// Store uploads the bytes and returns the service-assigned URL.
func (c *Client) Store(ctx context.Context, data []byte) (string, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return "", err
	}
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/objects", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	c.auth(req)

	res, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("imagestore", "store", 0, time.Since(start))
		return "", err
	}
	defer res.Body.Close()
	observability.ObserveExternal("imagestore", "store", res.StatusCode, time.Since(start))

	if err := statusErr(res.StatusCode); err != nil {
		return "", err
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode store response: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("store response missing url")
	}
	return out.URL, nil
}

// Delete removes a stored object by its URL. Deleting an already-gone
// object is not an error.
func (c *Client) Delete(ctx context.Context, url string) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	c.auth(req)

	res, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("imagestore", "delete", 0, time.Since(start))
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, res.Body)
		res.Body.Close()
	}()
	observability.ObserveExternal("imagestore", "delete", res.StatusCode, time.Since(start))

	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return statusErr(res.StatusCode)
}

func (c *Client) auth(req *http.Request) {
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}
}

func statusErr(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrUnauthorized
	default:
		return fmt.Errorf("imagestore: unexpected status %d", code)
	}
}
