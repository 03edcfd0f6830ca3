package player

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Tantawi65/VLCSub/internal/driver"
)

// VLC's HTTP interface defaults: empty username, fixed password
const (
	DefaultURL      = "http://localhost:8080/requests/status.json"
	DefaultPassword = "vlc123"
)

// Client samples the playback position from VLC's HTTP status endpoint.
// It holds no playback state; the driver calls Position once per tick
// with a short deadline and treats any failure as "unavailable".
type Client struct {
	url      string
	password string
	http     *http.Client
}

func NewClient(url, password string) *Client {
	if url == "" {
		url = DefaultURL
	}
	if password == "" {
		password = DefaultPassword
	}
	return &Client{
		url:      url,
		password: password,
		http:     &http.Client{},
	}
}

// the subset of VLC's status.json the client reads
type status struct {
	Time  float64 `json:"time"`
	State string  `json:"state"`
}

// Position fetches VLC's reported playback time. Every failure mode
// (transport error, timeout, bad status, bad body) wraps
// driver.ErrUnavailable so callers can treat them uniformly.
func (c *Client) Position(ctx context.Context) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("building status request: %w", err)
	}
	req.SetBasicAuth("", c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", driver.ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: unexpected status %d", driver.ErrUnavailable, resp.StatusCode)
	}

	var st status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return 0, fmt.Errorf("%w: decoding status: %v", driver.ErrUnavailable, err)
	}

	return time.Duration(st.Time * float64(time.Second)), nil
}
