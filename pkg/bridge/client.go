package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client is the popup-side counterpart of the server: it issues one-shot
// requests with the sender identity attached.
type Client struct {
	baseURL  string
	identity string
	http     *http.Client
}

// NewClient creates a client for a bridge at baseURL (e.g.
// "http://127.0.0.1:7343") authenticating as identity.
func NewClient(baseURL, identity string) *Client {
	return &Client{
		baseURL:  baseURL,
		identity: identity,
		http:     &http.Client{Timeout: 5 * time.Second},
	}
}

// BaseURL returns the bridge endpoint this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// State queries the mirrored enabled flag.
func (c *Client) State() (bool, error) {
	resp, err := c.Send(Request{Action: ActionGetState})
	if err != nil {
		return false, err
	}
	if resp.FullMapHeight == nil {
		if resp.Error != "" {
			return false, fmt.Errorf("bridge rejected request: %s", resp.Error)
		}
		return false, fmt.Errorf("bridge returned no state")
	}
	return *resp.FullMapHeight, nil
}

// Toggle requests the overlay be enabled or disabled.
func (c *Client) Toggle(enabled bool) error {
	resp, err := c.Send(Request{Action: ActionToggle, Enabled: enabled})
	if err != nil {
		return err
	}
	if resp.Success == nil || !*resp.Success {
		if resp.Error != "" {
			return fmt.Errorf("toggle failed: %s", resp.Error)
		}
		return fmt.Errorf("toggle failed")
	}
	return nil
}

// Send posts one request to the bridge and decodes the reply.
func (c *Client) Send(req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+"/message", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(SenderHeader, c.identity)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("bridge unreachable: %w", err)
	}
	defer httpResp.Body.Close()

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp, nil
}
