// Package wsclient sends files to the upload socket.
package wsclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one open upload socket.
type Client struct {
	conn    *websocket.Conn
	timeout time.Duration
}

// Options configures Dial.
type Options struct {
	// Token is sent as a Bearer header when non-empty.
	Token string
	// Timeout bounds each send/reply exchange; zero means no deadline.
	Timeout time.Duration
}

// Dial opens a socket to rawURL (ws:// or wss://).
func Dial(ctx context.Context, rawURL string, opts Options) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("unsupported scheme %q, want ws or wss", u.Scheme)
	}

	header := http.Header{}
	if opts.Token != "" {
		header.Set("Authorization", "Bearer "+opts.Token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", u.Redacted(), err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", u.Redacted(), err)
	}
	return &Client{conn: conn, timeout: opts.Timeout}, nil
}

// Send uploads data and returns the server's reply text.
func (c *Client) Send(data []byte) (string, error) {
	frame, err := json.Marshal(map[string]string{"data": base64.StdEncoding.EncodeToString(data)})
	if err != nil {
		return "", fmt.Errorf("encode frame: %w", err)
	}

	if c.timeout > 0 {
		deadline := time.Now().Add(c.timeout)
		_ = c.conn.SetWriteDeadline(deadline)
		_ = c.conn.SetReadDeadline(deadline)
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return "", fmt.Errorf("send frame: %w", err)
	}
	_, reply, err := c.conn.ReadMessage()
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	return string(reply), nil
}

// SendFile reads path and sends its contents.
func (c *Client) SendFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", path, err)
	}
	return c.Send(data)
}

// Close sends a normal close frame and closes the socket.
func (c *Client) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}
