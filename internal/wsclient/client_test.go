package wsclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// echoServer replies with the decoded payload length and the auth header.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var in struct {
				Data string `json:"data"`
			}
			_ = json.Unmarshal(msg, &in)
			raw, _ := base64.StdEncoding.DecodeString(in.Data)
			reply := string(raw) + "|" + auth
			if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestSendFiles(t *testing.T) {
	srv := echoServer(t)
	c, err := Dial(context.Background(), wsURL(srv), Options{Token: "tok", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	dir := t.TempDir()
	for i, body := range []string{"first file", "second"} {
		path := filepath.Join(dir, "f"+string(rune('0'+i)))
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		reply, err := c.SendFile(path)
		if err != nil {
			t.Fatalf("SendFile() error = %v", err)
		}
		if want := body + "|Bearer tok"; reply != want {
			t.Fatalf("reply = %q, want %q", reply, want)
		}
	}
}

func TestDialRejectsHTTPScheme(t *testing.T) {
	if _, err := Dial(context.Background(), "http://localhost:8080/ws", Options{}); err == nil {
		t.Fatal("Dial() error = nil, want scheme error")
	}
}

func TestSendFileMissing(t *testing.T) {
	srv := echoServer(t)
	c, err := Dial(context.Background(), wsURL(srv), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if _, err := c.SendFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("SendFile() error = nil, want error")
	}
}
