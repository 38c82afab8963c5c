package main

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wsupload/service/internal/auth"
	"github.com/wsupload/service/internal/relay"
)

type nullUploader struct{}

func (nullUploader) UploadFile(context.Context, string, string) error { return nil }
func (nullUploader) Bucket() string                                   { return "test-bucket" }

func newTestRouter(t *testing.T, secret string) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	proc := relay.NewProcessor(nullUploader{}, t.TempDir(), "parrot_sound.wav", nil, relay.NewMetrics(reg))

	deps := routerDeps{
		relay:   relay.NewHandler(proc, nil),
		metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	if secret != "" {
		deps.verifier = auth.NewIssuer(secret)
	}

	srv := httptest.NewServer(newRouter(deps))
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestRouter(t, "")

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestHistoryNotMountedWithoutDatabase(t *testing.T) {
	srv := newTestRouter(t, "")

	resp, err := http.Get(srv.URL + "/api/v1/uploads")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSocketThroughMiddlewareStack(t *testing.T) {
	srv := newTestRouter(t, "")
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	frame := `{"data":"` + base64.StdEncoding.EncodeToString([]byte("chirp")) + `"}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, reply, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if want := "File parrot_sound.wav uploaded successfully to test-bucket!"; string(reply) != want {
		t.Fatalf("reply = %q, want %q", reply, want)
	}

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `wsupload_messages_total{result="uploaded"} 1`) {
		t.Fatalf("metrics missing uploaded counter:\n%s", body)
	}
}

func TestSocketRequiresToken(t *testing.T) {
	const secret = "router-secret"
	srv := newTestRouter(t, secret)
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	if err == nil {
		t.Fatal("Dial() without token succeeded, want 401")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("response = %v, want 401", resp)
	}

	tok, err := auth.NewIssuer(secret).Issue("tester", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(base+"?token="+tok, nil)
	if err != nil {
		t.Fatalf("Dial() with query token error = %v", err)
	}
	conn.Close()

	header := http.Header{"Authorization": []string{"Bearer " + tok}}
	conn, _, err = websocket.DefaultDialer.Dial(base, header)
	if err != nil {
		t.Fatalf("Dial() with bearer header error = %v", err)
	}
	conn.Close()
}
