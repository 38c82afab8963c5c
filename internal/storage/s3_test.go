package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type recordedPut struct {
	method string
	path   string
	body   []byte
	ctype  string
}

func fakeS3(t *testing.T, status int) (*httptest.Server, *[]recordedPut) {
	t.Helper()
	var (
		mu   sync.Mutex
		puts []recordedPut
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		puts = append(puts, recordedPut{
			method: r.Method,
			path:   r.URL.Path,
			body:   body,
			ctype:  r.Header.Get("Content-Type"),
		})
		mu.Unlock()
		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
			return
		}
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &puts
}

func writeTemp(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payload")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestS3StorageUploadFile(t *testing.T) {
	srv, puts := fakeS3(t, http.StatusOK)
	store := NewS3Storage(S3Options{
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "secret",
		Region:    "us-east-1",
		Bucket:    "pooja-websocket-files",
		Endpoint:  srv.URL,
	})

	path := writeTemp(t, "RIFF....WAVEfmt ")
	if err := store.UploadFile(context.Background(), path, "parrot_sound.wav"); err != nil {
		t.Fatalf("UploadFile() error = %v", err)
	}

	if len(*puts) != 1 {
		t.Fatalf("requests = %d, want 1", len(*puts))
	}
	got := (*puts)[0]
	if got.method != http.MethodPut {
		t.Errorf("method = %s, want PUT", got.method)
	}
	if got.path != "/pooja-websocket-files/parrot_sound.wav" {
		t.Errorf("path = %s", got.path)
	}
	if !strings.Contains(string(got.body), "RIFF....WAVEfmt ") {
		t.Errorf("body = %q, want file contents", got.body)
	}
	if got.ctype == "" {
		t.Error("content type header missing")
	}
	if store.Bucket() != "pooja-websocket-files" {
		t.Errorf("Bucket() = %q", store.Bucket())
	}
}

func TestS3StorageUploadFileError(t *testing.T) {
	srv, _ := fakeS3(t, http.StatusForbidden)
	store := NewS3Storage(S3Options{
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "secret",
		Region:    "us-east-1",
		Bucket:    "b",
		Endpoint:  srv.URL,
	})

	err := store.UploadFile(context.Background(), writeTemp(t, "x"), "k.bin")
	if err == nil {
		t.Fatal("UploadFile() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "AccessDenied") {
		t.Errorf("error = %v, want AccessDenied detail", err)
	}
}

func TestS3StorageMissingFile(t *testing.T) {
	store := NewS3Storage(S3Options{Region: "us-east-1", Bucket: "b", Endpoint: "http://127.0.0.1:1"})
	if err := store.UploadFile(context.Background(), filepath.Join(t.TempDir(), "nope"), "k"); err == nil {
		t.Fatal("UploadFile() error = nil, want error for missing file")
	}
}

func TestContentType(t *testing.T) {
	if got := contentType("blob"); got != "application/octet-stream" {
		t.Errorf("contentType(blob) = %q", got)
	}
}
