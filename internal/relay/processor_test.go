package relay

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		want    string
		wantErr bool
	}{
		{name: "valid", frame: `{"data":"aGVsbG8="}`, want: "hello"},
		{name: "missing", frame: `{}`, want: ""},
		{name: "leading space", frame: "  {\"data\":\"aGk=\"}", want: "hi"},
		{name: "invalid", frame: `{"data":"***"}`, wantErr: true},
		{name: "null frame", frame: `null`, wantErr: true},
		{name: "empty frame", frame: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodePayload([]byte(tt.frame))
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodePayload() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && string(got) != tt.want {
				t.Fatalf("decodePayload() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProcessWriteFailureIsTerminalIOError(t *testing.T) {
	up := &fakeUploader{bucket: "b"}
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	proc := NewProcessor(up, missing, "k.bin", nil, nil)

	_, perr := proc.Process(context.Background(), "c1", []byte(`{"data":"aGk="}`))
	if perr == nil {
		t.Fatal("Process() error = nil, want IO error")
	}
	if perr.Kind != KindIO || !perr.Kind.Terminal() {
		t.Fatalf("kind = %v terminal=%v, want io/terminal", perr.Kind, perr.Kind.Terminal())
	}
	if !errors.Is(perr, os.ErrNotExist) {
		t.Fatalf("error = %v, want wrapped ErrNotExist", perr)
	}
	if len(up.recorded()) != 0 {
		t.Fatal("upload attempted after write failure")
	}
}

func TestProcessUploadErrorRemovesFile(t *testing.T) {
	dir := t.TempDir()
	up := &fakeUploader{bucket: "b", err: errors.New("boom")}
	proc := NewProcessor(up, dir, "k.bin", nil, nil)

	_, perr := proc.Process(context.Background(), "c1", []byte(`{"data":"aGk="}`))
	if perr == nil || perr.Kind != KindUpload || perr.Kind.Terminal() {
		t.Fatalf("Process() error = %v, want non-terminal upload error", perr)
	}
	if perr.Reply() != "S3 Upload Error: boom" {
		t.Fatalf("Reply() = %q", perr.Reply())
	}
	if _, err := os.Stat(up.recorded()[0].path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("local file still present: %v", err)
	}
}

func TestErrorKindString(t *testing.T) {
	for kind, want := range map[ErrorKind]string{
		KindDecode:   "decode",
		KindIO:       "io",
		KindUpload:   "upload",
		ErrorKind(0): "unknown",
	} {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", kind, got, want)
		}
	}
}
