package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	iss := NewIssuer("s3cret")

	tok, err := iss.Issue("recorder-7", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	sub, err := iss.Verify(tok)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if sub != "recorder-7" {
		t.Fatalf("subject = %q, want recorder-7", sub)
	}
}

func TestVerifyRejects(t *testing.T) {
	iss := NewIssuer("s3cret")
	other, err := NewIssuer("different").Issue("x", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	expiring := NewIssuer("s3cret")
	expiring.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiring.Issue("x", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	for name, raw := range map[string]string{
		"garbage":      "not-a-token",
		"empty":        "",
		"wrong secret": other,
		"expired":      expired,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := iss.Verify(raw); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestIssueRequiresSubject(t *testing.T) {
	if _, err := NewIssuer("k").Issue("", time.Minute); err == nil {
		t.Fatal("Issue(\"\") error = nil, want error")
	}
}
