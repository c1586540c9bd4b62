package admin

import (
	"errors"
	"testing"
	"time"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashToken("s3cret")
	if err != nil {
		t.Fatalf("HashToken: %v", err)
	}
	if !VerifyAdminToken(hash, "s3cret") {
		t.Errorf("correct token rejected")
	}
	if VerifyAdminToken(hash, "wrong") {
		t.Errorf("wrong token accepted")
	}
	if VerifyAdminToken("", "s3cret") {
		t.Errorf("empty hash accepted a token")
	}
	if _, err := HashToken(""); err == nil {
		t.Errorf("empty token hashed")
	}
}

func TestIssueAndParse(t *testing.T) {
	now := time.Now()
	raw, err := IssueToken("key", "uploader", time.Hour, now)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	claims, err := ParseToken("key", raw)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "uploader" {
		t.Errorf("subject = %q", claims.Subject)
	}
}

func TestParseRejects(t *testing.T) {
	now := time.Now()
	good, _ := IssueToken("key", "uploader", time.Hour, now)
	expired, _ := IssueToken("key", "uploader", time.Minute, now.Add(-time.Hour))
	anonymous, _ := IssueToken("key", "", time.Hour, now)

	tests := []struct {
		name   string
		secret string
		raw    string
	}{
		{"wrong secret", "other", good},
		{"expired", "key", expired},
		{"no subject", "key", anonymous},
		{"garbage", "key", "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(tt.secret, tt.raw); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ParseToken = %v, want ErrInvalidToken", err)
			}
		})
	}
}
