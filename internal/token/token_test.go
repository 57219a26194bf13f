package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIssueDecodeRoundTrip(t *testing.T) {
	codec := NewCodec("test-secret", 15, 7)
	userID := uuid.New()
	now := time.Now()

	raw, exp, err := codec.Issue(userID, "alice@example.com", TypeAccess, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if want := now.UTC().Add(15 * time.Minute); !exp.Equal(want) {
		t.Errorf("exp = %v, want %v", exp, want)
	}

	claims, err := codec.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user id = %v, want %v", claims.UserID, userID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("email = %q", claims.Email)
	}
	if claims.Type != TypeAccess {
		t.Errorf("type = %q, want access", claims.Type)
	}
}

func TestRefreshTokenLifetime(t *testing.T) {
	codec := NewCodec("test-secret", 15, 7)
	now := time.Now()

	raw, exp, err := codec.Issue(uuid.New(), "a@b.c", TypeRefresh, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if want := now.UTC().Add(7 * 24 * time.Hour); !exp.Equal(want) {
		t.Errorf("exp = %v, want %v", exp, want)
	}
	claims, err := codec.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Type != TypeRefresh {
		t.Errorf("type = %q, want refresh", claims.Type)
	}
}

func TestDecodeExpired(t *testing.T) {
	codec := NewCodec("test-secret", 15, 7)

	// Issued far enough in the past that even the refresh lifetime is over.
	raw, _, err := codec.Issue(uuid.New(), "a@b.c", TypeAccess, time.Now().Add(-48*time.Hour))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := codec.Decode(raw); err != ErrExpired {
		t.Errorf("err = %v, want ErrExpired", err)
	}
}

func TestDecodeWrongSecret(t *testing.T) {
	issuer := NewCodec("secret-one", 15, 7)
	verifier := NewCodec("secret-two", 15, 7)

	raw, _, err := issuer.Issue(uuid.New(), "a@b.c", TypeAccess, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Decode(raw); err != ErrInvalidSignature {
		t.Errorf("err = %v, want ErrInvalidSignature", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	codec := NewCodec("test-secret", 15, 7)
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := codec.Decode(raw); err != ErrMalformed {
			t.Errorf("Decode(%q) = %v, want ErrMalformed", raw, err)
		}
	}
}
