package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	id := NewSessionID()
	tok, err := NewSessionToken("s3cret", id, 7, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ParseSessionToken("s3cret", tok.Token)
	if err != nil || got != id {
		t.Fatalf("got %q %v", got, err)
	}
	if _, err := ParseSessionToken("other", tok.Token); err != ErrInvalidToken {
		t.Fatalf("wrong secret accepted: %v", err)
	}
}

func TestSessionTokenRejectsExpiredAndUnsigned(t *testing.T) {
	tok, _ := NewSessionToken("s3cret", "abc", 1, -time.Minute)
	if _, err := ParseSessionToken("s3cret", tok.Token); err != ErrInvalidToken {
		t.Fatalf("expired token accepted: %v", err)
	}
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "abc", "exp": time.Now().Add(time.Hour).Unix()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := ParseSessionToken("s3cret", none); err != ErrInvalidToken {
		t.Fatalf("unsigned token accepted: %v", err)
	}
}

func TestHashSessionIDStable(t *testing.T) {
	if HashSessionID("a") != HashSessionID("a") || HashSessionID("a") == HashSessionID("b") {
		t.Fatal("hash not deterministic")
	}
	if len(HashSessionID("a")) != 64 {
		t.Fatal("expected hex sha256")
	}
}
