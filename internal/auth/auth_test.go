package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "s3cret" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "s3cret") {
		t.Fatalf("CheckPassword rejected the right password")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("CheckPassword accepted the wrong password")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tok, err := MakeToken("jane@example.com", "secret", 30*time.Minute)
	if err != nil {
		t.Fatalf("MakeToken error: %v", err)
	}

	claims, err := ParseToken(tok, "secret")
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.Subject != "jane@example.com" {
		t.Fatalf("subject = %q, want jane@example.com", claims.Subject)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 29*time.Minute || ttl > 31*time.Minute {
		t.Fatalf("expiry in %v, want about 30m", ttl)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	tok, err := MakeToken("jane@example.com", "secret", time.Minute)
	if err != nil {
		t.Fatalf("MakeToken error: %v", err)
	}
	if _, err := ParseToken(tok, "other-secret"); err == nil {
		t.Fatalf("want error for a token signed with another secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	tok, err := MakeToken("jane@example.com", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("MakeToken error: %v", err)
	}
	if _, err := ParseToken(tok, "secret"); err == nil {
		t.Fatalf("want error for an expired token")
	}
}

func TestParseToken_RejectsUnsignedAlg(t *testing.T) {
	c := jwt.RegisteredClaims{
		Subject:   "jane@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}
	if _, err := ParseToken(tok, "secret"); err == nil {
		t.Fatalf("want error for alg=none token")
	}
}

func TestParseToken_RejectsEmptySubject(t *testing.T) {
	tok, err := MakeToken("", "secret", time.Minute)
	if err != nil {
		t.Fatalf("MakeToken error: %v", err)
	}
	if _, err := ParseToken(tok, "secret"); err == nil {
		t.Fatalf("want error for a token without a subject")
	}
}
