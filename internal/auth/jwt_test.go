package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParseToken(t *testing.T) {
	InitJWT("unit-test-secret")

	token, err := GenerateToken(7, "alice", "admin", time.Now().Add(time.Hour), "cf_bridge")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UID != 7 || claims.Username != "alice" || claims.Role != "admin" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.Issuer != "cf_bridge" {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
}

func TestParseToken_Expired(t *testing.T) {
	InitJWT("unit-test-secret")

	token, err := GenerateToken(1, "bob", "viewer", time.Now().Add(-time.Minute), "cf_bridge")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	_, err = ParseToken(token)
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	InitJWT("secret-a")
	token, err := GenerateToken(1, "carol", "admin", time.Now().Add(time.Hour), "cf_bridge")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	InitJWT("secret-b")
	if _, err := ParseToken(token); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := ComparePassword(hash, "s3cret!"); err != nil {
		t.Fatalf("ComparePassword: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatal("wrong password must not match")
	}
}
