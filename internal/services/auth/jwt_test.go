package auth

import (
	"testing"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", nil)

	// Access tokens are self-contained; only refresh tokens touch redis.
	tokenString, err := svc.GenerateAccessToken(42, "alice", "admin")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	claims, err := svc.ParseAccessToken(tokenString)
	if err != nil {
		t.Fatalf("Expected token to parse, got %v", err)
	}

	if claims["user_id"] != "42" {
		t.Errorf("Expected user_id 42, got %v", claims["user_id"])
	}
	if claims["username"] != "alice" || claims["role"] != "admin" {
		t.Errorf("Unexpected claims: %v", claims)
	}
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	svc := NewJWTService("test-secret", nil)
	tokenString, err := svc.GenerateAccessToken(1, "bob", "user")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	other := NewJWTService("different-secret", nil)
	if _, err := other.ParseAccessToken(tokenString); err == nil {
		t.Fatal("Expected parse to fail with a different secret")
	}
}

func TestParseAccessToken_Garbage(t *testing.T) {
	svc := NewJWTService("test-secret", nil)
	if _, err := svc.ParseAccessToken("not-a-token"); err == nil {
		t.Fatal("Expected parse to fail for malformed input")
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("Password stored in plain text")
	}
	if !CheckPassword(hash, "hunter2") {
		t.Error("Correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("Wrong password accepted")
	}
}
