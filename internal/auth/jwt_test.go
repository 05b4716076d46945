package auth_test

import (
	"os"
	"testing"

	"github.com/codenest-dev/codenest/internal/auth"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	if err := auth.InitJWTSecret(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestGenerateAndVerifyTokenPair(t *testing.T) {
	access, refresh, err := auth.GenerateTokenPair(42, "student@rdu.edu.tr")
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}

	claims, err := auth.VerifyToken(access, auth.TokenTypeAccess)
	if err != nil {
		t.Fatalf("VerifyToken(access) failed: %v", err)
	}

	if userID, _ := claims["user_id"].(float64); uint(userID) != 42 {
		t.Errorf("Expected user_id 42, got %v", claims["user_id"])
	}

	if _, err := auth.VerifyToken(refresh, auth.TokenTypeRefresh); err != nil {
		t.Fatalf("VerifyToken(refresh) failed: %v", err)
	}
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	_, refresh, err := auth.GenerateTokenPair(1, "student@rdu.edu.tr")
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}

	if _, err := auth.VerifyToken(refresh, auth.TokenTypeAccess); err == nil {
		t.Error("Expected refresh token to be rejected as an access token")
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	if _, err := auth.VerifyToken("not-a-token", auth.TokenTypeAccess); err == nil {
		t.Error("Expected error for malformed token")
	}
}
