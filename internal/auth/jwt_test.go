package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-at-least-32-chars-long-for-security"

func TestJWTManager_IssueAndValidate_Success(t *testing.T) {
	t.Parallel()
	manager := NewJWTManager(testSecret, "guildqueue-test", 15*time.Minute)

	token, err := manager.Issue("ops")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	subject, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if subject != "ops" {
		t.Errorf("expected subject ops, got %q", subject)
	}
}

func TestJWTManager_Issue_EmptySubject(t *testing.T) {
	t.Parallel()
	manager := NewJWTManager(testSecret, "guildqueue-test", time.Minute)

	if _, err := manager.Issue(""); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

func TestJWTManager_Validate_Expired(t *testing.T) {
	t.Parallel()
	manager := NewJWTManager(testSecret, "guildqueue-test", -time.Hour)

	token, err := manager.Issue("ops")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := manager.Validate(token); err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
}

func TestJWTManager_Validate_WrongSecret(t *testing.T) {
	t.Parallel()
	issuer := NewJWTManager(testSecret, "guildqueue-test", time.Minute)
	other := NewJWTManager("another-secret-at-least-32-chars-long!!", "guildqueue-test", time.Minute)

	token, err := issuer.Issue("ops")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := other.Validate(token); err == nil {
		t.Fatal("expected error for token signed with another secret")
	}
}

func TestJWTManager_Validate_WrongIssuer(t *testing.T) {
	t.Parallel()
	a := NewJWTManager(testSecret, "issuer-a", time.Minute)
	b := NewJWTManager(testSecret, "issuer-b", time.Minute)

	token, err := a.Issue("ops")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := b.Validate(token); err == nil {
		t.Fatal("expected error for wrong issuer")
	}
}

func TestJWTManager_Validate_WrongScope(t *testing.T) {
	t.Parallel()
	manager := NewJWTManager(testSecret, "guildqueue-test", time.Minute)

	claims := adminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ops",
			Issuer:    "guildqueue-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		Scope: "reader",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = manager.Validate(token)
	if err == nil || !strings.Contains(err.Error(), "scope") {
		t.Fatalf("expected scope error, got %v", err)
	}
}

func TestJWTManager_Validate_Garbage(t *testing.T) {
	t.Parallel()
	manager := NewJWTManager(testSecret, "guildqueue-test", time.Minute)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := manager.Validate(tok); err == nil {
			t.Errorf("Validate(%q) expected error", tok)
		}
	}
}
