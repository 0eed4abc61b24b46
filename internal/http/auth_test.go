package handlers_test

import (
	"net/http"
	"testing"

	"bookmarket/internal/repos"
)

func TestRegisterAndLogin(t *testing.T) {
	h := newHarness(t)

	status, body := h.call(t, "POST", "/api/register", "", map[string]any{
		"username":     "reader",
		"password":     "longenough",
		"email":        "reader@example.com",
		"phone_number": "09121234567",
		"role":         "admin",
	})
	if status != http.StatusCreated {
		t.Fatalf("register: %d %s", status, body)
	}
	if got := decode[map[string]any](t, body)["role"]; got != "buyer" {
		t.Fatalf("role taken from request: %v", got)
	}

	status, body = h.call(t, "POST", "/api/token", "", map[string]any{"username": "reader", "password": "wrong-pass"})
	if status != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", status)
	}

	status, body = h.call(t, "POST", "/api/token", "", map[string]any{"username": "reader", "password": "longenough"})
	if status != http.StatusOK {
		t.Fatalf("login: %d %s", status, body)
	}
	tok, _ := decode[map[string]any](t, body)["access"].(string)
	if tok == "" {
		t.Fatal("no access token")
	}

	status, body = h.call(t, "GET", "/api/profile", tok, nil)
	if status != http.StatusOK {
		t.Fatalf("profile: %d %s", status, body)
	}
	if decode[map[string]any](t, body)["username"] != "reader" {
		t.Fatalf("wrong profile: %s", body)
	}
}

func TestProfileNeedsValidToken(t *testing.T) {
	h := newHarness(t)

	if status, _ := h.call(t, "GET", "/api/profile", "", nil); status != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", status)
	}
	if status, _ := h.call(t, "GET", "/api/profile", "not-a-token", nil); status != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", status)
	}
}

func TestProfileUpdateKeepsRole(t *testing.T) {
	h := newHarness(t)
	tok := h.token(t, "buyer")

	status, body := h.call(t, "PUT", "/api/profile", tok, map[string]any{"first_name": "Bo", "role": "admin"})
	if status != http.StatusOK {
		t.Fatalf("update: %d %s", status, body)
	}
	got := decode[map[string]any](t, body)
	if got["first_name"] != "Bo" || got["role"] != "buyer" {
		t.Fatalf("unexpected profile: %s", body)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	h := newHarness(t)

	status, body := h.call(t, "POST", "/api/password-reset/request", "", map[string]any{"username": "buyer", "contact": "09000000003"})
	if status != http.StatusOK {
		t.Fatalf("request: %d %s", status, body)
	}
	code, _ := decode[map[string]any](t, body)["code_for_testing"].(string)
	if len(code) != 4 {
		t.Fatalf("code missing: %s", body)
	}

	status, _ = h.call(t, "POST", "/api/password-reset/confirm", "", map[string]any{"contact": "09000000003", "code": "0000", "new_password": "fresh-password"})
	if status != http.StatusBadRequest {
		t.Fatalf("wrong code: expected 400, got %d", status)
	}

	status, body = h.call(t, "POST", "/api/password-reset/confirm", "", map[string]any{"contact": "09000000003", "code": code, "new_password": "fresh-password"})
	if status != http.StatusOK {
		t.Fatalf("confirm: %d %s", status, body)
	}

	if status, _ := h.call(t, "POST", "/api/token", "", map[string]any{"username": "buyer", "password": repos.DemoPassword}); status != http.StatusUnauthorized {
		t.Fatalf("old password still works: %d", status)
	}
	if status, _ := h.call(t, "POST", "/api/token", "", map[string]any{"username": "buyer", "password": "fresh-password"}); status != http.StatusOK {
		t.Fatalf("new password rejected: %d", status)
	}
}
