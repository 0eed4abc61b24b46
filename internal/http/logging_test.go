package handlers_test

import (
	"net/http"
	"testing"

	"bookmarket/internal/repos"
)

func TestLoginIsLogged(t *testing.T) {
	h := newHarness(t)

	entries := captureLogs(t, func() {
		h.call(t, "POST", "/api/token", "", map[string]any{"username": "buyer", "password": "nope-nope"})
		h.call(t, "POST", "/api/token", "", map[string]any{"username": "buyer", "password": repos.DemoPassword})
	})

	fail, ok := find(entries, "auth.login.fail")
	if !ok || fail.Level != "warn" {
		t.Fatalf("failed login not logged as security event: %+v", entries)
	}
	if _, leaked := fail.Fields["password"]; leaked {
		t.Fatal("password written to the log")
	}
	if e, ok := find(entries, "auth.login.success"); !ok || e.Level != "audit" {
		t.Fatalf("successful login not audited: %+v", entries)
	}
}

func TestApprovalIsAudited(t *testing.T) {
	h := newHarness(t)
	id := h.bookID(t, "Foundation")
	admin := h.token(t, "admin")

	var status int
	entries := captureLogs(t, func() {
		status, _ = h.call(t, "POST", "/api/books/"+id+"/approve", admin, nil)
	})
	if status != http.StatusOK {
		t.Fatalf("approve: %d", status)
	}
	e, ok := find(entries, "admin.books.approve")
	if !ok || e.Level != "audit" {
		t.Fatalf("approval not audited: %+v", entries)
	}
	if e.UserID == "" || e.Fields["book_id"] != id {
		t.Fatalf("audit entry missing actor or book: %+v", e)
	}
}

func TestDeniedAccessIsLogged(t *testing.T) {
	h := newHarness(t)
	buyer := h.token(t, "buyer")

	entries := captureLogs(t, func() {
		h.call(t, "GET", "/api/users", buyer, nil)
		h.call(t, "GET", "/api/orders", "", nil)
	})
	if _, ok := find(entries, "access.denied.admin"); !ok {
		t.Fatalf("admin denial not logged: %+v", entries)
	}
	if _, ok := find(entries, "access.denied.anonymous"); !ok {
		t.Fatalf("anonymous denial not logged: %+v", entries)
	}
}

func TestMediaTraversalIsBlocked(t *testing.T) {
	h := newHarness(t)

	var status int
	entries := captureLogs(t, func() {
		status, _ = h.call(t, "GET", "/media/..%2f..%2fetc%2fpasswd", "", nil)
	})
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if _, ok := find(entries, "media.traversal.block"); !ok {
		t.Fatalf("traversal attempt not logged: %+v", entries)
	}
}
