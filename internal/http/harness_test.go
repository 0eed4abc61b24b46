package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"

	"bookmarket/internal/auth"
	"bookmarket/internal/config"
	"bookmarket/internal/http/handlers"
	"bookmarket/internal/lock"
	applog "bookmarket/internal/log"
	"bookmarket/internal/repos"
	"bookmarket/internal/storage"
)

// harness is a full API over an in-memory database seeded with the demo data.
type harness struct {
	app    *fiber.App
	db     *sqlx.DB
	tokens *auth.Tokens
	media  string
}

func newHarness(t *testing.T, tweak ...func(*handlers.Deps)) *harness {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := repos.SeedDemo(context.Background(), db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	media := t.TempDir()
	store, err := storage.NewLocalStore(media)
	if err != nil {
		t.Fatalf("media: %v", err)
	}
	tokens := auth.NewTokens("test-secret", time.Hour)

	deps := handlers.NewDeps(db, config.Config{ExposeResetCode: true}, tokens, lock.NewMemory(), store)
	deps.Limits = handlers.Limits{Login: 100, Reset: 100, Window: time.Minute}
	for _, fn := range tweak {
		fn(deps)
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler, BodyLimit: 1 << 20})
	app.Use(requestid.New())
	app.Get("/media/*", handlers.Media(media))
	deps.Routes(app)
	return &harness{app: app, db: db, tokens: tokens, media: media}
}

func (h *harness) token(t *testing.T, username string) string {
	t.Helper()
	u, err := repos.NewUserRepo(h.db).ByUsername(context.Background(), username)
	if err != nil {
		t.Fatalf("user %s: %v", username, err)
	}
	tok, _, err := h.tokens.Issue(u.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}

func (h *harness) call(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", string(data), err)
	}
	return v
}

// bookID finds a seeded book by title.
func (h *harness) bookID(t *testing.T, title string) string {
	t.Helper()
	var id string
	if err := h.db.Get(&id, `SELECT id FROM books WHERE title = ?`, title); err != nil {
		t.Fatalf("book %s: %v", title, err)
	}
	return id
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// captureLogs redirects the application logger while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	applog.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	defer applog.SetOutput()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func find(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
