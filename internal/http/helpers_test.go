package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"shopcart/internal/cart"
	"shopcart/internal/config"
	"shopcart/internal/http/handlers"
	applog "shopcart/internal/log"
	"shopcart/internal/remote"
	"shopcart/internal/repos"
	"shopcart/internal/services"
)

type cartApp struct {
	app  *fiber.App
	fake *remote.Fake
	kv   *repos.KVRepo
}

func newCartApp(t *testing.T, opts handlers.AppOptions) *cartApp {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:", RemoteTimeout: time.Second}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	kv := repos.NewKVRepo(db)

	fake := remote.NewFake(remote.DemoCatalog()...)
	reg := services.NewRegistry(context.Background(), fake, kv, services.RegistryOptions{
		Timeout: cfg.RemoteTimeout,
	})
	t.Cleanup(reg.Close)

	if opts.RateLimit == 0 {
		opts.RateLimit = 1000
	}
	deps := handlers.NewDeps(cfg, reg, kv)
	return &cartApp{app: handlers.NewApp(deps, opts), fake: fake, kv: kv}
}

type cartBody struct {
	cart.State
	Queued         int      `json:"queuedActions"`
	CachedProducts []string `json:"cachedProducts"`
	Error          string   `json:"error"`
}

func (a *cartApp) do(t *testing.T, method, path, body string) (int, cartBody) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out cartBody
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, out
}

type logEntry struct {
	Action   string                 `json:"action"`
	Level    string                 `json:"level"`
	Category string                 `json:"category"`
	Err      string                 `json:"err"`
	Fields   map[string]interface{} `json:"fields"`
}

type lockedBuf struct {
	b  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	applog.SetOutput(&lockedBuf{b: &buf, mu: &mu})
	defer applog.SetOutput(os.Stdout)

	fn()

	mu.Lock()
	defer mu.Unlock()
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

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

