package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/finsage/finsage/internal/artifacts"
	"github.com/finsage/finsage/internal/config"
)

type stubAsker struct {
	fn func(ctx context.Context, sessionID, userInput string) (string, error)
}

func (s *stubAsker) Respond(ctx context.Context, sessionID, userInput string) (string, error) {
	return s.fn(ctx, sessionID, userInput)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		GraphDir:     filepath.Join(dir, "graph"),
		StaticDir:    filepath.Join(dir, "static"),
		AgentTimeout: 5 * time.Second,
	}
}

func ask(t *testing.T, ts *httptest.Server, body string) (*http.Response, askResponse) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/ask", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST /ask: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	var out askResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp, out
}

// requestedFilename pulls the filename contract out of the injected
// instruction line.
func requestedFilename(t *testing.T, prompt string) string {
	t.Helper()
	const marker = "save the graph as '"
	i := strings.Index(prompt, marker)
	if i < 0 {
		t.Fatalf("prompt missing filename instruction: %q", prompt)
	}
	rest := prompt[i+len(marker):]
	j := strings.Index(rest, "'")
	if j < 0 {
		t.Fatalf("unterminated filename in prompt: %q", prompt)
	}
	return rest[:j]
}

func TestAskTextOnly(t *testing.T) {
	cfg := testConfig(t)
	srv := New(cfg, &stubAsker{fn: func(ctx context.Context, sessionID, userInput string) (string, error) {
		if !strings.Contains(userInput, "revenue of AAPL") {
			t.Fatalf("user question missing from prompt: %q", userInput)
		}
		return "391,035 million USD in 2024.", nil
	}})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, out := ask(t, ts, `{"user_input": "revenue of AAPL"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if out.Response != "391,035 million USD in 2024." {
		t.Fatalf("unexpected response: %q", out.Response)
	}
	if out.GraphURL != nil {
		t.Fatalf("expected null graph_url, got %q", *out.GraphURL)
	}
	if out.SessionID == "" {
		t.Fatalf("server must mint a session id when none is given")
	}
}

func TestAskWithGraphArtifact(t *testing.T) {
	cfg := testConfig(t)
	srv := New(cfg, &stubAsker{fn: func(ctx context.Context, sessionID, userInput string) (string, error) {
		name := requestedFilename(t, userInput)
		if err := os.MkdirAll(cfg.GraphDir, 0o755); err != nil {
			return "", err
		}
		path := filepath.Join(cfg.GraphDir, name)
		if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
			return "", err
		}
		artifacts.Record(ctx, path)
		return "Revenue trend plotted.", nil
	}})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, out := ask(t, ts, `{"user_input": "plot AAPL revenue 2015-2024"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if out.GraphURL == nil {
		t.Fatalf("expected graph_url for produced artifact")
	}
	if !strings.HasPrefix(*out.GraphURL, "graph/graph_") || !strings.HasSuffix(*out.GraphURL, ".png") {
		t.Fatalf("unexpected graph_url: %q", *out.GraphURL)
	}

	img, err := http.Get(ts.URL + "/" + *out.GraphURL)
	if err != nil {
		t.Fatalf("GET graph: %v", err)
	}
	defer img.Body.Close()
	if img.StatusCode != http.StatusOK {
		t.Fatalf("graph file not served: %d", img.StatusCode)
	}
}

func TestAskFallsBackToExpectedPath(t *testing.T) {
	cfg := testConfig(t)
	// Writes the requested file but never records it; the filesystem
	// check must still surface the URL.
	srv := New(cfg, &stubAsker{fn: func(ctx context.Context, sessionID, userInput string) (string, error) {
		name := requestedFilename(t, userInput)
		if err := os.MkdirAll(cfg.GraphDir, 0o755); err != nil {
			return "", err
		}
		return "done", os.WriteFile(filepath.Join(cfg.GraphDir, name), []byte("png"), 0o644)
	}})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, out := ask(t, ts, `{"user_input": "plot something"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if out.GraphURL == nil {
		t.Fatalf("expected graph_url via filesystem fallback")
	}
}

func TestAskKeepsProvidedSessionID(t *testing.T) {
	cfg := testConfig(t)
	var seen string
	srv := New(cfg, &stubAsker{fn: func(ctx context.Context, sessionID, userInput string) (string, error) {
		seen = sessionID
		return "ok", nil
	}})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, out := ask(t, ts, `{"user_input": "hi", "session_id": "sess-42"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if seen != "sess-42" || out.SessionID != "sess-42" {
		t.Fatalf("session id not preserved: asker saw %q, response has %q", seen, out.SessionID)
	}
}

func TestAskRejectsEmptyInput(t *testing.T) {
	cfg := testConfig(t)
	srv := New(cfg, &stubAsker{fn: func(ctx context.Context, sessionID, userInput string) (string, error) {
		t.Fatalf("asker must not run for empty input")
		return "", nil
	}})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for _, body := range []string{`{"user_input": ""}`, `{"user_input": "   "}`, `not json`} {
		resp, _ := ask(t, ts, body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestAskTimeout(t *testing.T) {
	cfg := testConfig(t)
	cfg.AgentTimeout = 20 * time.Millisecond
	srv := New(cfg, &stubAsker{fn: func(ctx context.Context, sessionID, userInput string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, _ := ask(t, ts, `{"user_input": "slow question"}`)
	if resp.StatusCode != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	cfg := testConfig(t)
	srv := New(cfg, &stubAsker{fn: func(ctx context.Context, sessionID, userInput string) (string, error) {
		return "ok", nil
	}})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/ask", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS /ask: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("preflight status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}
