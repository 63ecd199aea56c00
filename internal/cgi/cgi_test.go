package cgi

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/antestudio/http-cgi-server/internal/httpx"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHandleCapturesScriptStdoutAsRawResponse(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "hello.sh", "#!/bin/sh\nprintf 'HTTP/1.1 200 OK\\r\\n\\r\\nhello from cgi'\n")

	req := &httpx.Request{Method: httpx.MethodGET, URI: "/hello.sh", Version: "HTTP/1.0"}
	cfg := Config{DocumentRoot: dir, ServerPort: 8080, ServerName: "http-cgi-server/1.0"}

	resp, err := Handle(context.Background(), cfg, req, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.IsRaw() {
		t.Fatal("expected a raw-mode response")
	}
	if got := string(resp.BodyBytes()); got != "HTTP/1.1 200 OK\r\n\r\nhello from cgi" {
		t.Fatalf("unexpected captured stdout: %q", got)
	}
}

func TestHandleMissingScript404(t *testing.T) {
	dir := t.TempDir()
	req := &httpx.Request{Method: httpx.MethodGET, URI: "/nope.sh", Version: "HTTP/1.0"}
	cfg := Config{DocumentRoot: dir}

	resp, err := Handle(context.Background(), cfg, req, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != httpx.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Status)
	}
}

func TestHandlePassesEnvironmentToChildOnly(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "env.sh", "#!/bin/sh\nprintf 'HTTP/1.1 200 OK\\r\\n\\r\\n%s' \"$SCRIPT_NAME\"\n")

	req := &httpx.Request{Method: httpx.MethodGET, URI: "/env.sh", Version: "HTTP/1.0"}
	cfg := Config{DocumentRoot: dir, ServerPort: 8080}

	resp, err := Handle(context.Background(), cfg, req, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := "HTTP/1.1 200 OK\r\n\r\n/env.sh"
	if got := string(resp.BodyBytes()); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	// The parent process's own environment must be untouched.
	if os.Getenv("SCRIPT_NAME") != "" {
		t.Fatal("CGI env leaked into the parent process")
	}
}

func TestHandleRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	req := &httpx.Request{Method: httpx.MethodGET, URI: "/../etc/passwd", Version: "HTTP/1.0"}
	cfg := Config{DocumentRoot: dir}

	resp, err := Handle(context.Background(), cfg, req, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != httpx.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.Status)
	}
}

func TestHasPrefix(t *testing.T) {
	if !HasPrefix("/cgi-bin/foo.sh", "/cgi-bin") {
		t.Fatal("expected /cgi-bin/foo.sh to match prefix /cgi-bin")
	}
	if HasPrefix("/index.html", "/cgi-bin") {
		t.Fatal("did not expect /index.html to match prefix /cgi-bin")
	}
}
