package static

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/antestudio/http-cgi-server/internal/httpx"
)

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestServeGETHTML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.html", "<h1>hi</h1>")

	req := &httpx.Request{Method: httpx.MethodGET, URI: "/index.html", Version: "HTTP/1.0"}
	resp, err := Serve(dir, req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != httpx.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Status)
	}
	if got := resp.Header.Get("Content-Type"); got != "text/html" {
		t.Fatalf("content-type = %q, want text/html", got)
	}
	if string(resp.BodyBytes()) != "<h1>hi</h1>" {
		t.Fatalf("body = %q", resp.BodyBytes())
	}
}

func TestServeHEADOmitsBody(t *testing.T) {
	dir := t.TempDir()
	contents := make([]byte, 42)
	if err := os.WriteFile(filepath.Join(dir, "image.jpg"), contents, 0o644); err != nil {
		t.Fatal(err)
	}

	req := &httpx.Request{Method: httpx.MethodHEAD, URI: "/image.jpg", Version: "HTTP/1.0"}
	resp, err := Serve(dir, req)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.BodyBytes()) != 0 {
		t.Fatalf("expected empty body for HEAD, got %d bytes", len(resp.BodyBytes()))
	}
	if got := resp.Header.Get("Content-Type"); got != "image/jpeg" {
		t.Fatalf("content-type = %q, want image/jpeg", got)
	}
	if got := resp.Header.Get("Content-Length"); got != "42" {
		t.Fatalf("content-length = %q, want 42 (the file's size, not the empty HEAD body)", got)
	}
}

func TestServeMissingFile404(t *testing.T) {
	dir := t.TempDir()
	req := &httpx.Request{Method: httpx.MethodGET, URI: "/nope", Version: "HTTP/1.0"}
	resp, err := Serve(dir, req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != httpx.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Status)
	}
}

func TestServeRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	req := &httpx.Request{Method: httpx.MethodGET, URI: "/../etc/passwd", Version: "HTTP/1.0"}
	resp, err := Serve(dir, req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != httpx.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.Status)
	}
}

func TestServePlainTextFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.bin", "raw bytes")
	req := &httpx.Request{Method: httpx.MethodGET, URI: "/data.bin", Version: "HTTP/1.0"}
	resp, err := Serve(dir, req)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Header.Get("Content-Type"); got != "text/plain" {
		t.Fatalf("content-type = %q, want text/plain", got)
	}
}
