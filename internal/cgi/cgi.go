// Package cgi builds a CGI/1.1 environment for a script under the
// document root and runs it as a child process, capturing its stdout as
// a raw-mode HTTP response.
package cgi

import (
	"bytes"
	"context"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/antestudio/http-cgi-server/internal/httpx"
)

// Config carries the server-wide facts a CGI environment needs that are
// not derivable from the request itself.
type Config struct {
	DocumentRoot   string
	ServerPort     int
	ServerName     string // SERVER_SOFTWARE, e.g. "http-cgi-server/1.0"
	ServerProtocol string // defaults to HTTP/1.0
}

// Handle resolves req.URI (already confirmed to start with the CGI
// prefix by the caller) against cfg.DocumentRoot, execs it with a
// CGI/1.1 environment passed exclusively via exec.Cmd.Env (never
// os.Setenv on the parent — spec.md §9's "strictly better" alternative
// to the original's fork+setenv dance), and wraps its stdout as a
// raw-mode response.
//
// remoteAddr is the accepted connection's RemoteAddr(), used to derive
// REMOTE_ADDR/REMOTE_PORT.
func Handle(ctx context.Context, cfg Config, req *httpx.Request, remoteAddr net.Addr) (*httpx.Response, error) {
	if containsTraversal(req.URI) {
		return httpx.NewResponse(httpx.StatusForbidden, "Forbidden", req.Version), nil
	}

	scriptPath := filepath.Join(cfg.DocumentRoot, filepath.FromSlash(req.URI))

	if _, err := os.Stat(scriptPath); err != nil {
		return httpx.NewResponse(httpx.StatusNotFound, "CGI script not found", req.Version), nil
	}

	env := buildEnv(cfg, req, scriptPath, remoteAddr)

	cmd := exec.CommandContext(ctx, scriptPath)
	cmd.Env = env
	cmd.Stdin = nil

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Start(); err != nil {
		return httpx.NewResponse(httpx.StatusServiceUnavailable,
			"Unavailable: "+err.Error(), req.Version), nil
	}

	if err := cmd.Wait(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return httpx.NewResponse(httpx.StatusInternalError,
				"Internal error: "+err.Error(), req.Version), nil
		}
	}

	return httpx.NewRawResponse(stdout.Bytes()), nil
}

// buildEnv assembles the CGI/1.1 environment described in spec.md §4.F,
// passed to the child exclusively through envp (Cmd.Env), never through
// a process-wide os.Setenv on the server.
func buildEnv(cfg Config, req *httpx.Request, scriptPath string, remoteAddr net.Addr) []string {
	serverProtocol := cfg.ServerProtocol
	if serverProtocol == "" {
		serverProtocol = "HTTP/1.0"
	}

	remoteHost, remotePort := splitHostPort(remoteAddr)

	vars := map[string]string{
		"SCRIPT_NAME":       req.URI,
		"DOCUMENT_ROOT":     cfg.DocumentRoot,
		"SCRIPT_FILENAME":   scriptPath,
		"CONTENT_TYPE":      "text/plain",
		"GATEWAY_INTERFACE": "CGI/1.1",
		"SERVER_PORT":       strconv.Itoa(cfg.ServerPort),
		"SERVER_PROTOCOL":   serverProtocol,
		"SERVER_SOFTWARE":   cfg.ServerName,
		"SERVER_NAME":       "localhost",
		"HTTP_REFERER":      req.Header.Get("Referer"),
		"HTTP_USER_AGENT":   req.Header.Get("User-Agent"),
		"REMOTE_ADDR":       remoteHost,
		"REMOTE_PORT":       remotePort,
	}

	env := make([]string, 0, len(vars))
	for k, v := range vars {
		env = append(env, k+"="+v)
	}
	return env
}

func splitHostPort(addr net.Addr) (host, port string) {
	if addr == nil {
		return "", ""
	}
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String(), ""
	}
	return host, port
}

// HasPrefix reports whether uri is served by the CGI handler: any URI
// under prefix (spec.md §4.F: "Triggered by URIs prefixed /cgi-bin").
func HasPrefix(uri, prefix string) bool {
	return strings.HasPrefix(uri, prefix)
}

// containsTraversal reports whether uri contains a ".." path segment. A
// traversal here would exec an arbitrary file outside the document root,
// strictly worse than the static handler's equivalent read (spec.md §8:
// "Path traversal (.. segment) is rejected by the static and CGI
// handlers").
func containsTraversal(uri string) bool {
	for _, seg := range strings.Split(uri, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
