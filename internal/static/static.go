// Package static serves files from a document root, the GET/HEAD half of
// the origin server's request dispatch.
package static

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/antestudio/http-cgi-server/internal/httpx"
)

const dateLayout = "Mon, 02 Jan 2006 15:04:05"

// Serve resolves req.URI against docRoot and returns the corresponding
// response: 404 if the file does not exist or cannot be opened, 403 if
// the URI attempts to traverse outside docRoot, otherwise 200 with
// Content-Type/Last-Modified/Allow set. The body is omitted for HEAD.
func Serve(docRoot string, req *httpx.Request) (*httpx.Response, error) {
	if containsTraversal(req.URI) {
		return httpx.NewResponse(httpx.StatusForbidden, "Forbidden", req.Version), nil
	}

	path := filepath.Join(docRoot, filepath.FromSlash(req.URI))

	f, err := os.Open(path)
	if err != nil {
		return httpx.NewResponse(httpx.StatusNotFound, "Not found", req.Version), nil
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return httpx.NewResponse(httpx.StatusNotFound, "Not found", req.Version), nil
	}

	resp := httpx.NewResponse(httpx.StatusOK, "OK", req.Version)

	if req.Method != httpx.MethodHEAD {
		body, err := io.ReadAll(f)
		if err != nil {
			return httpx.NewResponse(httpx.StatusNotFound, "Not found", req.Version), nil
		}
		resp.SetBody(body)
	}

	// Content-Length reflects the file's size on disk even for HEAD, whose
	// body is always empty (spec.md §8: "A HEAD to a static file produces a
	// zero-length body and the same headers a GET would").
	resp.Header.Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	resp.Header.Set("Last-Modified", info.ModTime().UTC().Format(dateLayout)+" GMT")
	resp.Header.Set("Allow", "GET,HEAD")
	resp.Header.Set("Content-Type", contentType(req.URI))

	return resp, nil
}

// containsTraversal reports whether uri contains a ".." path segment. The
// original source has no such check; spec.md §6 mandates one anyway.
func containsTraversal(uri string) bool {
	for _, seg := range strings.Split(uri, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// contentType implements the three-way suffix switch from spec.md §4.E:
// .html -> text/html, .jpg/.jpeg -> image/jpeg, anything else -> text/plain.
func contentType(uri string) string {
	switch {
	case strings.HasSuffix(uri, ".html"):
		return "text/html"
	case strings.HasSuffix(uri, ".jpg"), strings.HasSuffix(uri, ".jpeg"):
		return "image/jpeg"
	default:
		return "text/plain"
	}
}
