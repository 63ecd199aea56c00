package httpx

import (
	"bytes"
	"testing"

	"github.com/antestudio/http-cgi-server/internal/netx"
)

func TestParseRequestLineBasic(t *testing.T) {
	req, err := parseRequestLine("GET /a/b?x=1 HTTP/1.0")
	if err != nil {
		t.Fatal(err)
	}
	if req.Method != MethodGET {
		t.Fatalf("method = %v, want GET", req.Method)
	}
	if req.URI != "/a/b" {
		t.Fatalf("uri = %q, want /a/b", req.URI)
	}
	if req.Version != "HTTP/1.0" {
		t.Fatalf("version = %q, want HTTP/1.0", req.Version)
	}
	if got := req.Params["x"]; got != "1" {
		t.Fatalf("param x = %q, want 1", got)
	}
}

func TestParseRequestLineMultipleParams(t *testing.T) {
	req, err := parseRequestLine("GET /p?a=1&b=2&flag HTTP/1.0")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"a": "1", "b": "2", "flag": ""}
	for k, v := range want {
		if got := req.Params[k]; got != v {
			t.Errorf("param %q = %q, want %q", k, got, v)
		}
	}
}

func TestParseRequestLineLastOccurrenceWins(t *testing.T) {
	req, err := parseRequestLine("GET /p?a=1&a=2 HTTP/1.0")
	if err != nil {
		t.Fatal(err)
	}
	if got := req.Params["a"]; got != "2" {
		t.Fatalf("param a = %q, want 2 (last occurrence wins)", got)
	}
}

func TestParseRequestLineUnknownMethod(t *testing.T) {
	_, err := parseRequestLine("POST / HTTP/1.0")
	if err == nil {
		t.Fatal("expected ErrUnknownMethod")
	}
}

func TestParseRequestHeaders(t *testing.T) {
	raw := "GET /index.html HTTP/1.0\r\nHost: example.com\r\nUser-Agent: test\r\n\r\n"
	rd := netx.NewCRLFFastReader(bytes.NewBufferString(raw))
	req, err := ParseRequest(rd, ParseLimits{MaxLineBytes: 4096, MaxHeaderBytes: 4096})
	if err != nil {
		t.Fatal(err)
	}
	if req.Method != MethodGET || req.URI != "/index.html" || req.Version != "HTTP/1.0" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if got := req.Header.Get("Host"); got != "example.com" {
		t.Fatalf("Host header = %q, want example.com", got)
	}
	if got := req.Header.Get("User-Agent"); got != "test" {
		t.Fatalf("User-Agent header = %q, want test", got)
	}
}

func TestParseRequestToleratesLFOnly(t *testing.T) {
	raw := "HEAD /a.jpg HTTP/1.0\nHost: x\n\n"
	rd := netx.NewCRLFFastReader(bytes.NewBufferString(raw))
	req, err := ParseRequest(rd, ParseLimits{MaxLineBytes: 4096, MaxHeaderBytes: 4096})
	if err != nil {
		t.Fatal(err)
	}
	if req.Method != MethodHEAD {
		t.Fatalf("method = %v, want HEAD", req.Method)
	}
}

func TestSplitHeaderLine(t *testing.T) {
	name, value, ok := splitHeaderLine("Content-Type:   text/plain with spaces  ")
	if !ok {
		t.Fatal("expected ok=true")
	}
	if name != "Content-Type" {
		t.Fatalf("name = %q", name)
	}
	if value != "text/plain with spaces" {
		t.Fatalf("value = %q", value)
	}
}

func TestSplitHeaderLineMalformed(t *testing.T) {
	if _, _, ok := splitHeaderLine("no colon here"); ok {
		t.Fatal("expected ok=false for a line without a colon")
	}
}

func TestRequestSerializeRoundTrip(t *testing.T) {
	raw := "GET /index.html HTTP/1.0\r\nHost: example.com\r\n\r\n"
	rd := netx.NewCRLFFastReader(bytes.NewBufferString(raw))
	req, err := ParseRequest(rd, ParseLimits{MaxLineBytes: 4096, MaxHeaderBytes: 4096})
	if err != nil {
		t.Fatal(err)
	}

	again := req.Serialize()
	rd2 := netx.NewCRLFFastReader(bytes.NewBuffer(again))
	req2, err := ParseRequest(rd2, ParseLimits{MaxLineBytes: 4096, MaxHeaderBytes: 4096})
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if req2.Method != req.Method || req2.URI != req.URI || req2.Version != req.Version {
		t.Fatalf("round trip mismatch: %+v vs %+v", req, req2)
	}
	if req2.Header.Get("Host") != req.Header.Get("Host") {
		t.Fatalf("header round trip mismatch")
	}
}
