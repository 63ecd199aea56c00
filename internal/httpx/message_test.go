package httpx

import "testing"

func TestMessageWriteHeadersAndBody(t *testing.T) {
	m := newMessage()
	m.Header.Set("Content-Type", "text/plain")
	m.Body = []byte("hello")

	resp := NewResponse(StatusOK, "OK", DefaultVersion)
	resp.message = m

	got := resp.String()
	want := "HTTP/1.0 200 OK\r\nContent-Type: text/plain\r\n\r\nhello"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNewMessageHasEmptyHeaderAndBody(t *testing.T) {
	m := newMessage()
	if m.Header.Len() != 0 {
		t.Fatalf("expected an empty Header, got %d entries", m.Header.Len())
	}
	if len(m.Body) != 0 {
		t.Fatalf("expected empty body, got %q", m.Body)
	}
}

func TestMessageHeaderPreservesInsertionOrderAndCase(t *testing.T) {
	m := newMessage()
	m.Header.Set("Content-Type", "text/plain")
	m.Header.Set("X-Custom", "1")
	m.Header.Set("Content-Type", "text/html") // re-set: same slot, new value

	if got := m.Header.Keys(); len(got) != 2 || got[0] != "Content-Type" || got[1] != "X-Custom" {
		t.Fatalf("Keys() = %v, want [Content-Type X-Custom]", got)
	}
	if got := m.Header.Get("Content-Type"); got != "text/html" {
		t.Fatalf("Get(Content-Type) = %q, want text/html", got)
	}
	// Keys are stored case-sensitively, exactly as set (spec.md §3: "case-sensitive keys as received").
	if got := m.Header.Get("content-type"); got != "" {
		t.Fatalf("Get(content-type) = %q, want empty (lookup is case-sensitive)", got)
	}
}
