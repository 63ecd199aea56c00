package httpx

import (
	"fmt"
	"strings"
)

// Status is the set of status codes this server ever emits; see status.go.

// Response is an HTTP/1.0 status line plus headers and body, or — in raw
// mode — a byte string emitted verbatim (used when a CGI child's stdout
// already contains a complete HTTP response).
type Response struct {
	message
	Version string
	Status  Status
	Comment string

	raw    bool
	rawBuf []byte
}

// DefaultVersion mirrors the original HttpResponse's default version
// (HTTP/1.0). NewResponse falls back to it for an empty version, and to
// the status's Reason() for an empty comment.
const DefaultVersion = "HTTP/1.0"

// NewResponse builds a response with the given status/comment/version,
// regenerating its title the way the original's updateTitle() does.
func NewResponse(status Status, comment, version string) *Response {
	if version == "" {
		version = DefaultVersion
	}
	if comment == "" {
		comment = status.Reason()
	}
	r := &Response{
		message: newMessage(),
		Version: version,
		Status:  status,
		Comment: comment,
	}
	return r
}

// NewRawResponse wraps raw bytes — typically a CGI child's stdout — to be
// emitted verbatim on Serialize, bypassing the header/title machinery
// entirely.
func NewRawResponse(raw []byte) *Response {
	return &Response{raw: true, rawBuf: raw}
}

// IsRaw reports whether r was constructed with NewRawResponse.
func (r *Response) IsRaw() bool { return r.raw }

// SetVersion replaces the response's HTTP version.
func (r *Response) SetVersion(version string) { r.Version = version }

// SetStatus replaces the response's status code.
func (r *Response) SetStatus(status Status) { r.Status = status }

// SetComment replaces the response's free-form comment.
func (r *Response) SetComment(comment string) { r.Comment = comment }

// SetBody replaces the response body. No-op in raw mode.
func (r *Response) SetBody(body []byte) {
	if r.raw {
		return
	}
	r.Body = body
}

// BodyBytes returns the response body: the raw buffer in raw mode, the
// structured body otherwise.
func (r *Response) BodyBytes() []byte {
	if r.raw {
		return r.rawBuf
	}
	return r.Body
}

// title renders "<version> <status> <comment>", regenerated on demand
// rather than cached, since all three fields are plain struct members.
func (r *Response) title() string {
	return fmt.Sprintf("%s %d %s", r.Version, int(r.Status), r.Comment)
}

// Serialize renders the response exactly as it goes on the wire: in raw
// mode, the stored bytes verbatim; otherwise "title CRLF (Name: Value
// CRLF)* CRLF body".
func (r *Response) Serialize() []byte {
	if r.raw {
		return r.rawBuf
	}
	var sb strings.Builder
	sb.WriteString(r.title())
	sb.WriteString("\r\n")
	r.message.writeHeadersAndBody(&sb)
	return []byte(sb.String())
}

// String implements fmt.Stringer for logging and tests.
func (r *Response) String() string { return string(r.Serialize()) }
