package httpx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/antestudio/http-cgi-server/internal/netx"
)

// Method is one of the two request methods this server understands.
type Method int

const (
	MethodGET Method = iota
	MethodHEAD
)

func (m Method) String() string {
	switch m {
	case MethodGET:
		return "GET"
	case MethodHEAD:
		return "HEAD"
	default:
		return "UNKNOWN"
	}
}

// ErrUnknownMethod is returned by ParseRequest for any method other than
// GET or HEAD, mirroring Method::unknown_method in the original.
var ErrUnknownMethod = errors.New("httpx: unknown method")

func parseMethod(name string) (Method, error) {
	switch name {
	case "GET":
		return MethodGET, nil
	case "HEAD":
		return MethodHEAD, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
}

// Request is a parsed HTTP/1.0 request line plus headers. Only GET and
// HEAD are supported (spec Non-goal: no request bodies), so the message
// body is always empty.
type Request struct {
	message
	Method  Method
	URI     string // path only, query parameters stripped
	Version string
	Params  map[string]string
}

// ParseLimits bounds how many bytes ParseRequest will read for the
// request line or for any single header line.
type ParseLimits struct {
	MaxLineBytes   int
	MaxHeaderBytes int
}

// ParseRequest reads a request line and its header block from r. Query
// parameters are split out of the request-target the same way the
// original scanner does: scan forward skipping leading blanks, stopping
// at the first unescaped delimiter.
func ParseRequest(r *netx.CRLFFastReader, limits ParseLimits) (*Request, error) {
	line, _, err := r.ReadLine(limits.MaxLineBytes)
	if err != nil {
		return nil, fmt.Errorf("read request line: %w", err)
	}
	if len(line) == 0 {
		return nil, errors.New("empty request line")
	}

	req, err := parseRequestLine(string(line))
	if err != nil {
		return nil, err
	}

	req.message = newMessage()
	for {
		hline, _, err := r.ReadLine(limits.MaxHeaderBytes)
		if err != nil {
			return nil, fmt.Errorf("read header line: %w", err)
		}
		if len(hline) == 0 {
			break
		}
		name, value, ok := splitHeaderLine(string(hline))
		if !ok {
			// Malformed header lines are silently ignored.
			continue
		}
		req.Header.Add(name, value)
	}

	return req, nil
}

// splitHeaderLine splits "Name: Value" on the first colon, trimming
// surrounding whitespace from both halves (spec redesign: the original
// split on the first whitespace run, which breaks on multi-word values).
func splitHeaderLine(line string) (name, value string, ok bool) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(line[:i])
	value = strings.TrimSpace(line[i+1:])
	if name == "" {
		return "", "", false
	}
	return name, value, true
}

// scroll reads runs of s starting at *pos, skipping leading blanks, and
// stops at the first byte in delims (after the leading-blank prefix).
// It mirrors the original parser's scroll(): the delimiter consumed is
// returned alongside the accumulated text.
func scroll(s string, pos *int, delims string) (part string, delim byte) {
	var sb strings.Builder
	prefix := true
	for *pos < len(s) {
		c := s[*pos]
		if prefix && c == ' ' {
			*pos++
			continue
		}
		prefix = false
		if strings.IndexByte(delims, c) >= 0 {
			*pos++
			return sb.String(), c
		}
		sb.WriteByte(c)
		*pos++
	}
	return sb.String(), 0
}

func parseRequestLine(line string) (*Request, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, fmt.Errorf("malformed request line: %q", line)
	}

	method, err := parseMethod(fields[0])
	if err != nil {
		return nil, err
	}

	// Re-derive the target/version split with scroll() so that query
	// parameters are extracted exactly where the original splits them,
	// rather than relying on strings.Fields (which would also split an
	// unescaped space inside a query value).
	rest := line[len(fields[0]):]
	pos := 0
	uri, delim := scroll(rest, &pos, "? ")

	req := &Request{
		Method: method,
		URI:    uri,
		Params: make(map[string]string),
	}

	if delim == '?' {
		for {
			part, d := scroll(rest, &pos, "=& ")
			switch d {
			case ' ', '&':
				if part != "" {
					req.Params[part] = ""
				}
				if d != '&' {
					goto doneParams
				}
			case '=':
				key := part
				val, vd := scroll(rest, &pos, "& ")
				req.Params[key] = val
				if vd != '&' {
					goto doneParams
				}
			default:
				goto doneParams
			}
		}
	}
doneParams:

	version := strings.TrimSpace(rest[pos:])
	if version == "" && len(fields) >= 2 {
		version = fields[len(fields)-1]
	}
	req.Version = version

	return req, nil
}

// String renders the request line the way it would appear on the wire.
func (r *Request) String() string {
	return fmt.Sprintf("%s %s %s", r.Method, r.URI, r.Version)
}

// Serialize renders the full request exactly as it would appear on the
// wire: "METHOD URI VERSION CRLF (Name: Value CRLF)* CRLF body".
func (r *Request) Serialize() []byte {
	var sb strings.Builder
	sb.WriteString(r.String())
	sb.WriteString("\r\n")
	r.message.writeHeadersAndBody(&sb)
	return []byte(sb.String())
}
