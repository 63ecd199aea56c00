package httpx

import "strings"

// message is the shared title-line/header/body structure both Request
// and Response build on, mirroring the original implementation's
// HttpMessage base. Request and Response compose it rather than
// inheriting it.
type message struct {
	Header Header
	Body   []byte
}

func newMessage() message {
	return message{Header: NewHeader()}
}

// writeHeadersAndBody appends "Key: Value\r\n" for every header, in
// first-insertion order, followed by the blank separator line and the
// body, to sb.
func (m message) writeHeadersAndBody(sb *strings.Builder) {
	for _, k := range m.Header.Keys() {
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(m.Header.Get(k))
		sb.WriteString("\r\n")
	}
	sb.WriteString("\r\n")
	sb.Write(m.Body)
}
