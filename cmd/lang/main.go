// Command lang is the toy-language interpreter used as a CGI backend: it
// reads a script file, strips a leading shebang line, runs the script
// with output captured into a buffer, and emits that buffer wrapped in a
// literal HTTP response (spec.md §4.K).
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/antestudio/http-cgi-server/internal/lang/parser"
	"github.com/antestudio/http-cgi-server/internal/lang/scope"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: lang path-to-script")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	script, err := readScriptStrippingShebang(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Print(run(script))
}

// readScriptStrippingShebang reads path and discards its first line if
// it begins with "#!", matching the original's treatment of a script
// that is itself directly executable.
func readScriptStrippingShebang(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := string(data)
	if strings.HasPrefix(text, "#!") {
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[i+1:]
		} else {
			text = ""
		}
	}
	return text, nil
}

// run interprets script, capturing its write() output, and returns a
// complete literal HTTP response: 200 with the captured output on
// success, 500 with an HTML error page on any interpreter failure
// (spec.md §9 redesign: the original always replies 200, even on error).
func run(script string) string {
	var output strings.Builder

	in := bufio.NewReader(os.Stdin)
	prog, err := parser.Parse(script, in)
	if err != nil {
		return errorResponse(err)
	}

	root := scope.New(func(s string) { output.WriteString(s) })
	if err := prog.Run(root); err != nil {
		return errorResponse(err)
	}

	return httpResponse(200, "OK", output.String())
}

func errorResponse(err error) string {
	return httpResponse(500, "Internal Server Error", errorPage(err))
}

func errorPage(err error) string {
	return "<!DOCTYPE html>\n" +
		"<html>\n<head>\n<meta encoding=\"utf-8\">\n<title>Error</title>\n</head>\n" +
		"<body>\n<h1>Error</h1>\n<pre>" + htmlEscape(err.Error()) + "</pre>\n</body>\n</html>"
}

func httpResponse(status int, reason, content string) string {
	return fmt.Sprintf("HTTP/1.1 %d %s\r\nContent-Type: text/html\r\nContent-Length: %d\r\n\r\n%s",
		status, reason, len(content), content)
}

// htmlEscape replicates the original's exact five-entity table rather
// than html.EscapeString, which escapes additional characters: a
// wire-compatible CGI error page is part of the contract under test
// (spec.md §6).
func htmlEscape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			sb.WriteString("&amp;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		case '"':
			sb.WriteString("&quot;")
		case '\'':
			sb.WriteString("&apos;")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
