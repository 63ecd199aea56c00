// Package session implements one HTTP/1.0 exchange loop per accepted
// connection: parse a request, dispatch to the static or CGI handler,
// decorate the response with the headers every reply must carry, and
// serialize it back onto the connection.
package session

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/antestudio/http-cgi-server/internal/cgi"
	"github.com/antestudio/http-cgi-server/internal/httpx"
	"github.com/antestudio/http-cgi-server/internal/netx"
	"github.com/antestudio/http-cgi-server/internal/static"
)

// Config carries everything a session needs to dispatch and decorate a
// request beyond the connection itself.
type Config struct {
	DocumentRoot string
	CGIPrefix    string // e.g. "/cgi-bin"
	ServerName   string // e.g. "http-cgi-server/1.0", used for the CGI env and the Server header
	ServerPort   int
	ParseLimits  httpx.ParseLimits
}

const dateLayout = "Mon, 02 Jan 2006 15:04:05"

// Run reads and dispatches requests off conn until the client closes the
// connection or a request fails to parse (after its error response has
// been written), mirroring spec.md §4.D's session loop. Cancelling ctx
// closes conn, which ends a session blocked waiting for the next request.
// Each exchange is logged with log, tagged by the connection's
// correlation id.
func Run(ctx context.Context, conn net.Conn, cfg Config, log logrus.FieldLogger) {
	connID := uuid.New().String()
	log = log.WithField("conn_id", connID).WithField("remote_addr", conn.RemoteAddr().String())

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	reader := netx.NewCRLFFastReader(conn)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		req, err := httpx.ParseRequest(reader, cfg.ParseLimits)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			resp := responseForParseError(err)
			decorate(resp, cfg)
			writeResponse(conn, resp, log)
			return
		}

		log.WithField("uri", req.URI).Debug("dispatching request")

		resp := dispatch(ctx, cfg, conn, req, log)
		decorate(resp, cfg)
		writeResponse(conn, resp, log)
	}
}

// dispatch routes a parsed request to the CGI or static handler.
func dispatch(ctx context.Context, cfg Config, conn net.Conn, req *httpx.Request, log logrus.FieldLogger) *httpx.Response {
	if cgi.HasPrefix(req.URI, cfg.CGIPrefix) {
		cgiCfg := cgi.Config{
			DocumentRoot:   cfg.DocumentRoot,
			ServerPort:     cfg.ServerPort,
			ServerName:     cfg.ServerName,
			ServerProtocol: "HTTP/1.0",
		}
		resp, err := cgi.Handle(ctx, cgiCfg, req, conn.RemoteAddr())
		if err != nil {
			log.WithError(err).Error("cgi handler failed")
			return httpx.NewResponse(httpx.StatusInternalError, "Internal error", req.Version)
		}
		return resp
	}

	resp, err := static.Serve(cfg.DocumentRoot, req)
	if err != nil {
		log.WithError(err).Error("static handler failed")
		return httpx.NewResponse(httpx.StatusInternalError, "Internal error", req.Version)
	}
	return resp
}

// responseForParseError maps a request-parse failure to a status per
// spec.md §7: unknown method -> 501, anything else -> 400.
func responseForParseError(err error) *httpx.Response {
	if errors.Is(err, httpx.ErrUnknownMethod) {
		return httpx.NewResponse(httpx.StatusNotImplemented, "Not implemented", httpx.DefaultVersion)
	}
	return httpx.NewResponse(httpx.StatusBadRequest, "Bad request", httpx.DefaultVersion)
}

// decorate sets the headers every response must carry: Date,
// Content-Length, Server, and a default Content-Type if none was set by
// the handler (spec.md §4.D). Content-Length is left alone if the
// handler already set one itself (the static handler does, so that a
// HEAD response reports the file's real size instead of its empty body).
func decorate(resp *httpx.Response, cfg Config) {
	if resp.IsRaw() {
		return
	}
	resp.Header.Set("Date", time.Now().UTC().Format(dateLayout)+" GMT")
	if resp.Header.Get("Content-Length") == "" {
		resp.Header.Set("Content-Length", strconv.Itoa(len(resp.BodyBytes())))
	}
	resp.Header.Set("Server", cfg.ServerName)
	if resp.Header.Get("Content-Type") == "" {
		resp.Header.Set("Content-Type", "text/plain")
	}
}

func writeResponse(conn net.Conn, resp *httpx.Response, log logrus.FieldLogger) {
	if _, err := conn.Write(resp.Serialize()); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}
