// Package server is the supervisor: listener lifecycle, signal handling,
// the "press ENTER to quit" stdin watcher, and a goroutine-per-connection
// accept loop with a drain-on-shutdown registry.
//
// spec.md §9 sanctions exactly this substitution for the original's
// fork-per-client model: "A rewrite targeting a threaded runtime must
// reintroduce this isolation... or by passing the environment to the
// child exclusively through execve's envp argument... The latter is
// strictly better." CGI isolation is kept at the os/exec process
// boundary (internal/cgi); the HTTP accept loop uses goroutines.
package server

import (
	"context"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/antestudio/http-cgi-server/internal/httpx"
	"github.com/antestudio/http-cgi-server/internal/session"
)

// Config is the server's entire external surface: it takes no CLI
// arguments (spec.md §6), so every knob here is a compile-time default
// supplied by cmd/httpcgi-server.
type Config struct {
	Addr           string // e.g. ":8080"
	Port           int
	DocumentRoot   string
	CGIPrefix      string
	ServerName     string
	Backlog        int // accept() backlog; unused by net.Listen but kept for parity with spec.md §4.G
	ShutdownGrace  time.Duration
	MaxLineBytes   int
	MaxHeaderBytes int
}

// DefaultConfig mirrors the original's DEFAULT_PORT/listen(backlog=32)
// constants with idiomatic Go defaults layered on top.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		Port:           8080,
		DocumentRoot:   ".",
		CGIPrefix:      "/cgi-bin",
		ServerName:     "http-cgi-server/1.0",
		Backlog:        32,
		ShutdownGrace:  30 * time.Second,
		MaxLineBytes:   8192,
		MaxHeaderBytes: 8192,
	}
}

// Server owns the listener and the live-connection registry — the
// functional equivalent of spec.md §5's "list of live client PIDs",
// reimplemented with a WaitGroup since goroutines aren't waitable like
// child processes.
type Server struct {
	cfg Config
	log logrus.FieldLogger

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
}

// New constructs a Server bound to cfg. Call Run to start serving.
func New(cfg Config, log logrus.FieldLogger) *Server {
	return &Server{cfg: cfg, log: log}
}

// Addr returns the listener's bound network address, or nil before Run
// has bound a listener. Tests use this to dial an ephemeral port.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run binds the listener, installs signal handlers, starts the stdin
// "press ENTER to quit" watcher, and accepts connections until a
// termination signal arrives or ctx is cancelled. It blocks until
// shutdown completes.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.log.WithField("addr", s.cfg.Addr).Info("server listening")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGUSR1)
	defer signal.Stop(sigCh)

	go s.watchStdin(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			s.log.WithField("signal", sig.String()).Info("received termination signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	acceptErr := make(chan error, 1)
	go func() {
		acceptErr <- s.acceptLoop(ctx, ln)
	}()

	select {
	case <-ctx.Done():
	case err := <-acceptErr:
		if err != nil {
			s.log.WithError(err).Error("accept loop exited")
		}
	}

	return s.shutdown(ln)
}

// acceptLoop accepts connections until ctx is cancelled, spawning one
// goroutine per connection (spec.md §9's goroutine substitute for
// fork-per-client).
func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer conn.Close()
			session.Run(ctx, conn, session.Config{
				DocumentRoot: s.cfg.DocumentRoot,
				CGIPrefix:    s.cfg.CGIPrefix,
				ServerName:   s.cfg.ServerName,
				ServerPort:   s.cfg.Port,
				ParseLimits: httpx.ParseLimits{
					MaxLineBytes:   s.cfg.MaxLineBytes,
					MaxHeaderBytes: s.cfg.MaxHeaderBytes,
				},
			}, s.log)
		}()
	}
}

// watchStdin is the Go analogue of the original's "fork a child that
// blocks on read(0, ...) and signals the parent on ENTER": a single byte
// read from stdin is treated as a self-inflicted shutdown request.
func (s *Server) watchStdin(sigCh chan<- os.Signal) {
	buf := make([]byte, 1)
	if _, err := os.Stdin.Read(buf); err != nil {
		return
	}
	sigCh <- syscall.SIGUSR1
}

// shutdown closes the listener and waits up to cfg.ShutdownGrace for
// in-flight sessions to finish, the bounded substitute for the original's
// unbounded waitpid (spec.md §9 Open Question: goroutines cannot be
// force-killed the way child processes can).
func (s *Server) shutdown(ln net.Listener) error {
	_ = ln.Close()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("all sessions drained; shutting down")
	case <-time.After(s.cfg.ShutdownGrace):
		s.log.Warn("shutdown grace period elapsed; exiting with sessions still in flight")
	}
	return nil
}
