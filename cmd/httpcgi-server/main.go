// Command httpcgi-server is the HTTP/1.0 origin server: it takes no
// arguments and listens on a compile-time default port (spec.md §6),
// serving static files from its current working directory and executing
// CGI scripts under /cgi-bin.
package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/antestudio/http-cgi-server/internal/server"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cwd, err := os.Getwd()
	if err != nil {
		log.WithError(err).Fatal("getwd")
	}

	cfg := server.DefaultConfig()
	cfg.DocumentRoot = cwd

	srv := server.New(cfg, log)
	if err := srv.Run(context.Background()); err != nil {
		log.WithError(err).Fatal("server exited with error")
	}
}
