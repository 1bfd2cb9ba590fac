package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	codecapi "idkit.io/v2/internal/api/codec"
	"idkit.io/v2/internal/api/ids"
	tokenapi "idkit.io/v2/internal/api/token"
	"idkit.io/v2/pkg/codec"
	"idkit.io/v2/pkg/httpapi"
	"idkit.io/v2/pkg/id"
	"idkit.io/v2/pkg/log"
	"idkit.io/v2/pkg/token"
)

type serveFlags struct {
	http     string
	pidfile  string
	tokenKey string
	tokenIV  string
	tokenTTL time.Duration
}

// write a pid so that the server can be restarted with SIGHUP
func writePID(path string) error {
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0600); err != nil {
		return fmt.Errorf("writing pidfile: %w", err)
	}
	return nil
}

func serveCmd(
	args []string,
	stderr io.Writer,
	withLogger func(func(context.Context, []string) error) func(context.Context, []string) error,
	logger func() log.Logger,
) *ffcli.Command {
	var (
		f  = &serveFlags{}
		fs = flag.NewFlagSet("serve", flag.ContinueOnError)
		_  = fs.String("config", "", "Path to config file (optional)")
	)

	fs.StringVar(&f.http, "http", "localhost:9000", "HTTP service address")
	fs.StringVar(&f.pidfile, "pidfile", "/tmp/idkit.pid", "Path to server pidfile")
	fs.StringVar(&f.tokenKey, "token_key", "", "Base36 AES key for /v1/tokens, see keygen. Token routes are disabled when empty")
	fs.StringVar(&f.tokenIV, "token_iv", "", "Base36 AES IV for /v1/tokens")
	fs.DurationVar(&f.tokenTTL, "token_ttl", token.DefaultTTL, "Lifetime of issued tokens")
	fs.SetOutput(stderr)

	return &ffcli.Command{
		Name:       "serve",
		ShortUsage: "serve [flags]",
		ShortHelp:  "Run the HTTP API.",
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envPrefix), ff.WithConfigFileParser(ff.PlainParser), ff.WithConfigFileFlag("config")},
		Exec: withLogger(func(ctx context.Context, _ []string) error {
			return serve(ctx, args, f, logger())
		}),
	}
}

func serve(ctx context.Context, args []string, f *serveFlags, logger log.Logger) error {
	srv, err := setup(f, logger)
	if err != nil {
		return err
	}

	if err := writePID(f.pidfile); err != nil {
		return err
	}

	// run.Group manages lifecycles of various long running goroutines:
	// - signal handlers for SIGTERM/SIGHUP etc.
	// - http.Server listeners.
	var g run.Group
	{
		server := &http.Server{
			Handler:           srv.Handler(),
			Addr:              f.http,
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Add(func() error {
			log.Info(logger).Log("component", "http", "msg", "started", "addr", f.http)
			return server.ListenAndServe()
		}, func(error) {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			server.Shutdown(ctx)
		})
	}
	{
		// when the binary receives SIGINT or SIGTERM, execution is cancelled
		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			c := make(chan os.Signal, 1)
			signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case sig := <-c:
				return fmt.Errorf("received signal %s", sig)
			}
		}, func(error) {
			os.Remove(f.pidfile)
			cancel()
		})
	}
	{
		// restart the process after SIGHUP, picking up config changes.
		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			c := make(chan os.Signal, 1)
			signal.Notify(c, syscall.SIGHUP)
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case sig := <-c:
					log.Info(logger).Log("msg", "restarting process", "signal", sig.String())
					if err := syscall.Exec(args[0], args, os.Environ()); err != nil {
						log.Info(logger).Log("msg", "restart failed", "err", err)
					}
				}
			}
		}, func(error) {
			cancel()
		})
	}

	return g.Run()
}

func setup(f *serveFlags, logger log.Logger) (*httpapi.Server, error) {
	srv := httpapi.New(httpapi.Config{
		Logger: logger,
		BadRequest: []error{
			codec.ErrMalformedInput,
			id.ErrFormat,
			id.ErrInvalidArgument,
			token.ErrInvalid,
			token.ErrExpired,
		},
	})

	ids.HTTP(ids.Config{HTTP: srv})
	codecapi.HTTP(codecapi.Config{HTTP: srv})

	if f.tokenKey == "" {
		log.Info(logger).Log("component", "token", "msg", "token routes disabled", "reason", "token_key not set")
		return srv, nil
	}

	issuer, err := token.NewIssuer(token.Config{Key: f.tokenKey, IV: f.tokenIV, TTL: f.tokenTTL})
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}
	tokenapi.HTTP(tokenapi.Config{HTTP: srv, Issuer: issuer})

	log.Debug(logger).Log("component", "token", "msg", "token routes enabled", "ttl", f.tokenTTL)
	return srv, nil
}
