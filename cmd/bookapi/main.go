package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/reoring/patchbind"
	"github.com/reoring/patchbind/i18n"
	"github.com/reoring/patchbind/internal/book"
	"github.com/reoring/patchbind/internal/config"
	"github.com/reoring/patchbind/validation"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "path to a YAML configuration file")
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}
	log := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(log)
	i18n.SetLanguage(cfg.Language)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "bookapi: sample Book API\n\nUsage:\n  bookapi [-config bookapi.yaml]\n\nEnvironment:\n  "+config.EnvAddr+"       listen address\n  "+config.EnvLogLevel+"  debug|info|warn|error")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "bookapi: "+format+"\n", args...)
	os.Exit(2)
}

func newRouter(cfg config.Config, log *slog.Logger) http.Handler {
	binder := &patchbind.Binder{Logger: log, Opt: cfg.Bind}
	opt := cfg.Bind
	h := book.NewHandler(book.NewRepository(), binder, validation.New(), &opt, log)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID, chimiddleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h.Routes(r)
	return r
}

func run(cfg config.Config, log *slog.Logger) error {
	handler := newRouter(cfg, log)
	if cfg.H2C {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr, "h2c", cfg.H2C, "driver", patchbind.CurrentJSONDriver().Name())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
