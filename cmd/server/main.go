// Package main initializes and starts the IdentityGrid HTTP server,
// setting up configuration, logging, persistence, the account store,
// services and handlers.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/IdentityGrid/internal/accounts"
	"github.com/atinyakov/IdentityGrid/internal/config"
	"github.com/atinyakov/IdentityGrid/internal/logger"
	"github.com/atinyakov/IdentityGrid/internal/server/handler/http"
	"github.com/atinyakov/IdentityGrid/internal/service"
	"github.com/atinyakov/IdentityGrid/internal/storage"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const shutdownTimeout = 10 * time.Second

// orDefault returns s, or def when s is empty (equivalent to cmp.Or for two strings).
func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", orDefault(version, "N/A"))
	fmt.Printf("Build date: %s\n", orDefault(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the persistence backend and restore the saved accounts.
	kv, codec, err := storage.Open(ctx, options.Storage, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot open storage", zap.Error(err))
	}
	defer func() { _ = kv.Close() }()

	store := accounts.NewStore()
	mirror := storage.NewMirror(kv, codec, zapLogger)
	if err := mirror.Attach(ctx, store); err != nil {
		zapLogger.Fatal("cannot restore accounts", zap.Error(err))
	}

	accountService := service.NewAccountService(store)
	accountHandler := &http.AccountHandler{AccountService: accountService}
	router := http.NewRouter(accountHandler, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", options.Addr)
	if err != nil {
		zapLogger.Fatal("failed to listen", zap.Error(err))
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr),
		zap.String("storage", string(options.Storage.Backend)))
	if err := serve(ctx, ln, server, mirror, zapLogger); err != nil {
		zapLogger.Error("HTTP server failed", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

// serve runs server on ln until ctx is cancelled or serving fails. The
// mirror writer outlives the server: it is stopped only after in-flight
// requests have finished, so their changes are persisted too.
func serve(ctx context.Context, ln net.Listener, server *nethttp.Server, mirror *storage.Mirror, log *zap.Logger) error {
	writerCtx, stopWriter := context.WithCancel(context.Background())
	mirror.Start(writerCtx)
	defer func() {
		stopWriter()
		<-mirror.Done()
	}()

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(ln) }()

	var err error
	select {
	case err = <-serveErr:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error("server shutdown failed", zap.Error(shutdownErr))
	}

	if err == nil {
		err = <-serveErr
	}
	if errors.Is(err, nethttp.ErrServerClosed) {
		return nil
	}
	return err
}
