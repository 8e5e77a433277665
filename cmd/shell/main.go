// Package main runs the interactive IdentityGrid shell against the
// configured storage backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/atinyakov/IdentityGrid/internal/accounts"
	"github.com/atinyakov/IdentityGrid/internal/config"
	"github.com/atinyakov/IdentityGrid/internal/logger"
	"github.com/atinyakov/IdentityGrid/internal/service"
	"github.com/atinyakov/IdentityGrid/internal/shell"
	"github.com/atinyakov/IdentityGrid/internal/storage"
)

var (
	version   string
	buildDate string
)

func main() {
	showVer := flag.Bool("version", false, "show build version and date")
	options := config.Parse()

	if *showVer {
		fmt.Printf("IdentityGrid Shell\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	sh := shell.New(service.NewAccountService(store), os.Stdin, os.Stdout)
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		sh.ReadSecret = func() (string, error) {
			b, err := term.ReadPassword(fd)
			fmt.Println()
			return string(b), err
		}
	}
	session(ctx, sh, mirror)
}

// session runs sh until it exits or ctx is cancelled, then writes the last
// pending change before returning.
func session(ctx context.Context, sh *shell.Shell, mirror *storage.Mirror) {
	writerCtx, stopWriter := context.WithCancel(context.Background())
	mirror.Start(writerCtx)

	sh.Run(ctx)

	stopWriter()
	<-mirror.Done()
}
