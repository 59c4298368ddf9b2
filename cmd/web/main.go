// cmd/web/main.go
//
// HiveTag – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Start the daily rotating logger (tees to console when running in a
//     TTY).
//
//  2. Load conf/global.yaml plus env overrides; resolve vault: secrets.
//
//  3. Open the MySQL pool and log the account count as an early sanity
//     check.
//
//  4. Wire repositories, the owner-settings cache, the scan recorder, and
//     the auth signer into the API router.
//
//  5. Serve until SIGINT/SIGTERM, then drain in-flight requests.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/apiarylabs/hivetag/internal/api"
	"github.com/apiarylabs/hivetag/internal/auth"
	"github.com/apiarylabs/hivetag/internal/config"
	"github.com/apiarylabs/hivetag/internal/database"
	"github.com/apiarylabs/hivetag/internal/hive"
	"github.com/apiarylabs/hivetag/internal/logger"
	"github.com/apiarylabs/hivetag/internal/owner"
	"github.com/apiarylabs/hivetag/internal/qr"
	"github.com/apiarylabs/hivetag/internal/scan"
	"github.com/apiarylabs/hivetag/internal/server"
)

const shutdownGrace = 15 * time.Second

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, zap.InfoLevel, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	ctx := context.Background()

	//
	// ── 1.  Configuration ───────────────────────────────────────────────
	//
	cfg, err := config.Load(ctx)
	if err != nil {
		logOut.Fatalw("load config", "err", err)
	}

	//
	// ── 2.  Database ────────────────────────────────────────────────────
	//
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		logOut.Fatalw("connect database", "err", err)
	}
	defer db.Close()

	owners := owner.NewRepo(db)
	accounts, err := owners.Count(ctx)
	if err != nil {
		logOut.Fatalw("count accounts", "err", err)
	}
	logOut.Infow("database online", "accounts", accounts)

	//
	// ── 3.  Services ────────────────────────────────────────────────────
	//
	hives := hive.NewService(hive.NewRepo(db), cfg.Serial.Prefix, logOut)

	ownerCache := owner.NewCache(owners, owner.CacheIdleTTL, owner.CacheSweepInterval)
	defer ownerCache.Stop()

	scans, err := scan.NewRecorder(db, cfg.Geo.DBPath, logOut)
	if err != nil {
		logOut.Fatalw("open geo database", "err", err)
	}
	defer scans.Close()

	a := &api.API{
		Hives:      hives,
		Owners:     owners,
		OwnerCache: ownerCache,
		Signer:     auth.NewSigner(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Scans:      scans,
		QR:         qr.Builder{Scheme: cfg.QR.Scheme, Host: cfg.QR.Host, Port: cfg.QR.Port},
		HSTS:       cfg.HTTP.ForceHTTPS,
		Log:        logOut,
	}

	//
	// ── 4.  HTTP server with graceful drain ─────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, a.Router())

	errc := make(chan error, 1)
	go func() {
		logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		errc <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logOut.Fatalw("http server", "err", err)
		}
	case sig := <-stop:
		logOut.Infow("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logOut.Errorw("shutdown", "err", err)
		}
	}
}
