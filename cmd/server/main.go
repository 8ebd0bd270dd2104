// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mdhender/faultrpt"
	"github.com/mdhender/faultrpt/backup"
	"github.com/mdhender/faultrpt/config"
	"github.com/mdhender/faultrpt/directory"
	"github.com/mdhender/faultrpt/reports"
	store "github.com/mdhender/faultrpt/stores/sqlite"
	"github.com/mdhender/faultrpt/web/auth"
	"github.com/mdhender/faultrpt/web/handlers"
)

func main() {
	addr := flag.String("addr", ":8000", "HTTP listen address")
	configFile := flag.String("config", "", "configuration file path")
	dbPath := flag.String("db", "", "SQLite database file path (empty = in-memory)")
	distDir := flag.String("dist", "dist", "frontend dist directory")
	localDirsFile := flag.String("local-dirs", "local_dirs.yaml", "server-local directory config file")
	userMapFile := flag.String("user-map", "user_ip_map.json", "user/IP directory file")
	logWithDefaultFlags := flag.Bool("log-with-default-flags", false, "log with default flags")
	logWithShortFileName := flag.Bool("log-with-shortfile", true, "log with short file name")
	logWithTimestamp := flag.Bool("log-with-timestamp", false, "log with timestamp")
	timeout := flag.Duration("timeout", 0, "auto-shutdown after duration (e.g., 5s, 1m)")
	showVersion := flag.Bool("version", false, "show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(faultrpt.Version().Core())
		os.Exit(0)
	}

	logFlags := 0
	if *logWithShortFileName {
		logFlags |= log.Lshortfile
	}
	if *logWithTimestamp {
		logFlags |= log.Ltime
	}
	if *logWithDefaultFlags || logFlags == 0 {
		logFlags = log.LstdFlags
	}
	log.SetFlags(logFlags)

	err := run(*configFile, *dbPath, *distDir, *localDirsFile, *userMapFile, *addr, *timeout)
	if err != nil {
		log.Printf("error: %v\n", err)
	}
}

func run(configFile, dbPath, distDir, localDirsFile, userMapFile, addr string, timeout time.Duration) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var sqliteStore *store.SQLiteStore
	if dbPath != "" {
		// File-based mode: database must already exist (created by init-db command)
		log.Printf("store: using file-based SQLite: %s", dbPath)
		sqliteStore, err = store.NewSQLiteStoreWithConfig(store.StoreConfig{
			Path:       dbPath,
			InitSchema: false, // schema already applied by init-db
		})
	} else {
		// In-memory mode (default)
		log.Printf("store: using in-memory SQLite")
		sqliteStore, err = store.NewSQLiteStore()
	}
	if err != nil {
		return fmt.Errorf("failed to create SQLite store: %v", err)
	}
	defer sqliteStore.Close()

	stats := sqliteStore.Stats()
	log.Printf("store: %d reports, %d uploads, %d aggregates",
		stats.Reports, stats.Uploads, stats.Aggregates)

	dir, err := directory.Load(userMapFile)
	if err != nil {
		return fmt.Errorf("load user map: %w", err)
	}
	log.Printf("directory: %d identities", dir.Len())

	vault := backup.NewVault(cfg.ArchiveBackupDir, cfg.ArchiveBackupEnabled)
	if vault.Enabled() {
		if err := vault.EnsureDir(); err != nil {
			return fmt.Errorf("archive backup dir: %w", err)
		}
		log.Printf("backup: archives saved under %s", cfg.ArchiveBackupDir)
	} else {
		log.Printf("backup: disabled")
	}

	policy := auth.NewOriginPolicy()
	svc := reports.New(sqliteStore, vault, policy, cfg.AlarmWarningThreshold)
	h := handlers.New(svc, cfg, dir, localDirsFile)

	mux := http.NewServeMux()
	h.Routes(mux)
	mux.Handle("/", handlers.NewSPAHandler(distDir))

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	if timeout > 0 {
		go func() {
			log.Printf("server: will auto-shutdown in %v", timeout)
			time.Sleep(timeout)
			log.Printf("server: timeout reached, initiating shutdown")
			shutdown <- os.Interrupt
		}()
	}

	go func() {
		log.Printf("server: listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server: %v", err)
		}
	}()

	<-shutdown
	log.Printf("server: shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown error: %w", err)
	}

	log.Printf("server: stopped")
	return nil
}
