// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mdhender/faultrpt"
	"github.com/mdhender/faultrpt/backup"
	"github.com/mdhender/faultrpt/config"
	"github.com/mdhender/faultrpt/directory"
	"github.com/mdhender/faultrpt/pipelines/analysis"
	"github.com/mdhender/faultrpt/pipelines/archive"
	"github.com/mdhender/faultrpt/pipelines/tabular"
	"github.com/mdhender/faultrpt/reports"
	store "github.com/mdhender/faultrpt/stores/sqlite"
	"github.com/mdhender/faultrpt/web/auth"
	"github.com/mdhender/faultrpt/web/handlers"
	"github.com/spf13/cobra"
)

func main() {
	addFlags := func(cmd *cobra.Command) error {
		cmd.PersistentFlags().Bool("log-with-default-flags", false, "log with default flags")
		cmd.PersistentFlags().Bool("log-with-shortfile", true, "log with short file name")
		cmd.PersistentFlags().Bool("log-with-timestamp", false, "log with timestamp")
		cmd.PersistentFlags().Bool("show-version", false, "show version")
		return nil
	}
	var cmdRoot = &cobra.Command{
		Use:   "faultrpt",
		Short: "fault report analysis utility",
		Long:  `Analyze fault report spreadsheets and serve the report API`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logWithDefaultFlags, _ := cmd.Flags().GetBool("log-with-default-flags")
			logWithShortFileName, _ := cmd.Flags().GetBool("log-with-shortfile")
			logWithTimestamp, _ := cmd.Flags().GetBool("log-with-timestamp")
			logFlags := 0
			if logWithShortFileName {
				logFlags |= log.Lshortfile
			}
			if logWithTimestamp {
				logFlags |= log.Ltime
			}
			if logWithDefaultFlags || logFlags == 0 {
				logFlags = log.LstdFlags
			}
			log.SetFlags(logFlags)

			if showVersion, _ := cmd.Flags().GetBool("show-version"); showVersion {
				fmt.Printf("faultrpt: version %q\n", faultrpt.Version().Core())
			}

			return nil
		},
	}
	cmdRoot.AddCommand(cmdServe())
	cmdRoot.AddCommand(cmdInitDB())
	cmdRoot.AddCommand(cmdCompactDB())
	cmdRoot.AddCommand(cmdAnalyze())
	cmdRoot.AddCommand(cmdVersion())
	if err := addFlags(cmdRoot); err != nil {
		log.Fatal(err)
	}

	if err := cmdRoot.Execute(); err != nil {
		os.Exit(1)
	}
}

func cmdServe() *cobra.Command {
	addr := ":8000"
	var configFile string
	var dbPath string
	var distDir string
	var localDirsFile string
	var userMapFile string
	var timeout time.Duration
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().StringVar(&addr, "addr", addr, "HTTP listen address")
		cmd.Flags().StringVarP(&configFile, "config-file", "c", configFile, "load configuration from file")
		cmd.Flags().StringVar(&dbPath, "db", dbPath, "SQLite database file path (empty = in-memory)")
		cmd.Flags().StringVar(&distDir, "dist", "dist", "frontend dist directory")
		cmd.Flags().StringVar(&localDirsFile, "local-dirs", "local_dirs.yaml", "server-local directory config file")
		cmd.Flags().StringVar(&userMapFile, "user-map", "user_ip_map.json", "user/IP directory file")
		cmd.Flags().DurationVar(&timeout, "timeout", 0, "auto-shutdown after duration (e.g., 5s, 1m)")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "serve",
		Short:        "start the report API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(configFile, dbPath, distDir, localDirsFile, userMapFile, addr, timeout)
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func runServer(configFile, dbPath, distDir, localDirsFile, userMapFile, addr string, timeout time.Duration) error {
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

func cmdInitDB() *cobra.Command {
	var cmd = &cobra.Command{
		Use:          "init-db <database-file>",
		Short:        "create and initialize a new database file",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.InitDatabase(args[0]); err != nil {
				return err
			}
			log.Printf("%s: database initialized", args[0])
			return nil
		},
	}
	return cmd
}

func cmdCompactDB() *cobra.Command {
	var cmd = &cobra.Command{
		Use:          "compact-db <database-file>",
		Short:        "checkpoint and vacuum a database file",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.CompactDatabase(args[0]); err != nil {
				return err
			}
			log.Printf("%s: database compacted", args[0])
			return nil
		},
	}
	return cmd
}

func cmdAnalyze() *cobra.Command {
	var outputFile string
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().StringVarP(&outputFile, "output", "o", outputFile, "save summary to file")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "analyze <spreadsheet-or-archive>",
		Short:        "analyze a fault report file and print the summary",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			resolved, err := archive.Resolve(filepath.Base(args[0]), content)
			if err != nil {
				return err
			}
			if resolved.Member != "" {
				log.Printf("%s: analyzing member %s", args[0], resolved.Member)
			}

			rows, err := tabular.Parse(resolved.Filename, resolved.Data)
			if err != nil {
				return err
			}
			summary := analysis.Aggregate(analysis.ExtractRecords(rows))
			log.Printf("%s: %d rows, %d owners", args[0], len(rows), len(summary))

			data, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				log.Fatalf("json: %v\n", err)
			}
			if outputFile == "" {
				fmt.Printf("%s\n", string(data))
			} else if err = os.WriteFile(outputFile, data, 0o644); err != nil {
				return err
			} else {
				log.Printf("%s: wrote %d bytes\n", outputFile, len(data))
			}

			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdVersion() *cobra.Command {
	showBuildInfo := false
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().BoolVar(&showBuildInfo, "build-info", showBuildInfo, "show build information")
		return nil
	}
	var cmd = &cobra.Command{
		Use:   "version",
		Short: "display the application's version number",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showBuildInfo {
				fmt.Println(faultrpt.Version().String())
				return nil
			}
			fmt.Println(faultrpt.Version().Core())
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}
