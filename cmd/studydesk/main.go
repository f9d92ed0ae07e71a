package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/conorfennell/studydesk/internal/assistant"
	"github.com/conorfennell/studydesk/internal/backup"
	"github.com/conorfennell/studydesk/internal/config"
	"github.com/conorfennell/studydesk/internal/repo"
	"github.com/conorfennell/studydesk/internal/storage"
	"github.com/conorfennell/studydesk/internal/web"
)

func main() {
	// 1. Define and parse command-line flags
	flags := flag.NewFlagSet("studydesk", flag.ExitOnError)
	configPath := flags.String("config", "", "Path to an optional YAML config file")
	flags.String("db", "studydesk.db", "Path to the SQLite database file")
	flags.String("listen", "127.0.0.1:8080", "HTTP listen address")
	flags.String("backups", "", "Directory for git snapshot backups")
	flags.String("apikey", "", "Gemini API key (assistant disabled when empty)")
	flags.String("model", assistant.DefaultModel, "Gemini model identifier")
	runBackup := flags.Bool("backup", false, "Take a snapshot backup and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	cfg, err := config.Load(flags, *configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Open the database
	store, err := storage.Open(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()
	slog.Info("database opened", "path", cfg.DB)

	planner := repo.NewPlanner(store, time.Now)

	if *runBackup {
		if cfg.Backups == "" {
			log.Fatalf("No backup directory configured")
		}
		hash, err := backup.Snapshot(store, cfg.Backups, time.Now())
		if err != nil {
			log.Fatalf("Backup failed: %v", err)
		}
		slog.Info("snapshot committed", "hash", hash, "dir", cfg.Backups)
		return
	}

	var ai *assistant.Client
	if cfg.APIKey != "" {
		ai, err = assistant.New(context.Background(), cfg.APIKey, cfg.Model)
		if err != nil {
			log.Fatalf("Failed to create assistant client: %v", err)
		}
	} else {
		slog.Info("no API key configured, assistant features disabled")
	}

	server := web.NewServer(planner, store, ai, cfg.Backups)
	slog.Info("listening", "addr", cfg.Listen)
	if err := http.ListenAndServe(cfg.Listen, server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
