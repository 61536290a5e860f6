package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/ocs-userinfo/internal/adapter/ocs"
	"github.com/vertextoedge/ocs-userinfo/internal/adapter/sqlite"
	"github.com/vertextoedge/ocs-userinfo/internal/config"
	"github.com/vertextoedge/ocs-userinfo/internal/domain"
	"github.com/vertextoedge/ocs-userinfo/internal/logger"
	"github.com/vertextoedge/ocs-userinfo/internal/service/monitor"
	"github.com/vertextoedge/ocs-userinfo/internal/userinfo"
)

const version = "0.1.0"

// Exit codes per failure kind
const (
	exitOK     = 0
	exitFault  = 1
	exitStatus = 2
	exitParse  = 3
	exitUsage  = 64
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to configuration file (optional, OCS_* environment variables are read as well)")
	userID := flag.String("user", "", "User ID to look up (default: the authenticated user)")
	record := flag.Bool("record", false, "Store the fetched user info in the snapshot database")
	history := flag.Int("history", 0, "Print the last N stored snapshots instead of fetching")
	watch := flag.Duration("watch", 0, "Fetch and record user info at this interval until interrupted")
	flag.Parse()

	load := config.Load
	if *history > 0 {
		// History only reads the local database
		load = config.LoadLocal
	}
	cfg, err := load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return exitUsage
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return exitUsage
	}
	defer logger.Sync()

	zapLogger := logger.GetZapLogger()
	zapLogger.Debug("starting ocs-userinfo",
		zap.String("version", version),
		zap.String("server", cfg.Server.BaseURL),
	)

	if (*record || *history > 0 || *watch > 0) && cfg.Database.Path == "" {
		zapLogger.Error("database.path is required for -record, -history and -watch")
		return exitUsage
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *history > 0 {
		return printHistory(ctx, cfg, *userID, *history, zapLogger)
	}

	client := ocs.NewClientWithConfig(
		cfg.Server.BaseURL,
		cfg.Server.Username,
		cfg.Server.Password,
		cfg.Server.SkipTLSVerify,
		&ocs.ClientConfig{
			Timeout:           cfg.Server.GetTimeout(),
			RequestsPerSecond: cfg.Server.RequestsPerSecond,
			Burst:             cfg.Server.Burst,
			UserAgent:         "ocs-userinfo/" + version,
			Logger:            zapLogger,
		},
	)

	if cfg.Server.Version != "" {
		v, err := ocs.ParseVersion(cfg.Server.Version)
		if err != nil {
			zapLogger.Error("invalid server.version", zap.Error(err))
			return exitUsage
		}
		client.SetServerVersion(v)
	} else if cfg.Server.DetectVersion {
		if _, err := client.DetectVersion(ctx); err != nil {
			zapLogger.Warn("failed to detect server version, assuming legacy server", zap.Error(err))
		}
	}

	fetcher := userinfo.New(zapLogger)

	if *watch > 0 {
		return runMonitor(ctx, cfg, fetcher, client, *userID, *watch, zapLogger)
	}

	info, err := fetcher.Fetch(ctx, client, *userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch user info: %v\n", err)
		return exitCode(err)
	}

	if *record {
		if err := saveSnapshot(ctx, cfg, info); err != nil {
			zapLogger.Error("failed to record snapshot", zap.Error(err))
			return exitFault
		}
	}

	if err := printJSON(info); err != nil {
		zapLogger.Error("failed to write output", zap.Error(err))
		return exitFault
	}
	return exitOK
}

// exitCode maps a fetch failure to the process exit code
func exitCode(err error) int {
	kind, _ := domain.KindOf(err)
	switch kind {
	case domain.KindStatus:
		return exitStatus
	case domain.KindParse:
		return exitParse
	default:
		return exitFault
	}
}

func saveSnapshot(ctx context.Context, cfg *config.Config, info *domain.UserInfo) error {
	store, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.SaveSnapshot(ctx, &domain.Snapshot{
		Server: cfg.Server.BaseURL,
		Info:   info,
	})
}

func runMonitor(ctx context.Context, cfg *config.Config, fetcher *userinfo.Fetcher, client *ocs.Client, userID string, interval time.Duration, zapLogger *zap.Logger) int {
	store, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		zapLogger.Error("failed to open database", zap.Error(err), zap.String("path", cfg.Database.Path))
		return exitFault
	}
	defer store.Close()

	svc := monitor.New(&monitor.Config{Interval: interval, UserID: userID}, fetcher, client, store, zapLogger)
	if err := svc.Start(ctx); err != nil {
		zapLogger.Error("monitor stopped with error", zap.Error(err))
		return exitFault
	}
	return exitOK
}

func printHistory(ctx context.Context, cfg *config.Config, userID string, limit int, zapLogger *zap.Logger) int {
	if userID == "" {
		userID = cfg.Server.Username
	}
	if userID == "" {
		zapLogger.Error("-history needs -user or server.username")
		return exitUsage
	}

	store, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		zapLogger.Error("failed to open database", zap.Error(err), zap.String("path", cfg.Database.Path))
		return exitFault
	}
	defer store.Close()

	snapshots, err := store.ListSnapshots(ctx, userID, limit)
	if err != nil {
		zapLogger.Error("failed to list snapshots", zap.Error(err))
		return exitFault
	}

	type entry struct {
		FetchedAt string           `json:"fetched_at"`
		Server    string           `json:"server"`
		Info      *domain.UserInfo `json:"info"`
	}
	out := make([]entry, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, entry{
			FetchedAt: s.FetchedAt.Format(time.RFC3339),
			Server:    s.Server,
			Info:      s.Info,
		})
	}

	if err := printJSON(out); err != nil {
		zapLogger.Error("failed to write output", zap.Error(err))
		return exitFault
	}
	return exitOK
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
