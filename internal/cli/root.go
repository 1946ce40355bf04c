package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/dispatchd/dispatchd/internal/control"
	"github.com/dispatchd/dispatchd/internal/core/config"
	"github.com/dispatchd/dispatchd/internal/core/domain"
	redisqueue "github.com/dispatchd/dispatchd/internal/infra/redis"
	"github.com/dispatchd/dispatchd/internal/retry"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "dispatchd",
	Short: "Webhook notification delivery service",
	Long:  `dispatchd accepts notifications over HTTP and delivers them to configured webhook targets with retries and server-directed backoff.`,
	Run:   runService,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

func loadConfig() *config.AppConfig {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		setupLogger(nil)
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg)
	return cfg
}

func setupLogger(cfg *config.AppConfig) {
	level := slog.LevelInfo
	if isDebug || (cfg != nil && cfg.Logging.Level == "debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	})))
}

func runService(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	controlCfg := control.Config{
		Port:     cfg.Server.Port,
		Targets:  make([]domain.Target, 0, len(cfg.Targets)),
		Policies: make(map[string]retry.Policy, len(cfg.Targets)),
		Timeouts: make(map[string]time.Duration, len(cfg.Targets)),
	}
	for _, t := range cfg.Targets {
		controlCfg.Targets = append(controlCfg.Targets, t.Target())
		controlCfg.Policies[t.Name] = cfg.PolicyFor(t)
		controlCfg.Timeouts[t.Name] = t.Timeout
	}

	if cfg.Redis.URL != "" {
		queue, err := redisqueue.NewClient(cfg.Redis)
		if err != nil {
			slog.Error("Failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer queue.Close()
		controlCfg.Queue = queue
	}

	app, err := control.NewDispatcher(controlCfg)
	if err != nil {
		slog.Error("Failed to initialize dispatcher", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := app.Start(ctx); err != nil {
		slog.Error("Failed to start dispatcher", "error", err)
		os.Exit(1)
	}

	sig := <-sigChan
	slog.Info("Received signal, shutting down...", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Dispatcher stopped gracefully")
}
