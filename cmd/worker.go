package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AtirathTechnologies/warehouse-hub/internal/auditlog"
	auditlogPostgres "github.com/AtirathTechnologies/warehouse-hub/internal/auditlog/postgres"
	"github.com/AtirathTechnologies/warehouse-hub/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start long running maintenance workers.`,
}

var auditRetentionCmd = &cobra.Command{
	Use:   "audit-retention",
	Short: "Purge audit logs past the retention window",
	Long:  `Periodically delete audit entries older than the configured retention. A zero retention keeps everything.`,
	Run: func(cmd *cobra.Command, args []string) {
		startAuditRetentionWorker()
	},
}

var (
	retention     time.Duration
	purgeInterval time.Duration
	runOnce       bool
)

func startAuditRetentionWorker() {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	gormDB, err := initGorm(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize gorm: %v\n", err)
		os.Exit(1)
	}

	service := auditlog.NewService(auditlogPostgres.NewAuditLogRepository(gormDB), lg)
	window := getDurationFlag(retention, cfg.Audit.Retention)
	interval := getDurationFlag(purgeInterval, cfg.Audit.PurgeInterval)
	if interval <= 0 {
		interval = time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lg.Info("starting audit retention worker", "retention", window, "interval", interval)

	purge := func() {
		if _, err := service.Purge(ctx, window); err != nil {
			lg.Error("audit purge failed", "error", err)
		}
	}

	purge()
	if runOnce {
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			purge()
		case sig := <-sigChan:
			lg.Info("received signal, shutting down audit retention worker", "signal", sig)
			return
		}
	}
}

func getDurationFlag(flagValue, configValue time.Duration) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	auditRetentionCmd.Flags().DurationVar(&retention, "retention", 0, "Retention window (overrides config)")
	auditRetentionCmd.Flags().DurationVar(&purgeInterval, "interval", 0, "Time between purges (overrides config)")
	auditRetentionCmd.Flags().BoolVar(&runOnce, "once", false, "Purge once and exit")

	workerCmd.AddCommand(auditRetentionCmd)
}
