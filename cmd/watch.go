package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AtirathTechnologies/warehouse-hub/internal/permission"
	"github.com/AtirathTechnologies/warehouse-hub/internal/store"
	"github.com/AtirathTechnologies/warehouse-hub/pkg/logger"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow settings changes",
	Long:  `Subscribe to the settings documents and log the access every role derives from each change.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := watchSettings(); err != nil {
			fmt.Fprintf(os.Stderr, "watch failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func watchSettings() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Store.Driver != "postgres" {
		return fmt.Errorf("watch needs the postgres store driver, got %q", cfg.Store.Driver)
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	gormDB, err := initGorm(db)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	docs := openDocumentStore(ctx, cfg, gormDB, lg)

	rules, err := docs.Subscribe(ctx, store.KeyUserRules, func(_ context.Context, doc store.Document) {
		if !doc.Exists {
			lg.Info("user rules not published, defaults apply")
			return
		}
		m, err := permission.DecodeMatrix(doc.Body)
		if err != nil {
			lg.Warn("ignoring malformed user rules", "error", err)
			return
		}
		for _, role := range permission.Roles {
			access := permission.Derive(role, m)
			lg.Info("derived access",
				"role", role,
				"reports_mode", access.ReportsMode,
				"can_see_reports_nav", access.CanSeeReportsNav,
				"can_generate", access.CanGenerate,
				"can_view", access.CanView,
				"updated_at", doc.UpdatedAt)
		}
	})
	if err != nil {
		return err
	}
	defer rules.Unsubscribe()

	reports, err := docs.Subscribe(ctx, store.KeyReports, func(_ context.Context, doc store.Document) {
		if !doc.Exists {
			lg.Info("report settings not published, defaults apply")
			return
		}
		a, err := permission.DecodeReportAvailability(doc.Body)
		if err != nil {
			lg.Warn("ignoring malformed report settings", "error", err)
			return
		}
		lg.Info("report availability", "enabled", a, "updated_at", doc.UpdatedAt)
	})
	if err != nil {
		return err
	}
	defer reports.Unsubscribe()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	lg.Info("watching settings. Press Ctrl+C to stop.", "channel", cfg.Store.NotifyChannel)
	sig := <-sigChan
	lg.Info("received signal, stopping watch", "signal", sig)
	return nil
}
