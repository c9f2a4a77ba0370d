package app

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/alferrante/tinykind/internal/backup"
	"github.com/alferrante/tinykind/pkg/config"
	"github.com/alferrante/tinykind/pkg/notify"
	"github.com/alferrante/tinykind/pkg/store"
	"github.com/alferrante/tinykind/pkg/validation"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff       config.Effective
	version   string
	commit    string
	buildDate string

	backups    *backup.Manager
	notifier   notify.Notifier
	cancelCron context.CancelFunc

	srv *http.Server
}

// New initializes resources that do not require a running context (store,
// validation rules, backup manager, notifier). It does not start the cron
// scheduler or the HTTP server; call Run to start those and block until
// shutdown.
func New(eff config.Effective, version, commit, buildDate string) (*App, error) {
	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	initValidation(eff)

	if err := store.Open(eff.DataDir); err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", eff.DataDir, err)
	}

	a := &App{eff: eff, version: version, commit: commit, buildDate: buildDate}

	a.backups = backup.New(backup.Options{
		Dir:      backupDir(eff),
		Enabled:  eff.Config.Backup.Enabled,
		MaxCount: eff.Config.Backup.MaxCount,
		MaxAge:   eff.Config.Backup.MaxAge.Duration(),
	})
	if a.backups.Enabled() {
		store.SetWriteHook(a.backups.HandleWrite)
	}

	// Always construct the notifier: with empty config it reports a
	// missing-email-config outcome instead of silently skipping dispatch.
	a.notifier = notify.NewResendNotifier(eff.Config.Notify.ResendAPIKey, eff.Config.Notify.FromEmail)

	return a, nil
}

// Run starts the backup scheduler and the HTTP server, and blocks until ctx
// is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	cancel, err := a.backups.Start(ctx, a.eff.Config.Backup.Cron)
	if err != nil {
		return err
	}
	a.cancelCron = cancel
	defer a.cancelCron()

	a.printBanner()

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Backups exposes the manager for diagnostics callers.
func (a *App) Backups() *backup.Manager { return a.backups }

// backupDir resolves the snapshot directory, defaulting to a subdirectory of
// the data dir when unset.
func backupDir(eff config.Effective) string {
	if d := eff.Config.Backup.Dir; d != "" {
		return d
	}
	return filepath.Join(eff.DataDir, "backups")
}

// initValidation builds validation rules from config and sets them globally.
func initValidation(eff config.Effective) {
	validation.SetRules(validation.Rules{
		MaxBodyLen:              eff.Config.Message.MaxBodyLen,
		RequireRecipientContact: eff.Config.RecipientContactRequired(),
	})
}
