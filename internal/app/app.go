// Package app initializes and runs the application: it wires the account
// repository, the vault store, the authorization authority, the terminal
// surface and the loopback HTTP service, and handles graceful shutdown.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/firevault/firevault/internal/accounts"
	"github.com/firevault/firevault/internal/auth"
	"github.com/firevault/firevault/internal/cli"
	"github.com/firevault/firevault/internal/config"
	"github.com/firevault/firevault/internal/httpapi"
	"github.com/firevault/firevault/internal/logging"
	"github.com/firevault/firevault/internal/vault"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	store     *vault.Store
	terminal  *cli.App
	apiServer *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewDefault()

	repo, err := accounts.NewFileRepository(cfg.AccountsFile(), logger)
	if err != nil {
		return nil, fmt.Errorf("accounts init error: %w", err)
	}

	store := vault.NewStore(cfg.VaultDir(), logger)
	authority := auth.NewAuthority(repo, logger)

	terminal := cli.NewApp(authority, repo, store, logger)
	apiServer := httpapi.NewServer(cfg.ListenAddr, logger, authority, store, terminal)

	return &App{
		config:    cfg,
		logger:    logger,
		store:     store,
		terminal:  terminal,
		apiServer: apiServer,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.ListenAddr, "data_dir", app.config.DataDir)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.apiServer.Run(ctx); err != nil {
			app.logger.Error(ctx, "authorization service failed", "error", err.Error())
			cancelFunc()
		}
	}()

	// The terminal surface owns the foreground. When the user exits the
	// REPL the whole application shuts down.
	app.terminal.Run(ctx)
	cancelFunc()

	wg.Wait()

	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "vault close failed", "error", err.Error())
	}
}
