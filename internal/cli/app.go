// Package cli implements the interactive terminal surface: account
// registration and login, vault item management, and the human prompts the
// authorization service needs for trust decisions.
//
// All semantics live in the core packages; this package only gathers input
// and formats output.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/firevault/firevault/internal/accounts"
	"github.com/firevault/firevault/internal/auth"
	"github.com/firevault/firevault/internal/logging"
	"github.com/firevault/firevault/internal/vault"
)

var _ auth.Prompter = (*App)(nil)

// promptRequest carries a human interaction from another goroutine into the
// REPL loop, which runs it between commands. The terminal input stream is
// only ever consumed from that loop.
type promptRequest struct {
	run   func(ctx context.Context) bool
	reply chan bool
}

type App struct {
	authority *auth.Authority
	accounts  accounts.Repository
	store     *vault.Store
	logger    logging.Logger

	input   *inputQueue
	out     io.Writer
	prompts chan promptRequest
}

func NewApp(authority *auth.Authority, repo accounts.Repository, store *vault.Store, logger logging.Logger) *App {
	return &App{
		authority: authority,
		accounts:  repo,
		store:     store,
		logger:    logger.With("module", "cli"),
		input:     newInputQueue(os.Stdin),
		out:       os.Stdout,
		prompts:   make(chan promptRequest),
	}
}

func (a *App) Run(ctx context.Context) {
	a.runREPL(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.authority.CurrentAccount() != nil
}

func (a *App) currentUsername() string {
	if cur := a.authority.CurrentAccount(); cur != nil {
		return cur.Username
	}
	return ""
}
