package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/firevault/firevault/internal/common"
)

// Register creates a new account and prepares its vault database. The API
// key is shown once so the user can hand it to external applications.
func (a *App) Register(ctx context.Context) error {
	username, err := GetSimpleText(ctx, a.input, "Choose a username", a.out)
	if err != nil {
		return err
	}
	if username == "" {
		fmt.Fprintln(a.out, "Username must not be empty.")
		return nil
	}

	password, err := GetPassword("Choose a password", a.out)
	if err != nil {
		return err
	}

	account, err := a.accounts.Register(ctx, username, password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrDuplicateUsername):
			fmt.Fprintln(a.out, "That username is taken.")
			return nil
		case errors.Is(err, common.ErrCapacityExceeded):
			fmt.Fprintln(a.out, "Account limit reached.")
			return nil
		}
		return err
	}

	if !a.authority.LoginInternal(ctx, username, password) {
		return fmt.Errorf("registered but login failed")
	}
	if err := a.store.InitializeForUser(ctx, username); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Account created.")
	fmt.Fprintln(a.out, "API key (give this to applications you trust):", account.APIKey)
	return nil
}

// Login authenticates against the authority and prepares the user's vault.
func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(ctx, a.input, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}

	if !a.authority.LoginInternal(ctx, username, password) {
		fmt.Fprintln(a.out, "Invalid credentials.")
		return nil
	}
	if err := a.store.InitializeForUser(ctx, username); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Logged in.")
	return nil
}

// RegenerateKey rotates the API key, invalidating the previous one.
func (a *App) RegenerateKey(ctx context.Context) error {
	if !GetConfirmation(ctx, a.input, "Regenerate the API key? Existing applications will lose access.", a.out) {
		return nil
	}

	if err := a.authority.RegenerateAPIKey(ctx); err != nil {
		return err
	}

	if cur := a.authority.CurrentAccount(); cur != nil {
		fmt.Fprintln(a.out, "New API key:", cur.APIKey)
	}
	return nil
}
