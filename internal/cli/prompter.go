package cli

import (
	"context"
	"fmt"
)

// PromptTrust asks the person at the terminal whether an external
// application may access the vault. The question is queued into the REPL
// loop and blocks until answered there.
func (a *App) PromptTrust(ctx context.Context, appID, appName string) bool {
	return a.enqueuePrompt(ctx, func(ctx context.Context) bool {
		fmt.Fprintln(a.out)
		fmt.Fprintf(a.out, "Application %q (%s) requests access to your vault.\n", appName, appID)
		return GetConfirmation(ctx, a.input, "Allow?", a.out)
	})
}

// PromptLogin is invoked when an external application knocks while nobody
// is logged in. Declining aborts the application's request.
func (a *App) PromptLogin(ctx context.Context) bool {
	return a.enqueuePrompt(ctx, func(ctx context.Context) bool {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "An application requests access, but nobody is logged in.")
		if !GetConfirmation(ctx, a.input, "Log in now?", a.out) {
			return false
		}

		username, err := GetSimpleText(ctx, a.input, "Username", a.out)
		if err != nil {
			return false
		}
		password, err := GetPassword("Password", a.out)
		if err != nil {
			return false
		}

		if !a.authority.LoginInternal(ctx, username, password) {
			fmt.Fprintln(a.out, "Invalid credentials.")
			return false
		}
		if err := a.store.InitializeForUser(ctx, username); err != nil {
			a.logger.Warn(ctx, "vault init after login failed", "error", err.Error())
		}
		fmt.Fprintln(a.out, "Logged in.")
		return true
	})
}

// enqueuePrompt hands an interaction to the REPL loop and waits for the
// human's answer. A cancelled ctx, or a loop that is no longer running,
// resolves to a decline.
func (a *App) enqueuePrompt(ctx context.Context, run func(context.Context) bool) bool {
	req := promptRequest{run: run, reply: make(chan bool, 1)}
	select {
	case a.prompts <- req:
	case <-ctx.Done():
		return false
	}
	select {
	case ans := <-req.reply:
		return ans
	case <-ctx.Done():
		return false
	}
}
