package auth

import "context"

// Prompter is the human-decision surface the core calls into. Both methods
// block until the human responds; callers must not hold locks across them.
// The core never knows how the decision surface is implemented.
type Prompter interface {
	// PromptTrust asks the user whether the named application may access
	// the vault.
	PromptTrust(ctx context.Context, appID, appName string) bool

	// PromptLogin asks the user to log in, reporting whether a login
	// completed.
	PromptLogin(ctx context.Context) bool
}
