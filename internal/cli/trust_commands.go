package cli

import (
	"context"
	"fmt"
)

func (a *App) TrustedApps(ctx context.Context) error {
	cur := a.authority.CurrentAccount()
	if cur == nil || len(cur.TrustedApps) == 0 {
		fmt.Fprintln(a.out, "No trusted applications.")
		return nil
	}
	for _, id := range cur.TrustedApps {
		fmt.Fprintln(a.out, " ", id)
	}
	return nil
}

func (a *App) Revoke(ctx context.Context) error {
	appID, err := GetSimpleText(ctx, a.input, "Application id", a.out)
	if err != nil {
		return err
	}
	if !a.authority.RevokeTrust(ctx, appID) {
		fmt.Fprintln(a.out, "Application was not trusted.")
		return nil
	}
	fmt.Fprintln(a.out, "Trust revoked.")
	return nil
}
