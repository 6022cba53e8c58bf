package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// runREPL starts a simple read-eval-print loop.
//
// The loop multiplexes two sources: lines typed by the user and prompt
// requests queued by the authorization service. Pending prompts are served
// before the next command is read, so a trust negotiation arriving while
// the loop waits at its prompt is handled as soon as the loop is idle.
// The loop exits on EOF, ctx cancellation, or "exit"/"quit".
func (a *App) runREPL(ctx context.Context) {
	fmt.Fprintln(a.out, "FireVault. Type 'help' for commands.")

	for {
		select {
		case req := <-a.prompts:
			req.reply <- req.run(ctx)
			continue
		default:
		}

		status := "logged out"
		if u := a.currentUsername(); u != "" {
			status = u
		}
		fmt.Fprintf(a.out, "[%s] > ", status)

		select {
		case <-ctx.Done():
			return
		case req := <-a.prompts:
			req.reply <- req.run(ctx)
		case res := <-a.input.lines:
			if res.err != nil {
				if res.err != io.EOF {
					fmt.Fprintln(a.out, "input error:", res.err)
				}
				return
			}

			cmd := strings.ToLower(strings.TrimSpace(res.text))
			if cmd == "" {
				continue
			}
			if cmd == "exit" || cmd == "quit" {
				return
			}

			if err := a.dispatch(ctx, cmd); err != nil {
				fmt.Fprintln(a.out, "Error:", err)
			}
		}
	}
}

func (a *App) dispatch(ctx context.Context, cmd string) error {
	if cmd == "help" {
		a.printHelp()
		return nil
	}

	if !a.isLoggedIn() {
		switch cmd {
		case "register":
			return a.Register(ctx)
		case "login":
			return a.Login(ctx)
		}
		fmt.Fprintln(a.out, "Unknown command (log in first?):", cmd)
		return nil
	}

	switch cmd {
	case "add":
		return a.AddItem(ctx)
	case "list":
		return a.List(ctx)
	case "show":
		return a.Show(ctx)
	case "delete":
		return a.Delete(ctx)
	case "trusted":
		return a.TrustedApps(ctx)
	case "revoke":
		return a.Revoke(ctx)
	case "regenkey":
		return a.RegenerateKey(ctx)
	default:
		fmt.Fprintln(a.out, "Unknown command:", cmd)
		return nil
	}
}

func (a *App) printHelp() {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, `Commands:
  register   create an account
  login      log in
  exit       leave the program`)
		return
	}
	fmt.Fprintln(a.out, `Commands:
  add        add a vault item
  list       list vault items
  show       decrypt and show one item
  delete     delete an item by id
  trusted    list trusted applications
  revoke     revoke trust from an application
  regenkey   regenerate the API key
  exit       leave the program`)
}
