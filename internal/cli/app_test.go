package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firevault/firevault/internal/accounts"
	"github.com/firevault/firevault/internal/auth"
	"github.com/firevault/firevault/internal/logging"
	"github.com/firevault/firevault/internal/vault"
)

// syncBuffer lets the test read output while the REPL goroutine writes it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestApp(t *testing.T, script string) (*App, *syncBuffer) {
	t.Helper()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	dir := t.TempDir()

	repo, err := accounts.NewFileRepository(filepath.Join(dir, "users.json"), logger)
	require.NoError(t, err)
	store := vault.NewStore(filepath.Join(dir, "vaults"), logger)
	t.Cleanup(func() { store.Close() })
	authority := auth.NewAuthority(repo, logger)

	app := NewApp(authority, repo, store, logger)
	out := &syncBuffer{}
	app.input = newInputQueue(strings.NewReader(script))
	app.out = out
	return app, out
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) {
		return []byte(pw), nil
	}
}

func TestREPL_RegisterAddList(t *testing.T) {
	stubPassword(t, "hunter2")

	script := strings.Join([]string{
		"register",
		"alice", // username
		"add",
		"email",    // title
		"password", // type
		"p@ss",     // data line 1
		"",         // end of multiline
		"list",
		"exit",
	}, "\n") + "\n"

	app, out := newTestApp(t, script)
	app.Run(context.Background())

	text := out.String()
	assert.Contains(t, text, "Account created.")
	assert.Contains(t, text, "API key")
	assert.Contains(t, text, "Saved:")
	assert.Contains(t, text, "email")

	records := app.store.List(context.Background(), "alice")
	require.Len(t, records, 1)
	assert.Equal(t, "email", records[0].Title)
}

func TestREPL_UnknownCommandWhileLoggedOut(t *testing.T) {
	app, out := newTestApp(t, "list\nexit\n")
	app.Run(context.Background())
	assert.Contains(t, out.String(), "Unknown command")
}

func TestShow_WrongPassphrase(t *testing.T) {
	stubPassword(t, "right")

	app, out := newTestApp(t, "")
	ctx := context.Background()

	_, err := app.accounts.Register(ctx, "bob", "right")
	require.NoError(t, err)
	require.True(t, app.authority.LoginInternal(ctx, "bob", "right"))
	require.NoError(t, app.store.InitializeForUser(ctx, "bob"))

	id, err := app.store.Save(ctx, "note", "text", "note", "right", "bob")
	require.NoError(t, err)

	stubPassword(t, "wrong")
	app.input = newInputQueue(strings.NewReader(id + "\n"))
	require.NoError(t, app.Show(ctx))
	assert.Contains(t, out.String(), "Decryption failed")
}

// startREPL runs the loop against a pipe so the test controls exactly when
// input becomes available.
func startREPL(t *testing.T, app *App) *io.PipeWriter {
	t.Helper()

	pr, pw := io.Pipe()
	app.input = newInputQueue(pr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	t.Cleanup(func() {
		cancel()
		_ = pw.Close()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("repl did not stop")
		}
	})
	return pw
}

func waitForOutput(t *testing.T, out *syncBuffer, substr string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), substr)
	}, 2*time.Second, 5*time.Millisecond, "expected %q in output", substr)
}

// A trust prompt arriving while the loop is idle at its command prompt must
// receive the typed answer; the answer must not be misread as a command.
func TestPromptTrust_WhileREPLWaitsForCommand(t *testing.T) {
	app, out := newTestApp(t, "")
	pw := startREPL(t, app)

	answer := make(chan bool, 1)
	go func() {
		answer <- app.PromptTrust(context.Background(), "app-1", "Mail Client")
	}()

	waitForOutput(t, out, "Allow?")
	_, err := io.WriteString(pw, "y\n")
	require.NoError(t, err)

	select {
	case ok := <-answer:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("trust prompt was not answered")
	}

	// the loop still owns the input stream afterwards
	_, err = io.WriteString(pw, "nonsense\n")
	require.NoError(t, err)
	waitForOutput(t, out, "Unknown command")
}

func TestPromptTrust_Declined(t *testing.T) {
	app, out := newTestApp(t, "")
	pw := startREPL(t, app)

	answer := make(chan bool, 1)
	go func() {
		answer <- app.PromptTrust(context.Background(), "app-1", "Mail Client")
	}()

	waitForOutput(t, out, "Allow?")
	_, err := io.WriteString(pw, "n\n")
	require.NoError(t, err)

	select {
	case ok := <-answer:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("trust prompt was not answered")
	}
}

func TestPromptLogin(t *testing.T) {
	stubPassword(t, "pw")

	app, out := newTestApp(t, "")
	_, err := app.accounts.Register(context.Background(), "carol", "pw")
	require.NoError(t, err)

	pw := startREPL(t, app)

	answer := make(chan bool, 1)
	go func() {
		answer <- app.PromptLogin(context.Background())
	}()

	// once the loop is committed to the prompt, its reads are sequential,
	// so the confirmation and the username can be written together
	waitForOutput(t, out, "Log in now?")
	_, err = io.WriteString(pw, "y\ncarol\n")
	require.NoError(t, err)

	select {
	case ok := <-answer:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("login prompt was not answered")
	}

	cur := app.authority.CurrentAccount()
	require.NotNil(t, cur)
	assert.Equal(t, "carol", cur.Username)
}

func TestPromptLogin_Declined(t *testing.T) {
	app, out := newTestApp(t, "")
	pw := startREPL(t, app)

	answer := make(chan bool, 1)
	go func() {
		answer <- app.PromptLogin(context.Background())
	}()

	waitForOutput(t, out, "Log in now?")
	_, err := io.WriteString(pw, "n\n")
	require.NoError(t, err)

	select {
	case ok := <-answer:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("login prompt was not answered")
	}
}

func TestPrompt_CancelledContext(t *testing.T) {
	app, _ := newTestApp(t, "")

	// no REPL running: a cancelled ctx must resolve to a decline instead
	// of blocking forever
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, app.PromptTrust(ctx, "app-1", "Mail Client"))
}
