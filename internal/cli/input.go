package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

type lineResult struct {
	text string
	err  error
}

// inputQueue owns an input stream. A single goroutine performs every read
// and delivers lines over a channel, so the REPL loop and prompt handlers
// consume input without ever sharing a reader across goroutines.
type inputQueue struct {
	lines chan lineResult
}

func newInputQueue(r io.Reader) *inputQueue {
	q := &inputQueue{lines: make(chan lineResult)}
	go func() {
		br := bufio.NewReader(r)
		for {
			line, err := br.ReadString('\n')
			if err != nil {
				if errors.Is(err, io.EOF) && len(line) > 0 {
					q.lines <- lineResult{text: strings.TrimRight(line, "\r\n")}
				}
				q.lines <- lineResult{err: err}
				return
			}
			q.lines <- lineResult{text: strings.TrimRight(line, "\r\n")}
		}
	}()
	return q
}

// ReadLine returns the next line with the trailing newline trimmed.
func (q *inputQueue) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-q.lines:
		return res.text, res.err
	}
}

// GetSimpleText prints a prompt to w and reads a single line of input.
func GetSimpleText(ctx context.Context, q *inputQueue, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := q.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints a prompt to w and reads a password from the user's
// terminal without echo.
func GetPassword(prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// GetConfirmation prints a yes/no question and reads the answer.
// Only "y" and "yes" (case-insensitive) count as approval.
func GetConfirmation(ctx context.Context, q *inputQueue, prompt string, w io.Writer) bool {
	if _, err := fmt.Fprint(w, prompt+" [y/N]: "); err != nil {
		return false
	}
	line, err := q.ReadLine(ctx)
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// GetMultiline prints a prompt to w and reads lines until an empty line is
// entered. The collected text is joined with '\n'.
func GetMultiline(ctx context.Context, q *inputQueue, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(press Enter on an empty line to finish)\n"); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, err := q.ReadLine(ctx)
		if err != nil || line == "" {
			break
		}
		lines = append(lines, line)
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
