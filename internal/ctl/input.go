package ctl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// isTerminal reports whether stdin is interactive; replaced in tests.
var isTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// getPassword prompts on w and reads a password without echo when stdin is a
// terminal. Otherwise the first line of in is used, so the command can be
// scripted.
func getPassword(in io.Reader, w io.Writer) ([]byte, error) {
	if !isTerminal() {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			return nil, fmt.Errorf("read password: %w", err)
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}

	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}
