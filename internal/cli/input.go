package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is swapped out in tests so they never need a real terminal.
var readPassword = term.ReadPassword

// GetSimpleText prompts on w and reads one line from reader, returning it
// with surrounding whitespace trimmed. A final line that ends in EOF
// instead of a newline is still accepted.
//
// The prompt renders as:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprintf(w, "%s\n> ", prompt); err != nil {
		return "", err
	}

	line, err := reader.ReadString('\n')
	trimmed := strings.TrimSpace(line)
	if err != nil {
		if errors.Is(err, io.EOF) && trimmed != "" {
			return trimmed, nil
		}
		return "", err
	}
	return trimmed, nil
}

// GetPassword reads a password from the terminal with echo disabled.
// Callers own the returned bytes and should wipe them after key
// derivation.
func GetPassword(w io.Writer) ([]byte, error) {
	fmt.Fprint(w, "Enter password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	// the echo-less read swallows the user's newline
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}
