// Package cli holds helpers shared by the maintenance commands.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// DefaultDBPath is the database used when neither -db nor DB_PATH is given.
const DefaultDBPath = "budget.db"

// ResolveDBPath lets DB_PATH override the flag default, but never an
// explicit -db value.
func ResolveDBPath(flagValue string) string {
	if path := os.Getenv("DB_PATH"); path != "" && flagValue == DefaultDBPath {
		return path
	}
	return flagValue
}

// PromptPassword writes prompt to out and reads a password from in. A
// terminal is read without echo; anything else is read up to the first newline.
func PromptPassword(in io.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	defer fmt.Fprintln(out)

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
