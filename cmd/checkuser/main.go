// Command checkuser looks up a user, verifies a password against the stored
// hash and lists every account in the database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"budget-calculator/internal/auth"
	"budget-calculator/internal/cli"
	"budget-calculator/internal/storage"
)

// errMismatch is returned when the password does not match, so scripts can
// rely on the exit status.
var errMismatch = errors.New("password does not match")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("checkuser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("user", "", "Username to verify (optional; only lists users when omitted)")
	passwordFlag := fs.String("password", "", "Password to verify (will prompt if omitted)")
	dbPath := fs.String("db", cli.DefaultDBPath, "Path to database file (DB_PATH overrides the default)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := storage.NewDB(cli.ResolveDBPath(*dbPath))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	var result error
	if *username != "" {
		result = verify(ctx, db, *username, *passwordFlag, stdin, stdout)
	}

	users, err := db.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	fmt.Fprintf(stdout, "Users in database: %d\n", len(users))
	for _, u := range users {
		fmt.Fprintf(stdout, "ID: %d, Username: %s\n", u.ID, u.Username)
	}
	return result
}

func verify(ctx context.Context, db *storage.DB, username, password string, stdin io.Reader, stdout io.Writer) error {
	user, err := db.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("user %s not found", username)
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	fmt.Fprintf(stdout, "Found user: %s (ID %d)\n", user.Username, user.ID)

	if password == "" {
		if password, err = cli.PromptPassword(stdin, stdout, "Password: "); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		fmt.Fprintln(stdout, "Password matches: no")
		return errMismatch
	}
	fmt.Fprintln(stdout, "Password matches: yes")
	return nil
}
