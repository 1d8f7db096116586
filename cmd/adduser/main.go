// Command adduser creates a user account in the budget database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"budget-calculator/internal/cli"
	"budget-calculator/internal/service"
	"budget-calculator/internal/storage"
)

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
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("user", "", "Username")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	dbPath := fs.String("db", cli.DefaultDBPath, "Path to database file (DB_PATH overrides the default)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		fmt.Fprintln(stdout, "Usage: adduser -user <username> [-password <password>] [-db <db_path>]")
		fs.PrintDefaults()
		return errors.New("missing required flags: user")
	}

	password := *passwordFlag
	if password == "" {
		var err error
		if password, err = cli.PromptPassword(stdin, stdout, "Password: "); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password cannot be empty")
	}

	db, err := storage.NewDB(cli.ResolveDBPath(*dbPath))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	accounts := service.NewAccounts(db, db, 0)
	user, err := accounts.Register(context.Background(), *username, password)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			return fmt.Errorf("user %s already exists", *username)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d\n", user.Username, user.ID)
	return nil
}
