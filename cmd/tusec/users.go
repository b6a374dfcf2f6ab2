package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/simaogato/tusec-backend/internal/adapter/terminal"
	"github.com/simaogato/tusec-backend/internal/usecase/registry"
)

// usersCmd holds the flags for the 'users' subcommand.
type usersCmd struct{}

func (*usersCmd) Name() string     { return "users" }
func (*usersCmd) Synopsis() string { return "display registered users and their portfolios" }
func (*usersCmd) Usage() string {
	return `tusec users

  Displays every registered user with their holdings.
`
}

func (*usersCmd) SetFlags(*flag.FlagSet) {}

func (*usersCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, conn, err := Connect()
	if err != nil {
		return fail("Error connecting: %v", err)
	}
	defer conn.Close()

	users, err := client.ListUsers(ctx)
	if err != nil {
		return fail("Error listing users: %s", terminal.ErrorMessage(err))
	}
	if err := printMarkdown(os.Stdout, terminal.UsersMarkdown(users)); err != nil {
		return fail("Error: %v", err)
	}
	return subcommands.ExitSuccess
}

// registerCmd holds the flags for the 'register' subcommand.
type registerCmd struct{}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "register a new user" }
func (*registerCmd) Usage() string {
	return `tusec register

  Asks for name, position (PPM, APM, GM), a unique id and a password.
`
}

func (*registerCmd) SetFlags(*flag.FlagSet) {}

func (*registerCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, conn, err := Connect()
	if err != nil {
		return fail("Error connecting: %v", err)
	}
	defer conn.Close()

	p := terminal.NewPrompter(os.Stdin, os.Stdout)
	if _, err := registry.RegisterInteractive(ctx, client, p); err != nil {
		if errors.Is(err, terminal.ErrCancelled) {
			return subcommands.ExitSuccess
		}
		return fail("Error: %s", terminal.ErrorMessage(err))
	}
	fmt.Println(terminal.MsgRegistered)
	return subcommands.ExitSuccess
}

// buyCmd holds the flags for the 'buy' subcommand.
type buyCmd struct{}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy shares of a listed company" }
func (*buyCmd) Usage() string {
	return `tusec buy

  Asks for your user id, the company and the number of shares.
`
}

func (*buyCmd) SetFlags(*flag.FlagSet) {}

func (*buyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, conn, err := Connect()
	if err != nil {
		return fail("Error connecting: %v", err)
	}
	defer conn.Close()

	p := terminal.NewPrompter(os.Stdin, os.Stdout)
	receipt, err := registry.BuyStockInteractive(ctx, client, p)
	if err != nil {
		if errors.Is(err, terminal.ErrCancelled) {
			return subcommands.ExitSuccess
		}
		return fail("Error: %s", terminal.ErrorMessage(err))
	}
	fmt.Println(terminal.PurchaseMessage(receipt))
	fmt.Printf("Paid %s, now holding %d.\n", terminal.FormatPrice(receipt.Total), receipt.Holding)
	return subcommands.ExitSuccess
}
