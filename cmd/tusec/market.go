package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/simaogato/tusec-backend/internal/adapter/notify"
	"github.com/simaogato/tusec-backend/internal/adapter/terminal"
)

// pricesCmd holds the flags for the 'prices' subcommand.
type pricesCmd struct{}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "display the current stock prices" }
func (*pricesCmd) Usage() string {
	return `tusec prices

  Displays every listed company with its current price.
`
}

func (*pricesCmd) SetFlags(*flag.FlagSet) {}

func (*pricesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, conn, err := Connect()
	if err != nil {
		return fail("Error connecting: %v", err)
	}
	defer conn.Close()

	stocks, err := client.ListStocks(ctx)
	if err != nil {
		return fail("Error listing prices: %v", terminal.ErrorMessage(err))
	}
	if err := printMarkdown(os.Stdout, terminal.PricesMarkdown(stocks)); err != nil {
		return fail("Error: %v", err)
	}
	return subcommands.ExitSuccess
}

// chartCmd holds the flags for the 'chart' subcommand.
type chartCmd struct{}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "display the price history of a company" }
func (*chartCmd) Usage() string {
	return `tusec chart <company>

  Displays up to the last 50 prices of a company as a sparkline.
`
}

func (*chartCmd) SetFlags(*flag.FlagSet) {}

func (*chartCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	company := strings.Join(f.Args(), " ")

	client, conn, err := Connect()
	if err != nil {
		return fail("Error connecting: %v", err)
	}
	defer conn.Close()

	history, err := client.History(ctx, company)
	if err != nil {
		return fail("Error: %s", terminal.ErrorMessage(err))
	}
	if err := printMarkdown(os.Stdout, terminal.ChartMarkdown(company, history)); err != nil {
		return fail("Error: %v", err)
	}
	return subcommands.ExitSuccess
}

// watchCmd holds the flags for the 'watch' subcommand.
type watchCmd struct {
	users bool
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "redraw the tables on every market update" }
func (*watchCmd) Usage() string {
	return `tusec watch [-users=false]

  Follows the market and redraws the price table on every tick, until interrupted.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.users, "users", true, "Also redraw the user table.")
}

func (c *watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, conn, err := Connect()
	if err != nil {
		return fail("Error connecting: %v", err)
	}
	defer conn.Close()

	r := terminal.NewRenderer(os.Stdout)
	err = client.Watch(ctx, func(u notify.Update) error {
		switch {
		case u.Tick != nil:
			r.RefreshPrices(ctx, *u.Tick)
		case c.users:
			r.RefreshUsers(ctx, u.Users)
		}
		return r.Err()
	})
	if err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return fail("Error watching: %s", terminal.ErrorMessage(err))
	}
	return subcommands.ExitSuccess
}
