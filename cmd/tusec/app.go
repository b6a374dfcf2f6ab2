package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"google.golang.org/grpc"

	grpcadapter "github.com/simaogato/tusec-backend/internal/adapter/grpc"
	"github.com/simaogato/tusec-backend/internal/adapter/terminal"
	"github.com/simaogato/tusec-backend/internal/config"
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&pricesCmd{}, "market")
	c.Register(&chartCmd{}, "market")
	c.Register(&watchCmd{}, "market")

	c.Register(&usersCmd{}, "users")
	c.Register(&registerCmd{}, "users")
	c.Register(&buyCmd{}, "users")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	addr  = flag.String("addr", "", "Address of the tusec server. Defaults to grpc.addr from the configuration.")
	token = flag.String("token", "", "Authorization token. Defaults to grpc.token from the configuration.")
)

// Connect opens a client to the configured server.
// The caller must close the returned connection.
func Connect() (*grpcadapter.Client, *grpc.ClientConn, error) {
	a, tok := *addr, *token
	if a == "" || tok == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		if a == "" {
			a = cfg.GRPC.Addr
		}
		if tok == "" {
			tok = cfg.GRPC.Token
		}
	}

	conn, err := grpcadapter.Dial(a, tok)
	if err != nil {
		return nil, nil, err
	}
	return grpcadapter.NewClient(conn), conn, nil
}

func printMarkdown(w io.Writer, md string) error {
	if err := terminal.NewRenderer(w).Print(md); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func fail(format string, args ...interface{}) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitFailure
}
