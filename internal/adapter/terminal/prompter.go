package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/simaogato/tusec-backend/internal/domain"
)

// ErrCancelled is returned when the input ends before an answer is given
var ErrCancelled = errors.New("input cancelled")

// Prompter asks questions on a line-oriented terminal
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int // -1 when in is not a terminal
}

var _ domain.Prompter = (*Prompter)(nil)

// NewPrompter creates a Prompter reading from in and writing prompts to out.
// Secrets are read without echo when in is a terminal.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &Prompter{in: bufio.NewReader(in), out: out, fd: fd}
}

// Ask prints the prompt and returns the trimmed answer
func (p *Prompter) Ask(ctx context.Context, title, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprintf(p.out, "[%s] %s ", title, prompt)

	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// AskSecret is like Ask but does not echo the answer on a terminal
func (p *Prompter) AskSecret(ctx context.Context, title, prompt string) (string, error) {
	if p.fd < 0 {
		return p.Ask(ctx, title, prompt)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprintf(p.out, "[%s] %s ", title, prompt)

	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return string(b), nil
}

// AskInt asks until the answer is a whole number
func (p *Prompter) AskInt(ctx context.Context, title, prompt string) (int64, error) {
	for {
		answer, err := p.Ask(ctx, title, prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseInt(answer, 10, 64)
		if err == nil {
			return n, nil
		}
		fmt.Fprintf(p.out, "Please enter a whole number.\n")
	}
}
