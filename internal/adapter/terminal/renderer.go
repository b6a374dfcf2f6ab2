package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/simaogato/tusec-backend/internal/domain"
)

// Renderer prints markdown to a terminal, styled when possible
type Renderer struct {
	mu  sync.Mutex
	out io.Writer
	tr  *glamour.TermRenderer
	err error // first write failure
}

var _ domain.Presenter = (*Renderer)(nil)

// NewRenderer creates a Renderer writing to out.
// Styling is enabled only when out is a terminal; otherwise the raw markdown is written.
func NewRenderer(out io.Writer) *Renderer {
	r := &Renderer{out: out}

	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return r
	}

	width := 100
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		width = w
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		r.tr = tr
	}
	return r
}

// Print renders md, falling back to the raw text if styling fails
func (r *Renderer) Print(md string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.write(md)
	if err != nil && r.err == nil {
		r.err = err
	}
	return err
}

func (r *Renderer) write(md string) error {
	if r.tr != nil {
		if styled, err := r.tr.Render(md); err == nil {
			_, err = io.WriteString(r.out, styled)
			return err
		}
	}
	_, err := fmt.Fprintln(r.out, md)
	return err
}

// Err returns the first error met while writing, if any
func (r *Renderer) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// RefreshPrices redraws the price table
func (r *Renderer) RefreshPrices(_ context.Context, event domain.TickEvent) {
	// Failures are kept for Err
	_ = r.Print(fmt.Sprintf("%s\n_Tick %d at %s_\n", PricesMarkdown(event.Prices), event.Seq, event.At.Format("15:04:05")))
}

// RefreshUsers redraws the user table
func (r *Renderer) RefreshUsers(_ context.Context, users []domain.User) {
	_ = r.Print(UsersMarkdown(users))
}
