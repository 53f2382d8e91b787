package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/chatrpg/internal/command"
	"github.com/udisondev/chatrpg/internal/data"
	"github.com/udisondev/chatrpg/internal/db"
)

// maxInFlight bounds concurrently handled chat lines.
const maxInFlight = 16

// roster maps chat names to characters.
type roster interface {
	FindByName(ctx context.Context, name string) (int64, error)
	Create(ctx context.Context, name, archetype string) (int64, error)
}

// console is a line-based chat transport: each input line is
// "<name>: <message>" and replies are written as "<name>> <reply>".
type console struct {
	in      io.Reader
	handler *command.Handler
	roster  roster
	catalog *data.Catalog

	mu  sync.Mutex // guards out
	out io.Writer
}

func newConsole(in io.Reader, out io.Writer, h *command.Handler, r roster, c *data.Catalog) *console {
	return &console{in: in, out: out, handler: h, roster: r, catalog: c}
}

// Serve reads lines until EOF or ctx is done.
func (c *console) Serve(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)

	for {
		select {
		case <-ctx.Done():
			_ = g.Wait()
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := g.Wait(); err != nil {
					return err
				}
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			g.Go(func() error {
				c.handleLine(gctx, line)
				return nil
			})
		}
	}
}

func (c *console) handleLine(ctx context.Context, line string) {
	name, text, ok := strings.Cut(line, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return
	}
	text = strings.TrimSpace(text)

	if archetype, ok := strings.CutPrefix(text, command.Prefix+"join"); ok {
		c.reply(name, c.join(ctx, name, strings.TrimSpace(archetype)))
		return
	}

	id, err := c.roster.FindByName(ctx, name)
	if errors.Is(err, db.ErrCharacterNotFound) {
		if strings.HasPrefix(text, command.Prefix) {
			c.reply(name, "Create a character first: !join <archetype>")
		}
		return
	}
	if err != nil {
		slog.Error("resolving chat name", "name", name, "error", err)
		return
	}

	if reply, ok := c.handler.Handle(ctx, id, text); ok {
		c.reply(name, reply)
	}
}

func (c *console) join(ctx context.Context, name, archetype string) string {
	if _, ok := c.catalog.Archetype(archetype); !ok {
		return "Pick an archetype: " + strings.Join(c.catalog.ArchetypeIDs(), ", ")
	}
	if _, err := c.roster.FindByName(ctx, name); err == nil {
		return "You already have a character."
	}
	id, err := c.roster.Create(ctx, name, archetype)
	if err != nil {
		slog.Error("creating character", "name", name, "archetype", archetype, "error", err)
		return "Could not create your character, try again later."
	}
	slog.Info("character created", "id", id, "name", name, "archetype", archetype)
	return fmt.Sprintf("Welcome, %s the %s!", name, archetype)
}

func (c *console) reply(name, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(c.out, "%s> %s\n", name, line)
	}
}
