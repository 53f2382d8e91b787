package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/chatrpg/internal/command"
	"github.com/udisondev/chatrpg/internal/data"
	"github.com/udisondev/chatrpg/internal/db"
)

type memRoster struct {
	mu    sync.Mutex
	names map[string]int64
}

func (r *memRoster) FindByName(_ context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.names[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", db.ErrCharacterNotFound, name)
	}
	return id, nil
}

func (r *memRoster) Create(_ context.Context, name, _ string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := int64(len(r.names) + 1)
	r.names[name] = id
	return id, nil
}

func runConsole(t *testing.T, input string) string {
	t.Helper()
	cat, err := data.LoadDefault()
	require.NoError(t, err)

	var out bytes.Buffer
	r := &memRoster{names: map[string]int64{"ann": 1}}
	con := newConsole(strings.NewReader(input), &out, command.NewHandler(cat, nil), r, cat)
	require.NoError(t, con.Serve(context.Background()))
	return out.String()
}

func TestConsole_Dispatch(t *testing.T) {
	out := runConsole(t, "ann: !dance\nann: just chatting\nnot a chat line\n")
	assert.Equal(t, "ann> Unknown command: !dance. Try !help.\n", out)
}

func TestConsole_UnknownName(t *testing.T) {
	out := runConsole(t, "bob: !fight goblin\nbob: hi\n")
	assert.Equal(t, "bob> Create a character first: !join <archetype>\n", out)
}

func TestConsole_Join(t *testing.T) {
	out := runConsole(t, "bob: !join warrior\n")
	assert.Equal(t, "bob> Welcome, bob the warrior!\n", out)

	out = runConsole(t, "ann: !join warrior\n")
	assert.Equal(t, "ann> You already have a character.\n", out)

	out = runConsole(t, "bob: !join dragon\n")
	assert.Contains(t, out, "bob> Pick an archetype: ")
	assert.Contains(t, out, "warrior")
}

func TestConsole_StopsOnCancel(t *testing.T) {
	cat, err := data.LoadDefault()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pr, pw := io.Pipe()
	defer pw.Close()
	con := newConsole(pr, &bytes.Buffer{}, command.NewHandler(cat, nil), &memRoster{}, cat)
	assert.ErrorIs(t, con.Serve(ctx), context.Canceled)
}
