// Package command adapts chat messages ("!attack 2") to encounter engine
// calls and renders the results as reply text.
package command

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/message"

	"github.com/udisondev/chatrpg/internal/data"
	"github.com/udisondev/chatrpg/internal/db"
	"github.com/udisondev/chatrpg/internal/game/encounter"
)

// Prefix starts every chat command.
const Prefix = "!"

// Command is a chat command. args includes the command name at [0].
type Command interface {
	// Names returns all registered command names (without ! prefix).
	Names() []string
	// Usage returns the argument synopsis shown by !help.
	Usage() string
	Handle(ctx context.Context, call *Call) error
}

// Call is one command invocation and the reply being built for it.
type Call struct {
	CharacterID int64
	Args        []string

	p     *message.Printer
	lines []string
}

// Printf appends a reply line from the message catalog.
func (c *Call) Printf(key string, args ...any) {
	c.lines = append(c.lines, c.p.Sprintf(key, args...))
}

// Reply returns the reply text.
func (c *Call) Reply() string { return strings.Join(c.lines, "\n") }

// usageError asks the handler to print the command's usage line.
type usageError struct{ cmd Command }

func (e usageError) Error() string { return "usage: " + Prefix + e.cmd.Names()[0] + " " + e.cmd.Usage() }

// Handler dispatches chat commands.
// Thread-safe: commands are registered once at startup, then read-only.
type Handler struct {
	mu      sync.RWMutex
	cmds    map[string]Command // name → Command (lowercase)
	catalog *data.Catalog
	printer *message.Printer
	logger  *slog.Logger
}

// NewHandler creates a command handler. The catalog is used for display
// names; a nil logger uses slog.Default.
func NewHandler(catalog *data.Catalog, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cmds:    make(map[string]Command, 16),
		catalog: catalog,
		printer: newPrinter(),
		logger:  logger,
	}
}

// Register registers a command under all of its names.
// All command names are lowercased for case-insensitive lookup.
func (h *Handler) Register(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, name := range cmd.Names() {
		h.cmds[strings.ToLower(name)] = cmd
	}
}

// CommandCount returns the number of registered names.
func (h *Handler) CommandCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.cmds)
}

// Commands returns each registered command once, ordered by primary name.
func (h *Handler) Commands() []Command {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []Command
	for _, cmd := range h.cmds {
		if !slices.Contains(out, cmd) {
			out = append(out, cmd)
		}
	}
	slices.SortFunc(out, func(a, b Command) int { return strings.Compare(a.Names()[0], b.Names()[0]) })
	return out
}

// Handle processes a chat message from a character. It reports false when
// the message is not a command; unknown commands get a reply.
func (h *Handler) Handle(ctx context.Context, characterID int64, text string) (string, bool) {
	text = strings.TrimSpace(text)
	rest, ok := strings.CutPrefix(text, Prefix)
	if !ok || rest == "" {
		return "", false
	}

	parts := strings.Fields(rest)
	name := strings.ToLower(parts[0])
	call := &Call{CharacterID: characterID, Args: parts, p: h.printer}

	h.mu.RLock()
	cmd, found := h.cmds[name]
	h.mu.RUnlock()

	if !found {
		call.Printf(msgUnknownCommand, Prefix+name)
		return call.Reply(), true
	}

	h.logger.Debug("chat command", "character", characterID, "command", text)

	if err := cmd.Handle(ctx, call); err != nil {
		h.explain(call, cmd, err)
	}
	return call.Reply(), true
}

// explain turns a command error into reply text.
func (h *Handler) explain(call *Call, cmd Command, err error) {
	var (
		ue      *encounter.UnavailableError
		usage   usageError
		unknown unknownEnemyError
	)
	switch {
	case errors.As(err, &usage):
		call.Printf(msgUsage, Prefix+cmd.Names()[0], cmd.Usage())
	case errors.As(err, &ue):
		h.explainUnavailable(call, ue)
	case errors.Is(err, encounter.ErrEncounterBusy):
		call.Printf(msgBusy)
	case errors.Is(err, encounter.ErrSessionNotFound), errors.Is(err, errNoFight):
		call.Printf(msgNoFight)
	case errors.Is(err, encounter.ErrSessionActive):
		call.Printf(msgAlreadyFighting)
	case errors.Is(err, encounter.ErrEngineFault):
		// the engine already logged and reported it
		call.Printf(msgFault)
	case errors.Is(err, db.ErrCharacterNotFound):
		call.Printf(msgNoCharacter)
	case errors.As(err, &unknown):
		call.Printf(msgUnknownEnemy, unknown.id)
	default:
		call.Printf(msgCommandError)
		h.logger.Error("chat command failed",
			"character", call.CharacterID,
			"command", strings.Join(call.Args, " "),
			"error", err)
	}
}

func (h *Handler) explainUnavailable(call *Call, ue *encounter.UnavailableError) {
	key := msgUnavailablePrefix + ue.Reason
	switch ue.Reason {
	case encounter.ReasonNoTarget, encounter.ReasonEncounterOver:
		call.Printf(key)
	case encounter.ReasonNoItem, encounter.ReasonNotUsable, encounter.ReasonNoAmmo:
		call.Printf(key, itemName(h.catalog, ue.Detail))
	case encounter.ReasonUnknownAbility:
		call.Printf(key, abilityName(h.catalog, ue.Detail))
	case encounter.ReasonNoResource, encounter.ReasonTargetDefeated, encounter.ReasonUnknownTarget:
		call.Printf(key, ue.Detail)
	default:
		call.Printf(msgUnavailable)
	}
}
