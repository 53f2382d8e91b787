package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/udisondev/chatrpg/internal/data"
	"github.com/udisondev/chatrpg/internal/db"
	"github.com/udisondev/chatrpg/internal/game/encounter"
	"github.com/udisondev/chatrpg/internal/model"
)

// MaxEnemies caps the enemies of one !fight.
const MaxEnemies = 3

var errNoFight = errors.New("no active fight")

type unknownEnemyError struct{ id string }

func (e unknownEnemyError) Error() string { return "unknown enemy " + e.id }

// Engine is the part of encounter.Engine the commands drive.
type Engine interface {
	Catalog() *data.Catalog
	CreateSession(ctx context.Context, character *model.Character, enemies []*model.Enemy) (encounter.Event, error)
	SubmitAction(ctx context.Context, sessionID string, a encounter.Action) (encounter.Event, error)
	Status(sessionID string) (encounter.Status, error)
	ActiveSession(characterID int64) (string, bool)
}

// Characters loads persisted characters.
type Characters interface {
	LoadCharacter(ctx context.Context, id int64, catalog *data.Catalog) (*model.Character, error)
}

// History lists finished fights.
type History interface {
	Recent(ctx context.Context, characterID int64, limit int) ([]db.HistoryEntry, error)
}

// Deps are the collaborators of the built-in commands. History is optional.
type Deps struct {
	Engine     Engine
	Characters Characters
	History    History
}

// RegisterAll registers every built-in command into the handler.
func RegisterAll(h *Handler, deps Deps) {
	h.Register(&Fight{deps: deps})
	h.Register(&Attack{engine: deps.Engine})
	h.Register(&Cast{engine: deps.Engine})
	h.Register(&Use{engine: deps.Engine})
	h.Register(&Flee{engine: deps.Engine})
	h.Register(&StatusCmd{engine: deps.Engine})
	h.Register(&Help{handler: h})
	if deps.History != nil {
		h.Register(&HistoryCmd{history: deps.History})
	}
}

// activeSession returns the caller's live session id.
func activeSession(e Engine, characterID int64) (string, error) {
	id, ok := e.ActiveSession(characterID)
	if !ok {
		return "", errNoFight
	}
	return id, nil
}

// submit runs one action and renders its event, including a fault's
// partial log.
func submit(ctx context.Context, e Engine, call *Call, a encounter.Action) error {
	id, err := activeSession(e, call.CharacterID)
	if err != nil {
		return err
	}
	ev, err := e.SubmitAction(ctx, id, a)
	renderEvent(call, e.Catalog(), ev, "")
	return err
}

// parseTarget reads an optional 1-based enemy number.
func parseTarget(args []string, at int) (int, bool) {
	if len(args) <= at {
		return encounter.AutoTarget, true
	}
	n, err := strconv.Atoi(strings.TrimPrefix(args[at], "#"))
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

// Fight handles !fight <enemy> [enemy...] and starts an encounter.
type Fight struct {
	deps Deps
}

func (c *Fight) Names() []string { return []string{"fight", "hunt"} }
func (c *Fight) Usage() string   { return "<enemy> [enemy...]" }

func (c *Fight) Handle(ctx context.Context, call *Call) error {
	cat := c.deps.Engine.Catalog()
	if len(call.Args) < 2 || len(call.Args) > MaxEnemies+1 {
		call.Printf(msgKnownEnemies, strings.Join(cat.EnemyIDs(), ", "))
		return usageError{c}
	}
	if _, ok := c.deps.Engine.ActiveSession(call.CharacterID); ok {
		return encounter.ErrSessionActive
	}

	enemies := make([]*model.Enemy, 0, len(call.Args)-1)
	names := make([]string, 0, len(call.Args)-1)
	for _, id := range call.Args[1:] {
		def, ok := cat.Enemy(strings.ToLower(id))
		if !ok {
			return unknownEnemyError{id: id}
		}
		enemies = append(enemies, model.NewEnemy(def))
		names = append(names, def.Name)
	}

	character, err := c.deps.Characters.LoadCharacter(ctx, call.CharacterID, cat)
	if err != nil {
		return fmt.Errorf("loading character %d: %w", call.CharacterID, err)
	}
	ev, err := c.deps.Engine.CreateSession(ctx, character, enemies)
	if err != nil {
		return err
	}
	renderEvent(call, cat, ev, strings.Join(names, ", "))
	return nil
}

// Attack handles !attack [n]: a weapon attack on enemy n or the first
// standing one.
type Attack struct {
	engine Engine
}

func (c *Attack) Names() []string { return []string{"attack", "a"} }
func (c *Attack) Usage() string   { return "[target]" }

func (c *Attack) Handle(ctx context.Context, call *Call) error {
	target, ok := parseTarget(call.Args, 1)
	if !ok {
		return usageError{c}
	}
	return submit(ctx, c.engine, call, encounter.Attack(target))
}

// Cast handles !cast <ability> [n].
type Cast struct {
	engine Engine
}

func (c *Cast) Names() []string { return []string{"cast", "c"} }
func (c *Cast) Usage() string   { return "<ability> [target]" }

func (c *Cast) Handle(ctx context.Context, call *Call) error {
	if len(call.Args) < 2 {
		return usageError{c}
	}
	target, ok := parseTarget(call.Args, 2)
	if !ok {
		return usageError{c}
	}
	return submit(ctx, c.engine, call, encounter.UseAbility(strings.ToLower(call.Args[1]), target))
}

// Use handles !use <item>.
type Use struct {
	engine Engine
}

func (c *Use) Names() []string { return []string{"use", "u"} }
func (c *Use) Usage() string   { return "<item>" }

func (c *Use) Handle(ctx context.Context, call *Call) error {
	if len(call.Args) != 2 {
		return usageError{c}
	}
	return submit(ctx, c.engine, call, encounter.UseItem(strings.ToLower(call.Args[1])))
}

// Flee handles !flee.
type Flee struct {
	engine Engine
}

func (c *Flee) Names() []string { return []string{"flee", "run"} }
func (c *Flee) Usage() string   { return "" }

func (c *Flee) Handle(ctx context.Context, call *Call) error {
	return submit(ctx, c.engine, call, encounter.Flee())
}

// StatusCmd handles !status, the live fight at a glance.
type StatusCmd struct {
	engine Engine
}

func (c *StatusCmd) Names() []string { return []string{"status", "s"} }
func (c *StatusCmd) Usage() string   { return "" }

func (c *StatusCmd) Handle(_ context.Context, call *Call) error {
	id, err := activeSession(c.engine, call.CharacterID)
	if err != nil {
		return err
	}
	st, err := c.engine.Status(id)
	if err != nil {
		return err
	}
	renderStatus(call, c.engine.Catalog(), st)
	return nil
}

// Help handles !help.
type Help struct {
	handler *Handler
}

func (c *Help) Names() []string { return []string{"help", "commands"} }
func (c *Help) Usage() string   { return "" }

func (c *Help) Handle(_ context.Context, call *Call) error {
	call.Printf(msgHelpHeader)
	for _, cmd := range c.handler.Commands() {
		if cmd.Usage() == "" {
			call.Printf(msgHelpName, Prefix+cmd.Names()[0])
			continue
		}
		call.Printf(msgHelpLine, Prefix+cmd.Names()[0], cmd.Usage())
	}
	return nil
}

// HistoryCmd handles !history, listing the last few finished fights.
type HistoryCmd struct {
	history History
}

const historyLimit = 5

func (c *HistoryCmd) Names() []string { return []string{"history"} }
func (c *HistoryCmd) Usage() string   { return "" }

func (c *HistoryCmd) Handle(ctx context.Context, call *Call) error {
	entries, err := c.history.Recent(ctx, call.CharacterID, historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		call.Printf(msgHistoryEmpty)
		return nil
	}
	for _, e := range entries {
		call.Printf(msgHistoryLine, e.State, e.Turns, e.Experience, e.Currency)
	}
	return nil
}
