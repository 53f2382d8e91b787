// Package encounter runs turn-based encounters between one character and
// one or more enemies, and hands the result of each finished encounter to
// persistence.
package encounter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/udisondev/chatrpg/internal/data"
	"github.com/udisondev/chatrpg/internal/game/combat"
	"github.com/udisondev/chatrpg/internal/game/rng"
	"github.com/udisondev/chatrpg/internal/model"
	"github.com/udisondev/chatrpg/internal/telemetry"
)

// Persister applies a finished encounter's outcome: experience, currency,
// loot, consumed items and final health.
type Persister interface {
	ApplyOutcome(ctx context.Context, out Outcome) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(ctx context.Context, out Outcome) error

// ApplyOutcome implements Persister.
func (f PersisterFunc) ApplyOutcome(ctx context.Context, out Outcome) error { return f(ctx, out) }

// FaultReporter receives engine faults in addition to the error log.
type FaultReporter interface {
	ReportFault(ctx context.Context, sessionID string, err error)
}

// Rules are the encounter-level tunables.
type Rules struct {
	FleeChance           float64 // base percent
	MaxFleeChance        float64 // cap, percent
	ExpMultiplier        float64 // reward multipliers; zero or less means x1
	CurrencyMultiplier   float64
	LootAmountMultiplier float64
}

// DefaultRules returns the stock encounter rules.
func DefaultRules() Rules {
	return Rules{
		FleeChance:           50,
		MaxFleeChance:        90,
		ExpMultiplier:        1,
		CurrencyMultiplier:   1,
		LootAmountMultiplier: 1,
	}
}

// Engine owns every live encounter session.
type Engine struct {
	catalog   *data.Catalog
	tuning    combat.Tuning
	rules     Rules
	persister Persister
	faults    FaultReporter
	behaviors BehaviorSource
	logger    *slog.Logger
	tracer    trace.Tracer
	seedFor   func(sessionID string) (int64, error)
	newID     func() string

	mu       sync.RWMutex
	sessions map[string]*Session
	byChar   map[int64]string
}

// Option configures an Engine.
type Option func(*Engine)

// WithTuning sets the combat constants.
func WithTuning(t combat.Tuning) Option { return func(e *Engine) { e.tuning = t } }

// WithRules sets the encounter rules.
func WithRules(r Rules) Option { return func(e *Engine) { e.rules = r } }

// WithPersister sets where outcomes go.
func WithPersister(p Persister) Option { return func(e *Engine) { e.persister = p } }

// WithFaultReporter sets the fault reporter.
func WithFaultReporter(f FaultReporter) Option { return func(e *Engine) { e.faults = f } }

// WithBehaviors overrides how enemy behaviors are built.
func WithBehaviors(b BehaviorSource) Option { return func(e *Engine) { e.behaviors = b } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithTracer sets the tracer.
func WithTracer(t trace.Tracer) Option { return func(e *Engine) { e.tracer = t } }

// WithMasterSeed derives every session seed from master and the session id,
// making runs reproducible.
func WithMasterSeed(master int64) Option {
	return func(e *Engine) {
		e.seedFor = func(id string) (int64, error) { return rng.DeriveSeed(master, id), nil }
	}
}

// WithSeedFunc sets a custom session seed source.
func WithSeedFunc(fn func(sessionID string) (int64, error)) Option {
	return func(e *Engine) { e.seedFor = fn }
}

// WithIDFunc sets the session id generator.
func WithIDFunc(fn func() string) Option { return func(e *Engine) { e.newID = fn } }

// NewEngine creates an engine over a loaded catalog.
func NewEngine(catalog *data.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:   catalog,
		tuning:    combat.DefaultTuning(),
		rules:     DefaultRules(),
		behaviors: CatalogBehaviors{},
		logger:    slog.Default(),
		tracer:    telemetry.Tracer("encounter"),
		seedFor:   func(string) (int64, error) { return rng.NewSeed() },
		newID:     uuid.NewString,
		sessions:  make(map[string]*Session),
		byChar:    make(map[int64]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine resolves ids against.
func (e *Engine) Catalog() *data.Catalog { return e.catalog }

// CreateSession starts an encounter for the character against the enemies.
// The character is cloned, so later changes to it do not affect the fight.
func (e *Engine) CreateSession(ctx context.Context, character *model.Character, enemies []*model.Enemy) (Event, error) {
	if len(enemies) == 0 {
		return Event{}, errors.New("encounter needs at least one enemy")
	}

	_, span := e.tracer.Start(ctx, "encounter.create", trace.WithAttributes(
		attribute.Int64("character.id", character.ID()),
		attribute.Int("enemies", len(enemies)),
	))
	defer span.End()

	id := e.newID()
	seed, err := e.seedFor(id)
	if err != nil {
		return Event{}, fmt.Errorf("seeding session: %w", err)
	}

	s, err := e.newSession(id, character.Clone(), enemies, rng.New(seed))
	if err != nil {
		span.RecordError(err)
		return Event{}, err
	}
	if s.character.Health() > 0 {
		s.player.SetHealth(s.character.Health())
	}
	s.state = StateInProgress
	s.turn = 1

	if err := e.register(s); err != nil {
		s.closeBehaviors()
		return Event{}, err
	}

	s.log(LogEntry{Kind: EntryStart, Actor: s.player.Name()})
	span.SetAttributes(attribute.String("session.id", id))
	e.logger.Info("encounter started",
		"session", id,
		"character", character.ID(),
		"enemies", len(enemies),
		"seed", seed)
	return s.event(nil), nil
}

func (e *Engine) newSession(id string, character *model.Character, enemies []*model.Enemy, rnd *rng.RNG) (*Session, error) {
	s := &Session{
		id:          id,
		character:   character,
		player:      combat.NewActorState(character.Name(), character),
		rnd:         rnd,
		consumables: character.Consumables(),
		used:        make(map[string]int),
	}

	labels := enemyLabels(enemies)
	for i, en := range enemies {
		b, err := e.behaviors.BehaviorFor(en)
		if err != nil {
			s.closeBehaviors()
			return nil, fmt.Errorf("%w: behavior for %s: %w", ErrEngineFault, en.ID(), err)
		}
		s.enemies = append(s.enemies, &combatant{
			enemy:    en,
			state:    combat.NewActorState(labels[i], en),
			behavior: b,
		})
	}
	s.watch()
	return s, nil
}

func (e *Engine) register(s *Session) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if other, ok := e.byChar[s.CharacterID()]; ok {
		return fmt.Errorf("%w: session %s", ErrSessionActive, other)
	}
	e.sessions[s.id] = s
	e.byChar[s.CharacterID()] = s.id
	return nil
}

func (e *Engine) remove(s *Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, s.id)
	if e.byChar[s.CharacterID()] == s.id {
		delete(e.byChar, s.CharacterID())
	}
}

func (e *Engine) lookup(id string) (*Session, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// ActiveSession returns the id of the character's live session.
func (e *Engine) ActiveSession(characterID int64) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	id, ok := e.byChar[characterID]
	return id, ok
}

// SessionCount returns the number of live sessions.
func (e *Engine) SessionCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.sessions)
}

// SubmitAction resolves the character's action and the enemy half of the
// turn. Only one action per session may be in flight; a concurrent call
// fails with ErrEncounterBusy instead of queueing.
func (e *Engine) SubmitAction(ctx context.Context, sessionID string, a Action) (Event, error) {
	s, err := e.lookup(sessionID)
	if err != nil {
		return Event{}, err
	}
	if !s.busy.CompareAndSwap(false, true) {
		return Event{}, fmt.Errorf("%w: session %s", ErrEncounterBusy, sessionID)
	}
	defer s.busy.Store(false)

	s.entries = nil
	if s.state != StateInProgress {
		return s.event(nil), unavailable(ReasonEncounterOver, s.state.String())
	}

	ctx, span := e.tracer.Start(ctx, "encounter.action", trace.WithAttributes(
		attribute.String("session.id", s.id),
		attribute.String("action", a.String()),
		attribute.Int("turn", s.turn),
	))
	defer span.End()

	a, err = e.validate(s, a)
	if err != nil {
		return s.event(nil), err
	}

	e.playerTurn(s, a)
	e.checkTerminal(s)

	if s.state == StateInProgress {
		// a half-resolved turn cannot be rolled back, so the caller's
		// cancellation must not reach enemy behaviours
		if err := e.enemyTurn(context.WithoutCancel(ctx), s); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "engine fault")
			return e.fail(ctx, s, err)
		}
		e.checkTerminal(s)
	}
	if s.state == StateInProgress {
		e.tickEffects(s)
		e.checkTerminal(s)
	}

	if s.state == StateInProgress {
		s.turn++
		return s.event(nil), nil
	}

	span.SetAttributes(attribute.String("encounter.state", s.state.String()))
	return s.event(e.finish(ctx, s)), nil
}

// Status returns a read-only view of a live session.
func (e *Engine) Status(sessionID string) (Status, error) {
	s, err := e.lookup(sessionID)
	if err != nil {
		return Status{}, err
	}
	if !s.busy.CompareAndSwap(false, true) {
		return Status{}, fmt.Errorf("%w: session %s", ErrEncounterBusy, sessionID)
	}
	defer s.busy.Store(false)

	st := Status{
		SessionID:   s.id,
		State:       s.state,
		Turn:        s.turn,
		Player:      actorStatus(s.player),
		Consumables: maps.Clone(s.consumables),
	}
	for _, c := range s.enemies {
		st.Enemies = append(st.Enemies, actorStatus(c.state))
	}
	return st, nil
}

// Abandon tears a live session down without an outcome.
func (e *Engine) Abandon(sessionID string) error {
	s, err := e.lookup(sessionID)
	if err != nil {
		return err
	}
	if !s.busy.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: session %s", ErrEncounterBusy, sessionID)
	}
	defer s.busy.Store(false)

	e.remove(s)
	s.closeBehaviors()
	e.logger.Info("encounter abandoned", "session", s.id, "character", s.CharacterID(), "turn", s.turn)
	return nil
}

// fail ends the session after an engine fault.
func (e *Engine) fail(ctx context.Context, s *Session, cause error) (Event, error) {
	s.state = StateDefeat
	s.fault = cause.Error()
	s.log(LogEntry{Kind: EntryFault, Detail: s.fault})

	e.logger.Error("encounter engine fault",
		"session", s.id,
		"character", s.CharacterID(),
		"turn", s.turn,
		"error", cause)
	if e.faults != nil {
		e.faults.ReportFault(ctx, s.id, cause)
	}

	out := e.finish(ctx, s)
	return s.event(out), fmt.Errorf("%w: %w", ErrEngineFault, cause)
}

// finish builds the outcome, discards the session and hands the outcome
// to persistence.
func (e *Engine) finish(ctx context.Context, s *Session) *Outcome {
	ctx, span := e.tracer.Start(ctx, "encounter.end", trace.WithAttributes(
		attribute.String("session.id", s.id),
		attribute.String("state", s.state.String()),
		attribute.Int("turns", s.turn),
	))
	defer span.End()

	out := e.buildOutcome(s)
	s.log(LogEntry{Kind: EntryEnd, Detail: s.state.String()})

	e.remove(s)
	s.closeBehaviors()

	e.logger.Info("encounter finished",
		"session", s.id,
		"character", s.CharacterID(),
		"state", s.state.String(),
		"turns", s.turn,
		"experience", out.Experience,
		"currency", out.Currency,
		"loot", len(out.Loot))

	if e.persister != nil {
		if err := e.persister.ApplyOutcome(context.WithoutCancel(ctx), *out); err != nil {
			span.RecordError(err)
			e.logger.Error("applying encounter outcome",
				"session", s.id,
				"character", s.CharacterID(),
				"error", err)
		}
	}
	return out
}
