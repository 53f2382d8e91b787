package encounter

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/udisondev/chatrpg/internal/game/combat"
)

// LuaBehavior runs an enemy script that defines choose(state) and returns
// an action string ("attack" or "ability:<id>").
//
// The state table has self_hp, self_max_hp, self_mp, player_hp,
// player_max_hp, turn and roll (0-99, drawn from the session random
// source so replays stay deterministic).
//
// A VM belongs to one enemy in one session; sessions serialize calls.
type LuaBehavior struct {
	id string
	vm *lua.LState
	fn lua.LValue
}

// NewLuaBehavior compiles the script in a sandboxed VM.
func NewLuaBehavior(id, script string) (*LuaBehavior, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(vm)

	if err := vm.DoString(script); err != nil {
		vm.Close()
		return nil, fmt.Errorf("compiling script for %s: %w", id, err)
	}
	fn := vm.GetGlobal("choose")
	if fn.Type() != lua.LTFunction {
		vm.Close()
		return nil, fmt.Errorf("script for %s does not define choose(state)", id)
	}
	return &LuaBehavior{id: id, vm: vm, fn: fn}, nil
}

// openSafeLibs opens base, table, string and math, then strips loaders
// and the random seed.
func openSafeLibs(vm *lua.LState) {
	lua.OpenBase(vm)
	lua.OpenTable(vm)
	lua.OpenString(vm)
	lua.OpenMath(vm)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage"} {
		vm.SetGlobal(name, lua.LNil)
	}
	if tbl, ok := vm.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("random", lua.LNil)
		tbl.RawSetString("randomseed", lua.LNil)
	}
}

// Choose implements Behavior.
func (b *LuaBehavior) Choose(ctx context.Context, v View) (Action, error) {
	b.vm.SetContext(ctx)
	defer b.vm.RemoveContext()

	state := b.vm.NewTable()
	state.RawSetString("self_hp", lua.LNumber(v.Self.Health()))
	state.RawSetString("self_max_hp", lua.LNumber(v.Self.MaxHealth()))
	state.RawSetString("self_mp", lua.LNumber(v.Self.Resource(combat.Mana)))
	state.RawSetString("player_hp", lua.LNumber(v.Player.Health()))
	state.RawSetString("player_max_hp", lua.LNumber(v.Player.MaxHealth()))
	state.RawSetString("turn", lua.LNumber(v.Turn))
	state.RawSetString("roll", lua.LNumber(v.Rand.IntN(100)))

	if err := b.vm.CallByParam(lua.P{Fn: b.fn, NRet: 1, Protect: true}, state); err != nil {
		return Action{}, fmt.Errorf("script %s: %w", b.id, err)
	}
	ret := b.vm.Get(-1)
	b.vm.Pop(1)

	s, ok := ret.(lua.LString)
	if !ok {
		return Action{}, fmt.Errorf("script %s returned %s, want string", b.id, ret.Type())
	}
	a, err := ParseEnemyAction(string(s))
	if err != nil {
		return Action{}, fmt.Errorf("script %s: %w", b.id, err)
	}
	return a, nil
}

// Close releases the VM.
func (b *LuaBehavior) Close() error {
	b.vm.Close()
	return nil
}
