package encounter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_RestoreReplaysIdentically(t *testing.T) {
	cat := testCatalog(t)
	ctx := context.Background()
	hero := newHero(t, cat, 1)
	hero.SetConsumable("potion", 3)

	live, liveRec := newTestEngine(t, cat, WithIDFunc(func() string { return "fight-1" }))
	start, err := live.CreateSession(ctx, hero, spawn(t, cat, "wolf", "wolf"))
	require.NoError(t, err)

	for _, a := range []Action{Attack(AutoTarget), UseItem("potion")} {
		_, err := live.SubmitAction(ctx, start.SessionID, a)
		require.NoError(t, err)
	}

	snap, err := live.Snapshot(start.SessionID)
	require.NoError(t, err)
	raw, err := snap.Encode()
	require.NoError(t, err)
	decoded, err := DecodeSnapshot(raw)
	require.NoError(t, err)

	restored, restoredRec := newTestEngine(t, cat, WithMasterSeed(1))
	ev, err := restored.Restore(ctx, decoded, hero)
	require.NoError(t, err)
	assert.Equal(t, "fight-1", ev.SessionID)

	liveStatus, err := live.Status(start.SessionID)
	require.NoError(t, err)
	restoredStatus, err := restored.Status(start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, liveStatus, restoredStatus)

	for i := range 200 {
		a := Attack(AutoTarget)
		if i%5 == 4 {
			a = UseItem("potion")
		}
		want, wantErr := live.SubmitAction(ctx, start.SessionID, a)
		got, gotErr := restored.SubmitAction(ctx, start.SessionID, a)
		require.Equal(t, wantErr, gotErr)
		require.Equal(t, want, got, "turn %d diverged", want.Turn)
		if want.State.Terminal() {
			break
		}
	}

	require.Len(t, liveRec.all(), 1)
	require.Len(t, restoredRec.all(), 1)
	assert.Equal(t, liveRec.all()[0], restoredRec.all()[0])
}

func TestSnapshot_RestoreGuards(t *testing.T) {
	cat := testCatalog(t)
	ctx := context.Background()
	e, _ := newTestEngine(t, cat)
	hero := newHero(t, cat, 1)

	start, err := e.CreateSession(ctx, hero, spawn(t, cat, "tank"))
	require.NoError(t, err)
	snap, err := e.Snapshot(start.SessionID)
	require.NoError(t, err)

	_, err = e.Restore(ctx, snap, hero)
	assert.ErrorIs(t, err, ErrSessionActive)

	_, err = e.Restore(ctx, snap, newHero(t, cat, 2))
	assert.Error(t, err, "wrong character")

	bad := snap
	bad.State = StateVictory.String()
	_, err = e.Restore(ctx, bad, hero)
	assert.Error(t, err)

	bad = snap
	bad.Enemies = []EnemySnapshot{{ID: "dragon", Level: 1}}
	_, err = e.Restore(ctx, bad, hero)
	assert.Error(t, err)

	_, err = DecodeSnapshot([]byte("{"))
	assert.Error(t, err)
}
