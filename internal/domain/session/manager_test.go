package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/GriffinCanCode/phoneshell/internal/bridge"
	"github.com/GriffinCanCode/phoneshell/internal/domain/gesture"
	"github.com/GriffinCanCode/phoneshell/internal/domain/layout"
	"github.com/GriffinCanCode/phoneshell/internal/domain/persist"
	"github.com/GriffinCanCode/phoneshell/internal/domain/session"
	"github.com/GriffinCanCode/phoneshell/internal/infrastructure/monitoring"
	tu "github.com/GriffinCanCode/phoneshell/internal/testutil"
)

type recorder struct {
	mu      sync.Mutex
	updates []session.Update
}

func (r *recorder) Publish(player string, u session.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.updates))
	for i, u := range r.updates {
		out[i] = u.Type
	}
	return out
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	manager *session.Manager
	store   *persist.MemoryStore
	adapter *persist.Adapter
	pub     *recorder
	metrics *monitoring.Metrics
	clock   *clock
	engine  *layout.Engine
}

func newFixture(t *testing.T, opts ...session.Option) *fixture {
	t.Helper()
	f := &fixture{
		store:   persist.NewMemoryStore(),
		pub:     &recorder{},
		metrics: monitoring.NewMetrics(),
		clock:   &clock{t: time.Unix(1700000000, 0)},
		engine:  tu.Engine(),
	}
	require.NoError(t, f.store.Save(context.Background(), "p1", tu.Model()))
	f.adapter = persist.NewAdapter(f.store, f.engine, nil)
	t.Cleanup(func() { _ = f.adapter.Close(context.Background()) })

	opts = append([]session.Option{session.WithMetrics(f.metrics), session.WithClock(f.clock.now)}, opts...)
	f.manager = session.NewManager(f.engine, f.adapter, f.pub, nil, opts...)
	t.Cleanup(f.manager.Close)
	return f
}

func (f *fixture) stored(t *testing.T, player string) layout.Model {
	t.Helper()
	require.NoError(t, f.adapter.Flush(context.Background()))
	data, err := f.store.Load(context.Background(), player)
	require.NoError(t, err)
	return f.engine.Normalize(persist.Decode(data), "")
}

func TestSnapshotLoadsStoredLayout(t *testing.T) {
	f := newFixture(t)

	snap, err := f.manager.Snapshot(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, snap.Layout.Equal(tu.Model()))
	assert.Equal(t, uint64(0), snap.Version)
	assert.Equal(t, 1, f.manager.Count())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PhonesActive))
}

func TestSnapshotDefaultsUnknownPlayer(t *testing.T) {
	f := newFixture(t)

	snap, err := f.manager.Snapshot(context.Background(), "new")
	require.NoError(t, err)
	assert.True(t, snap.Layout.Equal(f.engine.Default("")))
	assert.Equal(t, []string{"new"}, f.manager.Players())
}

func TestSnapshotRequiresPlayer(t *testing.T) {
	f := newFixture(t)
	_, err := f.manager.Snapshot(context.Background(), "")
	assert.ErrorIs(t, err, session.ErrNoPlayer)
}

func TestMutationAppliesSavesAndPublishes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.manager.CreateFolder(ctx, "p1", "notes", "settings")
	require.NoError(t, err)
	require.True(t, res.Changed)
	assert.Equal(t, uint64(1), res.Snapshot.Version)
	tu.RequireValid(t, res.Snapshot.Layout, f.engine.MaxDock())
	assert.Equal(t, []string{"folder_1", "folder_work"}, res.Snapshot.Layout.Home)

	assert.True(t, f.stored(t, "p1").Equal(res.Snapshot.Layout))
	assert.Equal(t, []string{session.UpdateLayout}, f.pub.types())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Mutations.WithLabelValues("createFolder", session.ResultApplied)))
}

func TestNoOpIsReportedNotApplied(t *testing.T) {
	f := newFixture(t)

	res, err := f.manager.CreateFolder(context.Background(), "p1", "notes", "notes")
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, "self drop", res.Reason)
	assert.Equal(t, uint64(0), res.Snapshot.Version)
	assert.True(t, res.Snapshot.Layout.Equal(tu.Model()))
	assert.Empty(t, f.pub.types())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Mutations.WithLabelValues("createFolder", session.ResultNoOp)))
}

func TestInvalidReorderIsAnError(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.Reorder(context.Background(), "p1", layout.Dock, []string{"phone"})
	assert.ErrorIs(t, err, layout.ErrNotPermutation)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Mutations.WithLabelValues("reorder", session.ResultInvalid)))
}

func TestOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	steps := []struct {
		name string
		run  func() (session.Result, error)
	}{
		{"move notes to dock", func() (session.Result, error) {
			return f.manager.MoveToContainer(ctx, "p1", "notes", layout.Home, layout.Dock, 0)
		}},
		{"add settings to folder", func() (session.Result, error) {
			return f.manager.AddToFolder(ctx, "p1", "folder_work", "settings")
		}},
		{"remove mail from folder", func() (session.Result, error) {
			return f.manager.RemoveFromFolder(ctx, "p1", "folder_work", "mail")
		}},
		{"rename folder", func() (session.Result, error) {
			return f.manager.RenameFolder(ctx, "p1", "folder_work", "Office")
		}},
		{"reorder dock", func() (session.Result, error) {
			return f.manager.Reorder(ctx, "p1", layout.Dock, []string{"phone", "messages", "notes"})
		}},
		{"uninstall music", func() (session.Result, error) {
			return f.manager.Uninstall(ctx, "p1", "music")
		}},
	}

	for i, step := range steps {
		res, err := step.run()
		require.NoError(t, err, step.name)
		require.True(t, res.Changed, step.name)
		assert.Equal(t, uint64(i+1), res.Snapshot.Version, step.name)
		tu.RequireValid(t, res.Snapshot.Layout, f.engine.MaxDock())
	}

	snap, err := f.manager.Snapshot(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"phone", "messages", "notes"}, snap.Layout.Dock)
	assert.Equal(t, []string{"settings", "mail"}, snap.Layout.Home)
	assert.Empty(t, snap.Layout.Folders)
	assert.True(t, f.stored(t, "p1").Equal(snap.Layout))
}

func TestInstallUsesPlayerJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.manager.Install(ctx, "p1", "mdt")
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, "app restricted to other jobs", res.Reason)

	_, err = f.manager.HandleEvent(ctx, bridge.Event{
		Type:   bridge.TypeLoadData,
		Player: "p1",
		Job:    "police",
		Layout: layout.FromModel(tu.Model()),
	})
	require.NoError(t, err)

	res, err = f.manager.Install(ctx, "p1", "mdt")
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "mdt", res.Snapshot.Layout.Home[len(res.Snapshot.Layout.Home)-1])
}

func TestLongPressTimerEntersEditMode(t *testing.T) {
	f := newFixture(t, session.WithLongPress(10*time.Millisecond), session.WithClock(time.Now))
	ctx := context.Background()

	_, err := f.manager.PressStart(ctx, "p1", "notes", r2.Vec{X: 5, Y: 5})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap, err := f.manager.Snapshot(ctx, "p1")
		return err == nil && snap.State.EditMode
	}, time.Second, 5*time.Millisecond)
}

func TestPressReleasedEarlyDoesNotEditMode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manager.PressStart(ctx, "p1", "clock", r2.Vec{})
	require.NoError(t, err)
	f.clock.advance(100 * time.Millisecond)
	snap, err := f.manager.PressEnd(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, snap.State.EditMode)
}

func TestPressHeldUntilReleaseEntersEditMode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manager.PressStart(ctx, "p1", "clock", r2.Vec{})
	require.NoError(t, err)
	f.clock.advance(gesture.DefaultLongPress)
	snap, err := f.manager.PressEnd(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, snap.State.EditMode)
	assert.True(t, snap.View.ShowDone)
}

func TestPressMoveCancels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manager.PressStart(ctx, "p1", "notes", r2.Vec{})
	require.NoError(t, err)
	_, err = f.manager.PressMove(ctx, "p1", r2.Vec{X: 50})
	require.NoError(t, err)
	f.clock.advance(time.Second)
	snap, err := f.manager.PressEnd(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, snap.State.EditMode)
}

func TestDragAndDrop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manager.BeginDrag(ctx, "p1", "notes")
	assert.ErrorIs(t, err, gesture.ErrNotEditing)

	_, err = f.manager.EnterEditMode(ctx, "p1")
	require.NoError(t, err)
	snap, err := f.manager.BeginDrag(ctx, "p1", "notes")
	require.NoError(t, err)
	assert.Equal(t, gesture.PhaseDragging, snap.State.Phase)

	res, err := f.manager.DropOn(ctx, "p1", gesture.Hit{Zone: gesture.ZoneMain, TargetID: "settings", TargetType: gesture.ItemApp})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, gesture.ActionCreateFolder, res.Action)
	assert.Equal(t, gesture.PhaseIdle, res.Snapshot.State.Phase)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Mutations.WithLabelValues("drop:createFolder", session.ResultApplied)))

	_, err = f.manager.DropOn(ctx, "p1", gesture.Hit{Zone: gesture.ZoneMain})
	assert.ErrorIs(t, err, gesture.ErrNoDrag)
}

func TestDropOutsideZonesIsIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manager.EnterEditMode(ctx, "p1")
	require.NoError(t, err)
	_, err = f.manager.BeginDrag(ctx, "p1", "notes")
	require.NoError(t, err)

	res, err := f.manager.Drop(ctx, "p1", r2.Vec{X: 1000, Y: 1000}, gesture.Scene{})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, "released outside drop zones", res.Reason)
	assert.Equal(t, gesture.PhaseIdle, res.Snapshot.State.Phase)
}

func TestDoneCancelsDrag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manager.EnterEditMode(ctx, "p1")
	require.NoError(t, err)
	_, err = f.manager.BeginDrag(ctx, "p1", "notes")
	require.NoError(t, err)

	snap, err := f.manager.Done(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, snap.State.EditMode)
	assert.Equal(t, gesture.PhaseIdle, snap.State.Phase)
}

func TestFolderViewAndClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	snap, err := f.manager.OpenFolder(ctx, "p1", "folder_work")
	require.NoError(t, err)
	require.NotNil(t, snap.View.OpenFolder)
	assert.Equal(t, "Work", snap.View.OpenFolder.Name)

	snap, err = f.manager.CloseFolder(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, snap.View.OpenFolder)

	snap, err = f.manager.SetClockWidgetVisible(ctx, "p1", false)
	require.NoError(t, err)
	assert.False(t, snap.View.Clock.Visible)

	_, err = f.manager.EnterEditMode(ctx, "p1")
	require.NoError(t, err)
	_, err = f.manager.OpenFolder(ctx, "p1", "folder_work")
	assert.ErrorIs(t, err, gesture.ErrEditing)
}

func TestRemovingOpenFolderClosesView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manager.OpenFolder(ctx, "p1", "folder_work")
	require.NoError(t, err)
	res, err := f.manager.RemoveFromFolder(ctx, "p1", "folder_work", "mail")
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Nil(t, res.Snapshot.View.OpenFolder)
	assert.Empty(t, res.Snapshot.State.OpenFolder)
}

func TestEvictIdle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manager.Snapshot(ctx, "p1")
	require.NoError(t, err)
	f.clock.advance(time.Hour)
	_, err = f.manager.Snapshot(ctx, "p2")
	require.NoError(t, err)
	_, err = f.manager.CloseFolder(ctx, "p2")
	require.NoError(t, err)

	assert.Equal(t, 1, f.manager.EvictIdle(30*time.Minute))
	assert.Equal(t, []string{"p2"}, f.manager.Players())
	assert.False(t, f.manager.Evict("p1"))
	assert.True(t, f.manager.Evict("p2"))
	assert.Zero(t, f.manager.Count())
}

func TestConcurrentMutationsStayValid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 4 {
			case 0:
				_, _ = f.manager.MoveToContainer(ctx, "p1", "notes", layout.Home, layout.Dock, -1)
			case 1:
				_, _ = f.manager.MoveToContainer(ctx, "p1", "notes", layout.Dock, layout.Home, 0)
			case 2:
				_, _ = f.manager.AddToFolder(ctx, "p1", "folder_work", "settings")
			case 3:
				_, _ = f.manager.RemoveFromFolder(ctx, "p1", "folder_work", "settings")
			}
		}(i)
	}
	wg.Wait()

	snap, err := f.manager.Snapshot(ctx, "p1")
	require.NoError(t, err)
	tu.RequireValid(t, snap.Layout, f.engine.MaxDock())
	assert.True(t, f.stored(t, "p1").Equal(snap.Layout))
}
