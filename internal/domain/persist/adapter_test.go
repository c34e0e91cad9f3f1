package persist_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/phoneshell/internal/domain/layout"
	"github.com/GriffinCanCode/phoneshell/internal/domain/persist"
	"github.com/GriffinCanCode/phoneshell/internal/testutil"
)

func flush(t *testing.T, a *persist.Adapter) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.Flush(ctx))
}

func TestAdapterLoadDefaults(t *testing.T) {
	engine := testutil.Engine()
	a := persist.NewAdapter(persist.NewMemoryStore(), engine, nil)
	defer a.Close(context.Background())

	m := a.Load(context.Background(), "p1", "police")
	assert.True(t, m.Equal(engine.Default("police")))
	testutil.RequireValid(t, m, engine.MaxDock())
}

func TestAdapterLoadMalformed(t *testing.T) {
	engine := testutil.Engine()
	store := persist.NewMemoryStore()
	store.Put("p1", []byte(`{"installed_apps":"[\"phone\",\"notes\"]","dock_order":"garbage","folders":[],"home_screen_order":[]}`))

	core, logs := observer.New(zap.WarnLevel)
	a := persist.NewAdapter(store, engine, zap.New(core))
	defer a.Close(context.Background())

	m := a.Load(context.Background(), "p1", "")
	assert.Equal(t, []string{"phone", "notes"}, m.Installed)
	assert.Equal(t, []string{"phone"}, m.Dock, "default dock limited to installed apps")
	assert.Equal(t, []string{"notes"}, m.Home)
	testutil.RequireValid(t, m, engine.MaxDock())

	entries := logs.FilterMessage("Stored layout incomplete, defaulting fields").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "dock_order", entries[0].ContextMap()["fields"])
}

func TestAdapterLoadStoreError(t *testing.T) {
	engine := testutil.Engine()
	store := testutil.NewMockStore(t)
	store.On("Load", mock.Anything, "p1").Return(nil, errors.New("disk on fire"))

	a := persist.NewAdapter(store, engine, nil)
	defer a.Close(context.Background())

	m := a.Load(context.Background(), "p1", "")
	assert.True(t, m.Equal(engine.Default("")))
	store.AssertExpectations(t)
}

func TestAdapterSaveAndReload(t *testing.T) {
	engine := testutil.Engine()
	store := persist.NewMemoryStore()
	a := persist.NewAdapter(store, engine, nil)
	defer a.Close(context.Background())

	m := testutil.Model()
	a.Save("p1", m)
	flush(t, a)

	assert.Equal(t, 0, a.Pending())
	assert.True(t, a.Load(context.Background(), "p1", "").Equal(m))
}

func TestAdapterLoadSeesPendingSave(t *testing.T) {
	engine := testutil.Engine()
	store := testutil.NewMockStore(t)
	release := make(chan struct{})
	store.On("Save", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(nil)

	a := persist.NewAdapter(store, engine, nil)
	defer a.Close(context.Background())

	first := testutil.Model()
	a.Save("p1", first)
	require.Eventually(t, func() bool { return a.Pending() == 1 }, time.Second, time.Millisecond)

	second := first.Clone()
	second.Home = []string{"notes", "folder_work", "settings"}
	a.Save("p2", second)
	a.Save("p2", first)
	a.Save("p2", second)

	assert.True(t, a.Load(context.Background(), "p2", "").Equal(second))
	close(release)
	flush(t, a)

	// p1 once, p2 once with the latest model
	store.AssertNumberOfCalls(t, "Save", 2)
	store.AssertCalled(t, "Save", mock.Anything, "p2", second)
}

func TestAdapterLoadSeesWriteInFlight(t *testing.T) {
	engine := testutil.Engine()
	store := testutil.NewMockStore(t)
	started, release := make(chan struct{}), make(chan struct{})
	store.On("Save", mock.Anything, "p1", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(nil).Once()

	a := persist.NewAdapter(store, engine, nil)
	defer a.Close(context.Background())

	m := testutil.Model()
	m.Home = []string{"notes", "folder_work", "settings"}
	a.Save("p1", m)
	<-started

	// the save has left the queue but the store has not finished it; a load
	// in this window must not reach the store and read the older layout
	assert.Equal(t, 1, a.Pending())
	assert.True(t, a.Load(context.Background(), "p1", "").Equal(m))
	store.AssertNotCalled(t, "Load", mock.Anything, "p1")

	close(release)
	flush(t, a)
	assert.Equal(t, 0, a.Pending())
}

func TestAdapterSaveFailureIsLogged(t *testing.T) {
	engine := testutil.Engine()
	store := testutil.NewMockStore(t)
	store.On("Save", mock.Anything, "p1", mock.Anything).Return(errors.New("bridge down"))

	core, logs := observer.New(zap.WarnLevel)
	a := persist.NewAdapter(store, engine, zap.New(core))
	defer a.Close(context.Background())

	a.Save("p1", testutil.Model())
	flush(t, a)

	require.Equal(t, 1, logs.FilterMessage("Failed to save layout").Len())
}

func TestAdapterQueueFull(t *testing.T) {
	engine := testutil.Engine()
	store := testutil.NewMockStore(t)
	started, release := make(chan struct{}), make(chan struct{})
	var once sync.Once
	store.On("Save", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			once.Do(func() {
				close(started)
				<-release
			})
		}).
		Return(nil)

	core, logs := observer.New(zap.WarnLevel)
	a := persist.NewAdapter(store, engine, zap.New(core), persist.WithQueueSize(1))
	defer a.Close(context.Background())

	// p1 is being written, so the queue has room for exactly one more player
	a.Save("p1", testutil.Model())
	<-started
	a.Save("p2", testutil.Model())
	a.Save("p3", testutil.Model())

	assert.Equal(t, 1, logs.FilterMessage("Dropping layout save").Len())
	close(release)
	flush(t, a)
	store.AssertNumberOfCalls(t, "Save", 2)
}

func TestAdapterClose(t *testing.T) {
	engine := testutil.Engine()
	store := testutil.NewMockStore(t)
	store.On("Save", mock.Anything, "p1", mock.Anything).Return(nil).Once()

	a := persist.NewAdapter(store, engine, nil)
	a.Save("p1", testutil.Model())

	require.NoError(t, a.Close(context.Background()))
	store.AssertExpectations(t)
	store.AssertCalled(t, "Close")

	a.Save("p1", testutil.Model())
	assert.ErrorIs(t, a.Close(context.Background()), persist.ErrClosed)
}

func TestAdapterRestoreRepairsRecord(t *testing.T) {
	engine := testutil.Engine()
	a := persist.NewAdapter(persist.NewMemoryStore(), engine, nil)
	defer a.Close(context.Background())

	m := a.Restore("p1", layout.Partial{
		Installed: []string{"phone", "mail", "music"},
		Dock:      []string{"phone", "mail"},
		Home:      []string{"f"},
		Folders:   []layout.Folder{{ID: "f", Name: "x", AppIDs: []string{"mail", "music"}}},
	}, "")

	assert.Equal(t, []string{"phone", "mail"}, m.Dock)
	assert.Empty(t, m.Folders, "folder left with one member is dissolved")
	assert.Equal(t, []string{"music"}, m.Home)
}
