// Package testutil provides mocks and fixtures shared by package tests.
package testutil

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/phoneshell/internal/domain/catalog"
	"github.com/GriffinCanCode/phoneshell/internal/domain/layout"
)

// MockStore is a mock implementation of persist.Store
type MockStore struct {
	mock.Mock
}

// Name mocks the Name method
func (m *MockStore) Name() string {
	args := m.Called()
	return args.String(0)
}

// Load mocks the Load method
func (m *MockStore) Load(ctx context.Context, player string) ([]byte, error) {
	args := m.Called(ctx, player)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Save mocks the Save method
func (m *MockStore) Save(ctx context.Context, player string, model layout.Model) error {
	args := m.Called(ctx, player, model)
	return args.Error(0)
}

// Close mocks the Close method
func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// NewMockStore creates a mock store named "mock" whose Close succeeds
func NewMockStore(t *testing.T) *MockStore {
	t.Helper()
	m := new(MockStore)
	m.On("Name").Return("mock").Maybe()
	m.On("Close").Return(nil).Maybe()
	return m
}

// MockSender is a mock implementation of bridge.Sender
type MockSender struct {
	mock.Mock
}

// Send mocks the Send method
func (m *MockSender) Send(ctx context.Context, event string, payload any) error {
	args := m.Called(ctx, event, payload)
	return args.Error(0)
}

// Enabled mocks the Enabled method
func (m *MockSender) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

// NewMockSender creates an enabled mock sender
func NewMockSender(t *testing.T) *MockSender {
	t.Helper()
	m := new(MockSender)
	m.On("Enabled").Return(true).Maybe()
	return m
}

// Catalog returns a small catalog: phone, messages and settings are fixed,
// mail, music and notes are removable, mdt is police only.
func Catalog() *catalog.Catalog {
	return catalog.New([]catalog.App{
		{ID: "phone", Name: "phone_title"},
		{ID: "messages", Name: "messages_title"},
		{ID: "settings", Name: "settings_title"},
		{ID: "mail", Name: "mail_title", Removable: true},
		{ID: "music", Name: "music_title", Removable: true},
		{ID: "notes", Name: "notes_title", Removable: true},
		{ID: "mdt", Name: "mdt_title", Removable: true, RequiredJobs: []string{"police"}},
	}, []string{"phone", "messages"}, 4)
}

// Engine returns an engine over Catalog with predictable folder ids
func Engine() *layout.Engine {
	n := 0
	return layout.NewEngine(Catalog(), layout.WithFolderIDs(func() string {
		n++
		return "folder_" + strconv.Itoa(n)
	}))
}

// Model returns a valid layout over Catalog with one folder
func Model() layout.Model {
	return layout.Model{
		Installed: []string{"phone", "messages", "settings", "mail", "music", "notes"},
		Dock:      []string{"phone", "messages"},
		Home:      []string{"settings", "folder_work", "notes"},
		Folders:   []layout.Folder{{ID: "folder_work", Name: "Work", AppIDs: []string{"mail", "music"}}},
	}
}

// RequireValid fails the test if m breaks a placement invariant
func RequireValid(t *testing.T, m layout.Model, maxDock int) {
	t.Helper()
	require.NoError(t, layout.Validate(m, maxDock))
	require.True(t, layout.Complete(m), "every installed app should be placed")
}
