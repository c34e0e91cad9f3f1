package layout

import (
	"fmt"
	"slices"
	"strings"

	"github.com/GriffinCanCode/phoneshell/internal/domain/catalog"
	"github.com/GriffinCanCode/phoneshell/internal/shared/id"
)

// DefaultFolderName is used for folders created by dropping one app onto another
const DefaultFolderName = "Folder"

// Engine applies layout mutations. Every operation takes a model and returns a new,
// invariant-satisfying model, or the unchanged input with a no-op error.
type Engine struct {
	catalog     *catalog.Catalog
	maxDock     int
	folderName  string
	newFolderID func() string
}

// Option configures an Engine
type Option func(*Engine)

// WithFolderIDs overrides folder id generation
func WithFolderIDs(fn func() string) Option {
	return func(e *Engine) { e.newFolderID = fn }
}

// WithFolderName sets the name given to new folders
func WithFolderName(name string) Option {
	return func(e *Engine) {
		if strings.TrimSpace(name) != "" {
			e.folderName = strings.TrimSpace(name)
		}
	}
}

// WithMaxDock overrides the catalog's dock capacity
func WithMaxDock(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDock = n
		}
	}
}

// NewEngine creates an engine bound to a catalog
func NewEngine(c *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:    c,
		maxDock:    c.MaxDock(),
		folderName: DefaultFolderName,
		newFolderID: func() string {
			return id.NewFolderID().String()
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine validates against
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// MaxDock returns the dock capacity
func (e *Engine) MaxDock() int {
	return e.maxDock
}

// Default returns the first-launch layout for a player with the given job
func (e *Engine) Default(job string) Model {
	installed := e.catalog.DefaultInstalled(job)

	var dock []string
	for _, appID := range e.catalog.DefaultDock() {
		if slices.Contains(installed, appID) && len(dock) < e.maxDock {
			dock = append(dock, appID)
		}
	}

	var home []string
	for _, appID := range e.catalog.SortByPosition(installed) {
		if !slices.Contains(dock, appID) {
			home = append(home, appID)
		}
	}

	return Model{
		Installed: installed,
		Dock:      dock,
		Home:      home,
		Folders:   []Folder{},
	}
}

// MoveToContainer moves item from one container to index in another. Negative or
// out of range indexes append. Folders only move within home.
func (e *Engine) MoveToContainer(m Model, item string, from, to Container, index int) (Model, error) {
	if item == "" || m.ContainerOf(item) != from {
		return m, ErrNotInContainer
	}
	if m.IsFolder(item) && (from != Home || to != Home) {
		return m, ErrFolderNotMovable
	}

	switch to.Kind {
	case KindDock:
		if from != Dock && len(m.Dock) >= e.maxDock {
			return m, ErrDockFull
		}
	case KindHome:
	case KindFolder:
		if !m.IsFolder(to.FolderID) {
			return m, ErrFolderNotFound
		}
	default:
		return m, ErrNotInContainer
	}

	out := m.Clone()
	if from == to {
		items := out.Items(from)
		i := slices.Index(items, item)
		reordered := insertAt(slices.Delete(slices.Clone(items), i, i+1), index, item)
		if slices.Equal(items, reordered) {
			return m, ErrUnchanged
		}
		out.set(from, reordered)
		return out, nil
	}

	out.detach(item)
	out.set(to, insertAt(out.Items(to), index, item))
	return out, nil
}

// CreateFolder groups dropped and target into a new folder. The folder takes the
// target's home slot, or is appended to home when the target was docked.
func (e *Engine) CreateFolder(m Model, dropped, target string) (Model, error) {
	if dropped == target {
		return m, ErrSelfDrop
	}
	for _, appID := range []string{dropped, target} {
		if m.IsFolder(appID) {
			return m, ErrNotBareApp
		}
		if c := m.ContainerOf(appID); c != Dock && c != Home {
			return m, ErrNotBareApp
		}
	}

	out := m.Clone()
	folder := Folder{
		ID:     e.allocFolderID(out),
		Name:   e.folderName,
		AppIDs: []string{target, dropped},
	}

	if i := slices.Index(out.Home, target); i >= 0 {
		out.Home[i] = folder.ID
	} else {
		out.Dock = remove(out.Dock, target)
		out.Home = append(out.Home, folder.ID)
	}
	out.Dock = remove(out.Dock, dropped)
	out.Home = remove(out.Home, dropped)
	out.Folders = append(out.Folders, folder)

	return out, nil
}

// AddToFolder appends app to the end of folder, taking it out of its previous container
func (e *Engine) AddToFolder(m Model, folderID, appID string) (Model, error) {
	if !m.IsFolder(folderID) {
		return m, ErrFolderNotFound
	}
	if m.IsFolder(appID) {
		return m, ErrNotBareApp
	}

	switch m.ContainerOf(appID) {
	case Nowhere:
		if !m.IsInstalled(appID) {
			return m, ErrNotInstalled
		}
		return m, ErrNotInContainer
	case InFolder(folderID):
		return m, ErrUnchanged
	}

	out := m.Clone()
	out.detach(appID)
	i := out.folderIndex(folderID)
	out.Folders[i].AppIDs = append(out.Folders[i].AppIDs, appID)
	return out, nil
}

// RemoveFromFolder takes app out of folder and returns it to home. A folder left
// with fewer than two apps is dissolved in place.
func (e *Engine) RemoveFromFolder(m Model, folderID, appID string) (Model, error) {
	f, ok := m.Folder(folderID)
	if !ok {
		return m, ErrFolderNotFound
	}
	if !slices.Contains(f.AppIDs, appID) {
		return m, ErrNotInContainer
	}

	out := m.Clone()
	i := out.folderIndex(folderID)
	out.Folders[i].AppIDs = remove(out.Folders[i].AppIDs, appID)
	if len(out.Folders[i].AppIDs) < MinFolderSize {
		out.dissolve(folderID, appID)
	} else {
		out.Home = append(out.Home, appID)
	}
	return out, nil
}

// RenameFolder sets a folder's name. Blank names keep the previous name.
func (e *Engine) RenameFolder(m Model, folderID, name string) (Model, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return m, ErrEmptyName
	}
	f, ok := m.Folder(folderID)
	if !ok {
		return m, ErrFolderNotFound
	}
	if f.Name == name {
		return m, ErrUnchanged
	}

	out := m.Clone()
	out.Folders[out.folderIndex(folderID)].Name = name
	return out, nil
}

// ReorderWithinContainer replaces a container's sequence with ordered, which must
// be a permutation of its current contents.
func (e *Engine) ReorderWithinContainer(m Model, c Container, ordered []string) (Model, error) {
	if c.Kind == KindFolder && !m.IsFolder(c.FolderID) {
		return m, ErrFolderNotFound
	}
	if c.Kind == KindNone {
		return m, ErrNotInContainer
	}

	current := m.Items(c)
	if !isPermutation(current, ordered) {
		return m, ErrNotPermutation
	}
	if slices.Equal(current, ordered) {
		return m, ErrUnchanged
	}

	out := m.Clone()
	out.set(c, slices.Clone(ordered))
	return out, nil
}

// UninstallApp removes a removable app from the phone and from whichever container
// holds it.
func (e *Engine) UninstallApp(m Model, appID string) (Model, error) {
	if !m.IsInstalled(appID) {
		return m, ErrNotInstalled
	}
	if !e.catalog.IsRemovable(appID) {
		return m, ErrNotRemovable
	}

	out := m.Clone()
	out.Installed = remove(out.Installed, appID)
	out.detach(appID)
	return out, nil
}

// InstallApp adds a catalog app the job may use and places it at the end of home
func (e *Engine) InstallApp(m Model, appID, job string) (Model, error) {
	app, ok := e.catalog.Lookup(appID)
	if !ok {
		return m, ErrUnknownApp
	}
	if !app.AllowsJob(job) {
		return m, ErrJobRestricted
	}
	if m.IsInstalled(appID) {
		return m, ErrAlreadyInstalled
	}

	out := m.Clone()
	out.Installed = append(out.Installed, appID)
	if out.ContainerOf(appID) == Nowhere {
		out.Home = append(out.Home, appID)
	}
	return out, nil
}

func (e *Engine) allocFolderID(m Model) string {
	base := e.newFolderID()
	if base == "" {
		base = id.NewFolderID().String()
	}
	candidate := base
	for n := 2; m.IsFolder(candidate) || m.IsInstalled(candidate); n++ {
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return candidate
}

// detach takes id out of whatever holds it, dissolving a folder that falls below
// the minimum size
func (m *Model) detach(id string) {
	if i := slices.Index(m.Dock, id); i >= 0 {
		m.Dock = slices.Delete(m.Dock, i, i+1)
		return
	}
	if i := slices.Index(m.Home, id); i >= 0 {
		m.Home = slices.Delete(m.Home, i, i+1)
		return
	}
	for fi := range m.Folders {
		f := &m.Folders[fi]
		if i := slices.Index(f.AppIDs, id); i >= 0 {
			f.AppIDs = slices.Delete(f.AppIDs, i, i+1)
			if len(f.AppIDs) < MinFolderSize {
				m.dissolve(f.ID)
			}
			return
		}
	}
}

// dissolve deletes a folder and splices its members, followed by extra, into home
// at the folder's slot. Folders missing from home have their apps appended.
func (m *Model) dissolve(folderID string, extra ...string) {
	i := m.folderIndex(folderID)
	if i < 0 {
		return
	}
	members := append(slices.Clone(m.Folders[i].AppIDs), extra...)
	m.Folders = slices.Delete(m.Folders, i, i+1)

	if slot := slices.Index(m.Home, folderID); slot >= 0 {
		m.Home = slices.Replace(m.Home, slot, slot+1, members...)
		return
	}
	m.Home = append(m.Home, members...)
}

func (m *Model) set(c Container, items []string) {
	switch c.Kind {
	case KindDock:
		m.Dock = items
	case KindHome:
		m.Home = items
	case KindFolder:
		if i := m.folderIndex(c.FolderID); i >= 0 {
			m.Folders[i].AppIDs = items
		}
	}
}

func insertAt(s []string, index int, ids ...string) []string {
	if index < 0 || index > len(s) {
		index = len(s)
	}
	return slices.Insert(s, index, ids...)
}

func remove(s []string, id string) []string {
	if i := slices.Index(s, id); i >= 0 {
		return slices.Delete(s, i, i+1)
	}
	return s
}

func isPermutation(current, ordered []string) bool {
	if len(current) != len(ordered) {
		return false
	}
	counts := make(map[string]int, len(current))
	for _, id := range current {
		counts[id]++
	}
	for _, id := range ordered {
		counts[id]--
		if counts[id] < 0 {
			return false
		}
	}
	return true
}
