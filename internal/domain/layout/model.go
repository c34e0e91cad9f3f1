package layout

import (
	"fmt"
	"slices"
	"strings"
)

// Folder is a named, ordered group of apps collapsed into one home slot
type Folder struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	AppIDs []string `json:"appIds"`
}

// Model is the placement of every installed app across dock, home and folders.
// Values are treated as immutable: operations return modified copies.
type Model struct {
	Installed []string `json:"installed_apps"`
	Dock      []string `json:"dock_order"`
	Home      []string `json:"home_screen_order"`
	Folders   []Folder `json:"folders"`
}

// Kind identifies a container type
type Kind int

const (
	KindNone Kind = iota
	KindDock
	KindHome
	KindFolder
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindDock:
		return "dock"
	case KindHome:
		return "home"
	case KindFolder:
		return "folder"
	default:
		return "none"
	}
}

// Container names one ordered sequence of the model
type Container struct {
	Kind     Kind
	FolderID string
}

var (
	// Dock is the dock container
	Dock = Container{Kind: KindDock}
	// Home is the main grid container
	Home = Container{Kind: KindHome}
	// Nowhere is returned for items that are not placed
	Nowhere = Container{Kind: KindNone}
)

// InFolder returns the container of folder id
func InFolder(id string) Container {
	return Container{Kind: KindFolder, FolderID: id}
}

// String returns "dock", "home" or "folder:<id>"
func (c Container) String() string {
	if c.Kind == KindFolder {
		return "folder:" + c.FolderID
	}
	return c.Kind.String()
}

// ParseContainer is the inverse of Container.String
func ParseContainer(s string) (Container, bool) {
	switch s {
	case "dock":
		return Dock, true
	case "home":
		return Home, true
	}
	if id, ok := strings.CutPrefix(s, "folder:"); ok && id != "" {
		return InFolder(id), true
	}
	return Nowhere, false
}

// MarshalText encodes the container as its string form
func (c Container) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes "dock", "home" or "folder:<id>"
func (c *Container) UnmarshalText(text []byte) error {
	parsed, ok := ParseContainer(string(text))
	if !ok {
		return fmt.Errorf("unknown container %q", string(text))
	}
	*c = parsed
	return nil
}

// Clone returns a deep copy
func (m Model) Clone() Model {
	out := Model{
		Installed: slices.Clone(m.Installed),
		Dock:      slices.Clone(m.Dock),
		Home:      slices.Clone(m.Home),
	}
	if m.Folders != nil {
		out.Folders = make([]Folder, len(m.Folders))
		for i, f := range m.Folders {
			out.Folders[i] = Folder{ID: f.ID, Name: f.Name, AppIDs: slices.Clone(f.AppIDs)}
		}
	}
	return out
}

// Equal reports structural equality. Nil and empty sequences are equal.
func (m Model) Equal(o Model) bool {
	if !slices.Equal(m.Installed, o.Installed) ||
		!slices.Equal(m.Dock, o.Dock) ||
		!slices.Equal(m.Home, o.Home) ||
		len(m.Folders) != len(o.Folders) {
		return false
	}
	for i := range m.Folders {
		a, b := m.Folders[i], o.Folders[i]
		if a.ID != b.ID || a.Name != b.Name || !slices.Equal(a.AppIDs, b.AppIDs) {
			return false
		}
	}
	return true
}

// IsInstalled reports whether app id is installed
func (m Model) IsInstalled(id string) bool {
	return slices.Contains(m.Installed, id)
}

// IsDocked reports whether app id sits in the dock
func (m Model) IsDocked(id string) bool {
	return slices.Contains(m.Dock, id)
}

// IsFolder reports whether id names an existing folder
func (m Model) IsFolder(id string) bool {
	return m.folderIndex(id) >= 0
}

// Folder returns the folder with the given id
func (m Model) Folder(id string) (Folder, bool) {
	i := m.folderIndex(id)
	if i < 0 {
		return Folder{}, false
	}
	return m.Folders[i], true
}

// FolderFor returns the folder holding app id
func (m Model) FolderFor(appID string) (Folder, bool) {
	for _, f := range m.Folders {
		if slices.Contains(f.AppIDs, appID) {
			return f, true
		}
	}
	return Folder{}, false
}

// ContainerOf locates id (an app or a folder)
func (m Model) ContainerOf(id string) Container {
	if slices.Contains(m.Dock, id) {
		return Dock
	}
	if slices.Contains(m.Home, id) {
		return Home
	}
	if f, ok := m.FolderFor(id); ok {
		return InFolder(f.ID)
	}
	return Nowhere
}

// Items returns the ordered contents of c
func (m Model) Items(c Container) []string {
	switch c.Kind {
	case KindDock:
		return slices.Clone(m.Dock)
	case KindHome:
		return slices.Clone(m.Home)
	case KindFolder:
		if f, ok := m.Folder(c.FolderID); ok {
			return slices.Clone(f.AppIDs)
		}
	}
	return nil
}

func (m Model) folderIndex(id string) int {
	for i, f := range m.Folders {
		if f.ID == id {
			return i
		}
	}
	return -1
}
