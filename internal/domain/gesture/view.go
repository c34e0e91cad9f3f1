package gesture

import (
	"github.com/GriffinCanCode/phoneshell/internal/domain/layout"
)

// Icon is one rendered home screen or dock entry
type Icon struct {
	ID        string   `json:"id"`
	Type      ItemType `json:"type"`
	Label     string   `json:"label"`
	Jiggle    bool     `json:"jiggle"`
	Deletable bool     `json:"deletable"`
	Dragging  bool     `json:"dragging"`
	Preview   []string `json:"preview,omitempty"`
}

// FolderView is the open folder overlay
type FolderView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icons []Icon `json:"icons"`
}

// Widget is the clock widget slot
type Widget struct {
	Visible   bool `json:"visible"`
	Jiggle    bool `json:"jiggle"`
	Deletable bool `json:"deletable"`
}

// View is everything the UI needs to draw the home screen
type View struct {
	EditMode    bool        `json:"editMode"`
	Phase       Phase       `json:"phase"`
	ShowDone    bool        `json:"showDone"`
	Clock       Widget      `json:"clock"`
	Home        []Icon      `json:"home"`
	Dock        []Icon      `json:"dock"`
	OpenFolder  *FolderView `json:"openFolder,omitempty"`
	DockSlots   int         `json:"dockSlots"`
	MaxDockApps int         `json:"maxDockApps"`
}

// folderPreviewSize is how many member icons a folder tile shows
const folderPreviewSize = 9

// View renders m with the controller's affordances applied
func (c *Controller) View(m layout.Model) View {
	v := View{
		EditMode:    c.editMode,
		Phase:       c.phase,
		ShowDone:    c.editMode,
		Clock:       Widget{Visible: c.clock, Jiggle: c.editMode && c.clock, Deletable: c.editMode && c.clock},
		Home:        make([]Icon, 0, len(m.Home)),
		Dock:        make([]Icon, 0, len(m.Dock)),
		MaxDockApps: c.engine.MaxDock(),
	}
	v.DockSlots = v.MaxDockApps - len(m.Dock)

	for _, id := range m.Home {
		if f, ok := m.Folder(id); ok {
			v.Home = append(v.Home, c.folderIcon(f))
			continue
		}
		v.Home = append(v.Home, c.appIcon(id))
	}
	for _, id := range m.Dock {
		v.Dock = append(v.Dock, c.appIcon(id))
	}

	if f, ok := m.Folder(c.openFolder); ok {
		fv := &FolderView{ID: f.ID, Name: f.Name, Icons: make([]Icon, 0, len(f.AppIDs))}
		for _, id := range f.AppIDs {
			fv.Icons = append(fv.Icons, c.appIcon(id))
		}
		v.OpenFolder = fv
	}
	return v
}

func (c *Controller) appIcon(id string) Icon {
	icon := Icon{
		ID:       id,
		Type:     ItemApp,
		Label:    id,
		Jiggle:   c.editMode,
		Dragging: c.dragging(id),
	}
	if app, ok := c.engine.Catalog().Lookup(id); ok {
		if app.Name != "" {
			icon.Label = app.Name
		}
		icon.Deletable = c.editMode && app.Removable
	}
	return icon
}

func (c *Controller) folderIcon(f layout.Folder) Icon {
	preview := f.AppIDs
	if len(preview) > folderPreviewSize {
		preview = preview[:folderPreviewSize]
	}
	return Icon{
		ID:       f.ID,
		Type:     ItemFolder,
		Label:    f.Name,
		Jiggle:   c.editMode,
		Dragging: c.dragging(f.ID),
		Preview:  append([]string(nil), preview...),
	}
}

func (c *Controller) dragging(id string) bool {
	return c.phase != PhaseIdle && c.drag.ItemID == id
}
