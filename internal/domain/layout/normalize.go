package layout

import (
	"slices"
	"strings"
)

// Field flags one field of a stored layout record
type Field uint8

const (
	FieldInstalled Field = 1 << iota
	FieldDock
	FieldFolders
	FieldHome
)

// AllFields marks every record field
const AllFields = FieldInstalled | FieldDock | FieldFolders | FieldHome

// Has reports whether every flag in x is set
func (f Field) Has(x Field) bool {
	return f&x == x
}

// String lists the set flags
func (f Field) String() string {
	var names []string
	for _, n := range []struct {
		flag Field
		name string
	}{
		{FieldInstalled, "installed_apps"},
		{FieldDock, "dock_order"},
		{FieldFolders, "folders"},
		{FieldHome, "home_screen_order"},
	} {
		if f.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}

// Partial is a layout as read from storage. Fields named in Missing were absent
// or unparseable and get their defaults during normalization.
type Partial struct {
	Installed []string
	Dock      []string
	Folders   []Folder
	Home      []string
	Missing   Field
}

// FromModel wraps a model as a partial with every field present
func FromModel(m Model) Partial {
	c := m.Clone()
	return Partial{
		Installed: c.Installed,
		Dock:      c.Dock,
		Folders:   c.Folders,
		Home:      c.Home,
	}
}

// Normalize turns stored data into a model satisfying every placement invariant.
// Missing fields fall back to defaults, invalid entries are dropped and undersized
// folders are dissolved. A model that passes Validate comes back unchanged.
func (e *Engine) Normalize(p Partial, job string) Model {
	out := Model{Folders: []Folder{}}

	if p.Missing.Has(FieldInstalled) {
		out.Installed = e.catalog.DefaultInstalled(job)
	} else {
		out.Installed = dedupe(p.Installed)
	}
	installed := make(map[string]bool, len(out.Installed))
	for _, appID := range out.Installed {
		installed[appID] = true
	}
	placed := make(map[string]bool, len(out.Installed))

	dock := p.Dock
	if p.Missing.Has(FieldDock) {
		dock = e.catalog.DefaultDock()
	}
	for _, appID := range dock {
		if installed[appID] && !placed[appID] && len(out.Dock) < e.maxDock {
			out.Dock = append(out.Dock, appID)
			placed[appID] = true
		}
	}

	// dissolved folders keep their surviving members in order until home is built
	type remnant struct {
		id      string
		members []string
	}
	var remnants []remnant
	if !p.Missing.Has(FieldFolders) {
		folderIDs := make(map[string]bool, len(p.Folders))
		for _, f := range p.Folders {
			folderIDs[f.ID] = true
		}
		taken := make(map[string]bool, len(p.Folders))
		for _, f := range p.Folders {
			if f.ID == "" || taken[f.ID] || installed[f.ID] {
				continue
			}
			taken[f.ID] = true

			var members []string
			for _, appID := range f.AppIDs {
				if installed[appID] && !placed[appID] && !folderIDs[appID] {
					members = append(members, appID)
					placed[appID] = true
				}
			}
			if len(members) < MinFolderSize {
				remnants = append(remnants, remnant{id: f.ID, members: members})
				continue
			}

			name := strings.TrimSpace(f.Name)
			if name == "" {
				name = e.folderName
			}
			out.Folders = append(out.Folders, Folder{ID: f.ID, Name: name, AppIDs: members})
		}
	}

	referenced := make(map[string]bool, len(out.Folders))
	if !p.Missing.Has(FieldHome) {
		for _, entry := range p.Home {
			switch {
			case out.IsFolder(entry):
				if !referenced[entry] {
					out.Home = append(out.Home, entry)
					referenced[entry] = true
				}
			case slices.ContainsFunc(remnants, func(r remnant) bool { return r.id == entry }):
				i := slices.IndexFunc(remnants, func(r remnant) bool { return r.id == entry })
				if !referenced[entry] {
					out.Home = append(out.Home, remnants[i].members...)
					referenced[entry] = true
				}
			case installed[entry] && !placed[entry]:
				out.Home = append(out.Home, entry)
				placed[entry] = true
			}
		}
	}
	for _, r := range remnants {
		if !referenced[r.id] {
			out.Home = append(out.Home, r.members...)
		}
	}
	for _, f := range out.Folders {
		if !referenced[f.ID] {
			out.Home = append(out.Home, f.ID)
		}
	}

	if p.Missing.Has(FieldHome) || len(p.Home) == 0 {
		var unplaced []string
		for _, appID := range out.Installed {
			if !placed[appID] {
				unplaced = append(unplaced, appID)
			}
		}
		out.Home = append(out.Home, e.catalog.SortByPosition(unplaced)...)
	}

	return out
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
