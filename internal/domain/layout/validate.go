package layout

import (
	"errors"
	"fmt"
	"strings"
)

// MinFolderSize is the smallest folder that may exist
const MinFolderSize = 2

// Validate checks the placement invariants and returns every violation found
func Validate(m Model, maxDock int) error {
	var errs []error

	installed := make(map[string]bool, len(m.Installed))
	for _, id := range m.Installed {
		if installed[id] {
			errs = append(errs, fmt.Errorf("app %q installed twice", id))
		}
		installed[id] = true
	}

	folders := make(map[string]Folder, len(m.Folders))
	for _, f := range m.Folders {
		if _, dup := folders[f.ID]; dup || f.ID == "" {
			errs = append(errs, fmt.Errorf("folder id %q is not unique", f.ID))
		}
		folders[f.ID] = f
		if installed[f.ID] {
			errs = append(errs, fmt.Errorf("folder id %q collides with an installed app", f.ID))
		}
		switch trimmed := strings.TrimSpace(f.Name); {
		case trimmed == "":
			errs = append(errs, fmt.Errorf("folder %q has a blank name", f.ID))
		case trimmed != f.Name:
			errs = append(errs, fmt.Errorf("folder %q name %q has surrounding space", f.ID, f.Name))
		}
		if len(f.AppIDs) < MinFolderSize {
			errs = append(errs, fmt.Errorf("folder %q has %d apps, want at least %d", f.ID, len(f.AppIDs), MinFolderSize))
		}
	}

	if maxDock > 0 && len(m.Dock) > maxDock {
		errs = append(errs, fmt.Errorf("dock holds %d apps, capacity %d", len(m.Dock), maxDock))
	}

	placed := make(map[string]string)
	place := func(id, where string) {
		if _, isFolder := folders[id]; isFolder && where == "home" {
			if prev, seen := placed[id]; seen {
				errs = append(errs, fmt.Errorf("folder %q referenced in %s and %s", id, prev, where))
			}
			placed[id] = where
			return
		}
		if !installed[id] {
			errs = append(errs, fmt.Errorf("app %q in %s is not installed", id, where))
		}
		if prev, seen := placed[id]; seen {
			errs = append(errs, fmt.Errorf("app %q placed in %s and %s", id, prev, where))
		}
		placed[id] = where
	}

	for _, id := range m.Dock {
		if _, isFolder := folders[id]; isFolder {
			errs = append(errs, fmt.Errorf("folder %q is docked", id))
			continue
		}
		place(id, "dock")
	}
	for _, id := range m.Home {
		place(id, "home")
	}
	for _, f := range m.Folders {
		if placed[f.ID] != "home" {
			errs = append(errs, fmt.Errorf("folder %q is not on the home screen", f.ID))
		}
		for _, id := range f.AppIDs {
			if _, isFolder := folders[id]; isFolder {
				errs = append(errs, fmt.Errorf("folder %q nested in folder %q", id, f.ID))
				continue
			}
			place(id, "folder "+f.ID)
		}
	}

	return errors.Join(errs...)
}

// Complete reports whether every installed app is placed somewhere
func Complete(m Model) bool {
	for _, id := range m.Installed {
		if m.ContainerOf(id) == Nowhere {
			return false
		}
	}
	return true
}
