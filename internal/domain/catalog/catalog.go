package catalog

import (
	"sort"
)

// MaxDockApps is the default dock capacity
const MaxDockApps = 10

// App describes one installable capability of the phone
type App struct {
	ID           string   `json:"id" yaml:"id" toml:"id"`
	Name         string   `json:"name" yaml:"name" toml:"name"` // translation key
	Removable    bool     `json:"removable" yaml:"removable" toml:"removable"`
	RequiredJobs []string `json:"required_jobs,omitempty" yaml:"required_jobs" toml:"required_jobs"`
}

// Restricted reports whether the app is only offered to some jobs
func (a App) Restricted() bool {
	return len(a.RequiredJobs) > 0
}

// AllowsJob reports whether a player with the given job may install the app
func (a App) AllowsJob(job string) bool {
	if !a.Restricted() {
		return true
	}
	for _, j := range a.RequiredJobs {
		if j == job {
			return true
		}
	}
	return false
}

// Catalog is the static, ordered set of known apps
type Catalog struct {
	apps        []App
	index       map[string]int
	defaultDock []string
	maxDock     int
}

// New builds a catalog. Duplicate ids keep the last definition at the first position.
func New(apps []App, defaultDock []string, maxDock int) *Catalog {
	if maxDock <= 0 {
		maxDock = MaxDockApps
	}

	c := &Catalog{
		index:   make(map[string]int, len(apps)),
		maxDock: maxDock,
	}
	for _, app := range apps {
		if app.ID == "" {
			continue
		}
		if i, ok := c.index[app.ID]; ok {
			c.apps[i] = app
			continue
		}
		c.index[app.ID] = len(c.apps)
		c.apps = append(c.apps, app)
	}

	// Default dock only holds known apps and never exceeds capacity
	seen := make(map[string]bool, len(defaultDock))
	for _, id := range defaultDock {
		if _, ok := c.index[id]; !ok || seen[id] {
			continue
		}
		if len(c.defaultDock) >= c.maxDock {
			break
		}
		seen[id] = true
		c.defaultDock = append(c.defaultDock, id)
	}

	return c
}

// Default returns the stock phone catalog
func Default() *Catalog {
	return New(defaultApps(), []string{"phone", "browser", "messages", "settings"}, MaxDockApps)
}

// Lookup returns the catalog entry for id
func (c *Catalog) Lookup(id string) (App, bool) {
	i, ok := c.index[id]
	if !ok {
		return App{}, false
	}
	return c.apps[i], true
}

// Contains reports whether id is a known app
func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// IsRemovable reports whether id may be uninstalled. Unknown ids are not removable.
func (c *Catalog) IsRemovable(id string) bool {
	app, ok := c.Lookup(id)
	return ok && app.Removable
}

// Position returns the catalog order of id, or -1
func (c *Catalog) Position(id string) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// Apps returns a copy of all entries in catalog order
func (c *Catalog) Apps() []App {
	out := make([]App, len(c.apps))
	copy(out, c.apps)
	return out
}

// ForJob returns the entries a player with job may see, in catalog order
func (c *Catalog) ForJob(job string) []App {
	out := make([]App, 0, len(c.apps))
	for _, app := range c.apps {
		if app.AllowsJob(job) {
			out = append(out, app)
		}
	}
	return out
}

// DefaultDock returns the fallback dock order
func (c *Catalog) DefaultDock() []string {
	out := make([]string, len(c.defaultDock))
	copy(out, c.defaultDock)
	return out
}

// DefaultInstalled returns the apps installed on a fresh phone: every
// non-removable app the job may see
func (c *Catalog) DefaultInstalled(job string) []string {
	var out []string
	for _, app := range c.ForJob(job) {
		if !app.Removable {
			out = append(out, app.ID)
		}
	}
	return out
}

// MaxDock returns the dock capacity
func (c *Catalog) MaxDock() int {
	return c.maxDock
}

// SortByPosition orders ids by catalog position; unknown ids go last, stable.
func (c *Catalog) SortByPosition(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := c.Position(out[i]), c.Position(out[j])
		if pi < 0 {
			return false
		}
		if pj < 0 {
			return true
		}
		return pi < pj
	})
	return out
}

func defaultApps() []App {
	return []App{
		// System apps
		{ID: "phone", Name: "phone_title"},
		{ID: "messages", Name: "messages_title"},
		{ID: "settings", Name: "settings_title"},
		{ID: "browser", Name: "browser_title"},
		{ID: "bank", Name: "bank_title"},
		{ID: "marketplace", Name: "app_store_title"},

		// Functional apps
		{ID: "camera", Name: "camera_title"},
		{ID: "garage", Name: "garage_title"},
		{ID: "dispatch", Name: "dispatch_title"},
		{ID: "businesses", Name: "businesses_title"},

		// Optional apps
		{ID: "social", Name: "social_title", Removable: true},
		{ID: "music", Name: "music_title", Removable: true},
		{ID: "mail", Name: "mail_title", Removable: true},
		{ID: "weather", Name: "weather_title", Removable: true},
		{ID: "photos", Name: "photos_title", Removable: true},
		{ID: "clock", Name: "clock_title", Removable: true},
		{ID: "maps", Name: "maps_title", Removable: true},
		{ID: "notes", Name: "notes_title", Removable: true},
		{ID: "reminders", Name: "reminders_title", Removable: true},
		{ID: "stocks", Name: "stocks_title", Removable: true},
		{ID: "health", Name: "health_title", Removable: true},
		{ID: "wallet", Name: "wallet_title", Removable: true},

		// Job tools
		{ID: "mdt", Name: "mdt_title", Removable: true, RequiredJobs: []string{"police"}},
		{ID: "meditab", Name: "meditab_title", Removable: true, RequiredJobs: []string{"ambulance"}},
		{ID: "mechatab", Name: "mechatab_title", Removable: true, RequiredJobs: []string{"mechanic"}},
	}
}
