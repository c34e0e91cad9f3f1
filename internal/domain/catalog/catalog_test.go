package catalog

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, MaxDockApps, c.MaxDock())
	assert.Equal(t, []string{"phone", "browser", "messages", "settings"}, c.DefaultDock())
	assert.True(t, c.Contains("mail"))
	assert.False(t, c.Contains("unknown"))

	assert.False(t, c.IsRemovable("phone"))
	assert.True(t, c.IsRemovable("mail"))
	assert.False(t, c.IsRemovable("unknown"))
}

func TestForJob(t *testing.T) {
	c := Default()

	civilian := c.ForJob("unemployed")
	police := c.ForJob("police")

	assert.Len(t, police, len(civilian)+1)
	for _, app := range civilian {
		assert.NotEqual(t, "mdt", app.ID)
	}

	mdt, ok := c.Lookup("mdt")
	require.True(t, ok)
	assert.True(t, mdt.Restricted())
	assert.True(t, mdt.AllowsJob("police"))
	assert.False(t, mdt.AllowsJob("mechanic"))
}

func TestDefaultInstalled(t *testing.T) {
	c := Default()

	installed := c.DefaultInstalled("")
	assert.Contains(t, installed, "phone")
	assert.Contains(t, installed, "businesses")
	assert.NotContains(t, installed, "mail")
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		apps     []App
		dock     []string
		maxDock  int
		wantApps []string
		wantDock []string
		wantMax  int
	}{
		{
			name:     "drops unknown dock ids",
			apps:     []App{{ID: "a"}, {ID: "b"}},
			dock:     []string{"a", "x", "b"},
			maxDock:  4,
			wantApps: []string{"a", "b"},
			wantDock: []string{"a", "b"},
			wantMax:  4,
		},
		{
			name:     "caps dock at capacity",
			apps:     []App{{ID: "a"}, {ID: "b"}, {ID: "c"}},
			dock:     []string{"a", "b", "c"},
			maxDock:  2,
			wantApps: []string{"a", "b", "c"},
			wantDock: []string{"a", "b"},
			wantMax:  2,
		},
		{
			name:     "duplicate id keeps first position",
			apps:     []App{{ID: "a"}, {ID: "b"}, {ID: "a", Removable: true}},
			dock:     nil,
			maxDock:  0,
			wantApps: []string{"a", "b"},
			wantDock: []string{},
			wantMax:  MaxDockApps,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.apps, tt.dock, tt.maxDock)

			var ids []string
			for _, app := range c.Apps() {
				ids = append(ids, app.ID)
			}
			assert.Equal(t, tt.wantApps, ids)
			assert.Equal(t, tt.wantDock, c.DefaultDock())
			assert.Equal(t, tt.wantMax, c.MaxDock())
		})
	}

	c := New([]App{{ID: "a"}, {ID: "a", Removable: true}}, nil, 0)
	assert.True(t, c.IsRemovable("a"))
}

func TestSortByPosition(t *testing.T) {
	c := Default()

	sorted := c.SortByPosition([]string{"mail", "zzz", "phone", "camera"})
	assert.Equal(t, []string{"phone", "camera", "mail", "zzz"}, sorted)
}

func TestLoaderOverlays(t *testing.T) {
	fsys := fstest.MapFS{
		"base/extra.yaml": {Data: []byte(`
apps:
  - id: racing
    name: racing_title
    removable: true
  - id: mail
    name: mail_title
    removable: false
default_dock: [phone, racing]
`)},
		"jobs/taxi.toml": {Data: []byte(`
max_dock_apps = 6

[[apps]]
id = "taxi"
name = "taxi_title"
removable = true
required_jobs = ["taxi"]
`)},
		"broken.yaml": {Data: []byte("apps: [ {id: ")},
		"README.md":   {Data: []byte("ignored")},
	}

	c, err := NewLoaderFS(fsys, nil).Load(Default(), 0)
	require.NoError(t, err)

	assert.True(t, c.Contains("racing"))
	assert.False(t, c.IsRemovable("mail"))
	assert.Equal(t, []string{"phone", "racing"}, c.DefaultDock())
	assert.Equal(t, 6, c.MaxDock())

	taxi, ok := c.Lookup("taxi")
	require.True(t, ok)
	assert.True(t, taxi.AllowsJob("taxi"))
	assert.False(t, taxi.AllowsJob("police"))
}

func TestLoaderRejectsEmptyIDs(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.yaml": {Data: []byte("apps:\n  - name: nameless\n")},
	}

	c, err := NewLoaderFS(fsys, nil).Load(Default(), 0)
	require.NoError(t, err)
	assert.Equal(t, len(Default().Apps()), len(c.Apps()))
}
