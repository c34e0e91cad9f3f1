package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/phoneshell/internal/domain/layout"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := layout.Model{
		Installed: []string{"phone", "mail", "music", "notes"},
		Dock:      []string{"phone"},
		Home:      []string{"g1", "notes"},
		Folders:   []layout.Folder{{ID: "g1", Name: "Work", AppIDs: []string{"mail", "music"}}},
	}

	data, err := Encode(m)
	require.NoError(t, err)

	p := Decode(data)
	assert.Zero(t, p.Missing)
	assert.True(t, layout.Model{Installed: p.Installed, Dock: p.Dock, Home: p.Home, Folders: p.Folders}.Equal(m))
}

func TestEncodeEmptyModelHasEveryField(t *testing.T) {
	data, err := Encode(layout.Model{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"installed_apps":[],"dock_order":[],"folders":[],"home_screen_order":[]}`, string(data))
	assert.Zero(t, Decode(data).Missing)
}

func TestDecodeStringEncodedFields(t *testing.T) {
	data := []byte(`{
		"installed_apps": "[\"phone\",\"mail\",\"music\"]",
		"dock_order": "[\"phone\"]",
		"folders": "[{\"id\":\"g1\",\"name\":\"Fun\",\"appIds\":[\"mail\",\"music\"]}]",
		"home_screen_order": "[\"g1\"]"
	}`)

	p := Decode(data)
	assert.Zero(t, p.Missing)
	assert.Equal(t, []string{"phone", "mail", "music"}, p.Installed)
	assert.Equal(t, []string{"phone"}, p.Dock)
	assert.Equal(t, []string{"g1"}, p.Home)
	assert.Equal(t, []layout.Folder{{ID: "g1", Name: "Fun", AppIDs: []string{"mail", "music"}}}, p.Folders)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		missing layout.Field
	}{
		{"empty", ``, layout.AllFields},
		{"not json", `{{{`, layout.AllFields},
		{"array root", `[1,2,3]`, layout.AllFields},
		{"empty object", `{}`, layout.AllFields},
		{"null fields", `{"installed_apps":null,"dock_order":[],"folders":[],"home_screen_order":[]}`, layout.FieldInstalled},
		{"bad string", `{"installed_apps":[],"dock_order":"[oops","folders":[],"home_screen_order":[]}`, layout.FieldDock},
		{"object instead of array", `{"installed_apps":[],"dock_order":[],"folders":{"id":"g1"},"home_screen_order":[]}`, layout.FieldFolders},
		{"number", `{"installed_apps":[],"dock_order":[],"folders":[],"home_screen_order":7}`, layout.FieldHome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.missing, Decode([]byte(tt.data)).Missing)
		})
	}
}

func TestDecodeSkipsBadElements(t *testing.T) {
	p := Decode([]byte(`{
		"installed_apps": ["phone", 3, null, "mail"],
		"dock_order": [],
		"folders": [{"id": 42, "name": "N", "appIds": ["mail", {}]}, "junk", {"id": "g2"}],
		"home_screen_order": []
	}`))

	assert.Zero(t, p.Missing)
	assert.Equal(t, []string{"phone", "mail"}, p.Installed)
	require.Len(t, p.Folders, 2)
	assert.Equal(t, layout.Folder{ID: "42", Name: "N", AppIDs: []string{"mail"}}, p.Folders[0])
	assert.Equal(t, "g2", p.Folders[1].ID)
	assert.Empty(t, p.Folders[1].AppIDs)
}

func TestNewRecordDoesNotAlias(t *testing.T) {
	m := layout.Model{Installed: []string{"a", "b"}, Home: []string{"g"}, Folders: []layout.Folder{{ID: "g", Name: "G", AppIDs: []string{"a", "b"}}}}

	r := NewRecord(m)
	r.Folders[0].AppIDs[0] = "z"
	r.InstalledApps[0] = "z"

	assert.Equal(t, "a", m.Folders[0].AppIDs[0])
	assert.Equal(t, "a", m.Installed[0])
	assert.True(t, NewRecord(m).Model().Equal(m))
}
