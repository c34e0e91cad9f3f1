package layout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerOf(t *testing.T) {
	m := Model{
		Installed: []string{"A", "B", "C", "D"},
		Dock:      []string{"A"},
		Home:      []string{"B", "g1"},
		Folders:   []Folder{{ID: "g1", Name: "Folder", AppIDs: []string{"C", "D"}}},
	}

	assert.Equal(t, Dock, m.ContainerOf("A"))
	assert.Equal(t, Home, m.ContainerOf("B"))
	assert.Equal(t, Home, m.ContainerOf("g1"))
	assert.Equal(t, InFolder("g1"), m.ContainerOf("D"))
	assert.Equal(t, Nowhere, m.ContainerOf("Z"))

	f, ok := m.FolderFor("C")
	require.True(t, ok)
	assert.Equal(t, "g1", f.ID)

	_, ok = m.FolderFor("A")
	assert.False(t, ok)

	assert.True(t, m.IsDocked("A"))
	assert.False(t, m.IsDocked("B"))
	assert.Equal(t, []string{"C", "D"}, m.Items(InFolder("g1")))
	assert.Nil(t, m.Items(InFolder("g2")))
}

func TestItemsReturnsCopy(t *testing.T) {
	m := Model{Dock: []string{"A", "B"}}

	items := m.Items(Dock)
	items[0] = "Z"
	assert.Equal(t, []string{"A", "B"}, m.Dock)
}

func TestCloneIsDeep(t *testing.T) {
	m := Model{
		Installed: []string{"C", "D"},
		Home:      []string{"g1"},
		Folders:   []Folder{{ID: "g1", Name: "Folder", AppIDs: []string{"C", "D"}}},
	}

	c := m.Clone()
	c.Folders[0].AppIDs[0] = "Z"
	c.Home[0] = "Z"

	assert.Equal(t, "C", m.Folders[0].AppIDs[0])
	assert.Equal(t, "g1", m.Home[0])
	assert.False(t, c.Equal(m))
}

func TestEqualTreatsNilAsEmpty(t *testing.T) {
	assert.True(t, Model{}.Equal(Model{Installed: []string{}, Folders: []Folder{}}))
}

func TestParseContainer(t *testing.T) {
	tests := []struct {
		in   string
		want Container
		ok   bool
	}{
		{"dock", Dock, true},
		{"home", Home, true},
		{"folder:g1", InFolder("g1"), true},
		{"folder:", Nowhere, false},
		{"grid", Nowhere, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseContainer(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			if ok {
				assert.Equal(t, tt.in, got.String())
			}
		})
	}
}

func TestContainerJSON(t *testing.T) {
	type payload struct {
		From Container `json:"from"`
		To   Container `json:"to"`
	}

	data, err := json.Marshal(payload{From: Dock, To: InFolder("g1")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"dock","to":"folder:g1"}`, string(data))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"from":"home","to":"folder:abc"}`), &p))
	assert.Equal(t, Home, p.From)
	assert.Equal(t, InFolder("abc"), p.To)

	assert.Error(t, json.Unmarshal([]byte(`{"from":"sideways"}`), &p))
}
