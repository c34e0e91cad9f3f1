package persist

import (
	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"

	"github.com/GriffinCanCode/phoneshell/internal/domain/layout"
)

// Record is the stored shape of a layout
type Record struct {
	InstalledApps   []string        `json:"installed_apps"`
	DockOrder       []string        `json:"dock_order"`
	Folders         []layout.Folder `json:"folders"`
	HomeScreenOrder []string        `json:"home_screen_order"`
}

// NewRecord converts a model to its stored shape. Nil sequences become empty
// arrays so every field is present.
func NewRecord(m layout.Model) Record {
	c := m.Clone()
	r := Record{
		InstalledApps:   nonNil(c.Installed),
		DockOrder:       nonNil(c.Dock),
		Folders:         c.Folders,
		HomeScreenOrder: nonNil(c.Home),
	}
	if r.Folders == nil {
		r.Folders = []layout.Folder{}
	}
	for i := range r.Folders {
		r.Folders[i].AppIDs = nonNil(r.Folders[i].AppIDs)
	}
	return r
}

// Model converts the record back to a model without any checks
func (r Record) Model() layout.Model {
	return layout.Model{
		Installed: r.InstalledApps,
		Dock:      r.DockOrder,
		Folders:   r.Folders,
		Home:      r.HomeScreenOrder,
	}
}

// Encode serializes a model as a record
func Encode(m layout.Model) ([]byte, error) {
	return sonic.Marshal(NewRecord(m))
}

// Decode reads a stored record. Missing, malformed or wrongly typed fields are
// flagged in Partial.Missing instead of failing.
func Decode(data []byte) layout.Partial {
	if len(data) == 0 || !gjson.ValidBytes(data) {
		return layout.Partial{Missing: layout.AllFields}
	}
	return DecodeResult(gjson.ParseBytes(data))
}

// DecodeResult reads a record from an already parsed JSON object, such as the
// userData of a bridge loadData event
func DecodeResult(obj gjson.Result) layout.Partial {
	var p layout.Partial
	if !obj.IsObject() {
		p.Missing = layout.AllFields
		return p
	}

	var ok bool
	if p.Installed, ok = stringList(obj.Get("installed_apps")); !ok {
		p.Missing |= layout.FieldInstalled
	}
	if p.Dock, ok = stringList(obj.Get("dock_order")); !ok {
		p.Missing |= layout.FieldDock
	}
	if p.Folders, ok = folderList(obj.Get("folders")); !ok {
		p.Missing |= layout.FieldFolders
	}
	if p.Home, ok = stringList(obj.Get("home_screen_order")); !ok {
		p.Missing |= layout.FieldHome
	}
	return p
}

// unwrap turns a string holding JSON into the parsed value
func unwrap(r gjson.Result) (gjson.Result, bool) {
	if !r.Exists() || r.Type == gjson.Null {
		return r, false
	}
	if r.Type == gjson.String {
		if !gjson.Valid(r.Str) {
			return r, false
		}
		r = gjson.Parse(r.Str)
	}
	return r, r.IsArray()
}

// stringList accepts an array, or a string holding an array, of strings.
// Non-string elements are skipped.
func stringList(r gjson.Result) ([]string, bool) {
	r, ok := unwrap(r)
	if !ok {
		return nil, false
	}
	out := []string{}
	r.ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String {
			out = append(out, v.Str)
		}
		return true
	})
	return out, true
}

func folderList(r gjson.Result) ([]layout.Folder, bool) {
	r, ok := unwrap(r)
	if !ok {
		return nil, false
	}
	out := []layout.Folder{}
	r.ForEach(func(_, v gjson.Result) bool {
		if !v.IsObject() {
			return true
		}
		f := layout.Folder{
			ID:   v.Get("id").String(),
			Name: v.Get("name").String(),
		}
		f.AppIDs, _ = stringList(v.Get("appIds"))
		out = append(out, f)
		return true
	})
	return out, true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
