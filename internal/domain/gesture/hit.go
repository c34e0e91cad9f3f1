package gesture

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ItemType distinguishes draggable icons
type ItemType int

const (
	ItemNone ItemType = iota
	ItemApp
	ItemFolder
)

// String returns the string representation of the item type
func (t ItemType) String() string {
	switch t {
	case ItemApp:
		return "app"
	case ItemFolder:
		return "folder"
	default:
		return "none"
	}
}

// MarshalText encodes the item type
func (t ItemType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes "app", "folder" or "none"
func (t *ItemType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "app":
		*t = ItemApp
	case "folder":
		*t = ItemFolder
	case "", "none":
		*t = ItemNone
	default:
		return fmt.Errorf("unknown item type %q", string(text))
	}
	return nil
}

// Zone is a declared drop area
type Zone int

const (
	ZoneNone Zone = iota
	ZoneMain
	ZoneDock
	ZoneFolderView
)

// String returns the string representation of the zone
func (z Zone) String() string {
	switch z {
	case ZoneMain:
		return "main"
	case ZoneDock:
		return "dock"
	case ZoneFolderView:
		return "folder"
	default:
		return "none"
	}
}

// MarshalText encodes the zone
func (z Zone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// UnmarshalText decodes "main", "dock", "folder" or "none"
func (z *Zone) UnmarshalText(text []byte) error {
	switch string(text) {
	case "main":
		*z = ZoneMain
	case "dock":
		*z = ZoneDock
	case "folder":
		*z = ZoneFolderView
	case "", "none":
		*z = ZoneNone
	default:
		return fmt.Errorf("unknown zone %q", string(text))
	}
	return nil
}

// ItemBounds is the rendered rectangle of one icon
type ItemBounds struct {
	ID   string   `json:"id"`
	Type ItemType `json:"type"`
	Box  r2.Box   `json:"box"`
}

// ZoneBounds is the rendered rectangle of a drop zone and the icons inside it
type ZoneBounds struct {
	Zone  Zone         `json:"zone"`
	Box   r2.Box       `json:"box"`
	Items []ItemBounds `json:"items"`
}

// Scene is the rendered layout the UI reports with a drop, in paint order
type Scene struct {
	Zones []ZoneBounds `json:"zones"`
}

// Hit is the typed result of a hit-test
type Hit struct {
	Zone       Zone
	TargetID   string
	TargetType ItemType
}

// HasTarget reports whether the point landed on an icon
func (h Hit) HasTarget() bool {
	return h.TargetID != ""
}

// HitTest resolves p to the topmost zone containing it and the topmost icon
// under it within that zone. Zones and icons painted later win.
func (s Scene) HitTest(p r2.Vec) Hit {
	for zi := len(s.Zones) - 1; zi >= 0; zi-- {
		zone := s.Zones[zi]
		if !contains(zone.Box, p) {
			continue
		}
		hit := Hit{Zone: zone.Zone}
		for ii := len(zone.Items) - 1; ii >= 0; ii-- {
			item := zone.Items[ii]
			if contains(item.Box, p) {
				hit.TargetID = item.ID
				hit.TargetType = item.Type
				break
			}
		}
		return hit
	}
	return Hit{}
}

// contains treats the box as closed and accepts either corner ordering
func contains(b r2.Box, p r2.Vec) bool {
	minX, maxX := math.Min(b.Min.X, b.Max.X), math.Max(b.Min.X, b.Max.X)
	minY, maxY := math.Min(b.Min.Y, b.Max.Y), math.Max(b.Min.Y, b.Max.Y)
	return p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY
}
