package bridge

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"

	"github.com/GriffinCanCode/phoneshell/internal/domain/layout"
	"github.com/GriffinCanCode/phoneshell/internal/domain/persist"
)

// Outbound events
const (
	EventDockOrder     = "updateDockOrder"
	EventLayout        = "phone:updateLayout"
	EventInstalledApps = "updateInstalledApps"
)

// DockOrderPayload is the body of updateDockOrder
type DockOrderPayload struct {
	Player    string `json:"player,omitempty"`
	DockOrder string `json:"dock_order"`
}

// LayoutPayload is the body of phone:updateLayout
type LayoutPayload struct {
	Player          string `json:"player,omitempty"`
	Folders         string `json:"folders"`
	HomeScreenOrder string `json:"home_screen_order"`
}

// InstalledAppsPayload is the body of updateInstalledApps
type InstalledAppsPayload struct {
	Player string `json:"player,omitempty"`
	Apps   string `json:"apps"`
}

// Outbound holds the three events describing a layout, values already encoded as
// JSON strings the way the game client stores them
type Outbound struct {
	Dock      DockOrderPayload
	Layout    LayoutPayload
	Installed InstalledAppsPayload
}

// EncodeOutbound builds the outbound payloads for m
func EncodeOutbound(player string, m layout.Model) (Outbound, error) {
	r := persist.NewRecord(m)

	dock, err := sonic.MarshalString(r.DockOrder)
	if err != nil {
		return Outbound{}, fmt.Errorf("failed to encode dock order: %w", err)
	}
	folders, err := sonic.MarshalString(r.Folders)
	if err != nil {
		return Outbound{}, fmt.Errorf("failed to encode folders: %w", err)
	}
	home, err := sonic.MarshalString(r.HomeScreenOrder)
	if err != nil {
		return Outbound{}, fmt.Errorf("failed to encode home order: %w", err)
	}
	apps, err := sonic.MarshalString(r.InstalledApps)
	if err != nil {
		return Outbound{}, fmt.Errorf("failed to encode installed apps: %w", err)
	}

	return Outbound{
		Dock:      DockOrderPayload{Player: player, DockOrder: dock},
		Layout:    LayoutPayload{Player: player, Folders: folders, HomeScreenOrder: home},
		Installed: InstalledAppsPayload{Player: player, Apps: apps},
	}, nil
}

// Inbound push event types
const (
	TypeSetVisible   = "setVisible"
	TypeLoadData     = "loadData"
	TypeIncomingCall = "incomingCall"
	TypeUpdateUnits  = "updateUnits"
)

var (
	// ErrMalformedEvent is returned for messages that are not {type, payload} objects
	ErrMalformedEvent = errors.New("bridge: malformed event")
	// ErrUnknownEvent is returned for event types the phone does not handle
	ErrUnknownEvent = errors.New("bridge: unknown event type")
	// ErrNoPlayer is returned when an event names no player
	ErrNoPlayer = errors.New("bridge: event has no player")
)

// Contact is the caller shown by incomingCall
type Contact struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// Position is a world position
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Unit is an on-duty unit listed by updateUnits
type Unit struct {
	Identifier string   `json:"identifier"`
	Name       string   `json:"name"`
	Pos        Position `json:"pos"`
}

// Event is a decoded push message. Only the fields of its Type are set.
type Event struct {
	Type   string `json:"type"`
	Player string `json:"player"`

	Visible bool `json:"visible,omitempty"`

	Job    string         `json:"job,omitempty"`
	Layout layout.Partial `json:"-"`

	Contact *Contact `json:"contact,omitempty"`
	Units   []Unit   `json:"units,omitempty"`
}

// ParseEvent decodes a {type, player, payload} message. The player falls back to
// payload.userData.citizenid for loadData.
func ParseEvent(data []byte) (Event, error) {
	if !gjson.ValidBytes(data) {
		return Event{}, ErrMalformedEvent
	}
	msg := gjson.ParseBytes(data)
	if !msg.IsObject() || msg.Get("type").Type != gjson.String {
		return Event{}, ErrMalformedEvent
	}

	payload := msg.Get("payload")
	ev := Event{
		Type:   msg.Get("type").Str,
		Player: msg.Get("player").String(),
	}

	switch ev.Type {
	case TypeSetVisible:
		ev.Visible = payload.Bool()
	case TypeLoadData:
		userData := payload.Get("userData")
		if ev.Player == "" {
			ev.Player = firstString(userData, "citizenid", "identifier")
		}
		ev.Job = jobName(userData.Get("job"))
		ev.Layout = persist.DecodeResult(userData)
	case TypeIncomingCall:
		c := payload.Get("contact")
		if !c.IsObject() {
			return Event{}, fmt.Errorf("%w: incomingCall without contact", ErrMalformedEvent)
		}
		ev.Contact = &Contact{
			ID:          c.Get("id").String(),
			Name:        c.Get("name").String(),
			PhoneNumber: c.Get("phoneNumber").String(),
			AvatarURL:   c.Get("avatarUrl").String(),
		}
	case TypeUpdateUnits:
		ev.Units = []Unit{}
		payload.Get("units").ForEach(func(_, u gjson.Result) bool {
			if u.IsObject() {
				ev.Units = append(ev.Units, Unit{
					Identifier: u.Get("identifier").String(),
					Name:       u.Get("name").String(),
					Pos: Position{
						X: u.Get("pos.x").Float(),
						Y: u.Get("pos.y").Float(),
						Z: u.Get("pos.z").Float(),
					},
				})
			}
			return true
		})
	default:
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}

	if ev.Player == "" {
		return Event{}, ErrNoPlayer
	}
	return ev, nil
}

// jobName accepts a plain job name or a {name: ...} object
func jobName(r gjson.Result) string {
	if r.IsObject() {
		return r.Get("name").String()
	}
	return r.String()
}

func firstString(obj gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := obj.Get(k); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
