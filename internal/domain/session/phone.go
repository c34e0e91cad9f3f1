package session

import (
	"sync"
	"time"

	"github.com/GriffinCanCode/phoneshell/internal/bridge"
	"github.com/GriffinCanCode/phoneshell/internal/domain/gesture"
	"github.com/GriffinCanCode/phoneshell/internal/domain/layout"
)

// Phone is the state of one player's phone
type Phone struct {
	mu sync.Mutex

	player  string
	job     string
	model   layout.Model
	ctrl    *gesture.Controller
	version uint64
	visible bool
	call    *bridge.Contact
	units   []bridge.Unit
	timer   *time.Timer
	touched time.Time
}

// Snapshot is a consistent copy of a phone
type Snapshot struct {
	Player  string          `json:"player"`
	Job     string          `json:"job,omitempty"`
	Version uint64          `json:"version"`
	Visible bool            `json:"visible"`
	Layout  layout.Model    `json:"layout"`
	View    gesture.View    `json:"view"`
	State   gesture.State   `json:"state"`
	Call    *bridge.Contact `json:"incomingCall,omitempty"`
	Units   []bridge.Unit   `json:"units,omitempty"`
}

// snapshot must be called with p.mu held
func (p *Phone) snapshot() Snapshot {
	s := Snapshot{
		Player:  p.player,
		Job:     p.job,
		Version: p.version,
		Visible: p.visible,
		Layout:  p.model.Clone(),
		View:    p.ctrl.View(p.model),
		State:   p.ctrl.State(),
		Call:    p.call,
	}
	if p.units != nil {
		s.Units = append([]bridge.Unit(nil), p.units...)
	}
	return s
}

func (p *Phone) stopTimer() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}
