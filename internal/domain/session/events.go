package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/phoneshell/internal/bridge"
)

// HandleEvent applies a push event from the game client
func (m *Manager) HandleEvent(ctx context.Context, ev bridge.Event) (Snapshot, error) {
	p, err := m.phone(ctx, ev.Player)
	if err != nil {
		return Snapshot{}, err
	}
	m.metrics.RecordBridgeEvent(ev.Type)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.touched = m.now()

	kind := UpdateState
	switch ev.Type {
	case bridge.TypeSetVisible:
		p.visible = ev.Visible
		if !ev.Visible {
			p.stopTimer()
			p.ctrl.CloseFolder()
			p.ctrl.Cancel()
		}
		kind = UpdateVisible

	case bridge.TypeLoadData:
		p.job = ev.Job
		model := m.store.Restore(p.player, ev.Layout, ev.Job)
		if m.onLoad != nil {
			m.onLoad(p.player, model)
		}
		p.model = model
		p.ctrl.Sync(model)
		p.version++
		kind = UpdateLayout
		m.logger.Info("Layout loaded from bridge",
			zap.String("player", p.player),
			zap.String("job", p.job),
			zap.Int("installed", len(model.Installed)),
		)

	case bridge.TypeIncomingCall:
		p.call = ev.Contact
		p.visible = true
		kind = UpdateCall

	case bridge.TypeUpdateUnits:
		p.units = ev.Units
		kind = UpdateUnits

	default:
		return p.snapshot(), fmt.Errorf("%w: %q", bridge.ErrUnknownEvent, ev.Type)
	}

	snap := p.snapshot()
	m.publish(kind, snap)
	return snap, nil
}

// EndCall clears the incoming call banner
func (m *Manager) EndCall(ctx context.Context, player string) (Snapshot, error) {
	return m.gesture(ctx, player, func(p *Phone) error {
		p.call = nil
		return nil
	})
}
