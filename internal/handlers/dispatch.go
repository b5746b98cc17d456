package handlers

import (
	"context"
	"fmt"

	"github.com/qc-advancedmedic/nui/internal/deathscreen"
	"github.com/qc-advancedmedic/nui/internal/dispatcher"
	"github.com/qc-advancedmedic/nui/internal/inspection"
	"github.com/qc-advancedmedic/nui/internal/journal"
	"github.com/qc-advancedmedic/nui/internal/medical"
	"github.com/qc-advancedmedic/nui/internal/messages"
	"github.com/qc-advancedmedic/nui/pkg/nui"
)

// RegisterHandlers registers every push and action type with the dispatcher.
// All handlers run synchronously so a show push is applied before the
// updates that follow it.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	for _, t := range nui.PushTypes {
		d.Register(t, s.handlePush, dispatcher.Logged())
	}
	for _, t := range nui.ActionTypes {
		d.Register(t, s.handleAction, dispatcher.Logged())
	}
	s.dispatcher = d
}

func (s *Service) handlePush(ctx context.Context, e dispatcher.Event) (any, error) {
	p, ok := e.Payload.(messages.Push)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected payload %T", e.Command, e.Payload)
	}
	return nil, s.applyPush(ctx, p)
}

func (s *Service) handleAction(ctx context.Context, e dispatcher.Event) (any, error) {
	a, ok := e.Payload.(messages.Action)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected payload %T", e.Command, e.Payload)
	}
	return s.runAction(ctx, a)
}

func (s *Service) applyPush(ctx context.Context, p messages.Push) error {
	entry := journal.NewEntry(journal.KindPush, p.Type)
	entry.Success = true
	if p.Inspection != nil {
		entry.PatientID = string(p.Inspection.PlayerID)
	}
	if p.ConditionUpdate != nil {
		entry.PatientID = string(p.ConditionUpdate.PlayerID)
	}
	if len(p.Warnings) > 0 {
		entry.Message = fmt.Sprintf("%d warning(s): %s", len(p.Warnings), p.Warnings[0])
	}
	s.record(ctx, entry)

	if messages.IsInspectionPush(p.Type) {
		return s.routeToSession(p)
	}

	switch p.Type {
	case nui.PushShowDeathScreen:
		app := s.deps.Store.Apply(p)
		screen := deathscreen.NewScreen(app.DeathScreen, deathscreen.Dependencies{
			Gateway:  s.gw,
			Now:      s.deps.Now,
			Logger:   s.deps.Logger,
			Interval: s.deps.DeathTick,
			Changed:  s.changed,
		})
		runCtx, cancel := context.WithCancel(s.base)
		s.mu.Lock()
		s.stopScreenLocked()
		s.screen, s.screenCancel = screen, cancel
		s.mu.Unlock()
		go screen.Run(runCtx)

	case nui.PushUpdateDeathTimer:
		app := s.deps.Store.Apply(p)
		if screen, err := s.activeScreen(); err == nil {
			screen.Update(app.DeathScreen)
		}

	case nui.PushHideDeathScreen:
		s.mu.Lock()
		s.stopScreenLocked()
		s.mu.Unlock()
		s.deps.Store.Apply(p)

	case nui.PushShowMedicalPanel:
		app := s.deps.Store.Apply(p)
		panel := medical.NewPanel(app.Medical, medical.Dependencies{Gateway: s.gw, Logger: s.deps.Logger})
		s.mu.Lock()
		s.panel = panel
		s.mu.Unlock()
		s.changed()

	case nui.PushUpdateMedicalData:
		s.deps.Store.Apply(p)
		if panel, err := s.activePanel(); err == nil && p.MedicalPatch != nil {
			panel.Update(*p.MedicalPatch)
			s.changed()
		}

	case nui.PushShowInspectionPanel:
		app := s.deps.Store.Apply(p)
		s.mu.Lock()
		session := s.session
		s.mu.Unlock()
		if session == nil || !session.Refresh(app.Inspection) {
			session = inspection.NewSession(app.Inspection, inspection.Dependencies{
				Gateway: s.gw,
				Rand:    s.deps.Rand,
				Now:     s.deps.Now,
				Logger:  s.deps.Logger,
				Changed: s.changed,
			})
			s.mu.Lock()
			s.stopHoldsLocked()
			s.session = session
			s.mu.Unlock()
		}
		if err := session.RequestVitals(ctx); err != nil {
			s.deps.Logger.Warn("Failed to request vitals", "patient", app.Inspection.PlayerID, "error", err)
		}
		s.changed()

	case nui.PushHideAll:
		s.mu.Lock()
		s.stopScreenLocked()
		s.stopHoldsLocked()
		s.session, s.panel = nil, nil
		s.mu.Unlock()
		s.deps.Store.Apply(p)
	}
	return nil
}

// routeToSession hands a push that only concerns the inspection panel to the
// open session. Without one the push is dropped.
func (s *Service) routeToSession(p messages.Push) error {
	session, err := s.activeSession()
	if err != nil {
		s.deps.Logger.Debug("Dropping push without an open inspection panel", "type", p.Type)
		return nil
	}

	switch {
	case p.TreatmentResponse != nil:
		session.HandleTreatmentResponse(*p.TreatmentResponse)
	case p.ConditionUpdate != nil:
		if !session.HandleConditionUpdate(*p.ConditionUpdate) {
			return nil
		}
	case p.Config != nil:
		session.HandleConfigData(*p.Config)
	case p.Vitals != nil:
		session.HandleVitalsResponse(*p.Vitals)
	case p.MissionWounds != nil:
		if !session.HandleMissionWounds(*p.MissionWounds) {
			return nil
		}
	case p.ToolResult != nil:
		session.HandleToolResult(*p.ToolResult)
	default:
		return nil
	}
	s.changed()
	return nil
}
