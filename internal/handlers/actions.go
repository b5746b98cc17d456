package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/qc-advancedmedic/nui/internal/inspection"
	"github.com/qc-advancedmedic/nui/internal/journal"
	"github.com/qc-advancedmedic/nui/internal/messages"
	"github.com/qc-advancedmedic/nui/pkg/nui"
)

func (s *Service) runAction(ctx context.Context, a messages.Action) (any, error) {
	result, err := s.act(ctx, a)

	entry := journal.NewEntry(journal.KindAction, a.Type).WithPayload(a.ActionParams)
	entry.BodyPart = a.BodyPart
	entry.View = a.View
	entry.Success = err == nil
	if err != nil {
		entry.Message = err.Error()
	}
	s.record(ctx, entry)

	s.changed()
	return result, err
}

func (s *Service) act(ctx context.Context, a messages.Action) (any, error) {
	switch a.Type {
	case nui.ActionOpenBandagePanel, nui.ActionOpenTourniquetPanel, nui.ActionOpenTreatmentsPanel,
		nui.ActionCloseSubPanel, nui.ActionMedicalBandage, nui.ActionMedicalTourniquet,
		nui.ActionReplaceTreatment, nui.ActionRemoveTreatment, nui.ActionCloseMedical:
		return nil, s.medicalAction(ctx, a)
	case nui.ActionRespawn, nui.ActionCallMedic, nui.ActionDisableFocus:
		return nil, s.deathAction(ctx, a)
	}
	return s.inspectionAction(ctx, a)
}

func (s *Service) inspectionAction(ctx context.Context, a messages.Action) (any, error) {
	session, err := s.activeSession()
	if err != nil {
		return nil, err
	}

	switch a.Type {
	case nui.ActionInspect:
		return session.Inspect(ctx, a.BodyPart)
	case nui.ActionSwitchView:
		return nil, session.SwitchView(inspection.View(a.View))
	case nui.ActionSelectBone:
		return nil, session.SelectBone(a.BodyPart)
	case nui.ActionSelectBodyPart:
		return nil, session.SelectBodyPart(a.BodyPart)
	case nui.ActionSelectItem:
		return nil, session.SelectItem(a.Kind, a.ItemID)
	case nui.ActionVitalsStart:
		s.startHold(session, inspection.HoldVitals)
	case nui.ActionVitalsStop:
		s.stopHold(session, inspection.HoldVitals)
	case nui.ActionTemperatureStart:
		s.startHold(session, inspection.HoldTemperature)
	case nui.ActionTemperatureStop:
		s.stopHold(session, inspection.HoldTemperature)
	case nui.ActionApplyBandage:
		return nil, session.ApplyBandage(ctx)
	case nui.ActionApplyTourniquet:
		return nil, session.ApplyTourniquet(ctx)
	case nui.ActionAdministerMedicine:
		return nil, session.AdministerMedicine(ctx)
	case nui.ActionGiveInjection:
		return nil, session.GiveInjection(ctx)
	case nui.ActionUseTool:
		return nil, session.UseTool(ctx, a.Tool, extraOf(a.Extra))
	case nui.ActionCloseInspection:
		err := session.Close(ctx)
		s.mu.Lock()
		s.stopHoldsLocked()
		if s.session == session {
			s.session = nil
		}
		s.mu.Unlock()
		s.hide()
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %s", messages.ErrUnknownType, a.Type)
	}
	return nil, nil
}

// extraOf decodes the free-form tool parameters for the host request.
func extraOf(raw json.RawMessage) any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// startHold starts a hold-to-check and ticks it in the background until it
// completes or is released.
func (s *Service) startHold(session *inspection.Session, h inspection.Hold) {
	if !session.StartHold(h) {
		return
	}
	ctx, cancel := context.WithCancel(s.base)
	s.mu.Lock()
	if prev, ok := s.holds[h]; ok {
		prev()
	}
	s.holds[h] = cancel
	s.mu.Unlock()

	go func() {
		if err := session.RunHold(ctx, h); err != nil && !errors.Is(err, context.Canceled) {
			s.deps.Logger.Warn("Check failed", "hold", h, "error", err)
		}
	}()
}

func (s *Service) stopHold(session *inspection.Session, h inspection.Hold) {
	session.StopHold(h)
	s.mu.Lock()
	if cancel, ok := s.holds[h]; ok {
		cancel()
		delete(s.holds, h)
	}
	s.mu.Unlock()
}

func (s *Service) medicalAction(ctx context.Context, a messages.Action) error {
	panel, err := s.activePanel()
	if err != nil {
		return err
	}

	switch a.Type {
	case nui.ActionOpenBandagePanel:
		panel.OpenBandagePanel(ctx)
	case nui.ActionOpenTourniquetPanel:
		panel.OpenTourniquetPanel(ctx)
	case nui.ActionOpenTreatmentsPanel:
		return panel.OpenTreatmentsPanel(ctx)
	case nui.ActionCloseSubPanel:
		panel.CloseSubPanels()
	case nui.ActionMedicalBandage:
		return panel.ApplyBandage(ctx, a.Part(), a.ItemName)
	case nui.ActionMedicalTourniquet:
		return panel.ApplyTourniquet(ctx, a.Part(), a.ItemName)
	case nui.ActionReplaceTreatment:
		return panel.ReplaceTreatment(ctx, a.Part(), a.TreatmentType)
	case nui.ActionRemoveTreatment:
		return panel.RemoveTreatment(ctx, a.Part(), a.TreatmentType)
	case nui.ActionCloseMedical:
		err := panel.Close(ctx)
		s.mu.Lock()
		if s.panel == panel {
			s.panel = nil
		}
		s.mu.Unlock()
		s.hide()
		return err
	}
	return nil
}

func (s *Service) deathAction(ctx context.Context, a messages.Action) error {
	screen, err := s.activeScreen()
	if err != nil {
		return err
	}

	switch a.Type {
	case nui.ActionRespawn:
		return screen.Respawn(ctx)
	case nui.ActionCallMedic:
		return screen.CallMedic(ctx)
	case nui.ActionDisableFocus:
		return screen.DisableFocus(ctx)
	}
	return nil
}
