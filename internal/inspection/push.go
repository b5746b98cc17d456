// internal/inspection/push.go
package inspection

import (
	"fmt"

	"github.com/qc-advancedmedic/nui/internal/gateway"
	"github.com/qc-advancedmedic/nui/pkg/core"
	"github.com/qc-advancedmedic/nui/pkg/nui"
)

// HandleTreatmentResponse reports the outcome of a treatment the host
// finished asynchronously.
func (s *Session) HandleTreatmentResponse(r nui.TreatmentResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !r.Success {
		msg := r.Message
		if msg == "" {
			msg = fmt.Sprintf("You don't have %s in your inventory", r.ItemName)
		}
		s.notify(msg, IconFailure, NotificationTTL)
		return
	}

	part := core.ToBackend(r.BodyPart)
	s.notify(fmt.Sprintf("Successfully applied %s to %s", r.ItemName, r.BodyPart), IconSuccess, NotificationTTL)
	s.addTreatment(fmt.Sprintf("Applied %s to %s", r.ItemName, s.partName(part)))

	switch r.Action {
	case gateway.ActionApplyBandage:
		delete(s.selected, core.KindBandage)
		s.selectedPart = ""
	case gateway.ActionApplyTourniquet:
		delete(s.selected, core.KindTourniquet)
		s.selectedPart = ""
	case gateway.ActionAdministerMedicine:
		delete(s.selected, core.KindMedicine)
	case gateway.ActionGiveInjection:
		delete(s.selected, core.KindInjection)
	}
}

// HandleConditionUpdate applies a live condition update for this patient. It
// reports whether the update was meant for this session.
func (s *Session) HandleConditionUpdate(u nui.ConditionUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.PlayerID != s.data.PlayerID {
		return false
	}
	s.data = u.Conditions.Apply(s.data)
	return true
}

// HandleConfigData replaces the item catalogs with the host configuration.
func (s *Session) HandleConfigData(cfg core.CatalogConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := core.DefaultCatalog()
	base.BodyParts = s.catalog.BodyParts
	s.catalog = cfg.Merge(base)
}

// HandleVitalsResponse turns the host's health report into a pulse reading.
// Once the patient's vitals were checked, readings are logged too.
func (s *Session) HandleVitalsResponse(r nui.VitalsResponse) PatientVitals {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := VitalsFromHealth(r.Health, r.IsDead, r.IsUnconscious, s.deps.Rand)
	if s.vitalsChecked {
		s.addAssessment(fmt.Sprintf("Updated vital signs: Heart rate %d BPM - %s", v.HeartRate, v.Status))
		s.addAssessment("Clinical assessment: " + v.Description)
	}
	s.patientVitals = &v
	return v
}

// HandleMissionWounds refreshes a mission NPC's wounds after a treatment.
// Player patients ignore it.
func (s *Session) HandleMissionWounds(m core.MissionWounds) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.data.IsMissionNPC() {
		return false
	}
	s.data = m.Apply(s.data)
	s.notify("Patient condition updated after treatment", IconSync, UpdateNotificationTTL)
	return true
}

// HandleToolResult reports a doctor's bag outcome.
func (s *Session) HandleToolResult(r nui.ToolResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case r.Success && r.Message != "":
		s.notify(r.Message, IconSuccess, NotificationTTL)
	case r.Success:
		s.notify("Tool used successfully", IconSuccess, NotificationTTL)
	case r.Message != "":
		s.notify(r.Message, IconFailure, NotificationTTL)
	default:
		s.notify("Unable to use tool", IconFailure, NotificationTTL)
	}
}
