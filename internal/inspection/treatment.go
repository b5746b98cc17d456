// internal/inspection/treatment.go
package inspection

import (
	"context"
	"fmt"

	"github.com/qc-advancedmedic/nui/internal/eligibility"
	"github.com/qc-advancedmedic/nui/internal/gateway"
	"github.com/qc-advancedmedic/nui/pkg/core"
)

// Candidate is a discovered body part listed in a treatment view.
type Candidate struct {
	BodyPart      string `json:"bodyPart"`
	Label         string `json:"label"`
	PainLevel     int    `json:"painLevel"`
	BleedingLevel int    `json:"bleedingLevel"`
	Treated       bool   `json:"treated"`
}

// EmergencyCandidate is a discovered part eligible for an injection.
type EmergencyCandidate struct {
	Candidate
	Emergency eligibility.Label `json:"emergency"`
}

// records returns the current treatment records of a part: those embedded in
// its wound and those listed on the snapshot.
func (s *Session) records(part core.BodyPart) []core.TreatmentRecord {
	return s.data.Wounds.RecordsFor(part, s.data.Treatments)
}

func (s *Session) candidates(keep func(w *core.Wound) bool, treated func(w *core.Wound) bool) []Candidate {
	var out []Candidate
	for _, part := range core.InspectableParts {
		w := s.discovered[part]
		if !keep(w) {
			continue
		}
		out = append(out, Candidate{
			BodyPart:      part.FrontendKey(),
			Label:         s.partName(part),
			PainLevel:     w.PainLevel,
			BleedingLevel: w.BleedingLevel,
			Treated:       treated(w),
		})
	}
	return out
}

// BandageCandidates lists discovered parts with bandageable bleeding.
func (s *Session) BandageCandidates() []Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bandageCandidates()
}

func (s *Session) bandageCandidates() []Candidate {
	return s.candidates(eligibility.IsBandageEligible, func(w *core.Wound) bool {
		return eligibility.IsAlreadyBandaged(w.BodyPart, s.records(w.BodyPart))
	})
}

// TourniquetCandidates lists discovered parts with severe bleeding.
func (s *Session) TourniquetCandidates() []Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tourniquetCandidates()
}

func (s *Session) tourniquetCandidates() []Candidate {
	return s.candidates(eligibility.IsTourniquetEligible, func(w *core.Wound) bool {
		return eligibility.IsAlreadyTourniqueted(w.BodyPart, s.records(w.BodyPart))
	})
}

// MedicineCandidates lists discovered parts in pain.
func (s *Session) MedicineCandidates() []Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.medicineCandidates()
}

func (s *Session) medicineCandidates() []Candidate {
	return s.candidates(func(w *core.Wound) bool {
		return eligibility.IsMedicineEligible(w, nil)
	}, func(w *core.Wound) bool {
		return !eligibility.NeedsMedicine(w, s.records(w.BodyPart))
	})
}

// EmergencyCandidates lists discovered parts that qualify for an injection.
func (s *Session) EmergencyCandidates() []EmergencyCandidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emergencyCandidates()
}

func (s *Session) emergencyCandidates() []EmergencyCandidate {
	var out []EmergencyCandidate
	for _, c := range s.candidates(eligibility.IsInjectionEligible, func(*core.Wound) bool { return false }) {
		label, _ := eligibility.InjectionLabel(s.discovered[core.ToBackend(c.BodyPart)])
		out = append(out, EmergencyCandidate{Candidate: c, Emergency: label})
	}
	return out
}

// treatment describes how each treatment view talks to the host.
type treatment struct {
	kind     core.ItemKind
	action   string
	needPart bool
	noun     string // used in transport failure notices
	purpose  string // appended to the treatment log
}

var treatments = map[core.ItemKind]treatment{
	core.KindBandage:    {core.KindBandage, gateway.ActionApplyBandage, true, "Bandage", "for bleeding control"},
	core.KindTourniquet: {core.KindTourniquet, gateway.ActionApplyTourniquet, true, "Tourniquet", "for severe bleeding control"},
	core.KindMedicine:   {core.KindMedicine, gateway.ActionAdministerMedicine, false, "Medicine", "for pain management"},
	core.KindInjection:  {core.KindInjection, gateway.ActionGiveInjection, true, "Injection", "for emergency treatment"},
}

// ApplyBandage bandages the selected part with the selected bandage.
func (s *Session) ApplyBandage(ctx context.Context) error {
	return s.treat(ctx, treatments[core.KindBandage])
}

// ApplyTourniquet applies the selected tourniquet to the selected part.
func (s *Session) ApplyTourniquet(ctx context.Context) error {
	return s.treat(ctx, treatments[core.KindTourniquet])
}

// AdministerMedicine gives the selected medicine to the patient.
func (s *Session) AdministerMedicine(ctx context.Context) error {
	return s.treat(ctx, treatments[core.KindMedicine])
}

// GiveInjection injects the selected injection into the selected part.
func (s *Session) GiveInjection(ctx context.Context) error {
	return s.treat(ctx, treatments[core.KindInjection])
}

// treat sends a treatment request. The host checks the inventory and replies
// with the outcome.
func (s *Session) treat(ctx context.Context, t treatment) error {
	s.mu.Lock()
	id := s.selected[t.kind]
	part := core.Patient
	if t.needPart {
		part = s.selectedPart
	}
	if id == "" || part == "" {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNoSelection, t.kind)
	}
	item, ok := s.catalog.Find(t.kind, id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s %q", ErrUnknownItem, t.kind, id)
	}

	bodyPart := string(core.Patient)
	if t.needPart {
		bodyPart = part.FrontendKey()
	}
	req := gateway.TreatmentRequest{
		Action: t.action,
		Data: gateway.TreatmentData{
			PlayerID:    string(s.data.PlayerID),
			BodyPart:    bodyPart,
			ItemType:    item.ID,
			ItemName:    item.ItemName,
			DisplayName: item.Name,
		},
	}
	s.notify(fmt.Sprintf("Checking inventory for %s...", item.Name), IconPending, NotificationTTL)
	s.mu.Unlock()
	s.changed()

	resp, err := s.deps.Gateway.Post(ctx, gateway.EndpointMedicalTreatment, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.notify(t.noun+" application failed", IconFailure, NotificationTTL)
		return fmt.Errorf("%s request failed: %w", t.action, err)
	}
	if !resp.Succeeded() {
		msg := resp.Message
		if msg == "" {
			msg = fmt.Sprintf("Failed to apply %s", item.Name)
		}
		s.notify(msg, IconFailure, NotificationTTL)
		return nil
	}

	if t.needPart {
		s.notify(fmt.Sprintf("Successfully applied %s to %s", item.Name, s.partName(part)), IconSuccess, NotificationTTL)
		s.addTreatment(fmt.Sprintf("Applied %s to %s %s", item.Name, s.partName(part), t.purpose))
		s.selectedPart = ""
	} else {
		s.notify(fmt.Sprintf("Successfully administered %s", item.Name), IconSuccess, NotificationTTL)
		s.addTreatment(fmt.Sprintf("Applied %s %s", item.Name, t.purpose))
	}
	delete(s.selected, t.kind)
	return nil
}

// Doctor's bag tools.
const (
	ToolStethoscope   = "stethoscope"
	ToolThermometer   = "thermometer"
	ToolLaudanum      = "laudanum"
	ToolWhiskey       = "whiskey"
	ToolFieldKit      = "field-kit"
	ToolSmellingSalts = "smelling-salts"
)

// Tools lists the doctor's bag in display order.
var Tools = []string{ToolStethoscope, ToolThermometer, ToolLaudanum, ToolWhiskey, ToolFieldKit, ToolSmellingSalts}

// IsTool reports whether name is a doctor's bag tool.
func IsTool(name string) bool {
	for _, t := range Tools {
		if t == name {
			return true
		}
	}
	return false
}

// UseTool asks the host to use a doctor's bag tool on the patient. The host
// validates the inventory and answers with a tool-usage-result push.
func (s *Session) UseTool(ctx context.Context, tool string, extra any) error {
	if !IsTool(tool) {
		return fmt.Errorf("%w: tool %q", ErrUnknownItem, tool)
	}
	s.mu.Lock()
	req := gateway.ToolRequest{
		Action:      gateway.ActionUseTool,
		Target:      tool,
		Extra:       extra,
		PlayerID:    string(s.data.PlayerID),
		PatientName: s.data.PlayerName,
	}
	s.mu.Unlock()

	resp, err := s.deps.Gateway.Post(ctx, gateway.EndpointMedicalAction, req)
	if err != nil {
		return fmt.Errorf("medical action failed: %w", err)
	}
	if resp.Status == gateway.StatusFailed {
		s.deps.Logger.Error("Medical action error", "tool", tool, "message", resp.Message)
	}
	return nil
}
