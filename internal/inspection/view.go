// internal/inspection/view.go
package inspection

import (
	"github.com/qc-advancedmedic/nui/pkg/core"
)

// DiscoveredWound is a wound found by inspection.
type DiscoveredWound struct {
	BodyPart string      `json:"bodyPart"`
	Label    string      `json:"label"`
	Wound    *core.Wound `json:"wound"`
}

// ViewModel is everything the inspection panel renders.
type ViewModel struct {
	PlayerName   string        `json:"playerName"`
	PlayerID     core.PlayerID `json:"playerId,omitempty"`
	IsMissionNPC bool          `json:"isMissionNpc"`

	View             View                     `json:"view"`
	Submenus         Submenus                 `json:"submenus"`
	SelectedBone     string                   `json:"selectedBone,omitempty"`
	SelectedBodyPart string                   `json:"selectedBodyPart,omitempty"`
	Selected         map[core.ItemKind]string `json:"selected,omitempty"`

	Inspected         []string          `json:"inspected"`
	Discovered        []DiscoveredWound `json:"discovered"`
	Reports           map[string]Report `json:"reports"`
	HasInspectedFully bool              `json:"hasInspectedFully"`

	CheckingVitals      bool          `json:"checkingVitals"`
	VitalsProgress      float64       `json:"vitalsProgress"`
	VitalsChecked       bool          `json:"vitalsChecked"`
	Vitals              VitalsDisplay `json:"vitals"`
	CheckingTemperature bool          `json:"checkingTemperature"`
	TemperatureProgress float64       `json:"temperatureProgress"`
	TemperatureChecked  bool          `json:"temperatureChecked"`
	Temperature         float64       `json:"temperature,omitempty"`
	BloodLevel          int           `json:"bloodLevel"`

	Assessment   []string      `json:"assessment"`
	Treatments   []string      `json:"treatments"`
	Notification *Notification `json:"notification,omitempty"`

	Bandages    []Candidate          `json:"bandages"`
	Tourniquets []Candidate          `json:"tourniquets"`
	Medicines   []Candidate          `json:"medicines"`
	Emergencies []EmergencyCandidate `json:"emergencies"`
	Catalog     core.Catalog         `json:"catalog"`
	Tools       []string             `json:"tools"`
}

// ViewModel builds the panel's view model. Expired notifications are dropped.
func (s *Session) ViewModel() ViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()

	vm := ViewModel{
		PlayerName:       s.data.PlayerName,
		PlayerID:         s.data.PlayerID,
		IsMissionNPC:     s.data.IsMissionNPC(),
		View:             s.view,
		Submenus:         s.submenus,
		SelectedBone:     keyOf(s.selectedBone),
		SelectedBodyPart: keyOf(s.selectedPart),
		Selected:         make(map[core.ItemKind]string, len(s.selected)),
		Inspected:        []string{},
		Discovered:       []DiscoveredWound{},
		Reports:          make(map[string]Report, len(s.reports)),

		HasInspectedFully: s.hasInspectedFully,

		CheckingVitals:      s.holds[HoldVitals].active,
		VitalsProgress:      s.holds[HoldVitals].progress,
		VitalsChecked:       s.vitalsChecked,
		CheckingTemperature: s.holds[HoldTemperature].active,
		TemperatureProgress: s.holds[HoldTemperature].progress,
		TemperatureChecked:  s.temperatureChecked,
		Temperature:         s.temperature,
		BloodLevel:          s.data.EffectiveBloodLevel(),

		Assessment: append([]string{}, s.assessment...),
		Treatments: append([]string{}, s.treatmentLog...),

		Bandages:    s.bandageCandidates(),
		Tourniquets: s.tourniquetCandidates(),
		Medicines:   s.medicineCandidates(),
		Emergencies: s.emergencyCandidates(),
		Catalog:     s.catalog,
		Tools:       Tools,
	}

	for k, v := range s.selected {
		vm.Selected[k] = v
	}
	for _, part := range core.InspectableParts {
		if s.inspected[part] {
			vm.Inspected = append(vm.Inspected, part.FrontendKey())
		}
		if w, ok := s.discovered[part]; ok {
			vm.Discovered = append(vm.Discovered, DiscoveredWound{BodyPart: part.FrontendKey(), Label: s.partName(part), Wound: w})
		}
	}
	for part, r := range s.reports {
		vm.Reports[part.FrontendKey()] = r
	}

	if s.patientVitals != nil {
		vm.Vitals = s.patientVitals.Display()
	} else {
		vm.Vitals = FallbackVitals(s.data)
	}
	if n := s.notification; n != nil && s.deps.Now().Before(n.ExpiresAt) {
		c := *n
		vm.Notification = &c
	}
	return vm
}

func keyOf(p core.BodyPart) string {
	if p == "" {
		return ""
	}
	return p.FrontendKey()
}
